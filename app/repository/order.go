package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-orders/app/entity"
)

const orderColumns = `
	id, gateway_order_id, user_id, plan_type,
	user_name, user_contact, user_email,
	amount_paise, currency, status, attempts,
	payment_id, failure_reason, created_at, updated_at
`

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (
			id, gateway_order_id, user_id, plan_type,
			user_name, user_contact, user_email,
			amount_paise, currency, status, attempts,
			payment_id, failure_reason, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.GatewayOrderID,
		order.UserID,
		order.PlanType,
		order.UserName,
		order.UserContact,
		order.UserEmail,
		order.AmountPaise,
		order.Currency,
		string(order.Status),
		order.Attempts,
		order.PaymentID,
		nullableStringValue(order.FailureReason),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrOrderAlreadyExists
		}
		return err
	}
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, order *entity.Order) error {
	query := `
		UPDATE orders SET
			gateway_order_id = ?,
			status = ?,
			attempts = ?,
			payment_id = ?,
			failure_reason = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		order.GatewayOrderID,
		string(order.Status),
		order.Attempts,
		order.PaymentID,
		nullableStringValue(order.FailureReason),
		order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if existing, findErr := r.FindByID(ctx, order.ID); findErr == nil && existing == nil {
			return ErrOrderNotFound
		}
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *OrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE gateway_order_id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, gatewayOrderID))
}

func (r *OrderRepository) scanOne(row *sql.Row) (*entity.Order, error) {
	var order entity.Order
	var status string
	var failureReason sql.NullString

	err := row.Scan(
		&order.ID,
		&order.GatewayOrderID,
		&order.UserID,
		&order.PlanType,
		&order.UserName,
		&order.UserContact,
		&order.UserEmail,
		&order.AmountPaise,
		&order.Currency,
		&status,
		&order.Attempts,
		&order.PaymentID,
		&failureReason,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	order.Status = entity.OrderStatus(status)
	order.FailureReason = stringPtrFromNull(failureReason)
	return &order, nil
}
