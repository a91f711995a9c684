package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-orders/app/entity"
)

const paymentColumns = `
	id, order_id, user_id, plan_type,
	amount_paise, currency, status, method,
	verified_at, created_at
`

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			id, order_id, user_id, plan_type,
			amount_paise, currency, status, method,
			verified_at, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.UserID,
		payment.PlanType,
		payment.AmountPaise,
		payment.Currency,
		string(payment.Status),
		payment.Method,
		payment.VerifiedAt,
		payment.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPaymentAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`

	var payment entity.Payment
	var status string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.UserID,
		&payment.PlanType,
		&payment.AmountPaise,
		&payment.Currency,
		&status,
		&payment.Method,
		&payment.VerifiedAt,
		&payment.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	payment.Status = entity.PaymentStatus(status)
	return &payment, nil
}

// ListByUser returns the user's payments, most recent first. Ties on
// created_at keep insertion order via the auto-increment seq column.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = ? ORDER BY created_at DESC, seq ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Payment, 0)
	for rows.Next() {
		var payment entity.Payment
		var status string
		if err := rows.Scan(
			&payment.ID,
			&payment.OrderID,
			&payment.UserID,
			&payment.PlanType,
			&payment.AmountPaise,
			&payment.Currency,
			&status,
			&payment.Method,
			&payment.VerifiedAt,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		payment.Status = entity.PaymentStatus(status)
		items = append(items, &payment)
	}
	return items, rows.Err()
}
