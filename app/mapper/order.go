package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-orders/app/entity"
	"github.com/vibast-solutions/ms-go-orders/app/plan"
	"github.com/vibast-solutions/ms-go-orders/app/service"
	"github.com/vibast-solutions/ms-go-orders/app/types"
)

func OrderToDescriptor(item *entity.Order, selected plan.Plan, keyID string) *types.OrderDescriptor {
	if item == nil {
		return nil
	}

	return &types.OrderDescriptor{
		OrderId:        item.ID,
		GatewayOrderId: item.GatewayOrderID,
		AmountPaise:    item.AmountPaise,
		Currency:       item.Currency,
		KeyId:          keyID,
		Plan: types.PlanInfo{
			Type:          selected.Type,
			DisplayName:   selected.DisplayName,
			QuestionCount: selected.QuestionCount,
			Price:         selected.Price,
		},
		Prefill: types.UserDetails{
			Name:    item.UserName,
			Contact: item.UserContact,
			Email:   item.UserEmail,
		},
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func OrderToView(item *entity.Order) *types.OrderView {
	if item == nil {
		return nil
	}

	return &types.OrderView{
		OrderId:        item.ID,
		GatewayOrderId: item.GatewayOrderID,
		UserId:         item.UserID,
		PlanType:       item.PlanType,
		AmountPaise:    item.AmountPaise,
		Currency:       item.Currency,
		Status:         string(item.Status),
		Attempts:       item.Attempts,
		PaymentId:      item.PaymentID,
		FailureReason:  derefString(item.FailureReason),
		CreatedAt:      item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func PaymentToResponse(item *entity.Payment) *types.Payment {
	if item == nil {
		return nil
	}

	return &types.Payment{
		Id:          item.ID,
		OrderId:     item.OrderID,
		UserId:      item.UserID,
		PlanType:    item.PlanType,
		AmountPaise: item.AmountPaise,
		Currency:    item.Currency,
		Status:      string(item.Status),
		Method:      item.Method,
		VerifiedAt:  item.VerifiedAt.UTC().Format(time.RFC3339),
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func PaymentsToResponse(items []*entity.Payment) []*types.Payment {
	result := make([]*types.Payment, 0, len(items))
	for _, item := range items {
		result = append(result, PaymentToResponse(item))
	}
	return result
}

func SnapshotToStatusResponse(snapshot *service.OrderSnapshot) *types.OrderStatusResponse {
	if snapshot == nil {
		return nil
	}

	return &types.OrderStatusResponse{
		Order:   OrderToView(snapshot.Order),
		Payment: PaymentToResponse(snapshot.Payment),
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
