package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

type UserDetails struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
}

type CreateOrderRequest struct {
	UserId      string      `json:"user_id"`
	PlanType    string      `json:"plan_type"`
	UserDetails UserDetails `json:"user_details"`
}

func NewCreateOrderRequestFromContext(ctx echo.Context) (*CreateOrderRequest, error) {
	var body CreateOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.UserId = strings.TrimSpace(body.UserId)
	body.PlanType = strings.TrimSpace(body.PlanType)
	body.UserDetails.Name = strings.TrimSpace(body.UserDetails.Name)
	body.UserDetails.Contact = strings.TrimSpace(body.UserDetails.Contact)
	body.UserDetails.Email = strings.TrimSpace(body.UserDetails.Email)

	return &body, nil
}

func (r *CreateOrderRequest) Validate() error {
	if r.UserId == "" {
		return errors.New("user_id is required")
	}
	if r.PlanType == "" {
		return errors.New("plan_type is required")
	}
	return nil
}

func (r *CreateOrderRequest) GetUserId() string      { return r.UserId }
func (r *CreateOrderRequest) GetPlanType() string    { return r.PlanType }
func (r *CreateOrderRequest) GetUserName() string    { return r.UserDetails.Name }
func (r *CreateOrderRequest) GetUserContact() string { return r.UserDetails.Contact }
func (r *CreateOrderRequest) GetUserEmail() string   { return r.UserDetails.Email }

type VerifyPaymentRequest struct {
	OrderId   string `json:"order_id"`
	PaymentId string `json:"payment_id"`
	Signature string `json:"signature"`
}

func NewVerifyPaymentRequestFromContext(ctx echo.Context) (*VerifyPaymentRequest, error) {
	var body VerifyPaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.OrderId = strings.TrimSpace(body.OrderId)
	body.PaymentId = strings.TrimSpace(body.PaymentId)
	body.Signature = strings.TrimSpace(body.Signature)

	return &body, nil
}

func (r *VerifyPaymentRequest) Validate() error {
	if r.OrderId == "" {
		return errors.New("order_id is required")
	}
	if r.PaymentId == "" {
		return errors.New("payment_id is required")
	}
	if r.Signature == "" {
		return errors.New("signature is required")
	}
	return nil
}

func (r *VerifyPaymentRequest) GetOrderId() string   { return r.OrderId }
func (r *VerifyPaymentRequest) GetPaymentId() string { return r.PaymentId }
func (r *VerifyPaymentRequest) GetSignature() string { return r.Signature }

type PaymentFailedRequest struct {
	OrderId string `json:"order_id"`
	Reason  string `json:"reason"`
}

func NewPaymentFailedRequestFromContext(ctx echo.Context) (*PaymentFailedRequest, error) {
	var body PaymentFailedRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.OrderId = strings.TrimSpace(body.OrderId)
	body.Reason = strings.TrimSpace(body.Reason)

	return &body, nil
}

func (r *PaymentFailedRequest) Validate() error {
	if r.OrderId == "" {
		return errors.New("order_id is required")
	}
	return nil
}

func (r *PaymentFailedRequest) GetOrderId() string { return r.OrderId }
func (r *PaymentFailedRequest) GetReason() string  { return r.Reason }

type GetOrderStatusRequest struct {
	OrderId string
}

func NewGetOrderStatusRequestFromContext(ctx echo.Context) (*GetOrderStatusRequest, error) {
	return &GetOrderStatusRequest{OrderId: strings.TrimSpace(ctx.Param("id"))}, nil
}

func (r *GetOrderStatusRequest) Validate() error {
	if r.OrderId == "" {
		return errors.New("order id is required")
	}
	return nil
}

type PaymentHistoryRequest struct {
	UserId string
}

func NewPaymentHistoryRequestFromContext(ctx echo.Context) (*PaymentHistoryRequest, error) {
	return &PaymentHistoryRequest{UserId: strings.TrimSpace(ctx.QueryParam("user_id"))}, nil
}

func (r *PaymentHistoryRequest) Validate() error {
	if r.UserId == "" {
		return errors.New("user_id is required")
	}
	return nil
}
