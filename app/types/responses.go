package types

type PlanInfo struct {
	Type          string `json:"type"`
	DisplayName   string `json:"display_name"`
	QuestionCount int    `json:"question_count"`
	Price         int64  `json:"price"`
}

// OrderDescriptor carries everything a client needs to render the gateway's
// payment prompt.
type OrderDescriptor struct {
	OrderId        string      `json:"order_id"`
	GatewayOrderId string      `json:"gateway_order_id"`
	AmountPaise    int64       `json:"amount_paise"`
	Currency       string      `json:"currency"`
	KeyId          string      `json:"key_id"`
	Plan           PlanInfo    `json:"plan"`
	Prefill        UserDetails `json:"prefill"`
	CreatedAt      string      `json:"created_at"`
}

type OrderView struct {
	OrderId        string `json:"order_id"`
	GatewayOrderId string `json:"gateway_order_id"`
	UserId         string `json:"user_id"`
	PlanType       string `json:"plan_type"`
	AmountPaise    int64  `json:"amount_paise"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
	Attempts       int32  `json:"attempts"`
	PaymentId      string `json:"payment_id,omitempty"`
	FailureReason  string `json:"failure_reason,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type Payment struct {
	Id          string `json:"id"`
	OrderId     string `json:"order_id"`
	UserId      string `json:"user_id"`
	PlanType    string `json:"plan_type"`
	AmountPaise int64  `json:"amount_paise"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Method      string `json:"method,omitempty"`
	VerifiedAt  string `json:"verified_at"`
	CreatedAt   string `json:"created_at"`
}

type OrderEnvelopeResponse struct {
	Order *OrderDescriptor `json:"order"`
}

type OrderStatusResponse struct {
	Order   *OrderView `json:"order"`
	Payment *Payment   `json:"payment,omitempty"`
}

type PaymentEnvelopeResponse struct {
	Payment *Payment `json:"payment"`
}

type PaymentHistoryResponse struct {
	Payments []*Payment `json:"payments"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
