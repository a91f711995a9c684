package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-orders/app/entity"
	"github.com/vibast-solutions/ms-go-orders/app/gateway"
	"github.com/vibast-solutions/ms-go-orders/app/plan"
	"github.com/vibast-solutions/ms-go-orders/app/repository"
	"github.com/vibast-solutions/ms-go-orders/app/signature"
	"github.com/vibast-solutions/ms-go-orders/app/types"
	"github.com/vibast-solutions/ms-go-orders/config"
)

const (
	testKeySecret     = "test-key-secret"
	testWebhookSecret = "test-webhook-secret"
)

type testEnv struct {
	service     *OrderService
	orderRepo   *repository.MemoryOrderRepository
	paymentRepo *repository.MemoryPaymentRepository
}

func newTestEnv() *testEnv {
	orderRepo := repository.NewMemoryOrderRepository()
	paymentRepo := repository.NewMemoryPaymentRepository()
	catalog := plan.NewCatalog(
		plan.Plan{Type: "basic", DisplayName: "Basic", QuestionCount: 25, Price: 99},
		plan.Plan{Type: "standard", DisplayName: "Standard", QuestionCount: 100, Price: 299},
	)
	svc := NewOrderService(orderRepo, paymentRepo, gateway.Simulated{}, catalog, config.RazorpayConfig{
		KeySecret:     testKeySecret,
		WebhookSecret: testWebhookSecret,
		Simulate:      true,
	})
	return &testEnv{service: svc, orderRepo: orderRepo, paymentRepo: paymentRepo}
}

func (e *testEnv) createOrder(t *testing.T, userID, planType string) *entity.Order {
	t.Helper()
	order, _, err := e.service.CreateOrder(context.Background(), &types.CreateOrderRequest{
		UserId:   userID,
		PlanType: planType,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func signConfirmation(orderID, paymentID string) string {
	return signature.Sign(testKeySecret, signature.ConfirmationMessage(orderID, paymentID))
}

func webhookBody(t *testing.T, event, orderID, paymentID, method, errDesc string) []byte {
	t.Helper()
	envelope := map[string]interface{}{
		"event": event,
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":                paymentID,
					"order_id":          orderID,
					"method":            method,
					"error_description": errDesc,
				},
			},
		},
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal webhook body: %v", err)
	}
	return body
}

func signWebhook(body []byte) string {
	return signature.Sign(testWebhookSecret, body)
}

func TestCreateOrderStandardPlanScenario(t *testing.T) {
	env := newTestEnv()

	order, selected, err := env.service.CreateOrder(context.Background(), &types.CreateOrderRequest{
		UserId:   "u1",
		PlanType: "standard",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if order.AmountPaise != 29900 {
		t.Fatalf("expected amount 29900 paise, got %d", order.AmountPaise)
	}
	if order.Currency != "INR" {
		t.Fatalf("expected INR, got %s", order.Currency)
	}
	if order.Status != entity.OrderStatusCreated {
		t.Fatalf("expected created status, got %s", order.Status)
	}
	if order.Attempts != 0 {
		t.Fatalf("expected 0 attempts, got %d", order.Attempts)
	}
	if order.GatewayOrderID == "" {
		t.Fatal("expected gateway order id to be stored")
	}
	if order.UserName != "User" {
		t.Fatalf("expected default user name, got %q", order.UserName)
	}
	if selected.DisplayName != "Standard" || selected.QuestionCount != 100 {
		t.Fatalf("unexpected plan: %+v", selected)
	}

	stored, err := env.orderRepo.FindByID(context.Background(), order.ID)
	if err != nil || stored == nil {
		t.Fatalf("order not stored: %v", err)
	}
}

func TestCreateOrderRejectsUnknownPlan(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.service.CreateOrder(context.Background(), &types.CreateOrderRequest{
		UserId:   "u1",
		PlanType: "enterprise",
	})
	if !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan, got %v", err)
	}
}

func TestCreateOrderRequiresUserID(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.service.CreateOrder(context.Background(), &types.CreateOrderRequest{
		PlanType: "standard",
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestVerifyPaymentHappyPathAndIdempotentReplay(t *testing.T) {
	env := newTestEnv()
	order := env.createOrder(t, "u1", "standard")

	req := &types.VerifyPaymentRequest{
		OrderId:   order.ID,
		PaymentId: "pay_abc",
		Signature: signConfirmation(order.ID, "pay_abc"),
	}

	payment, err := env.service.VerifyPayment(context.Background(), req)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if payment.AmountPaise != 29900 {
		t.Fatalf("expected payment amount 29900 from order, got %d", payment.AmountPaise)
	}
	if payment.Status != entity.PaymentStatusCaptured {
		t.Fatalf("expected captured, got %s", payment.Status)
	}
	if payment.Method != "" {
		t.Fatalf("expected no method from client confirmation, got %q", payment.Method)
	}

	updated, _ := env.orderRepo.FindByID(context.Background(), order.ID)
	if updated.Status != entity.OrderStatusPaid || updated.PaymentID != "pay_abc" {
		t.Fatalf("order not transitioned: %+v", updated)
	}

	replay, err := env.service.VerifyPayment(context.Background(), req)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replay.ID != payment.ID || !replay.VerifiedAt.Equal(payment.VerifiedAt) {
		t.Fatalf("replay returned a different payment: %+v vs %+v", replay, payment)
	}

	history, err := env.service.GetPaymentHistory(context.Background(), "u1")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected exactly one payment after replay, got %d", len(history))
	}
}

func TestVerifyPaymentRejectsForgedSignature(t *testing.T) {
	env := newTestEnv()
	order := env.createOrder(t, "u1", "standard")

	forged := signature.Sign("wrong-secret", signature.ConfirmationMessage(order.ID, "pay_abc"))
	_, err := env.service.VerifyPayment(context.Background(), &types.VerifyPaymentRequest{
		OrderId:   order.ID,
		PaymentId: "pay_abc",
		Signature: forged,
	})
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	stored, _ := env.orderRepo.FindByID(context.Background(), order.ID)
	if stored.Status != entity.OrderStatusCreated || stored.PaymentID != "" {
		t.Fatalf("rejected confirmation mutated order: %+v", stored)
	}
}

func TestVerifyPaymentRejectsSignatureForDifferentPair(t *testing.T) {
	env := newTestEnv()
	order := env.createOrder(t, "u1", "standard")

	// Valid digest, but computed for another payment id.
	misdirected := signConfirmation(order.ID, "pay_other")
	_, err := env.service.VerifyPayment(context.Background(), &types.VerifyPaymentRequest{
		OrderId:   order.ID,
		PaymentId: "pay_abc",
		Signature: misdirected,
	})
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	stored, _ := env.orderRepo.FindByID(context.Background(), order.ID)
	if stored.Status != entity.OrderStatusCreated {
		t.Fatalf("order status changed: %s", stored.Status)
	}
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.VerifyPayment(context.Background(), &types.VerifyPaymentRequest{
		OrderId:   "ord_missing",
		PaymentId: "pay_abc",
		Signature: signConfirmation("ord_missing", "pay_abc"),
	})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestMarkPaymentFailedIncrementsAttempts(t *testing.T) {
	env := newTestEnv()
	order := env.createOrder(t, "u1", "basic")

	failed, err := env.service.MarkPaymentFailed(context.Background(), &types.PaymentFailedRequest{
		OrderId: order.ID,
		Reason:  "card declined",
	})
	if err != nil {
		t.Fatalf("mark failed errored: %v", err)
	}
	if failed.Status != entity.OrderStatusFailed {
		t.Fatalf("expected failed status, got %s", failed.Status)
	}
	if failed.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", failed.Attempts)
	}
	if failed.FailureReason == nil || *failed.FailureReason != "card declined" {
		t.Fatalf("failure reason not recorded: %+v", failed.FailureReason)
	}

	again, err := env.service.MarkPaymentFailed(context.Background(), &types.PaymentFailedRequest{
		OrderId: order.ID,
		Reason:  "card declined again",
	})
	if err != nil {
		t.Fatalf("second mark failed errored: %v", err)
	}
	if again.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", again.Attempts)
	}
}

func TestMarkPaymentFailedDiscardedForPaidOrder(t *testing.T) {
	env := newTestEnv()
	order := env.createOrder(t, "u1", "standard")

	_, err := env.service.VerifyPayment(context.Background(), &types.VerifyPaymentRequest{
		OrderId:   order.ID,
		PaymentId: "pay_abc",
		Signature: signConfirmation(order.ID, "pay_abc"),
	})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	result, err := env.service.MarkPaymentFailed(context.Background(), &types.PaymentFailedRequest{
		OrderId: order.ID,
		Reason:  "late failure",
	})
	if err != nil {
		t.Fatalf("mark failed errored: %v", err)
	}
	if result.Status != entity.OrderStatusPaid {
		t.Fatalf("paid order was downgraded to %s", result.Status)
	}
	if result.Attempts != 0 {
		t.Fatalf("attempts changed on discarded event: %d", result.Attempts)
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	env := newTestEnv()
	order := env.createOrder(t, "u1", "standard")

	body := webhookBody(t, "payment.captured", order.GatewayOrderID, "pay_abc", "upi", "")
	_, err := env.service.HandleWebhook(context.Background(), body, signature.Sign("wrong-secret", body))
	if !errors.Is(err, ErrInvalidWebhookSignature) {
		t.Fatalf("expected ErrInvalidWebhookSignature, got %v", err)
	}

	stored, _ := env.orderRepo.FindByID(context.Background(), order.ID)
	if stored.Status != entity.OrderStatusCreated {
		t.Fatalf("rejected webhook mutated order: %s", stored.Status)
	}
}

func TestHandleWebhookVerifiesVerbatimBody(t *testing.T) {
	env := newTestEnv()
	order := env.createOrder(t, "u1", "standard")

	body := webhookBody(t, "payment.captured", order.GatewayOrderID, "pay_abc", "upi", "")
	sig := signWebhook(body)

	// Same JSON, different byte layout: must fail.
	reserialized := append([]byte(" "), body...)
	if _, err := env.service.HandleWebhook(context.Background(), reserialized, sig); !errors.Is(err, ErrInvalidWebhookSignature) {
		t.Fatalf("expected ErrInvalidWebhookSignature for reserialized body, got %v", err)
	}

	if _, err := env.service.HandleWebhook(context.Background(), body, sig); err != nil {
		t.Fatalf("verbatim body rejected: %v", err)
	}
}

func TestHandleWebhookPaymentCaptured(t *testing.T) {
	env := newTestEnv()
	order := env.createOrder(t, "u1", "standard")

	body := webhookBody(t, "payment.captured", order.GatewayOrderID, "pay_abc", "upi", "")
	result, err := env.service.HandleWebhook(context.Background(), body, signWebhook(body))
	if err != nil {
		t.Fatalf("webhook failed: %v", err)
	}
	if !result.Handled || result.Payment == nil {
		t.Fatalf("expected handled capture, got %+v", result)
	}
	if result.Payment.Method != "upi" {
		t.Fatalf("expected method from authenticated payload, got %q", result.Payment.Method)
	}
	if result.Payment.AmountPaise != 29900 {
		t.Fatalf("payment amount not copied from order: %d", result.Payment.AmountPaise)
	}

	stored, _ := env.orderRepo.FindByID(context.Background(), order.ID)
	if stored.Status != entity.OrderStatusPaid {
		t.Fatalf("order not paid after capture webhook: %s", stored.Status)
	}
}

func TestHandleWebhookFailedAfterPaidIsDiscarded(t *testing.T) {
	env := newTestEnv()
	order := env.createOrder(t, "u1", "standard")

	capture := webhookBody(t, "payment.captured", order.GatewayOrderID, "pay_abc", "card", "")
	if _, err := env.service.HandleWebhook(context.Background(), capture, signWebhook(capture)); err != nil {
		t.Fatalf("capture webhook failed: %v", err)
	}

	failed := webhookBody(t, "payment.failed", order.GatewayOrderID, "pay_abc", "card", "issuer declined")
	result, err := env.service.HandleWebhook(context.Background(), failed, signWebhook(failed))
	if err != nil {
		t.Fatalf("failed webhook errored: %v", err)
	}
	if result.Order.Status != entity.OrderStatusPaid {
		t.Fatalf("paid order altered by late failure webhook: %s", result.Order.Status)
	}
}

func TestHandleWebhookFailedThenPaidRecovery(t *testing.T) {
	env := newTestEnv()
	order := env.createOrder(t, "u1", "standard")

	failed := webhookBody(t, "payment.failed", order.GatewayOrderID, "pay_first", "card", "issuer declined")
	if _, err := env.service.HandleWebhook(context.Background(), failed, signWebhook(failed)); err != nil {
		t.Fatalf("failed webhook errored: %v", err)
	}
	stored, _ := env.orderRepo.FindByID(context.Background(), order.ID)
	if stored.Status != entity.OrderStatusFailed {
		t.Fatalf("expected failed status, got %s", stored.Status)
	}

	paid := webhookBody(t, "order.paid", order.GatewayOrderID, "pay_second", "upi", "")
	result, err := env.service.HandleWebhook(context.Background(), paid, signWebhook(paid))
	if err != nil {
		t.Fatalf("order.paid webhook errored: %v", err)
	}
	if result.Payment == nil || result.Payment.ID != "pay_second" {
		t.Fatalf("expected capture of pay_second, got %+v", result.Payment)
	}

	stored, _ = env.orderRepo.FindByID(context.Background(), order.ID)
	if stored.Status != entity.OrderStatusPaid {
		t.Fatalf("failed order did not recover to paid: %s", stored.Status)
	}

	history, _ := env.service.GetPaymentHistory(context.Background(), "u1")
	if len(history) != 1 {
		t.Fatalf("expected exactly one payment, got %d", len(history))
	}
}

func TestHandleWebhookUnrecognizedEventIsAcknowledged(t *testing.T) {
	env := newTestEnv()
	order := env.createOrder(t, "u1", "standard")

	body := webhookBody(t, "refund.processed", order.GatewayOrderID, "pay_abc", "", "")
	result, err := env.service.HandleWebhook(context.Background(), body, signWebhook(body))
	if err != nil {
		t.Fatalf("unrecognized event must not error: %v", err)
	}
	if result.Handled {
		t.Fatal("unrecognized event must not be marked handled")
	}

	stored, _ := env.orderRepo.FindByID(context.Background(), order.ID)
	if stored.Status != entity.OrderStatusCreated {
		t.Fatalf("unrecognized event mutated order: %s", stored.Status)
	}
}

func TestHandleWebhookMalformedPayload(t *testing.T) {
	env := newTestEnv()

	body := []byte(`{"event": "payment.captured", "payload":`)
	_, err := env.service.HandleWebhook(context.Background(), body, signWebhook(body))
	if !errors.Is(err, ErrMalformedWebhookPayload) {
		t.Fatalf("expected ErrMalformedWebhookPayload, got %v", err)
	}

	// Authentic capture event missing its identifiers.
	body = []byte(`{"event": "payment.captured", "payload": {}}`)
	_, err = env.service.HandleWebhook(context.Background(), body, signWebhook(body))
	if !errors.Is(err, ErrMalformedWebhookPayload) {
		t.Fatalf("expected ErrMalformedWebhookPayload for missing ids, got %v", err)
	}
}

func TestGetOrderStatusCombinesOrderAndPayment(t *testing.T) {
	env := newTestEnv()
	order := env.createOrder(t, "u1", "standard")

	snapshot, err := env.service.GetOrderStatus(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if snapshot.Payment != nil {
		t.Fatal("expected no payment before verification")
	}

	_, err = env.service.VerifyPayment(context.Background(), &types.VerifyPaymentRequest{
		OrderId:   order.ID,
		PaymentId: "pay_abc",
		Signature: signConfirmation(order.ID, "pay_abc"),
	})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	snapshot, err = env.service.GetOrderStatus(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if snapshot.Order.Status != entity.OrderStatusPaid {
		t.Fatalf("expected paid order in snapshot, got %s", snapshot.Order.Status)
	}
	if snapshot.Payment == nil || snapshot.Payment.ID != "pay_abc" {
		t.Fatalf("expected payment in snapshot, got %+v", snapshot.Payment)
	}

	if _, err := env.service.GetOrderStatus(context.Background(), "ord_missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestGetPaymentHistoryOrdering(t *testing.T) {
	env := newTestEnv()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"pay_t1", "pay_t2", "pay_t3"} {
		err := env.paymentRepo.Create(context.Background(), &entity.Payment{
			ID:        id,
			OrderID:   "ord_" + id,
			UserID:    "u1",
			Status:    entity.PaymentStatusCaptured,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("seed payment %s failed: %v", id, err)
		}
	}

	history, err := env.service.GetPaymentHistory(context.Background(), "u1")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	for i, want := range []string{"pay_t3", "pay_t2", "pay_t1"} {
		if history[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, history[i].ID)
		}
	}
}

func TestConcurrentVerifyCapturesExactlyOnce(t *testing.T) {
	env := newTestEnv()
	order := env.createOrder(t, "u1", "standard")

	req := &types.VerifyPaymentRequest{
		OrderId:   order.ID,
		PaymentId: "pay_abc",
		Signature: signConfirmation(order.ID, "pay_abc"),
	}

	var wg sync.WaitGroup
	results := make([]*entity.Payment, 16)
	errs := make([]error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n], errs[n] = env.service.VerifyPayment(context.Background(), req)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		if errs[i] != nil {
			t.Fatalf("concurrent verify %d failed: %v", i, errs[i])
		}
		if results[i].ID != "pay_abc" {
			t.Fatalf("concurrent verify %d returned payment %s", i, results[i].ID)
		}
	}

	history, _ := env.service.GetPaymentHistory(context.Background(), "u1")
	if len(history) != 1 {
		t.Fatalf("expected exactly one payment after concurrent verifies, got %d", len(history))
	}
}

func TestNewOrderIDUniqueness(t *testing.T) {
	seen := make(map[string]bool, 100000)
	for i := 0; i < 100000; i++ {
		id := newOrderID()
		if seen[id] {
			t.Fatalf("order id collision after %d generations: %s", i, id)
		}
		seen[id] = true
	}
}

func FuzzNewOrderIDNeverCollides(f *testing.F) {
	var mu sync.Mutex
	seen := map[string]bool{}

	f.Add(uint(1))
	f.Add(uint(64))
	f.Fuzz(func(t *testing.T, n uint) {
		count := int(n % 1024)
		for i := 0; i < count; i++ {
			id := newOrderID()
			mu.Lock()
			dup := seen[id]
			seen[id] = true
			mu.Unlock()
			if dup {
				t.Fatalf("order id collision: %s", id)
			}
		}
	})
}
