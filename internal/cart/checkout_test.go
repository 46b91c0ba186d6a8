package cart

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
)

func newTestSession() *Session {
	return NewRegistry().Create()
}

func TestBeginCheckout_EmptyCart(t *testing.T) {
	session := newTestSession()

	result := session.BeginCheckout(true)

	if result.State != StateIdle {
		t.Fatalf("dispatcher must stay idle, got %q", result.State)
	}
	if len(result.Notices) != 1 || !strings.Contains(result.Notices[0], "cart is empty") {
		t.Fatalf("expected empty-cart notice, got %v", result.Notices)
	}
}

func TestBeginCheckout_PermissionDenied(t *testing.T) {
	session := newTestSession()
	session.AddItem(line("svc-1", domain.KindService, "Haircut", 7500))

	result := session.BeginCheckout(false)

	if result.State != StateIdle {
		t.Fatalf("dispatcher must stay idle on permission rejection, got %q", result.State)
	}
	if len(result.Notices) != 1 || !strings.Contains(result.Notices[0], "permission") {
		t.Fatalf("expected permission notice, got %v", result.Notices)
	}
}

// The empty-cart guard runs before the permission guard, so an unauthorized
// operator with an empty cart sees only the empty-cart notice.
func TestBeginCheckout_EmptyCartWinsOverPermission(t *testing.T) {
	session := newTestSession()

	result := session.BeginCheckout(false)

	if len(result.Notices) != 1 || !strings.Contains(result.Notices[0], "cart is empty") {
		t.Fatalf("expected only the empty-cart notice, got %v", result.Notices)
	}
}

func TestBeginCheckout_TransitionsToAwaitingPayment(t *testing.T) {
	session := newTestSession()
	session.AddItem(line("svc-1", domain.KindService, "Haircut", 7500))

	result := session.BeginCheckout(true)

	if result.State != StateAwaitingPayment {
		t.Fatalf("expected awaiting_payment, got %q", result.State)
	}
	if len(result.Notices) != 0 {
		t.Fatalf("expected no notices, got %v", result.Notices)
	}
}

func TestBeginCheckout_RejectsWhileAwaitingPayment(t *testing.T) {
	session := newTestSession()
	session.AddItem(line("svc-1", domain.KindService, "Haircut", 7500))
	session.BeginCheckout(true)

	result := session.BeginCheckout(true)

	if result.State != StateAwaitingPayment {
		t.Fatalf("state must stay awaiting_payment, got %q", result.State)
	}
	if len(result.Notices) != 1 || !strings.Contains(result.Notices[0], "already in progress") {
		t.Fatalf("expected already-in-progress notice, got %v", result.Notices)
	}

	// Cancel re-arms the machine for a fresh begin.
	session.CancelCheckout()
	if again := session.BeginCheckout(true); again.State != StateAwaitingPayment || len(again.Notices) != 0 {
		t.Fatalf("expected clean transition after cancel, got %+v", again)
	}
}

func TestCancelCheckout_ReturnsToIdleWithoutSideEffects(t *testing.T) {
	session := newTestSession()
	session.AddItem(line("svc-1", domain.KindService, "Haircut", 7500))
	session.SetDiscountInput("10")
	session.BeginCheckout(true)

	result := session.CancelCheckout()

	if result.State != StateIdle {
		t.Fatalf("expected idle after cancel, got %q", result.State)
	}
	lines, discountInput, _ := session.Snapshot()
	if len(lines) != 1 || discountInput != "10" {
		t.Fatalf("cancel must preserve cart and discount, got %d lines, discount %q", len(lines), discountInput)
	}
}

func TestCompletePayment_WithoutBeginCheckout(t *testing.T) {
	session := newTestSession()
	session.AddItem(line("svc-1", domain.KindService, "Haircut", 7500))

	called := false
	record := func(context.Context, []domain.CartLine, domain.PricingResult, domain.CompletePaymentRequest) (string, string, error) {
		called = true
		return "", "", nil
	}

	result := session.CompletePayment(context.Background(), 5, record, domain.CompletePaymentRequest{PaymentMethod: domain.PaymentCash})

	if called {
		t.Fatalf("recorder must not run without a payment in progress")
	}
	if len(result.Notices) != 1 || !strings.Contains(result.Notices[0], "no payment in progress") {
		t.Fatalf("expected no-payment notice, got %v", result.Notices)
	}
}

func TestCompletePayment_RecordsAndResets(t *testing.T) {
	session := newTestSession()
	session.AddItem(line("svc-1", domain.KindService, "Haircut", 10000))
	session.SetDiscountInput("10")
	session.BeginCheckout(true)

	var recordedPricing domain.PricingResult
	record := func(_ context.Context, lines []domain.CartLine, pricing domain.PricingResult, _ domain.CompletePaymentRequest) (string, string, error) {
		if len(lines) != 1 {
			t.Fatalf("expected one line at the recorder, got %d", len(lines))
		}
		recordedPricing = pricing
		return "tx-1", "pos-1", nil
	}

	result := session.CompletePayment(context.Background(), 5, record, domain.CompletePaymentRequest{PaymentMethod: domain.PaymentCreditCard})

	if result.PaymentStatus != "successful" {
		t.Fatalf("expected successful payment, got %q", result.PaymentStatus)
	}
	if result.TransactionID != "tx-1" || result.ReferenceID != "pos-1" {
		t.Fatalf("expected recorder ids in result, got %+v", result)
	}
	if recordedPricing.FinalTotalCents != 9450 {
		t.Fatalf("expected final total 9450 at the recorder, got %d", recordedPricing.FinalTotalCents)
	}
	if result.FinalTotalCents != 9450 {
		t.Fatalf("expected final total 9450 in the result, got %d", result.FinalTotalCents)
	}

	lines, discountInput, state := session.Snapshot()
	if len(lines) != 0 || discountInput != "" || state != StateIdle {
		t.Fatalf("completion must clear the session, got %d lines, discount %q, state %q", len(lines), discountInput, state)
	}
}

func TestCompletePayment_RecorderFailureStillReportsSuccess(t *testing.T) {
	session := newTestSession()
	session.AddItem(line("svc-1", domain.KindService, "Haircut", 10000))
	session.BeginCheckout(true)

	record := func(context.Context, []domain.CartLine, domain.PricingResult, domain.CompletePaymentRequest) (string, string, error) {
		return "", "", errors.New("store down")
	}

	result := session.CompletePayment(context.Background(), 0, record, domain.CompletePaymentRequest{PaymentMethod: domain.PaymentCash})

	if result.PaymentStatus != "successful" {
		t.Fatalf("payment already happened, status must stay successful, got %q", result.PaymentStatus)
	}
	if result.TransactionID != "" {
		t.Fatalf("no transaction id on recording failure, got %q", result.TransactionID)
	}
	if len(result.Notices) != 2 {
		t.Fatalf("expected payment notice plus recording-failed notice, got %v", result.Notices)
	}
	if !strings.Contains(result.Notices[1], "queued for retry") {
		t.Fatalf("expected recording-failed notice, got %q", result.Notices[1])
	}

	lines, _, state := session.Snapshot()
	if len(lines) != 0 || state != StateIdle {
		t.Fatalf("cart must not re-open on recording failure")
	}
}
