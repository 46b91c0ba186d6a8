package cart

import (
	"context"
	"fmt"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
)

// Checkout dispatcher states. The machine is Idle -> AwaitingPayment -> Idle;
// cancel and completion both return to Idle.
const (
	StateIdle            = "idle"
	StateAwaitingPayment = "awaiting_payment"
)

const (
	noticeEmptyCart        = "cart is empty, add items before checkout"
	noticePermissionDenied = "you do not have permission to complete sales"
	noticeNoPayment        = "no payment in progress"
	noticeAlreadyAwaiting  = "checkout already in progress"
	noticeRecordingFailed  = "payment captured but the sale could not be recorded; it has been queued for retry"
)

// RecordFunc persists a completed sale. It returns the transaction id and
// reference id on success.
type RecordFunc func(ctx context.Context, lines []domain.CartLine, pricing domain.PricingResult, req domain.CompletePaymentRequest) (string, string, error)

// BeginCheckout transitions Idle -> AwaitingPayment when the cart is
// non-empty and the operator may create sales. Calling it again while a
// payment is already in progress leaves the state alone. The empty-cart guard
// runs before the permission guard; the rejection notices are mutually
// exclusive. canCreateSale
// is true when the actor holds the sale-creation permission or is the
// front-desk role, which is always allowed.
func (s *Session) BeginCheckout(canCreateSale bool) domain.CheckoutResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return domain.CheckoutResult{SessionID: s.id, State: s.state, Notices: []string{noticeAlreadyAwaiting}}
	}
	if s.cart.Empty() {
		return domain.CheckoutResult{SessionID: s.id, State: s.state, Notices: []string{noticeEmptyCart}}
	}
	if !canCreateSale {
		return domain.CheckoutResult{SessionID: s.id, State: s.state, Notices: []string{noticePermissionDenied}}
	}

	s.state = StateAwaitingPayment
	return domain.CheckoutResult{SessionID: s.id, State: s.state}
}

// CancelCheckout returns to Idle with no side effects.
func (s *Session) CancelCheckout() domain.CheckoutResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateIdle
	return domain.CheckoutResult{SessionID: s.id, State: s.state}
}

// CompletePayment invokes the recorder synchronously and returns to Idle.
// The payment itself already happened externally, so a recorder failure still
// reports payment success to the operator with a secondary recording-failed
// notice; the cart is not re-opened either way.
func (s *Session) CompletePayment(ctx context.Context, taxRatePercent float64, record RecordFunc, req domain.CompletePaymentRequest) domain.CheckoutResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingPayment {
		return domain.CheckoutResult{SessionID: s.id, State: s.state, Notices: []string{noticeNoPayment}}
	}

	lines := s.cart.Lines()
	pricing := Price(lines, taxRatePercent, s.discountInput)

	s.state = StateIdle
	s.cart.Clear()
	s.discountInput = ""

	result := domain.CheckoutResult{
		SessionID:       s.id,
		State:           s.state,
		PaymentStatus:   "successful",
		FinalTotalCents: pricing.FinalTotalCents,
	}

	txID, refID, err := record(ctx, lines, pricing, req)
	if err != nil {
		result.Notices = append(result.Notices, paymentNotice(pricing.FinalTotalCents), noticeRecordingFailed)
		return result
	}

	result.TransactionID = txID
	result.ReferenceID = refID
	result.Notices = append(result.Notices, paymentNotice(pricing.FinalTotalCents))
	return result
}

func paymentNotice(finalTotalCents int64) string {
	return fmt.Sprintf("payment successful, total charged %d.%02d", finalTotalCents/100, finalTotalCents%100)
}
