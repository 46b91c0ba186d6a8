package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/store"
)

func TestDecrementStock_Conditional(t *testing.T) {
	s := NewEmpty()
	ctx := context.Background()

	if _, err := s.CreateProduct(ctx, domain.Product{ID: "prod-1", Name: "Serum", Category: "hair care", PriceCents: 4200, Stock: 2, Active: true}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := s.DecrementStock(ctx, "prod-1", 2); err != nil {
		t.Fatalf("decrement to zero must succeed: %v", err)
	}

	err := s.DecrementStock(ctx, "prod-1", 1)
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	p, _ := s.GetProductByID(ctx, "prod-1")
	if p.Stock != 0 {
		t.Fatalf("failed decrement must not change stock, got %d", p.Stock)
	}

	if err := s.DecrementStock(ctx, "no-such-product", 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateTransaction_AtomicWithMovements(t *testing.T) {
	s := NewEmpty()
	ctx := context.Background()

	tx := domain.TransactionRecord{
		ID:          "tx-1",
		CreatedAt:   time.Now().UTC(),
		StaffID:     "user-1",
		StaffName:   "frontdesk",
		Type:        domain.TxTypeProductSale,
		Status:      domain.TxStatusCompleted,
		LocationID:  "main-location",
		Source:      domain.TxSourcePOS,
		ReferenceID: "pos-1",
		Items: []domain.TransactionItem{
			{Name: "Serum", Kind: domain.KindProduct, Quantity: 1, UnitPriceCents: 4200, LineTotalCents: 4200},
		},
		Metadata: map[string]any{"final_total_cents": int64(4200)},
	}
	movements := []domain.InventoryMovement{
		{ID: "mov-1", ProductID: "prod-1", QuantityDelta: -1, ReferenceID: "pos-1", Status: domain.MovementPending, CreatedAt: time.Now().UTC()},
	}

	if _, err := s.CreateTransaction(ctx, tx, movements); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	got, err := s.GetTransactionByID(ctx, "tx-1")
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if got.ReferenceID != "pos-1" || len(got.Items) != 1 {
		t.Fatalf("unexpected transaction: %+v", got)
	}

	pending, _ := s.ListPendingMovements(ctx, 10)
	if len(pending) != 1 || pending[0].ID != "mov-1" {
		t.Fatalf("expected the movement to be stored, got %v", pending)
	}

	// Duplicate id is rejected.
	if _, err := s.CreateTransaction(ctx, tx, nil); !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestMovementLifecycle(t *testing.T) {
	s := NewEmpty()
	ctx := context.Background()

	tx := domain.TransactionRecord{
		ID: "tx-1", CreatedAt: time.Now().UTC(), StaffID: "u", StaffName: "u",
		Type: domain.TxTypeProductSale, Status: domain.TxStatusCompleted,
		LocationID: "main-location", Source: domain.TxSourcePOS, ReferenceID: "pos-1",
		Items:    []domain.TransactionItem{{Name: "Serum", Kind: domain.KindProduct, Quantity: 1}},
		Metadata: map[string]any{},
	}
	movements := []domain.InventoryMovement{
		{ID: "mov-1", ProductID: "prod-1", QuantityDelta: -1, Status: domain.MovementPending, CreatedAt: time.Now().UTC()},
		{ID: "mov-2", ProductID: "prod-2", QuantityDelta: -2, Status: domain.MovementPending, CreatedAt: time.Now().UTC().Add(time.Millisecond)},
	}
	if _, err := s.CreateTransaction(ctx, tx, movements); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := s.MarkMovementDelivered(ctx, "mov-1", time.Now().UTC()); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	if err := s.MarkMovementFailed(ctx, "mov-2", 3, false); err != nil {
		t.Fatalf("mark failed (not parked): %v", err)
	}

	pending, _ := s.ListPendingMovements(ctx, 10)
	if len(pending) != 1 || pending[0].ID != "mov-2" || pending[0].Attempts != 3 {
		t.Fatalf("expected mov-2 still pending with 3 attempts, got %v", pending)
	}

	if err := s.MarkMovementFailed(ctx, "mov-2", 5, true); err != nil {
		t.Fatalf("park movement: %v", err)
	}
	pending, _ = s.ListPendingMovements(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("parked movements must leave the pending queue, got %v", pending)
	}
}

func TestRedeemGiftCard(t *testing.T) {
	s := NewEmpty()
	ctx := context.Background()

	if _, err := s.CreateGiftCard(ctx, domain.GiftCard{Code: "gc-1", InitialCents: 5000, BalanceCents: 5000, Active: true, IssuedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("create gift card: %v", err)
	}

	card, err := s.RedeemGiftCard(ctx, "GC-1", 3000)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if card.BalanceCents != 2000 {
		t.Fatalf("expected balance 2000, got %d", card.BalanceCents)
	}

	if _, err := s.RedeemGiftCard(ctx, "GC-1", 3000); !errors.Is(err, store.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if _, err := s.RedeemGiftCard(ctx, "GC-MISSING", 100); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	// Failed redemption must not change the balance.
	card, _ = s.GetGiftCard(ctx, "gc-1")
	if card.BalanceCents != 2000 {
		t.Fatalf("expected balance unchanged at 2000, got %d", card.BalanceCents)
	}
}

func TestSeededStore(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	services, err := s.ListServices(ctx)
	if err != nil || len(services) == 0 {
		t.Fatalf("expected seeded services, got %d (%v)", len(services), err)
	}
	products, err := s.ListProducts(ctx)
	if err != nil || len(products) == 0 {
		t.Fatalf("expected seeded products, got %d (%v)", len(products), err)
	}

	settings, err := s.GetLocationSettings(ctx, "main-location")
	if err != nil {
		t.Fatalf("expected seeded settings: %v", err)
	}
	if settings.TaxRatePercent <= 0 {
		t.Fatalf("expected a positive seeded tax rate, got %v", settings.TaxRatePercent)
	}

	users, err := s.ListUsers(ctx)
	if err != nil || len(users) != 3 {
		t.Fatalf("expected three seeded users, got %d (%v)", len(users), err)
	}
}

func TestGetDailyReport_FiltersByWindowAndLocation(t *testing.T) {
	s := NewEmpty()
	ctx := context.Background()

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	mk := func(id string, at time.Time, location string, method string, final int64) domain.TransactionRecord {
		return domain.TransactionRecord{
			ID: id, CreatedAt: at, StaffID: "u", StaffName: "u",
			Type: domain.TxTypeServiceSale, PaymentMethod: method,
			Status: domain.TxStatusCompleted, LocationID: location,
			Source: domain.TxSourcePOS, ReferenceID: "ref-" + id,
			Items: []domain.TransactionItem{{Name: "Haircut", Kind: domain.KindService, Quantity: 1}},
			Metadata: map[string]any{
				"total_cents": final, "tax_cents": int64(0), "final_total_cents": final,
			},
		}
	}

	s.CreateTransaction(ctx, mk("tx-1", day.Add(10*time.Hour), "main-location", domain.PaymentCash, 5000), nil)
	s.CreateTransaction(ctx, mk("tx-2", day.Add(12*time.Hour), "main-location", domain.PaymentCreditCard, 7000), nil)
	s.CreateTransaction(ctx, mk("tx-3", day.Add(30*time.Hour), "main-location", domain.PaymentCash, 9000), nil)
	s.CreateTransaction(ctx, mk("tx-4", day.Add(11*time.Hour), "other-location", domain.PaymentCash, 1000), nil)

	report, err := s.GetDailyReport(ctx, "main-location", day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("daily report: %v", err)
	}
	if report.Transactions != 2 {
		t.Fatalf("expected 2 transactions in window, got %d", report.Transactions)
	}
	if report.NetSalesCents != 12000 {
		t.Fatalf("expected net sales 12000, got %d", report.NetSalesCents)
	}
	if len(report.ByPayment) != 2 {
		t.Fatalf("expected two payment buckets, got %v", report.ByPayment)
	}
}
