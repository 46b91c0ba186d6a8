package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/cache"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/cart"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/catalog"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/store"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// PermCreateSale gates the checkout dispatcher. The front_desk role bypasses
// the permission check entirely, a deliberate override for operational
// continuity.
const PermCreateSale = "sales.create"

const settingsCacheKeyPrefix = "settings:"

type pendingRecord struct {
	tx        domain.TransactionRecord
	movements []domain.InventoryMovement
}

type Service struct {
	repo              store.Repository
	settingsCache     cache.SettingsCache
	sessions          *cart.Registry
	defaultLocationID string
	settingsTTL       time.Duration

	retryMu      sync.Mutex
	retryRecords []pendingRecord
}

func New(repo store.Repository, settingsCache cache.SettingsCache, defaultLocationID string, settingsTTL time.Duration) *Service {
	if defaultLocationID == "" {
		defaultLocationID = "main-location"
	}
	if settingsTTL <= 0 {
		settingsTTL = 30 * time.Second
	}

	return &Service{
		repo:              repo,
		settingsCache:     settingsCache,
		sessions:          cart.NewRegistry(),
		defaultLocationID: defaultLocationID,
		settingsTTL:       settingsTTL,
	}
}

// --- Catalog ---

func (s *Service) ListServices(ctx context.Context) ([]domain.Service, error) {
	return s.repo.ListServices(ctx)
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) CreateService(ctx context.Context, req domain.ServiceCreateRequest) (domain.Service, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Service{}, fmt.Errorf("admin role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" || req.Category == "" || req.PriceCents < 1 {
		return domain.Service{}, store.ErrInvalidRecord
	}

	created, err := s.repo.CreateService(ctx, domain.Service{
		ID:              xid.New("svc"),
		Name:            req.Name,
		Category:        req.Category,
		Description:     strings.TrimSpace(req.Description),
		PriceCents:      req.PriceCents,
		DurationMinutes: req.DurationMinutes,
		Active:          true,
	})
	if err != nil {
		return domain.Service{}, err
	}

	s.logAudit(ctx, "service_create", "service", created.ID, fmt.Sprintf("name=%s,price=%d", created.Name, created.PriceCents))
	return *created, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" || req.Category == "" || req.PriceCents < 1 || req.InitialStock < 0 {
		return domain.Product{}, store.ErrInvalidRecord
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		ID:          xid.New("prod"),
		Name:        req.Name,
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
		PriceCents:  req.PriceCents,
		Stock:       req.InitialStock,
		Active:      true,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", created.ID, fmt.Sprintf("name=%s,price=%d,stock=%d", created.Name, created.PriceCents, created.Stock))
	return *created, nil
}

// FilterCatalog projects the active tab through the catalog filter. Safe to
// call on every keystroke; the filter itself is pure.
func (s *Service) FilterCatalog(ctx context.Context, activeTab string, searchTerm string, activeCategory string) ([]catalog.Item, error) {
	services, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(activeTab, searchTerm, activeCategory, services, products), nil
}

// --- Settings ---

// TaxRatePercent resolves the location tax rate through the settings cache,
// falling back to the repository and finally to zero when no settings row
// exists yet.
func (s *Service) TaxRatePercent(ctx context.Context) float64 {
	key := settingsCacheKeyPrefix + s.defaultLocationID
	if cached, found, err := s.settingsCache.Get(ctx, key); err == nil && found {
		return cached.TaxRatePercent
	}

	settings, err := s.repo.GetLocationSettings(ctx, s.defaultLocationID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[service] WARN: failed to load settings for %s: %v", s.defaultLocationID, err)
		}
		return 0
	}
	if err := s.settingsCache.Set(ctx, key, settings, s.settingsTTL); err != nil {
		log.Printf("[service] WARN: failed to cache settings for %s: %v", s.defaultLocationID, err)
	}
	return settings.TaxRatePercent
}

func (s *Service) GetSettings(ctx context.Context) (domain.LocationSettings, error) {
	settings, err := s.repo.GetLocationSettings(ctx, s.defaultLocationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LocationSettings{LocationID: s.defaultLocationID}, nil
		}
		return domain.LocationSettings{}, err
	}
	return *settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, req domain.SettingsUpdateRequest) (domain.LocationSettings, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.LocationSettings{}, fmt.Errorf("admin role required")
	}
	if req.TaxRatePercent < 0 || req.TaxRatePercent > 100 {
		return domain.LocationSettings{}, store.ErrInvalidRecord
	}

	settings := domain.LocationSettings{
		LocationID:     s.defaultLocationID,
		TaxRatePercent: req.TaxRatePercent,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.repo.UpsertLocationSettings(ctx, settings); err != nil {
		return domain.LocationSettings{}, err
	}
	if err := s.settingsCache.Invalidate(ctx, settingsCacheKeyPrefix+s.defaultLocationID); err != nil {
		log.Printf("[service] WARN: failed to invalidate settings cache: %v", err)
	}

	s.logAudit(ctx, "settings_update", "settings", s.defaultLocationID, fmt.Sprintf("tax_rate=%.2f", req.TaxRatePercent))
	return settings, nil
}

// --- Cart sessions ---

func (s *Service) CreateCartSession(ctx context.Context) domain.CartSessionResponse {
	session := s.sessions.Create()
	return s.sessionView(ctx, session, "")
}

func (s *Service) GetCartSession(ctx context.Context, sessionID string) (domain.CartSessionResponse, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.CartSessionResponse{}, store.ErrNotFound
	}
	return s.sessionView(ctx, session, ""), nil
}

// AddCartItem snapshots the catalog item's name and price into the cart line
// at this instant; later catalog price changes do not affect the line.
func (s *Service) AddCartItem(ctx context.Context, sessionID string, req domain.AddItemRequest) (domain.CartSessionResponse, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.CartSessionResponse{}, store.ErrNotFound
	}

	line, err := s.resolveCatalogItem(ctx, req.ItemID, req.Kind)
	if err != nil {
		return domain.CartSessionResponse{}, err
	}

	notice := session.AddItem(line)
	return s.sessionView(ctx, session, notice), nil
}

func (s *Service) RemoveCartItem(ctx context.Context, sessionID string, index int) (domain.CartSessionResponse, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.CartSessionResponse{}, store.ErrNotFound
	}
	session.RemoveItem(index)
	return s.sessionView(ctx, session, ""), nil
}

func (s *Service) UpdateCartQuantity(ctx context.Context, sessionID string, index int, quantity int) (domain.CartSessionResponse, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.CartSessionResponse{}, store.ErrNotFound
	}
	session.UpdateQuantity(index, quantity)
	return s.sessionView(ctx, session, ""), nil
}

func (s *Service) ClearCart(ctx context.Context, sessionID string) (domain.CartSessionResponse, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.CartSessionResponse{}, store.ErrNotFound
	}
	session.Clear()
	return s.sessionView(ctx, session, ""), nil
}

// SetCartDiscount stores the raw discount input. Invalid input surfaces a
// validation message in the returned pricing but never blocks cart edits.
func (s *Service) SetCartDiscount(ctx context.Context, sessionID string, req domain.DiscountRequest) (domain.CartSessionResponse, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.CartSessionResponse{}, store.ErrNotFound
	}
	session.SetDiscountInput(req.Input)
	return s.sessionView(ctx, session, ""), nil
}

func (s *Service) resolveCatalogItem(ctx context.Context, itemID string, kind string) (domain.CartLine, error) {
	switch kind {
	case domain.KindService:
		svc, err := s.repo.GetServiceByID(ctx, itemID)
		if err != nil {
			return domain.CartLine{}, err
		}
		if !svc.Active {
			return domain.CartLine{}, store.ErrInvalidRecord
		}
		return domain.CartLine{
			ItemID:         svc.ID,
			Kind:           domain.KindService,
			Name:           svc.Name,
			Category:       svc.Category,
			UnitPriceCents: svc.PriceCents,
		}, nil
	case domain.KindProduct:
		product, err := s.repo.GetProductByID(ctx, itemID)
		if err != nil {
			return domain.CartLine{}, err
		}
		if !product.Active {
			return domain.CartLine{}, store.ErrInvalidRecord
		}
		return domain.CartLine{
			ItemID:         product.ID,
			Kind:           domain.KindProduct,
			Name:           product.Name,
			Category:       product.Category,
			UnitPriceCents: product.PriceCents,
		}, nil
	default:
		return domain.CartLine{}, store.ErrInvalidRecord
	}
}

func (s *Service) sessionView(ctx context.Context, session *cart.Session, notice string) domain.CartSessionResponse {
	lines, discountInput, state := session.Snapshot()
	return domain.CartSessionResponse{
		SessionID: session.ID(),
		State:     state,
		Lines:     lines,
		Pricing:   cart.Price(lines, s.TaxRatePercent(ctx), discountInput),
		Notice:    notice,
	}
}

// --- Checkout ---

func canCreateSale(actor domain.Actor) bool {
	if actor.Role == "front_desk" {
		return true
	}
	for _, perm := range actor.Permissions {
		if perm == PermCreateSale {
			return true
		}
	}
	return false
}

func (s *Service) BeginCheckout(ctx context.Context, sessionID string) (domain.CheckoutResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.CheckoutResult{}, store.ErrNotFound
	}

	actor, _ := ActorFromContext(ctx)
	return session.BeginCheckout(canCreateSale(actor)), nil
}

func (s *Service) CancelCheckout(ctx context.Context, sessionID string) (domain.CheckoutResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.CheckoutResult{}, store.ErrNotFound
	}
	return session.CancelCheckout(), nil
}

// CompletePayment validates the payment method against the closed enum and
// the gift card against its stored balance, then hands the session to the
// dispatcher, which invokes the recorder. Free-text method names are not
// accepted here; legacy imports go through ClassifyPaymentMethod instead.
func (s *Service) CompletePayment(ctx context.Context, sessionID string, req domain.CompletePaymentRequest) (domain.CheckoutResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.CheckoutResult{}, store.ErrNotFound
	}
	if !isSupportedPaymentMethod(req.PaymentMethod) {
		return domain.CheckoutResult{}, fmt.Errorf("%w: unsupported payment method %q", store.ErrInvalidRecord, req.PaymentMethod)
	}
	if req.GiftCardCents < 0 {
		return domain.CheckoutResult{}, store.ErrInvalidRecord
	}

	taxRate := s.TaxRatePercent(ctx)
	if err := s.validateGiftCard(ctx, session, taxRate, req); err != nil {
		return domain.CheckoutResult{}, err
	}

	return session.CompletePayment(ctx, taxRate, s.recordTransaction, req), nil
}

// validateGiftCard rejects an unknown, inactive, or underfunded gift card
// before the dispatcher clears the session. The recorder's atomic redemption
// still guards against a concurrent drain of the same card; this check keeps
// the ordinary failure a pre-payment validation error instead of a lost sale.
func (s *Service) validateGiftCard(ctx context.Context, session *cart.Session, taxRatePercent float64, req domain.CompletePaymentRequest) error {
	if req.GiftCardCode == "" || req.GiftCardCents == 0 {
		return nil
	}

	lines, discountInput, state := session.Snapshot()
	if state != cart.StateAwaitingPayment {
		return nil
	}

	card, err := s.repo.GetGiftCard(ctx, strings.TrimSpace(req.GiftCardCode))
	if err != nil {
		return fmt.Errorf("gift card %q: %w", req.GiftCardCode, err)
	}
	if !card.Active {
		return fmt.Errorf("%w: gift card %s is not active", store.ErrInvalidRecord, card.Code)
	}

	pricing := cart.Price(lines, taxRatePercent, discountInput)
	redeemCents := req.GiftCardCents
	if redeemCents > pricing.FinalTotalCents {
		redeemCents = pricing.FinalTotalCents
	}
	if card.BalanceCents < redeemCents {
		return fmt.Errorf("gift card %s: %w", card.Code, store.ErrInsufficientBalance)
	}
	return nil
}

// recordTransaction builds the transaction record and persists it together
// with one pending inventory movement per product line. A persistence failure
// queues the record for retry by the outbox worker; the dispatcher surfaces
// the secondary notice to the operator.
func (s *Service) recordTransaction(ctx context.Context, lines []domain.CartLine, pricing domain.PricingResult, req domain.CompletePaymentRequest) (string, string, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{UserID: "system", Username: "system", Role: "system"}
	}

	referenceID := xid.New("pos")
	now := time.Now().UTC()

	metadata := map[string]any{
		"subtotal_cents":    pricing.SubtotalCents,
		"tax_rate_percent":  pricing.TaxRatePercent,
		"tax_cents":         pricing.TaxCents,
		"total_cents":       pricing.TotalCents,
		"final_total_cents": pricing.FinalTotalCents,
	}
	if pricing.DiscountCents > 0 {
		metadata["discount_percent"] = pricing.DiscountPercent
		metadata["discount_cents"] = pricing.DiscountCents
	}

	// Gift card applies after the discount: the card funds part of the
	// already-discounted final total, any shortfall stays on the primary
	// payment method.
	if req.GiftCardCode != "" && req.GiftCardCents > 0 {
		redeemCents := req.GiftCardCents
		if redeemCents > pricing.FinalTotalCents {
			redeemCents = pricing.FinalTotalCents
		}
		card, err := s.repo.RedeemGiftCard(ctx, strings.TrimSpace(req.GiftCardCode), redeemCents)
		if err != nil {
			return "", "", fmt.Errorf("gift card redemption: %w", err)
		}
		metadata["gift_card_code"] = card.Code
		metadata["gift_card_cents"] = redeemCents
		metadata["gift_card_balance_cents"] = card.BalanceCents
	}

	itemCount, serviceCount, productCount := 0, 0, 0
	items := make([]domain.TransactionItem, 0, len(lines))
	movements := make([]domain.InventoryMovement, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.TransactionItem{
			Name:           line.Name,
			Kind:           line.Kind,
			Category:       line.Category,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			LineTotalCents: line.UnitPriceCents * int64(line.Quantity),
		})
		itemCount += line.Quantity
		switch line.Kind {
		case domain.KindService:
			serviceCount++
		case domain.KindProduct:
			productCount++
			movements = append(movements, domain.InventoryMovement{
				ID:             xid.New("mov"),
				ProductID:      line.ItemID,
				Name:           line.Name,
				QuantityDelta:  -line.Quantity,
				UnitPriceCents: line.UnitPriceCents,
				ClientID:       req.ClientID,
				ClientName:     req.ClientName,
				StaffID:        actor.UserID,
				StaffName:      actor.Username,
				LocationID:     s.defaultLocationID,
				PaymentMethod:  req.PaymentMethod,
				ReferenceID:    referenceID,
				Status:         domain.MovementPending,
				CreatedAt:      now,
			})
		}
	}
	metadata["item_count"] = itemCount
	metadata["service_count"] = serviceCount
	metadata["product_count"] = productCount

	txType := domain.TxTypeProductSale
	if serviceCount > 0 {
		txType = domain.TxTypeServiceSale
	}

	tx := domain.TransactionRecord{
		ID:            xid.New("tx"),
		CreatedAt:     now,
		ClientID:      req.ClientID,
		ClientName:    req.ClientName,
		StaffID:       actor.UserID,
		StaffName:     actor.Username,
		Type:          txType,
		PaymentMethod: req.PaymentMethod,
		Status:        domain.TxStatusCompleted,
		LocationID:    s.defaultLocationID,
		Source:        domain.TxSourcePOS,
		ReferenceID:   referenceID,
		Items:         items,
		Metadata:      metadata,
	}

	created, err := s.repo.CreateTransaction(ctx, tx, movements)
	if err != nil {
		log.Printf("[service] WARN: failed to record transaction ref=%s: %v (queued for retry)", referenceID, err)
		s.queueRetry(tx, movements)
		return "", "", err
	}

	s.logAudit(ctx, "checkout", "transaction", created.ID, fmt.Sprintf(
		"total=%d,payment=%s,discount=%d,items=%d",
		pricing.FinalTotalCents, req.PaymentMethod, pricing.DiscountCents, itemCount,
	))

	return created.ID, referenceID, nil
}

func (s *Service) queueRetry(tx domain.TransactionRecord, movements []domain.InventoryMovement) {
	s.retryMu.Lock()
	s.retryRecords = append(s.retryRecords, pendingRecord{tx: tx, movements: movements})
	s.retryMu.Unlock()
}

// RetryPendingRecords re-attempts persistence of transaction records whose
// initial write failed. Called from the outbox worker tick so a recorder
// failure degrades to at-least-once delivery instead of a dropped sale.
func (s *Service) RetryPendingRecords(ctx context.Context) int {
	s.retryMu.Lock()
	queued := s.retryRecords
	s.retryRecords = nil
	s.retryMu.Unlock()

	recovered := 0
	for _, record := range queued {
		if _, err := s.repo.CreateTransaction(ctx, record.tx, record.movements); err != nil {
			log.Printf("[service] WARN: retry failed for transaction ref=%s: %v", record.tx.ReferenceID, err)
			s.queueRetry(record.tx, record.movements)
			continue
		}
		recovered++
		log.Printf("[service] recovered queued transaction ref=%s", record.tx.ReferenceID)
	}
	return recovered
}

// --- Gift cards ---

func (s *Service) IssueGiftCard(ctx context.Context, req domain.GiftCardIssueRequest) (domain.GiftCard, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.GiftCard{}, fmt.Errorf("admin role required")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		code = strings.ToUpper(xid.New("gc"))
	}
	if req.InitialCents < 1 {
		return domain.GiftCard{}, store.ErrInvalidRecord
	}

	card, err := s.repo.CreateGiftCard(ctx, domain.GiftCard{
		Code:         code,
		InitialCents: req.InitialCents,
		BalanceCents: req.InitialCents,
		Active:       true,
		IssuedAt:     time.Now().UTC(),
	})
	if err != nil {
		return domain.GiftCard{}, err
	}

	s.logAudit(ctx, "gift_card_issue", "gift_card", card.Code, fmt.Sprintf("initial=%d", card.InitialCents))
	return *card, nil
}

func (s *Service) GetGiftCard(ctx context.Context, code string) (domain.GiftCard, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.GiftCard{}, store.ErrInvalidRecord
	}
	card, err := s.repo.GetGiftCard(ctx, code)
	if err != nil {
		return domain.GiftCard{}, err
	}
	return *card, nil
}

// --- Reporting ---

func (s *Service) GetTransaction(ctx context.Context, id string) (domain.TransactionRecord, error) {
	if strings.TrimSpace(id) == "" {
		return domain.TransactionRecord{}, store.ErrInvalidRecord
	}
	tx, err := s.repo.GetTransactionByID(ctx, id)
	if err != nil {
		return domain.TransactionRecord{}, err
	}
	return *tx, nil
}

func (s *Service) DailyReport(ctx context.Context, date string) (domain.DailyReport, error) {
	var day time.Time
	if strings.TrimSpace(date) == "" {
		now := time.Now().UTC()
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return domain.DailyReport{}, store.ErrInvalidRecord
		}
		day = parsed.UTC()
	}
	from := day
	to := from.Add(24 * time.Hour)

	report, err := s.repo.GetDailyReport(ctx, s.defaultLocationID, from, to)
	if err != nil {
		return domain.DailyReport{}, err
	}
	report.LocationID = s.defaultLocationID
	report.Date = from.Format("2006-01-02")
	return report, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = time.Now().UTC().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, store.ErrInvalidRecord
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, s.defaultLocationID, from, to, limit)
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		LocationID:    s.defaultLocationID,
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}

// --- Payment method handling ---

func isSupportedPaymentMethod(method string) bool {
	switch method {
	case domain.PaymentCash, domain.PaymentCreditCard, domain.PaymentGiftCard, domain.PaymentMobilePayment:
		return true
	default:
		return false
	}
}

// ClassifyPaymentMethod maps free-text method names arriving from legacy
// receipts or imports onto the closed enum by case-insensitive substring
// match, defaulting to cash. Note the fallback also swallows inputs like
// "Cashapp" that match no keyword; the POS boundary itself only accepts the
// closed enum, so this heuristic never sees operator input.
func ClassifyPaymentMethod(raw string) string {
	lowered := strings.ToLower(raw)
	switch {
	case strings.Contains(lowered, "credit"):
		return domain.PaymentCreditCard
	case strings.Contains(lowered, "gift"):
		return domain.PaymentGiftCard
	case strings.Contains(lowered, "mobile"):
		return domain.PaymentMobilePayment
	default:
		return domain.PaymentCash
	}
}
