package memory

import (
	"context"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/store"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/xid"
)

type Store struct {
	mu               sync.RWMutex
	servicesByID     map[string]domain.Service
	productsByID     map[string]domain.Product
	transactionsByID map[string]domain.TransactionRecord
	movementsByID    map[string]domain.InventoryMovement
	giftCardsByCode  map[string]domain.GiftCard
	settingsByLoc    map[string]domain.LocationSettings
	auditLogs        []domain.AuditLog
	usersByUsername  map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD, SEED_FRONTDESK_PASSWORD and
// SEED_STYLIST_PASSWORD. If unset, hardcoded dev defaults are used with a
// warning. These credentials are never used in production (the server uses
// PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	frontDeskPwd := envOr("SEED_FRONTDESK_PASSWORD", "frontdesk123")
	stylistPwd := envOr("SEED_STYLIST_PASSWORD", "stylist123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_FRONTDESK_PASSWORD") == "" || os.Getenv("SEED_STYLIST_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD, SEED_FRONTDESK_PASSWORD and SEED_STYLIST_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username    string
		password    string
		role        string
		permissions []string
	}{
		{"admin", adminPwd, "admin", []string{"sales.create", "catalog.manage", "settings.manage", "reports.view"}},
		{"frontdesk", frontDeskPwd, "front_desk", nil},
		{"stylist", stylistPwd, "stylist", nil},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			UserID:      xid.New("user"),
			Username:    u.username,
			Password:    string(hash),
			Role:        u.role,
			Permissions: u.permissions,
			Active:      true,
			CreatedAt:   now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	services := []domain.Service{
		{ID: "svc-haircut-01", Name: "Haircut & Style", Category: "hair", PriceCents: 7500, DurationMinutes: 45, Active: true},
		{ID: "svc-color-01", Name: "Full Color", Category: "hair", PriceCents: 15000, DurationMinutes: 120, Active: true},
		{ID: "svc-highlights-01", Name: "Partial Highlights", Category: "hair", PriceCents: 12000, DurationMinutes: 90, Active: true},
		{ID: "svc-blowout-01", Name: "Blowout", Category: "hair", PriceCents: 4500, DurationMinutes: 30, Active: true},
		{ID: "svc-manicure-01", Name: "Classic Manicure", Category: "nails", PriceCents: 3500, DurationMinutes: 30, Active: true},
		{ID: "svc-pedicure-01", Name: "Spa Pedicure", Category: "nails", PriceCents: 5500, DurationMinutes: 45, Active: true},
		{ID: "svc-facial-01", Name: "Signature Facial", Category: "skin", PriceCents: 9500, DurationMinutes: 60, Active: true},
		{ID: "svc-massage-01", Name: "Deep Tissue Massage", Category: "spa", PriceCents: 11000, DurationMinutes: 60, Active: true},
	}

	products := []domain.Product{
		{ID: "prod-shampoo-01", Name: "Repair Shampoo 250ml", Category: "hair care", PriceCents: 2800, Stock: 24, Active: true},
		{ID: "prod-conditioner-01", Name: "Repair Conditioner 250ml", Category: "hair care", PriceCents: 2900, Stock: 20, Active: true},
		{ID: "prod-serum-01", Name: "Argan Hair Serum", Category: "hair care", PriceCents: 4200, Stock: 12, Active: true},
		{ID: "prod-polish-01", Name: "Gel Polish Ruby", Category: "nail care", PriceCents: 1800, Stock: 30, Active: true},
		{ID: "prod-cream-01", Name: "Hydrating Face Cream", Category: "skin care", PriceCents: 5600, Stock: 15, Active: true},
		{ID: "prod-oil-01", Name: "Relaxing Body Oil", Category: "spa", PriceCents: 3900, Stock: 10, Active: true},
	}

	serviceMap := make(map[string]domain.Service, len(services))
	for _, svc := range services {
		serviceMap[svc.ID] = svc
	}
	productMap := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	now := time.Now().UTC()
	return &Store{
		servicesByID:     serviceMap,
		productsByID:     productMap,
		transactionsByID: map[string]domain.TransactionRecord{},
		movementsByID:    map[string]domain.InventoryMovement{},
		giftCardsByCode: map[string]domain.GiftCard{
			"GC-WELCOME-100": {Code: "GC-WELCOME-100", InitialCents: 10000, BalanceCents: 10000, Active: true, IssuedAt: now},
		},
		settingsByLoc: map[string]domain.LocationSettings{
			"main-location": {LocationID: "main-location", TaxRatePercent: 8, UpdatedAt: now},
		},
		usersByUsername: seedUsers(),
	}
}

// NewEmpty returns a store with no catalog or users, for tests that seed
// their own fixtures.
func NewEmpty() *Store {
	return &Store{
		servicesByID:     map[string]domain.Service{},
		productsByID:     map[string]domain.Product{},
		transactionsByID: map[string]domain.TransactionRecord{},
		movementsByID:    map[string]domain.InventoryMovement{},
		giftCardsByCode:  map[string]domain.GiftCard{},
		settingsByLoc:    map[string]domain.LocationSettings{},
		usersByUsername:  map[string]domain.UserAccount{},
	}
}

// --- Catalog ---

func (s *Store) ListServices(_ context.Context) ([]domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Service, 0, len(s.servicesByID))
	for _, svc := range s.servicesByID {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateService(_ context.Context, svc domain.Service) (*domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if svc.ID == "" {
		return nil, store.ErrInvalidRecord
	}
	if _, exists := s.servicesByID[svc.ID]; exists {
		return nil, store.ErrInvalidRecord
	}
	s.servicesByID[svc.ID] = svc
	return &svc, nil
}

func (s *Store) GetServiceByID(_ context.Context, id string) (*domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.servicesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &svc, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.productsByID))
	for _, p := range s.productsByID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		return nil, store.ErrInvalidRecord
	}
	if _, exists := s.productsByID[product.ID]; exists {
		return nil, store.ErrInvalidRecord
	}
	s.productsByID[product.ID] = product
	return &product, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.productsByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

// --- Transactions ---

func (s *Store) CreateTransaction(_ context.Context, tx domain.TransactionRecord, movements []domain.InventoryMovement) (*domain.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ID == "" {
		return nil, store.ErrInvalidRecord
	}
	if _, exists := s.transactionsByID[tx.ID]; exists {
		return nil, store.ErrInvalidRecord
	}
	for _, m := range movements {
		if m.ID == "" {
			return nil, store.ErrInvalidRecord
		}
	}

	s.transactionsByID[tx.ID] = tx
	for _, m := range movements {
		s.movementsByID[m.ID] = m
	}
	return &tx, nil
}

func (s *Store) GetTransactionByID(_ context.Context, id string) (*domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactionsByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &tx, nil
}

func (s *Store) GetDailyReport(_ context.Context, locationID string, from time.Time, to time.Time) (domain.DailyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := domain.DailyReport{LocationID: locationID}
	byMethod := map[string]*domain.DailyReportByMethod{}
	byType := map[string]*domain.DailyReportByType{}

	for _, tx := range s.transactionsByID {
		if tx.LocationID != locationID || tx.Status != domain.TxStatusCompleted {
			continue
		}
		if tx.CreatedAt.Before(from) || !tx.CreatedAt.Before(to) {
			continue
		}

		final := metadataCents(tx.Metadata, "final_total_cents")
		report.Transactions++
		report.GrossSalesCents += metadataCents(tx.Metadata, "total_cents")
		report.DiscountCents += metadataCents(tx.Metadata, "discount_cents")
		report.TaxCents += metadataCents(tx.Metadata, "tax_cents")
		report.NetSalesCents += final

		m, ok := byMethod[tx.PaymentMethod]
		if !ok {
			m = &domain.DailyReportByMethod{PaymentMethod: tx.PaymentMethod}
			byMethod[tx.PaymentMethod] = m
		}
		m.Transactions++
		m.TotalCents += final

		t, ok := byType[tx.Type]
		if !ok {
			t = &domain.DailyReportByType{Type: tx.Type}
			byType[tx.Type] = t
		}
		t.Transactions++
		t.TotalCents += final
	}

	for _, m := range byMethod {
		report.ByPayment = append(report.ByPayment, *m)
	}
	sort.Slice(report.ByPayment, func(i, j int) bool {
		return report.ByPayment[i].PaymentMethod < report.ByPayment[j].PaymentMethod
	})
	for _, t := range byType {
		report.ByType = append(report.ByType, *t)
	}
	sort.Slice(report.ByType, func(i, j int) bool {
		return report.ByType[i].Type < report.ByType[j].Type
	})
	return report, nil
}

// metadataCents tolerates both int64 (in-process) and float64 (round-tripped
// through JSON) metadata values.
func metadataCents(metadata map[string]any, key string) int64 {
	switch v := metadata[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// --- Inventory movements ---

func (s *Store) ListPendingMovements(_ context.Context, limit int) ([]domain.InventoryMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InventoryMovement, 0, limit)
	for _, m := range s.movementsByID {
		if m.Status == domain.MovementPending {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkMovementDelivered(_ context.Context, movementID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movementsByID[movementID]
	if !ok {
		return store.ErrNotFound
	}
	m.Status = domain.MovementDelivered
	m.DeliveredAt = &at
	s.movementsByID[movementID] = m
	return nil
}

func (s *Store) MarkMovementFailed(_ context.Context, movementID string, attempts int, parked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movementsByID[movementID]
	if !ok {
		return store.ErrNotFound
	}
	m.Attempts = attempts
	if parked {
		m.Status = domain.MovementFailed
	}
	s.movementsByID[movementID] = m
	return nil
}

func (s *Store) DecrementStock(_ context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty < 1 {
		return store.ErrInvalidRecord
	}
	p, ok := s.productsByID[productID]
	if !ok {
		return store.ErrNotFound
	}
	if p.Stock < qty {
		return store.ErrInsufficientStock
	}
	p.Stock -= qty
	s.productsByID[productID] = p
	return nil
}

// --- Gift cards ---

func (s *Store) CreateGiftCard(_ context.Context, card domain.GiftCard) (*domain.GiftCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := strings.ToUpper(card.Code)
	if code == "" {
		return nil, store.ErrInvalidRecord
	}
	if _, exists := s.giftCardsByCode[code]; exists {
		return nil, store.ErrInvalidRecord
	}
	card.Code = code
	s.giftCardsByCode[code] = card
	return &card, nil
}

func (s *Store) GetGiftCard(_ context.Context, code string) (*domain.GiftCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.giftCardsByCode[strings.ToUpper(code)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &card, nil
}

func (s *Store) RedeemGiftCard(_ context.Context, code string, amountCents int64) (*domain.GiftCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.giftCardsByCode[strings.ToUpper(code)]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !card.Active {
		return nil, store.ErrInvalidRecord
	}
	if amountCents < 1 {
		return nil, store.ErrInvalidRecord
	}
	if card.BalanceCents < amountCents {
		return nil, store.ErrInsufficientBalance
	}
	card.BalanceCents -= amountCents
	s.giftCardsByCode[card.Code] = card
	return &card, nil
}

// --- Settings ---

func (s *Store) GetLocationSettings(_ context.Context, locationID string) (*domain.LocationSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.settingsByLoc[locationID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &settings, nil
}

func (s *Store) UpsertLocationSettings(_ context.Context, settings domain.LocationSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if settings.LocationID == "" {
		return store.ErrInvalidRecord
	}
	s.settingsByLoc[settings.LocationID] = settings
	return nil
}

// --- Audit logs ---

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, locationID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AuditLog, 0, limit)
	for _, entry := range s.auditLogs {
		if entry.LocationID != locationID {
			continue
		}
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Users ---

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidRecord
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrInvalidRecord
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	if password == "" {
		return store.ErrInvalidRecord
	}
	u.Password = password
	s.usersByUsername[username] = u
	return nil
}
