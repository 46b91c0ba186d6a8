package domain

import "time"

// Item kinds discriminate catalog services from retail products. Cart line
// identity is the (ItemID, Kind) pair.
const (
	KindService = "service"
	KindProduct = "product"
)

type Service struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	Description     string `json:"description,omitempty"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
	Active          bool   `json:"active"`
}

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	Active      bool   `json:"active"`
}

type ServiceCreateRequest struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
}

type ProductCreateRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents"`
	InitialStock int    `json:"initial_stock"`
}

// CartLine is one entry in a checkout cart. Name and UnitPriceCents are
// snapshotted from the catalog at add time and never re-synced.
type CartLine struct {
	ItemID         string `json:"item_id"`
	Kind           string `json:"kind"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

// PricingResult is derived from the cart on every read; it is never stored.
type PricingResult struct {
	SubtotalCents   int64   `json:"subtotal_cents"`
	TaxRatePercent  float64 `json:"tax_rate_percent"`
	TaxCents        int64   `json:"tax_cents"`
	TotalCents      int64   `json:"total_cents"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountCents   int64   `json:"discount_cents"`
	FinalTotalCents int64   `json:"final_total_cents"`
	DiscountError   string  `json:"discount_error,omitempty"`
}

type Actor struct {
	UserID      string
	Username    string
	Role        string
	Permissions []string
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type StaffCreateRequest struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type StaffUser struct {
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	UserID      string
	Username    string
	Password    string
	Role        string
	Permissions []string
	Active      bool
	CreatedAt   time.Time
}

type CartSessionResponse struct {
	SessionID string        `json:"session_id"`
	State     string        `json:"state"`
	Lines     []CartLine    `json:"lines"`
	Pricing   PricingResult `json:"pricing"`
	Notice    string        `json:"notice,omitempty"`
}

type AddItemRequest struct {
	ItemID string `json:"item_id"`
	Kind   string `json:"kind"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type DiscountRequest struct {
	Input string `json:"input"`
}

type CompletePaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
	GiftCardCode  string `json:"gift_card_code,omitempty"`
	GiftCardCents int64  `json:"gift_card_cents,omitempty"`
	ClientID      string `json:"client_id,omitempty"`
	ClientName    string `json:"client_name,omitempty"`
}

type CheckoutResult struct {
	SessionID       string   `json:"session_id"`
	State           string   `json:"state"`
	PaymentStatus   string   `json:"payment_status,omitempty"`
	TransactionID   string   `json:"transaction_id,omitempty"`
	ReferenceID     string   `json:"reference_id,omitempty"`
	FinalTotalCents int64    `json:"final_total_cents,omitempty"`
	Notices         []string `json:"notices,omitempty"`
}

// TransactionItem carries a recorded cart line inside a TransactionRecord.
type TransactionItem struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	Category       string `json:"category"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

// TransactionRecord is constructed once per completed checkout and never
// mutated afterward; ownership passes to the transaction store.
type TransactionRecord struct {
	ID            string            `json:"id"`
	CreatedAt     time.Time         `json:"created_at"`
	ClientID      string            `json:"client_id,omitempty"`
	ClientName    string            `json:"client_name,omitempty"`
	StaffID       string            `json:"staff_id"`
	StaffName     string            `json:"staff_name"`
	Type          string            `json:"type"`
	PaymentMethod string            `json:"payment_method"`
	Status        string            `json:"status"`
	LocationID    string            `json:"location_id"`
	Source        string            `json:"source"`
	ReferenceID   string            `json:"reference_id"`
	Items         []TransactionItem `json:"items"`
	Metadata      map[string]any    `json:"metadata"`
}

const (
	TxTypeServiceSale = "service_sale"
	TxTypeProductSale = "product_sale"

	TxStatusCompleted = "completed"

	TxSourcePOS = "POS"
)

// Closed payment method enum accepted at the API boundary.
const (
	PaymentCash          = "cash"
	PaymentCreditCard    = "credit_card"
	PaymentGiftCard      = "gift_card"
	PaymentMobilePayment = "mobile_payment"
)

// InventoryMovement is a pending stock decrement produced by a recorded sale
// and delivered asynchronously by the outbox worker.
type InventoryMovement struct {
	ID             string     `json:"id"`
	ProductID      string     `json:"product_id"`
	Name           string     `json:"name"`
	QuantityDelta  int        `json:"quantity_delta"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	ClientID       string     `json:"client_id,omitempty"`
	ClientName     string     `json:"client_name,omitempty"`
	StaffID        string     `json:"staff_id"`
	StaffName      string     `json:"staff_name"`
	LocationID     string     `json:"location_id"`
	PaymentMethod  string     `json:"payment_method"`
	ReferenceID    string     `json:"reference_id"`
	Status         string     `json:"status"`
	Attempts       int        `json:"attempts"`
	CreatedAt      time.Time  `json:"created_at"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}

const (
	MovementPending   = "pending"
	MovementDelivered = "delivered"
	MovementFailed    = "failed"
)

type GiftCard struct {
	Code         string    `json:"code"`
	InitialCents int64     `json:"initial_cents"`
	BalanceCents int64     `json:"balance_cents"`
	Active       bool      `json:"active"`
	IssuedAt     time.Time `json:"issued_at"`
}

type GiftCardIssueRequest struct {
	Code         string `json:"code"`
	InitialCents int64  `json:"initial_cents"`
}

// LocationSettings holds per-location POS settings; TaxRatePercent feeds the
// pricing calculator on every read.
type LocationSettings struct {
	LocationID     string    `json:"location_id"`
	TaxRatePercent float64   `json:"tax_rate_percent"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type SettingsUpdateRequest struct {
	TaxRatePercent float64 `json:"tax_rate_percent"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	LocationID    string    `json:"location_id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

type DailyReportByMethod struct {
	PaymentMethod string `json:"payment_method"`
	Transactions  int64  `json:"transactions"`
	TotalCents    int64  `json:"total_cents"`
}

type DailyReportByType struct {
	Type         string `json:"type"`
	Transactions int64  `json:"transactions"`
	TotalCents   int64  `json:"total_cents"`
}

type DailyReport struct {
	LocationID      string                `json:"location_id"`
	Date            string                `json:"date"`
	Transactions    int64                 `json:"transactions"`
	GrossSalesCents int64                 `json:"gross_sales_cents"`
	DiscountCents   int64                 `json:"discount_cents"`
	TaxCents        int64                 `json:"tax_cents"`
	NetSalesCents   int64                 `json:"net_sales_cents"`
	ByPayment       []DailyReportByMethod `json:"by_payment"`
	ByType          []DailyReportByType   `json:"by_type"`
}
