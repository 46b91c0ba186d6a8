package store

import (
	"context"
	"errors"
	"time"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidRecord       = errors.New("invalid record")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInsufficientBalance = errors.New("insufficient gift card balance")
)

// Repository is the persistence boundary: catalog providers, the transaction
// store, the inventory movement outbox, gift cards, settings, audit, users.
type Repository interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	CreateService(ctx context.Context, svc domain.Service) (*domain.Service, error)
	GetServiceByID(ctx context.Context, id string) (*domain.Service, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)

	// CreateTransaction persists a transaction record together with its
	// pending inventory movements in one atomic operation.
	CreateTransaction(ctx context.Context, tx domain.TransactionRecord, movements []domain.InventoryMovement) (*domain.TransactionRecord, error)
	GetTransactionByID(ctx context.Context, id string) (*domain.TransactionRecord, error)
	GetDailyReport(ctx context.Context, locationID string, from time.Time, to time.Time) (domain.DailyReport, error)

	ListPendingMovements(ctx context.Context, limit int) ([]domain.InventoryMovement, error)
	MarkMovementDelivered(ctx context.Context, movementID string, at time.Time) error
	MarkMovementFailed(ctx context.Context, movementID string, attempts int, parked bool) error
	// DecrementStock applies an atomic conditional decrement and returns
	// ErrInsufficientStock when the update would drive stock below zero.
	DecrementStock(ctx context.Context, productID string, qty int) error

	CreateGiftCard(ctx context.Context, card domain.GiftCard) (*domain.GiftCard, error)
	GetGiftCard(ctx context.Context, code string) (*domain.GiftCard, error)
	// RedeemGiftCard atomically deducts amountCents and returns the updated
	// card, or ErrInsufficientBalance when the balance does not cover it.
	RedeemGiftCard(ctx context.Context, code string, amountCents int64) (*domain.GiftCard, error)

	GetLocationSettings(ctx context.Context, locationID string) (*domain.LocationSettings, error)
	UpsertLocationSettings(ctx context.Context, settings domain.LocationSettings) error

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, locationID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
