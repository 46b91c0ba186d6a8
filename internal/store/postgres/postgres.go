package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// --- Catalog ---

func (s *Store) ListServices(ctx context.Context) ([]domain.Service, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, description, price_cents, duration_minutes, active
		FROM services
		WHERE active = true
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]domain.Service, 0, 64)
	for rows.Next() {
		var svc domain.Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Category, &svc.Description, &svc.PriceCents, &svc.DurationMinutes, &svc.Active); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return services, nil
}

func (s *Store) CreateService(ctx context.Context, svc domain.Service) (*domain.Service, error) {
	if svc.ID == "" || svc.Name == "" || svc.Category == "" || svc.PriceCents < 1 {
		return nil, store.ErrInvalidRecord
	}

	svc.Active = true
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO services (id, name, category, description, price_cents, duration_minutes, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now())
	`, svc.ID, svc.Name, svc.Category, svc.Description, svc.PriceCents, svc.DurationMinutes, svc.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	created := svc
	return &created, nil
}

func (s *Store) GetServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	var svc domain.Service
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, description, price_cents, duration_minutes, active
		FROM services
		WHERE id = $1
	`, id).Scan(&svc.ID, &svc.Name, &svc.Category, &svc.Description, &svc.PriceCents, &svc.DurationMinutes, &svc.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, description, price_cents, stock, active
		FROM products
		WHERE active = true
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.PriceCents, &p.Stock, &p.Active); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.Category == "" || product.PriceCents < 1 || product.Stock < 0 {
		return nil, store.ErrInvalidRecord
	}

	product.Active = true
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, description, price_cents, stock, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now())
	`, product.ID, product.Name, product.Category, product.Description, product.PriceCents, product.Stock, product.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, description, price_cents, stock, active
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.PriceCents, &p.Stock, &p.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// --- Transactions ---

func (s *Store) CreateTransaction(ctx context.Context, tx domain.TransactionRecord, movements []domain.InventoryMovement) (*domain.TransactionRecord, error) {
	if tx.ID == "" || tx.ReferenceID == "" || len(tx.Items) == 0 {
		return nil, store.ErrInvalidRecord
	}

	itemsJSON, err := json.Marshal(tx.Items)
	if err != nil {
		return nil, err
	}
	metadataJSON, err := json.Marshal(tx.Metadata)
	if err != nil {
		return nil, err
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO transactions (
			id, created_at, client_id, client_name, staff_id, staff_name,
			type, payment_method, status, location_id, source, reference_id,
			items, metadata
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, tx.ID, tx.CreatedAt, nullable(tx.ClientID), nullable(tx.ClientName), tx.StaffID, tx.StaffName,
		tx.Type, tx.PaymentMethod, tx.Status, tx.LocationID, tx.Source, tx.ReferenceID,
		itemsJSON, metadataJSON)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	for _, m := range movements {
		_, err = pgTx.ExecContext(ctx, `
			INSERT INTO inventory_movements (
				id, product_id, name, quantity_delta, unit_price_cents,
				client_id, client_name, staff_id, staff_name, location_id,
				payment_method, reference_id, status, attempts, created_at
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		`, m.ID, m.ProductID, m.Name, m.QuantityDelta, m.UnitPriceCents,
			nullable(m.ClientID), nullable(m.ClientName), m.StaffID, m.StaffName, m.LocationID,
			m.PaymentMethod, m.ReferenceID, m.Status, m.Attempts, m.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, store.ErrInvalidRecord
			}
			return nil, err
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	created := tx
	return &created, nil
}

func (s *Store) GetTransactionByID(ctx context.Context, id string) (*domain.TransactionRecord, error) {
	var (
		tx          domain.TransactionRecord
		clientID    sql.NullString
		clientName  sql.NullString
		itemsRaw    []byte
		metadataRaw []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, client_id, client_name, staff_id, staff_name,
		       type, payment_method, status, location_id, source, reference_id,
		       items, metadata
		FROM transactions
		WHERE id = $1
	`, id).Scan(&tx.ID, &tx.CreatedAt, &clientID, &clientName, &tx.StaffID, &tx.StaffName,
		&tx.Type, &tx.PaymentMethod, &tx.Status, &tx.LocationID, &tx.Source, &tx.ReferenceID,
		&itemsRaw, &metadataRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	tx.ClientID = clientID.String
	tx.ClientName = clientName.String
	if err := json.Unmarshal(itemsRaw, &tx.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metadataRaw, &tx.Metadata); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *Store) GetDailyReport(ctx context.Context, locationID string, from time.Time, to time.Time) (domain.DailyReport, error) {
	report := domain.DailyReport{LocationID: locationID}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM((metadata->>'total_cents')::bigint), 0),
		       COALESCE(SUM(COALESCE((metadata->>'discount_cents')::bigint, 0)), 0),
		       COALESCE(SUM((metadata->>'tax_cents')::bigint), 0),
		       COALESCE(SUM((metadata->>'final_total_cents')::bigint), 0)
		FROM transactions
		WHERE location_id = $1 AND status = $2 AND created_at >= $3 AND created_at < $4
	`, locationID, domain.TxStatusCompleted, from, to).Scan(
		&report.Transactions, &report.GrossSalesCents, &report.DiscountCents, &report.TaxCents, &report.NetSalesCents)
	if err != nil {
		return domain.DailyReport{}, err
	}

	methodRows, err := s.db.QueryContext(ctx, `
		SELECT payment_method, COUNT(*), COALESCE(SUM((metadata->>'final_total_cents')::bigint), 0)
		FROM transactions
		WHERE location_id = $1 AND status = $2 AND created_at >= $3 AND created_at < $4
		GROUP BY payment_method
		ORDER BY payment_method
	`, locationID, domain.TxStatusCompleted, from, to)
	if err != nil {
		return domain.DailyReport{}, err
	}
	defer methodRows.Close()
	for methodRows.Next() {
		var m domain.DailyReportByMethod
		if err := methodRows.Scan(&m.PaymentMethod, &m.Transactions, &m.TotalCents); err != nil {
			return domain.DailyReport{}, err
		}
		report.ByPayment = append(report.ByPayment, m)
	}
	if err := methodRows.Err(); err != nil {
		return domain.DailyReport{}, err
	}

	typeRows, err := s.db.QueryContext(ctx, `
		SELECT type, COUNT(*), COALESCE(SUM((metadata->>'final_total_cents')::bigint), 0)
		FROM transactions
		WHERE location_id = $1 AND status = $2 AND created_at >= $3 AND created_at < $4
		GROUP BY type
		ORDER BY type
	`, locationID, domain.TxStatusCompleted, from, to)
	if err != nil {
		return domain.DailyReport{}, err
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var t domain.DailyReportByType
		if err := typeRows.Scan(&t.Type, &t.Transactions, &t.TotalCents); err != nil {
			return domain.DailyReport{}, err
		}
		report.ByType = append(report.ByType, t)
	}
	if err := typeRows.Err(); err != nil {
		return domain.DailyReport{}, err
	}

	return report, nil
}

// --- Inventory movements ---

func (s *Store) ListPendingMovements(ctx context.Context, limit int) ([]domain.InventoryMovement, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, name, quantity_delta, unit_price_cents,
		       client_id, client_name, staff_id, staff_name, location_id,
		       payment_method, reference_id, status, attempts, created_at
		FROM inventory_movements
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`, domain.MovementPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := make([]domain.InventoryMovement, 0, limit)
	for rows.Next() {
		var (
			m          domain.InventoryMovement
			clientID   sql.NullString
			clientName sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Name, &m.QuantityDelta, &m.UnitPriceCents,
			&clientID, &clientName, &m.StaffID, &m.StaffName, &m.LocationID,
			&m.PaymentMethod, &m.ReferenceID, &m.Status, &m.Attempts, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.ClientID = clientID.String
		m.ClientName = clientName.String
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return movements, nil
}

func (s *Store) MarkMovementDelivered(ctx context.Context, movementID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE inventory_movements
		SET status = $1, delivered_at = $2
		WHERE id = $3
	`, domain.MovementDelivered, at, movementID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) MarkMovementFailed(ctx context.Context, movementID string, attempts int, parked bool) error {
	status := domain.MovementPending
	if parked {
		status = domain.MovementFailed
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE inventory_movements
		SET status = $1, attempts = $2
		WHERE id = $3
	`, status, attempts, movementID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DecrementStock applies the decrement only when enough stock remains; zero
// rows affected distinguishes a missing product from an insufficient balance.
func (s *Store) DecrementStock(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		return store.ErrInvalidRecord
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $1, updated_at = now()
		WHERE id = $2 AND stock >= $1
	`, qty, productID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrInsufficientStock
	}
	return nil
}

// --- Gift cards ---

func (s *Store) CreateGiftCard(ctx context.Context, card domain.GiftCard) (*domain.GiftCard, error) {
	card.Code = strings.ToUpper(card.Code)
	if card.Code == "" || card.InitialCents < 1 {
		return nil, store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gift_cards (code, initial_cents, balance_cents, active, issued_at)
		VALUES ($1,$2,$3,$4,$5)
	`, card.Code, card.InitialCents, card.BalanceCents, card.Active, card.IssuedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	created := card
	return &created, nil
}

func (s *Store) GetGiftCard(ctx context.Context, code string) (*domain.GiftCard, error) {
	var card domain.GiftCard
	err := s.db.QueryRowContext(ctx, `
		SELECT code, initial_cents, balance_cents, active, issued_at
		FROM gift_cards
		WHERE code = $1
	`, strings.ToUpper(code)).Scan(&card.Code, &card.InitialCents, &card.BalanceCents, &card.Active, &card.IssuedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

func (s *Store) RedeemGiftCard(ctx context.Context, code string, amountCents int64) (*domain.GiftCard, error) {
	if amountCents < 1 {
		return nil, store.ErrInvalidRecord
	}

	var card domain.GiftCard
	err := s.db.QueryRowContext(ctx, `
		UPDATE gift_cards
		SET balance_cents = balance_cents - $1
		WHERE code = $2 AND active = true AND balance_cents >= $1
		RETURNING code, initial_cents, balance_cents, active, issued_at
	`, amountCents, strings.ToUpper(code)).Scan(&card.Code, &card.InitialCents, &card.BalanceCents, &card.Active, &card.IssuedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM gift_cards WHERE code = $1 AND active = true)`, strings.ToUpper(code)).Scan(&exists); err != nil {
				return nil, err
			}
			if !exists {
				return nil, store.ErrNotFound
			}
			return nil, store.ErrInsufficientBalance
		}
		return nil, err
	}
	return &card, nil
}

// --- Settings ---

func (s *Store) GetLocationSettings(ctx context.Context, locationID string) (*domain.LocationSettings, error) {
	var settings domain.LocationSettings
	err := s.db.QueryRowContext(ctx, `
		SELECT location_id, tax_rate_percent, updated_at
		FROM location_settings
		WHERE location_id = $1
	`, locationID).Scan(&settings.LocationID, &settings.TaxRatePercent, &settings.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}

func (s *Store) UpsertLocationSettings(ctx context.Context, settings domain.LocationSettings) error {
	if settings.LocationID == "" {
		return store.ErrInvalidRecord
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO location_settings (location_id, tax_rate_percent, updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (location_id)
		DO UPDATE SET tax_rate_percent = EXCLUDED.tax_rate_percent, updated_at = EXCLUDED.updated_at
	`, settings.LocationID, settings.TaxRatePercent, settings.UpdatedAt)
	return err
}

// --- Audit logs ---

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, location_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, entry.LocationID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, locationID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, location_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE location_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
		LIMIT $4
	`, locationID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.LocationID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// --- Users ---

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidRecord
	}
	permissionsJSON, err := json.Marshal(user.Permissions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, username, password_hash, role, permissions, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, user.UserID, user.Username, user.Password, user.Role, permissionsJSON, user.Active, user.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return store.ErrInvalidRecord
	}
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, username, password_hash, role, permissions, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var (
			u              domain.UserAccount
			permissionsRaw []byte
		)
		if err := rows.Scan(&u.UserID, &u.Username, &u.Password, &u.Role, &permissionsRaw, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		if len(permissionsRaw) > 0 {
			if err := json.Unmarshal(permissionsRaw, &u.Permissions); err != nil {
				return nil, err
			}
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	if username == "" || password == "" {
		return store.ErrInvalidRecord
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $1
		WHERE username = $2
	`, password, username)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- Helpers ---

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
