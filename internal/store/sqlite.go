package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/omnichat/orchestrator/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Enable foreign keys. The pragma is per-connection, so file DSNs must
	// also carry _foreign_keys=1 for connections the pool opens later.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT,
			channel TEXT NOT NULL DEFAULT 'web',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_activity DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			expires_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			session_id TEXT PRIMARY KEY,
			user_id TEXT,
			channel TEXT NOT NULL DEFAULT 'web',
			context TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_activity DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			intent TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES conversations(session_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			items TEXT NOT NULL,
			subtotal REAL NOT NULL,
			discount REAL NOT NULL DEFAULT 0,
			final_total REAL NOT NULL,
			payment_method TEXT NOT NULL DEFAULT 'UPI',
			payment_status TEXT NOT NULL DEFAULT 'pending',
			transaction_id TEXT,
			fulfillment_type TEXT NOT NULL DEFAULT 'pickup',
			fulfillment_location TEXT,
			fulfillment_status TEXT NOT NULL DEFAULT 'pending',
			estimated_delivery DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(user_id, payment_status, created_at)`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			loyalty_tier TEXT NOT NULL DEFAULT 'Bronze',
			loyalty_points INTEGER NOT NULL DEFAULT 0,
			preferred_store_location TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			sku TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			category TEXT,
			price REAL NOT NULL,
			final_price REAL NOT NULL,
			tags TEXT,
			in_stock INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
		`CREATE TABLE IF NOT EXISTS inventory (
			sku TEXT NOT NULL,
			location TEXT NOT NULL,
			available_stock INTEGER NOT NULL DEFAULT 0,
			reserved_stock INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (sku, location)
		)`,
		`CREATE TABLE IF NOT EXISTS promotions (
			promotion_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			discount_percent REAL NOT NULL DEFAULT 0,
			applicable_tiers TEXT NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			active INTEGER NOT NULL DEFAULT 1
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, channel, created_at, last_activity, expires_at) VALUES (?, ?, ?, ?, ?, ?)`,
		session.SessionID, nullString(session.UserID), session.Channel, session.CreatedAt, session.LastActivity, session.ExpiresAt)
	return err
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	var userID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, channel, created_at, last_activity, expires_at FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.SessionID, &userID, &session.Channel, &session.CreatedAt, &session.LastActivity, &session.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		session.UserID = userID.String
	}
	return &session, nil
}

// UpdateSession overwrites the mutable fields of a session row.
func (s *SQLiteStore) UpdateSession(ctx context.Context, session *domain.Session) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET user_id = ?, channel = ?, last_activity = ?, expires_at = ? WHERE session_id = ?`,
		nullString(session.UserID), session.Channel, session.LastActivity, session.ExpiresAt, session.SessionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteSession removes a session row.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	return err
}

// DeleteExpiredSessions removes sessions whose expiry has passed. Conversations
// and messages cascade.
func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateConversation creates the conversation row for a session.
func (s *SQLiteStore) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	contextData, err := json.Marshal(conv.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversations (session_id, user_id, channel, context, created_at, last_activity) VALUES (?, ?, ?, ?, ?, ?)`,
		conv.SessionID, nullString(conv.UserID), conv.Channel, string(contextData), conv.CreatedAt, conv.LastActivity)
	return err
}

// GetConversation retrieves a conversation with its message log.
func (s *SQLiteStore) GetConversation(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	var userID, contextData sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, channel, context, created_at, last_activity FROM conversations WHERE session_id = ?`,
		sessionID).Scan(&conv.SessionID, &userID, &conv.Channel, &contextData, &conv.CreatedAt, &conv.LastActivity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		conv.UserID = userID.String
	}
	if contextData.Valid && contextData.String != "" {
		if err := json.Unmarshal([]byte(contextData.String), &conv.Context); err != nil {
			return nil, fmt.Errorf("failed to unmarshal context: %w", err)
		}
	}

	messages, err := s.GetRecentMessages(ctx, sessionID, 0)
	if err != nil {
		return nil, err
	}
	conv.Messages = messages
	return &conv, nil
}

// UpdateConversationContext replaces the stored context blob. The write is a
// single atomic UPDATE keyed by session id.
func (s *SQLiteStore) UpdateConversationContext(ctx context.Context, sessionID string, contextData domain.Context, lastActivity time.Time) error {
	raw, err := json.Marshal(contextData)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET context = ?, last_activity = ? WHERE session_id = ?`,
		string(raw), lastActivity, sessionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateConversationChannel updates the conversation's channel field.
func (s *SQLiteStore) UpdateConversationChannel(ctx context.Context, sessionID string, channel domain.Channel, lastActivity time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET channel = ?, last_activity = ? WHERE session_id = ?`,
		channel, lastActivity, sessionID)
	return err
}

// UpdateConversationUser binds a conversation to a user.
func (s *SQLiteStore) UpdateConversationUser(ctx context.Context, sessionID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET user_id = ? WHERE session_id = ?`,
		userID, sessionID)
	return err
}

// DeleteConversation removes a conversation row and its messages.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE session_id = ?`, sessionID)
	return err
}

// CreateMessage appends a message to a conversation's log. The conversation
// row must already exist.
func (s *SQLiteStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM conversations WHERE session_id = ?`, message.SessionID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return sql.ErrNoRows
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, session_id, role, content, intent, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		message.MessageID, message.SessionID, message.Role, message.Content, nullString(string(message.Intent)), message.CreatedAt)
	return err
}

// GetRecentMessages returns the last limit messages in chronological order.
// A limit of zero returns the full log.
func (s *SQLiteStore) GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	query := `SELECT message_id, session_id, role, content, intent, created_at FROM messages WHERE session_id = ? ORDER BY created_at DESC, rowid DESC`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var intent sql.NullString
		if err := rows.Scan(&msg.MessageID, &msg.SessionID, &msg.Role, &msg.Content, &intent, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if intent.Valid {
			msg.Intent = domain.Intent(intent.String)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows were fetched newest-first to honor the limit; flip back to
	// chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// CreateOrder creates a new order.
func (s *SQLiteStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	var estimated sql.NullTime
	if order.Fulfillment.EstimatedDelivery != nil {
		estimated = sql.NullTime{Time: *order.Fulfillment.EstimatedDelivery, Valid: true}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (order_id, user_id, items, subtotal, discount, final_total,
			payment_method, payment_status, transaction_id,
			fulfillment_type, fulfillment_location, fulfillment_status, estimated_delivery, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.OrderID, order.UserID, string(items), order.Subtotal, order.Discount, order.FinalTotal,
		order.Payment.Method, order.Payment.Status, nullString(order.Payment.TransactionID),
		order.Fulfillment.Type, nullString(order.Fulfillment.Location), order.Fulfillment.Status, estimated, order.CreatedAt)
	return err
}

const orderColumns = `order_id, user_id, items, subtotal, discount, final_total,
	payment_method, payment_status, transaction_id,
	fulfillment_type, fulfillment_location, fulfillment_status, estimated_delivery, created_at`

func (s *SQLiteStore) scanOrder(row *sql.Row) (*domain.Order, error) {
	var order domain.Order
	var items string
	var txnID, location sql.NullString
	var estimated sql.NullTime
	err := row.Scan(&order.OrderID, &order.UserID, &items, &order.Subtotal, &order.Discount, &order.FinalTotal,
		&order.Payment.Method, &order.Payment.Status, &txnID,
		&order.Fulfillment.Type, &location, &order.Fulfillment.Status, &estimated, &order.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &order.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}
	if txnID.Valid {
		order.Payment.TransactionID = txnID.String
	}
	if location.Valid {
		order.Fulfillment.Location = location.String
	}
	if estimated.Valid {
		t := estimated.Time
		order.Fulfillment.EstimatedDelivery = &t
	}
	return &order, nil
}

// GetOrder retrieves an order by ID.
func (s *SQLiteStore) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderID)
	return s.scanOrder(row)
}

// GetLatestOrderByUser retrieves the most recently created order for a user,
// regardless of payment or fulfillment state.
func (s *SQLiteStore) GetLatestOrderByUser(ctx context.Context, userID string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, userID)
	return s.scanOrder(row)
}

// GetLatestPendingPaymentOrder retrieves the most recent order still awaiting
// payment. Only the payment handler uses this narrower query.
func (s *SQLiteStore) GetLatestPendingPaymentOrder(ctx context.Context, userID string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? AND payment_status = 'pending' ORDER BY created_at DESC, rowid DESC LIMIT 1`, userID)
	return s.scanOrder(row)
}

// UpdateOrderPayment updates an order's payment sub-record in a single
// atomic statement.
func (s *SQLiteStore) UpdateOrderPayment(ctx context.Context, orderID string, payment domain.Payment) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE orders SET payment_method = ?, payment_status = ?, transaction_id = ? WHERE order_id = ?`,
		payment.Method, payment.Status, nullString(payment.TransactionID), orderID)
	return err
}

// UpdateOrderFulfillment updates an order's fulfillment sub-record in a
// single atomic statement.
func (s *SQLiteStore) UpdateOrderFulfillment(ctx context.Context, orderID string, fulfillment domain.Fulfillment) error {
	var estimated sql.NullTime
	if fulfillment.EstimatedDelivery != nil {
		estimated = sql.NullTime{Time: *fulfillment.EstimatedDelivery, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE orders SET fulfillment_type = ?, fulfillment_location = ?, fulfillment_status = ?, estimated_delivery = ? WHERE order_id = ?`,
		fulfillment.Type, nullString(fulfillment.Location), fulfillment.Status, estimated, orderID)
	return err
}

// UpdateOrderDiscount writes the computed discount and final total.
func (s *SQLiteStore) UpdateOrderDiscount(ctx context.Context, orderID string, discount, finalTotal float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE orders SET discount = ?, final_total = ? WHERE order_id = ?`,
		discount, finalTotal, orderID)
	return err
}

// CreateUser creates a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, name, email, loyalty_tier, loyalty_points, preferred_store_location, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.UserID, user.Name, user.Email, user.LoyaltyTier, user.LoyaltyPoints, nullString(user.PreferredStoreLocation), user.CreatedAt)
	return err
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	var store sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, name, email, loyalty_tier, loyalty_points, preferred_store_location, created_at FROM users WHERE user_id = ?`,
		userID).Scan(&user.UserID, &user.Name, &user.Email, &user.LoyaltyTier, &user.LoyaltyPoints, &store, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if store.Valid {
		user.PreferredStoreLocation = store.String
	}
	return &user, nil
}

// CreateProduct creates a catalog entry.
func (s *SQLiteStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	tags, _ := json.Marshal(product.Tags)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (sku, name, description, category, price, final_price, tags, in_stock) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.SKU, product.Name, nullString(product.Description), product.Category, product.Price, product.FinalPrice, string(tags), boolToInt(product.InStock))
	return err
}

// ListProducts lists catalog entries matching the filter.
func (s *SQLiteStore) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	query := `SELECT sku, name, description, category, price, final_price, tags, in_stock FROM products WHERE 1=1`
	var args []interface{}
	if filter.Category != "" {
		query += ` AND category LIKE ?`
		args = append(args, "%"+filter.Category+"%")
	}
	if filter.MaxPrice > 0 {
		query += ` AND price <= ?`
		args = append(args, filter.MaxPrice)
	}
	query += ` ORDER BY sku`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// GetProductsBySKUs retrieves catalog entries for the given SKUs.
func (s *SQLiteStore) GetProductsBySKUs(ctx context.Context, skus []string) ([]domain.Product, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(skus))
	args := make([]interface{}, len(skus))
	for i, sku := range skus {
		placeholders[i] = "?"
		args[i] = sku
	}
	query := fmt.Sprintf(`SELECT sku, name, description, category, price, final_price, tags, in_stock FROM products WHERE sku IN (%s)`,
		strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var description, tags sql.NullString
		var inStock int
		if err := rows.Scan(&p.SKU, &p.Name, &description, &p.Category, &p.Price, &p.FinalPrice, &tags, &inStock); err != nil {
			return nil, err
		}
		if description.Valid {
			p.Description = description.String
		}
		if tags.Valid && tags.String != "" {
			_ = json.Unmarshal([]byte(tags.String), &p.Tags)
		}
		p.InStock = inStock != 0
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpsertInventory creates or replaces a stock record.
func (s *SQLiteStore) UpsertInventory(ctx context.Context, record *domain.InventoryRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO inventory (sku, location, available_stock, reserved_stock, updated_at) VALUES (?, ?, ?, ?, ?)`,
		record.SKU, record.Location, record.AvailableStock, record.ReservedStock, record.UpdatedAt)
	return err
}

// GetInventory retrieves the stock record for one SKU at one location.
func (s *SQLiteStore) GetInventory(ctx context.Context, sku, location string) (*domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT sku, location, available_stock, reserved_stock, updated_at FROM inventory WHERE sku = ? AND location = ?`,
		sku, location).Scan(&rec.SKU, &rec.Location, &rec.AvailableStock, &rec.ReservedStock, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreatePromotion creates a promotion.
func (s *SQLiteStore) CreatePromotion(ctx context.Context, promo *domain.Promotion) error {
	tiers, err := json.Marshal(promo.ApplicableTiers)
	if err != nil {
		return fmt.Errorf("failed to marshal applicable tiers: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO promotions (promotion_id, name, description, discount_percent, applicable_tiers, start_date, end_date, active) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		promo.PromotionID, promo.Name, nullString(promo.Description), promo.DiscountPercent, string(tiers), promo.StartDate, promo.EndDate, boolToInt(promo.Active))
	return err
}

// GetActivePromotion retrieves the first active promotion covering the tier
// whose date window contains now.
func (s *SQLiteStore) GetActivePromotion(ctx context.Context, tier domain.LoyaltyTier, now time.Time) (*domain.Promotion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT promotion_id, name, description, discount_percent, applicable_tiers, start_date, end_date, active
		 FROM promotions WHERE active = 1 AND start_date <= ? AND end_date >= ? ORDER BY start_date`,
		now, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Promotion
		var description, tiers sql.NullString
		var active int
		if err := rows.Scan(&p.PromotionID, &p.Name, &description, &p.DiscountPercent, &tiers, &p.StartDate, &p.EndDate, &active); err != nil {
			return nil, err
		}
		if description.Valid {
			p.Description = description.String
		}
		if tiers.Valid {
			if err := json.Unmarshal([]byte(tiers.String), &p.ApplicableTiers); err != nil {
				return nil, fmt.Errorf("failed to unmarshal applicable tiers: %w", err)
			}
		}
		p.Active = active != 0
		if p.AppliesTo(tier, now) {
			return &p, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
