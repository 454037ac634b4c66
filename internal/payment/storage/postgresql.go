package storage

import (
	"database/sql"
	"fmt"

	"ms-orders/internal/config"
	"ms-orders/internal/logger"
	"ms-orders/internal/models"

	_ "github.com/lib/pq"
)

type PostgreSQLStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewPostgreSQLStoreWithDB creates a new PostgreSQL store using an existing database connection
func NewPostgreSQLStoreWithDB(db *sql.DB, log *logger.Logger) (*PostgreSQLStore, error) {
	log.Info("DATABASE", "Creating payment storage with existing database connection")

	store := &PostgreSQLStore{
		db:  db,
		log: log,
	}

	if err := store.initTables(); err != nil {
		log.Error("DATABASE", "Failed to initialize payment tables: "+err.Error())
		return nil, fmt.Errorf("failed to initialize payment tables: %w", err)
	}

	log.Info("DATABASE", "Payment storage initialized successfully with existing connection")
	return store, nil
}

func NewPostgreSQLStore(cfg config.DatabaseConfig, log *logger.Logger) (*PostgreSQLStore, error) {
	log.LogDatabase("CONNECT", "postgresql", fmt.Sprintf("Connecting to PostgreSQL at %s:%s", cfg.Host, cfg.Port))

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Error("DATABASE", "Failed to open PostgreSQL connection: "+err.Error())
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := db.Ping(); err != nil {
		log.Error("DATABASE", "Failed to ping PostgreSQL: "+err.Error())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgreSQLStore{
		db:  db,
		log: log,
	}

	if err := store.initTables(); err != nil {
		log.Error("DATABASE", "Failed to initialize tables: "+err.Error())
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	log.LogDatabase("SUCCESS", "postgresql", "PostgreSQL connection established and tables initialized")
	return store, nil
}

func (s *PostgreSQLStore) initTables() error {
	s.log.LogDatabase("MIGRATE", "postgresql", "Creating payments table if not exists")

	paymentsQuery := `
    CREATE TABLE IF NOT EXISTS payments (
        payment_id BIGSERIAL PRIMARY KEY,
        order_id BIGINT NOT NULL,
        status VARCHAR(50) NOT NULL,
        amount DECIMAL(12,2) NOT NULL,
        description VARCHAR(255),
        order_code BIGINT NOT NULL,
        payment_link_id VARCHAR(64),
        checkout_url VARCHAR(500),
        qr_code TEXT,
        created_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        expired_at TIMESTAMP,
        updated_date TIMESTAMP
    );
    `

	if _, err := s.db.Exec(paymentsQuery); err != nil {
		return fmt.Errorf("failed to create payments table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_payments_order_id ON payments(order_id);",
		"CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status);",
		"CREATE INDEX IF NOT EXISTS idx_payments_payment_link_id ON payments(payment_link_id);",
	}

	for _, indexQuery := range indexes {
		if _, err := s.db.Exec(indexQuery); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	s.log.LogDatabase("SUCCESS", "postgresql", "Payment tables and indexes ready")
	return nil
}

const paymentColumns = `payment_id, order_id, status, amount, description, order_code,
    payment_link_id, checkout_url, qr_code, created_date, expired_at, updated_date`

func (s *PostgreSQLStore) scanPayment(row interface{ Scan(...interface{}) error }) (*models.Payment, error) {
	payment := &models.Payment{}
	var qrCode sql.NullString
	var updatedDate sql.NullTime
	err := row.Scan(
		&payment.PaymentID, &payment.OrderID, &payment.Status, &payment.Amount,
		&payment.Description, &payment.OrderCode, &payment.PaymentLinkID,
		&payment.CheckoutURL, &qrCode, &payment.CreatedDate, &payment.ExpiredAt, &updatedDate,
	)
	if err != nil {
		return nil, err
	}
	payment.QRCode = qrCode.String
	if updatedDate.Valid {
		payment.UpdatedDate = updatedDate.Time
	}
	return payment, nil
}

// SavePayment saves a payment to the database and fills the generated id
func (s *PostgreSQLStore) SavePayment(payment *models.Payment) error {
	s.log.LogDatabase("INSERT", "postgresql", fmt.Sprintf("Saving payment for order %d", payment.OrderID))

	query := `
    INSERT INTO payments (
        order_id, status, amount, description, order_code,
        payment_link_id, checkout_url, qr_code, created_date, expired_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    RETURNING payment_id
    `

	err := s.db.QueryRow(query,
		payment.OrderID, payment.Status, payment.Amount, payment.Description,
		payment.OrderCode, payment.PaymentLinkID, payment.CheckoutURL,
		payment.QRCode, payment.CreatedDate, payment.ExpiredAt,
	).Scan(&payment.PaymentID)

	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save payment for order %d: %s", payment.OrderID, err.Error()))
		return fmt.Errorf("failed to save payment: %w", err)
	}

	s.log.LogDatabase("SUCCESS", "postgresql", fmt.Sprintf("Payment %d saved successfully", payment.PaymentID))
	return nil
}

// GetPayment retrieves a payment by ID
func (s *PostgreSQLStore) GetPayment(id int64) (*models.Payment, error) {
	s.log.LogDatabase("SELECT", "postgresql", fmt.Sprintf("Fetching payment %d", id))

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1`

	payment, err := s.scanPayment(s.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			s.log.LogDatabase("NOT_FOUND", "postgresql", fmt.Sprintf("Payment %d not found", id))
			return nil, ErrPaymentNotFound
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get payment %d: %s", id, err.Error()))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// UpdatePayment updates a payment in the database
func (s *PostgreSQLStore) UpdatePayment(payment *models.Payment) error {
	s.log.LogDatabase("UPDATE", "postgresql", fmt.Sprintf("Updating payment %d", payment.PaymentID))

	query := `
    UPDATE payments SET
        status = $1, checkout_url = $2, qr_code = $3, updated_date = CURRENT_TIMESTAMP
    WHERE payment_id = $4
    `

	_, err := s.db.Exec(query, payment.Status, payment.CheckoutURL, payment.QRCode, payment.PaymentID)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to update payment %d: %s", payment.PaymentID, err.Error()))
		return fmt.Errorf("failed to update payment: %w", err)
	}

	s.log.LogDatabase("SUCCESS", "postgresql", fmt.Sprintf("Payment %d updated successfully", payment.PaymentID))
	return nil
}

// ListPayments retrieves payments for a specific order, newest first
func (s *PostgreSQLStore) ListPayments(orderID int64, limit, offset int) ([]*models.Payment, error) {
	s.log.LogDatabase("SELECT", "postgresql", fmt.Sprintf("Listing payments for order %d (limit: %d, offset: %d)", orderID, limit, offset))

	query := `SELECT ` + paymentColumns + `
    FROM payments
    WHERE order_id = $1
    ORDER BY created_date DESC
    LIMIT $2 OFFSET $3
    `

	rows, err := s.db.Query(query, orderID, limit, offset)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to list payments: %s", err.Error()))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment, err := s.scanPayment(rows)
		if err != nil {
			s.log.Error("DATABASE", fmt.Sprintf("Failed to scan payment row: %s", err.Error()))
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return payments, nil
}

// GetPaymentByOrderID retrieves the latest payment for an order. Older PAID
// payments can be superseded by a newer link, so newest wins.
func (s *PostgreSQLStore) GetPaymentByOrderID(orderID int64) (*models.Payment, error) {
	s.log.LogDatabase("SELECT", "postgresql", fmt.Sprintf("Fetching payment for order %d", orderID))

	query := `SELECT ` + paymentColumns + `
    FROM payments WHERE order_id = $1
    ORDER BY created_date DESC
    LIMIT 1
    `

	payment, err := s.scanPayment(s.db.QueryRow(query, orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			s.log.LogDatabase("NOT_FOUND", "postgresql", fmt.Sprintf("Payment not found for order %d", orderID))
			return nil, ErrPaymentNotFound
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get payment for order %d: %s", orderID, err.Error()))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

func (s *PostgreSQLStore) Close() error {
	s.log.LogDatabase("CLOSE", "postgresql", "Closing PostgreSQL connection")
	return s.db.Close()
}

func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}
