package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/product-inventory/internal/core/domain"
)

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS colors (
	id          VARCHAR(64)  NOT NULL PRIMARY KEY,
	description TEXT         NOT NULL,
	price       BIGINT       NOT NULL,
	quantity    BIGINT       NOT NULL,
	picture_url VARCHAR(2048) NOT NULL,
	CONSTRAINT colors_price_non_negative CHECK (price >= 0),
	CONSTRAINT colors_quantity_non_negative CHECK (quantity >= 0)
)`

// ER_DATA_OUT_OF_RANGE, raised when quantity + amount leaves BIGINT.
const mysqlOutOfRange = 1690

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// OpenMySQL opens a pool for dsn with ClientFoundRows enabled. Without it
// MySQL reports changed rows rather than matched rows, and a zero-amount
// release against an existing item would look like an unknown item.
func OpenMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, mysqlSchema); err != nil {
		return fmt.Errorf("create colors table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Get(ctx context.Context, id string) (domain.Item, error) {
	var item domain.Item
	err := m.db.QueryRowContext(ctx, `
		SELECT id, description, price, quantity, picture_url
		FROM colors WHERE id = ?`, id,
	).Scan(&item.ID, &item.Description, &item.Price, &item.Quantity, &item.PictureURL)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("query color: %w", err)
	}
	return item, nil
}

func (m *MySQLAdapter) List(ctx context.Context) ([]domain.Item, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, description, price, quantity, picture_url FROM colors`)
	if err != nil {
		return nil, fmt.Errorf("query colors: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Description, &item.Price, &item.Quantity, &item.PictureURL); err != nil {
			return nil, fmt.Errorf("scan color: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate colors: %w", err)
	}
	return items, nil
}

func (m *MySQLAdapter) Create(ctx context.Context, in domain.NewItem) (domain.Item, error) {
	if err := in.Validate(); err != nil {
		return domain.Item{}, err
	}

	item := in.WithID(domain.NewItemID())
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO colors (id, description, price, quantity, picture_url)
		VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.Description, item.Price, item.Quantity, item.PictureURL,
	)
	if err != nil {
		return domain.Item{}, fmt.Errorf("insert color: %w", err)
	}
	return item, nil
}

// ConditionalDecrement is a single guarded UPDATE; the row lock taken by the
// statement serializes concurrent reservations on the same id.
func (m *MySQLAdapter) ConditionalDecrement(ctx context.Context, id string, amount int64) (domain.Outcome, error) {
	if err := domain.ValidateReserveAmount(amount); err != nil {
		return domain.NotApplied, err
	}

	result, err := m.db.ExecContext(ctx, `
		UPDATE colors
		SET quantity = quantity - ?
		WHERE id = ? AND quantity >= ?`,
		amount, id, amount,
	)
	if err != nil {
		return domain.NotApplied, fmt.Errorf("decrement quantity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.NotApplied, fmt.Errorf("rows affected: %w", err)
	}
	return domain.OutcomeOf(rows), nil
}

func (m *MySQLAdapter) UnconditionalIncrement(ctx context.Context, id string, amount int64) (domain.Outcome, error) {
	if err := domain.ValidateReleaseAmount(amount); err != nil {
		return domain.NotApplied, err
	}

	result, err := m.db.ExecContext(ctx, `
		UPDATE colors
		SET quantity = quantity + ?
		WHERE id = ?`,
		amount, id,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlOutOfRange {
			return domain.NotApplied, domain.QuantityOverflow(amount)
		}
		return domain.NotApplied, fmt.Errorf("increment quantity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.NotApplied, fmt.Errorf("rows affected: %w", err)
	}
	return domain.OutcomeOf(rows), nil
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}
