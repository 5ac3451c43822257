package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rl1809/product-inventory/internal/core/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS colors (
	id          TEXT   PRIMARY KEY,
	description TEXT   NOT NULL,
	price       BIGINT NOT NULL CHECK (price >= 0),
	quantity    BIGINT NOT NULL CHECK (quantity >= 0),
	picture_url TEXT   NOT NULL
)`

const pgNumericOutOfRange = "22003"

type PostgresAdapter struct {
	pool *pgxpool.Pool
}

func NewPostgresAdapter(pool *pgxpool.Pool) *PostgresAdapter {
	return &PostgresAdapter{pool: pool}
}

func (p *PostgresAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create colors table: %w", err)
	}
	return nil
}

func (p *PostgresAdapter) Get(ctx context.Context, id string) (domain.Item, error) {
	var item domain.Item
	err := p.pool.QueryRow(ctx, `
		SELECT id, description, price, quantity, picture_url
		FROM colors WHERE id = $1`, id,
	).Scan(&item.ID, &item.Description, &item.Price, &item.Quantity, &item.PictureURL)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Item{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("query color: %w", err)
	}
	return item, nil
}

func (p *PostgresAdapter) List(ctx context.Context) ([]domain.Item, error) {
	rows, err := p.pool.Query(ctx, `
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

func (p *PostgresAdapter) Create(ctx context.Context, in domain.NewItem) (domain.Item, error) {
	if err := in.Validate(); err != nil {
		return domain.Item{}, err
	}

	item := in.WithID(domain.NewItemID())
	_, err := p.pool.Exec(ctx, `
		INSERT INTO colors (id, description, price, quantity, picture_url)
		VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.Description, item.Price, item.Quantity, item.PictureURL,
	)
	if err != nil {
		return domain.Item{}, fmt.Errorf("insert color: %w", err)
	}
	return item, nil
}

func (p *PostgresAdapter) ConditionalDecrement(ctx context.Context, id string, amount int64) (domain.Outcome, error) {
	if err := domain.ValidateReserveAmount(amount); err != nil {
		return domain.NotApplied, err
	}

	tag, err := p.pool.Exec(ctx, `
		UPDATE colors
		SET quantity = quantity - $1
		WHERE id = $2 AND quantity >= $1`,
		amount, id,
	)
	if err != nil {
		return domain.NotApplied, fmt.Errorf("decrement quantity: %w", err)
	}
	return domain.OutcomeOf(tag.RowsAffected()), nil
}

func (p *PostgresAdapter) UnconditionalIncrement(ctx context.Context, id string, amount int64) (domain.Outcome, error) {
	if err := domain.ValidateReleaseAmount(amount); err != nil {
		return domain.NotApplied, err
	}

	tag, err := p.pool.Exec(ctx, `
		UPDATE colors
		SET quantity = quantity + $1
		WHERE id = $2`,
		amount, id,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgNumericOutOfRange {
			return domain.NotApplied, domain.QuantityOverflow(amount)
		}
		return domain.NotApplied, fmt.Errorf("increment quantity: %w", err)
	}
	return domain.OutcomeOf(tag.RowsAffected()), nil
}

func (p *PostgresAdapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
