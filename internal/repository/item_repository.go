package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// ItemFilter captures catalog listing parameters.
type ItemFilter struct {
	MaxPrice      *float64
	BelowPrice    *float64
	AvailableOnly bool
	Limit         int
	Offset        int
}

// ItemRepository encapsulates catalog persistence.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id string) (*domain.Item, error)
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	ListWithFilter(ctx context.Context, filter ItemFilter) ([]domain.Item, error)
	CountWithFilter(ctx context.Context, filter ItemFilter) (int64, error)
}

type itemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository instantiates repository.
func NewItemRepository(pool *pgxpool.Pool) ItemRepository {
	return &itemRepository{pool: pool}
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	const query = `
        INSERT INTO items (name, price, available)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		item.Name,
		item.Price,
		item.Available,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	const query = `
        UPDATE items SET name=$1, price=$2, available=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		item.Name,
		item.Price,
		item.Available,
		item.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id string) (*domain.Item, error) {
	const query = `
        DELETE FROM items WHERE id=$1
        RETURNING id, name, price, available, created_at, updated_at`
	return r.scanSingle(r.pool.QueryRow(ctx, query, id))
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	const query = `
        SELECT id, name, price, available, created_at, updated_at
        FROM items WHERE id=$1`
	return r.scanSingle(r.pool.QueryRow(ctx, query, id))
}

func (r *itemRepository) ListWithFilter(ctx context.Context, filter ItemFilter) ([]domain.Item, error) {
	where, args := buildItemWhere(filter)
	query := fmt.Sprintf(`
        SELECT id, name, price, available, created_at, updated_at
        FROM items %s ORDER BY created_at`, where)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Price,
			&item.Available,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *itemRepository) CountWithFilter(ctx context.Context, filter ItemFilter) (int64, error) {
	where, args := buildItemWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM items %s`, where)

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func buildItemWhere(filter ItemFilter) (string, []any) {
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("price <= $%d", len(args)))
	}
	if filter.BelowPrice != nil {
		args = append(args, *filter.BelowPrice)
		clauses = append(clauses, fmt.Sprintf("price < $%d", len(args)))
	}
	if filter.AvailableOnly {
		clauses = append(clauses, "available = TRUE")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (r *itemRepository) scanSingle(row pgx.Row) (*domain.Item, error) {
	var item domain.Item
	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Price,
		&item.Available,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
