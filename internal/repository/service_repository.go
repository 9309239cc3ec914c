package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/campus-market/internal/domain"
)

// ServiceFilter captures catalog query parameters.
type ServiceFilter struct {
	SellerID   *string
	Status     *domain.ServiceStatus
	Category   *domain.ServiceCategory
	MinPrice   *int64
	MaxPrice   *int64
	SearchTerm *string
	SortBy     string
	SortDesc   bool
	Limit      int
	Offset     int
}

// sortColumns whitelists sortable fields to keep ORDER BY injection-free.
var sortColumns = map[string]string{
	"createdAt":     "created_at",
	"price":         "price",
	"deliveryTime":  "delivery_days",
	"requestCount":  "request_count",
	"averageRating": "average_rating",
	"title":         "title",
}

// ServiceRepository encapsulates listing persistence.
type ServiceRepository interface {
	Create(ctx context.Context, svc *domain.Service) error
	// UpdateOwned persists mutable fields, conditioned on seller ownership.
	UpdateOwned(ctx context.Context, svc *domain.Service) error
	DeleteOwned(ctx context.Context, id, sellerID string) error
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	ListWithFilter(ctx context.Context, filter ServiceFilter) ([]domain.Service, error)
	CountWithFilter(ctx context.Context, filter ServiceFilter) (int, error)
	IncrementRequestCount(ctx context.Context, id string) error
	SetAverageRating(ctx context.Context, id string, average float64) error
}

type serviceRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRepository instantiates repository.
func NewServiceRepository(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepository{pool: pool}
}

const serviceColumns = `id, seller_id, title, description, category, price, delivery_days,
        images, status, tags, request_count, average_rating, created_at, updated_at`

func (r *serviceRepository) Create(ctx context.Context, svc *domain.Service) error {
	const query = `
        INSERT INTO services (seller_id, title, description, category, price, delivery_days, images, status, tags)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		svc.SellerID,
		svc.Title,
		svc.Description,
		svc.Category,
		svc.Price,
		svc.DeliveryDays,
		svc.Images,
		svc.Status,
		svc.Tags,
	).Scan(&svc.ID, &svc.CreatedAt, &svc.UpdatedAt)
}

func (r *serviceRepository) UpdateOwned(ctx context.Context, svc *domain.Service) error {
	const query = `
        UPDATE services SET title=$1, description=$2, price=$3, delivery_days=$4,
            status=$5, tags=$6, updated_at=NOW()
        WHERE id=$7 AND seller_id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		svc.Title,
		svc.Description,
		svc.Price,
		svc.DeliveryDays,
		svc.Status,
		svc.Tags,
		svc.ID,
		svc.SellerID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceRepository) DeleteOwned(ctx context.Context, id, sellerID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id=$1 AND seller_id=$2`, id, sellerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	var svc domain.Service
	if err := r.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id=$1`, id).Scan(
		&svc.ID,
		&svc.SellerID,
		&svc.Title,
		&svc.Description,
		&svc.Category,
		&svc.Price,
		&svc.DeliveryDays,
		&svc.Images,
		&svc.Status,
		&svc.Tags,
		&svc.RequestCount,
		&svc.AverageRating,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &svc, nil
}

func buildServiceClauses(filter ServiceFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SellerID != nil {
		args = append(args, *filter.SellerID)
		clauses = append(clauses, fmt.Sprintf("seller_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		clauses = append(clauses, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("price <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(title) LIKE %s OR LOWER(description) LIKE %s OR EXISTS (SELECT 1 FROM unnest(tags) tag WHERE LOWER(tag) LIKE %s))",
			placeholder, placeholder, placeholder))
	}
	return clauses, args
}

func (r *serviceRepository) ListWithFilter(ctx context.Context, filter ServiceFilter) ([]domain.Service, error) {
	clauses, args := buildServiceClauses(filter)

	orderCol, ok := sortColumns[filter.SortBy]
	if !ok {
		orderCol = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM services WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		serviceColumns, strings.Join(clauses, " AND "), orderCol, direction, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanServices(rows)
}

func (r *serviceRepository) CountWithFilter(ctx context.Context, filter ServiceFilter) (int, error) {
	clauses, args := buildServiceClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM services WHERE %s`, strings.Join(clauses, " AND "))

	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *serviceRepository) IncrementRequestCount(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE services SET request_count = request_count + 1, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceRepository) SetAverageRating(ctx context.Context, id string, average float64) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE services SET average_rating=$1, updated_at=NOW() WHERE id=$2`, average, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanServices(rows pgx.Rows) ([]domain.Service, error) {
	var result []domain.Service
	for rows.Next() {
		var svc domain.Service
		if err := rows.Scan(
			&svc.ID,
			&svc.SellerID,
			&svc.Title,
			&svc.Description,
			&svc.Category,
			&svc.Price,
			&svc.DeliveryDays,
			&svc.Images,
			&svc.Status,
			&svc.Tags,
			&svc.RequestCount,
			&svc.AverageRating,
			&svc.CreatedAt,
			&svc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}
