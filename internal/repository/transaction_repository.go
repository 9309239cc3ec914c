package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/campus-market/internal/domain"
)

// TransactionFilter captures listing parameters for a user's transactions.
type TransactionFilter struct {
	UserID   string
	Role     *domain.Party
	Statuses []domain.TransactionStatus
	Limit    int
	Offset   int
}

// TransitionParams describes one conditional status change. The UPDATE is
// conditioned on the expected prior status and the acting party's column, so
// two requests racing on the same row serialize: the loser matches zero rows
// and surfaces pgx.ErrNoRows.
type TransitionParams struct {
	ID      string
	ActorID string
	Actor   domain.Party
	From    domain.TransactionStatus
	To      domain.TransactionStatus

	MarkAdvancePaid bool
	MarkFinalPaid   bool
	Deliverables    []string
	SetCompletedAt  bool
}

// CompletedStats summarizes a user's finished transactions.
type CompletedStats struct {
	Total    int
	AsBuyer  int
	AsSeller int
}

// CompletedSale is a line item in the earnings view.
type CompletedSale struct {
	ID          string
	Amount      int64
	CompletedAt *time.Time
}

// TransactionRepository encapsulates transaction persistence.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListWithFilter(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
	Transition(ctx context.Context, params TransitionParams) (*domain.Transaction, error)
	// SetRating stores the rating authored by the given party, conditioned on
	// the transaction still being ratable.
	SetRating(ctx context.Context, id, authorID string, author domain.Party, entry domain.RatingEntry) (*domain.Transaction, error)
	// SellerRatingStats rescans every buyer-authored rating on the seller's
	// transactions and returns the arithmetic mean and count.
	SellerRatingStats(ctx context.Context, sellerID string) (float64, int, error)
	ServiceRatingStats(ctx context.Context, serviceID string) (float64, int, error)
	CompletedStatsForUser(ctx context.Context, userID string) (CompletedStats, error)
	RecentCompletedSales(ctx context.Context, sellerID string, limit int) ([]CompletedSale, error)
}

type transactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository instantiates repository.
func NewTransactionRepository(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepository{pool: pool}
}

const transactionColumns = `id, buyer_id, seller_id, service_id, amount, status,
        advance_paid, advance_amount, advance_paid_at,
        final_paid, final_amount, final_paid_at, platform_fee,
        work_requirements, work_deliverables, work_deadline, work_submitted_at,
        buyer_rating, buyer_review, buyer_rated_at,
        seller_rating, seller_review, seller_rated_at,
        completed_at, created_at, updated_at`

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	const query = `
        INSERT INTO transactions (buyer_id, seller_id, service_id, amount, status,
            advance_amount, final_amount, work_requirements, work_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		tx.BuyerID,
		tx.SellerID,
		tx.ServiceID,
		tx.Amount,
		tx.Status,
		tx.Payment.Advance.Amount,
		tx.Payment.Final.Amount,
		tx.WorkDetails.Requirements,
		tx.WorkDetails.Deadline,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id=$1`, id)
	return scanTransaction(row)
}

func (r *transactionRepository) ListWithFilter(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error) {
	clauses := []string{}
	args := []any{}

	switch {
	case filter.Role != nil && *filter.Role == domain.PartyBuyer:
		args = append(args, filter.UserID)
		clauses = append(clauses, fmt.Sprintf("buyer_id=$%d", len(args)))
	case filter.Role != nil && *filter.Role == domain.PartySeller:
		args = append(args, filter.UserID)
		clauses = append(clauses, fmt.Sprintf("seller_id=$%d", len(args)))
	default:
		args = append(args, filter.UserID)
		clauses = append(clauses, fmt.Sprintf("(buyer_id=$%d OR seller_id=$%d)", len(args), len(args)))
	}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		transactionColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *tx)
	}
	return result, rows.Err()
}

func (r *transactionRepository) Transition(ctx context.Context, params TransitionParams) (*domain.Transaction, error) {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	args = append(args, params.To)
	sets = append(sets, fmt.Sprintf("status=$%d", len(args)))

	if params.MarkAdvancePaid {
		sets = append(sets, "advance_paid=TRUE", "advance_paid_at=NOW()")
	}
	if params.MarkFinalPaid {
		sets = append(sets, "final_paid=TRUE", "final_paid_at=NOW()")
	}
	if params.Deliverables != nil {
		args = append(args, params.Deliverables)
		sets = append(sets, fmt.Sprintf("work_deliverables=$%d", len(args)), "work_submitted_at=NOW()")
	}
	if params.SetCompletedAt {
		sets = append(sets, "completed_at=NOW()")
	}

	args = append(args, params.ID)
	idClause := fmt.Sprintf("id=$%d", len(args))
	args = append(args, params.From)
	statusClause := fmt.Sprintf("status=$%d", len(args))

	var actorClause string
	args = append(args, params.ActorID)
	switch params.Actor {
	case domain.PartyBuyer:
		actorClause = fmt.Sprintf("buyer_id=$%d", len(args))
	case domain.PartySeller:
		actorClause = fmt.Sprintf("seller_id=$%d", len(args))
	default:
		actorClause = fmt.Sprintf("(buyer_id=$%d OR seller_id=$%d)", len(args), len(args))
	}

	query := fmt.Sprintf(`UPDATE transactions SET %s WHERE %s AND %s AND %s RETURNING %s`,
		strings.Join(sets, ", "), idClause, statusClause, actorClause, transactionColumns)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanTransaction(row)
}

func (r *transactionRepository) SetRating(ctx context.Context, id, authorID string, author domain.Party, entry domain.RatingEntry) (*domain.Transaction, error) {
	var query string
	switch author {
	case domain.PartyBuyer:
		query = `UPDATE transactions SET buyer_rating=$1, buyer_review=$2, buyer_rated_at=NOW(), updated_at=NOW()
            WHERE id=$3 AND buyer_id=$4 AND status IN ('final_paid','completed')
            RETURNING ` + transactionColumns
	case domain.PartySeller:
		query = `UPDATE transactions SET seller_rating=$1, seller_review=$2, seller_rated_at=NOW(), updated_at=NOW()
            WHERE id=$3 AND seller_id=$4 AND status IN ('final_paid','completed')
            RETURNING ` + transactionColumns
	default:
		return nil, pgx.ErrNoRows
	}

	row := r.pool.QueryRow(ctx, query, entry.Rating, entry.Review, id, authorID)
	return scanTransaction(row)
}

func (r *transactionRepository) SellerRatingStats(ctx context.Context, sellerID string) (float64, int, error) {
	const query = `
        SELECT COALESCE(AVG(buyer_rating), 0), COUNT(*)
        FROM transactions
        WHERE seller_id=$1 AND buyer_rating IS NOT NULL`
	var average float64
	var count int
	if err := r.pool.QueryRow(ctx, query, sellerID).Scan(&average, &count); err != nil {
		return 0, 0, err
	}
	return average, count, nil
}

func (r *transactionRepository) ServiceRatingStats(ctx context.Context, serviceID string) (float64, int, error) {
	const query = `
        SELECT COALESCE(AVG(buyer_rating), 0), COUNT(*)
        FROM transactions
        WHERE service_id=$1 AND buyer_rating IS NOT NULL`
	var average float64
	var count int
	if err := r.pool.QueryRow(ctx, query, serviceID).Scan(&average, &count); err != nil {
		return 0, 0, err
	}
	return average, count, nil
}

func (r *transactionRepository) CompletedStatsForUser(ctx context.Context, userID string) (CompletedStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE buyer_id=$1),
               COUNT(*) FILTER (WHERE seller_id=$1)
        FROM transactions
        WHERE (buyer_id=$1 OR seller_id=$1) AND status='completed'`
	var stats CompletedStats
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&stats.Total, &stats.AsBuyer, &stats.AsSeller); err != nil {
		return CompletedStats{}, err
	}
	return stats, nil
}

func (r *transactionRepository) RecentCompletedSales(ctx context.Context, sellerID string, limit int) ([]CompletedSale, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`
        SELECT id, amount, completed_at FROM transactions
        WHERE seller_id=$1 AND status='completed'
        ORDER BY completed_at DESC LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CompletedSale
	for rows.Next() {
		var sale CompletedSale
		if err := rows.Scan(&sale.ID, &sale.Amount, &sale.CompletedAt); err != nil {
			return nil, err
		}
		result = append(result, sale)
	}
	return result, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	var buyerRating, sellerRating *int
	var buyerReview, sellerReview *string
	var buyerRatedAt, sellerRatedAt *time.Time

	if err := row.Scan(
		&tx.ID,
		&tx.BuyerID,
		&tx.SellerID,
		&tx.ServiceID,
		&tx.Amount,
		&tx.Status,
		&tx.Payment.Advance.Paid,
		&tx.Payment.Advance.Amount,
		&tx.Payment.Advance.PaidAt,
		&tx.Payment.Final.Paid,
		&tx.Payment.Final.Amount,
		&tx.Payment.Final.PaidAt,
		&tx.Payment.PlatformFee,
		&tx.WorkDetails.Requirements,
		&tx.WorkDetails.Deliverables,
		&tx.WorkDetails.Deadline,
		&tx.WorkDetails.SubmittedAt,
		&buyerRating,
		&buyerReview,
		&buyerRatedAt,
		&sellerRating,
		&sellerReview,
		&sellerRatedAt,
		&tx.CompletedAt,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if buyerRating != nil {
		tx.BuyerRating = &domain.RatingEntry{Rating: *buyerRating}
		if buyerReview != nil {
			tx.BuyerRating.Review = *buyerReview
		}
		if buyerRatedAt != nil {
			tx.BuyerRating.RatedAt = *buyerRatedAt
		}
	}
	if sellerRating != nil {
		tx.SellerRating = &domain.RatingEntry{Rating: *sellerRating}
		if sellerReview != nil {
			tx.SellerRating.Review = *sellerReview
		}
		if sellerRatedAt != nil {
			tx.SellerRating.RatedAt = *sellerRatedAt
		}
	}
	return &tx, nil
}
