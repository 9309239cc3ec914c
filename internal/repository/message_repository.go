package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/campus-market/internal/domain"
)

// MessageRepository manages directed user-to-user messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	// Thread returns messages between two users in chronological order.
	Thread(ctx context.Context, userA, userB string, limit int) ([]domain.Message, error)
	// MarkThreadRead flips the read flag on every unread message sent by
	// senderID to receiverID. Re-running it matches zero rows, so repeated
	// thread reads are no-ops.
	MarkThreadRead(ctx context.Context, senderID, receiverID string) (int64, error)
	// MarkRead marks a single message read, conditioned on receiver identity.
	MarkRead(ctx context.Context, messageID, receiverID string) (*domain.Message, error)
	// Conversations derives the per-counterparty summary for a user.
	Conversations(ctx context.Context, userID string) ([]domain.Conversation, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

const messageColumns = `id, sender_id, receiver_id, transaction_id, content, is_read, read_at, created_at`

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (sender_id, receiver_id, transaction_id, content)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.SenderID,
		msg.ReceiverID,
		msg.TransactionID,
		msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *messageRepository) Thread(ctx context.Context, userA, userB string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`
        SELECT %s FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at ASC LIMIT %d`, messageColumns, limit)

	rows, err := r.pool.Query(ctx, query, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.SenderID,
			&msg.ReceiverID,
			&msg.TransactionID,
			&msg.Content,
			&msg.Read,
			&msg.ReadAt,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

func (r *messageRepository) MarkThreadRead(ctx context.Context, senderID, receiverID string) (int64, error) {
	const query = `
        UPDATE messages SET is_read=TRUE, read_at=NOW()
        WHERE sender_id=$1 AND receiver_id=$2 AND is_read=FALSE`
	cmd, err := r.pool.Exec(ctx, query, senderID, receiverID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *messageRepository) MarkRead(ctx context.Context, messageID, receiverID string) (*domain.Message, error) {
	const query = `
        UPDATE messages SET is_read=TRUE, read_at=COALESCE(read_at, NOW())
        WHERE id=$1 AND receiver_id=$2
        RETURNING ` + messageColumns

	var msg domain.Message
	if err := r.pool.QueryRow(ctx, query, messageID, receiverID).Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.TransactionID,
		&msg.Content,
		&msg.Read,
		&msg.ReadAt,
		&msg.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) Conversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	// DISTINCT ON keeps the most recent message per counterparty; the unread
	// count is a correlated aggregate over the same pair.
	const query = `
        SELECT DISTINCT ON (counterparty)
            CASE WHEN m.sender_id=$1 THEN m.receiver_id ELSE m.sender_id END AS counterparty,
            u.name, u.email, u.department,
            m.content, m.created_at,
            (SELECT COUNT(*) FROM messages unread
             WHERE unread.receiver_id=$1
               AND unread.sender_id = CASE WHEN m.sender_id=$1 THEN m.receiver_id ELSE m.sender_id END
               AND unread.is_read=FALSE)
        FROM messages m
        JOIN users u ON u.id = CASE WHEN m.sender_id=$1 THEN m.receiver_id ELSE m.sender_id END
        WHERE m.sender_id=$1 OR m.receiver_id=$1
        ORDER BY counterparty, m.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		if err := rows.Scan(
			&conv.UserID,
			&conv.UserName,
			&conv.UserEmail,
			&conv.UserDepartment,
			&conv.LastMessage,
			&conv.LastMessageTime,
			&conv.UnreadCount,
		); err != nil {
			return nil, err
		}
		result = append(result, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Most recent conversation first.
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastMessageTime.After(result[j].LastMessageTime)
	})
	return result, nil
}
