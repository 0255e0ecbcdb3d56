package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/pkg/errors"
)

type messageRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *sql.DB, logger *zap.Logger) *messageRepository {
	return &messageRepository{
		db:     db,
		logger: logger,
	}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	return r.CreateBatch(ctx, []*domain.Message{msg})
}

func (r *messageRepository) CreateBatch(ctx context.Context, msgs []*domain.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, user_id, message, type, read, broadcast, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, m := range msgs {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			m.ID,
			m.UserID,
			m.Message,
			string(m.Type),
			m.Read,
			m.Broadcast,
			m.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to create message", zap.Error(err))
			return err
		}
	}
	return tx.Commit()
}

func (r *messageRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Message, error) {
	return r.query(ctx, `
		SELECT id, user_id, message, type, read, broadcast, created_at
		FROM messages WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

func (r *messageRepository) List(ctx context.Context) ([]*domain.Message, error) {
	return r.query(ctx, `
		SELECT id, user_id, message, type, read, broadcast, created_at
		FROM messages
		ORDER BY created_at DESC
	`)
}

func (r *messageRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list messages", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		var m domain.Message
		var typ string
		if err := rows.Scan(&m.ID, &m.UserID, &m.Message, &typ, &m.Read, &m.Broadcast, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Type = domain.MessageType(typ)
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

func (r *messageRepository) MarkRead(ctx context.Context, id, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &errors.ErrNotFound{Resource: "message", ID: id}
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error("Failed to mark message read", zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &errors.ErrNotFound{Resource: "message", ID: id}
	}
	return nil
}
