package repository

import (
	"context"
	"database/sql"

	"github.com/velora/study-portal/internal/model"
)

// MessageRepo provides persistence for the flat messages table. A
// thread is reconstructed at read time by selecting every row where
// the target user is sender or recipient, ordered by creation time;
// there is no conversation entity to keep in sync.
type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

const messageColumns = "id,sender_id,recipient_id,sender_role,body,`read`,created_at"

// Create inserts a message with read=false and returns its ID.
func (r *MessageRepo) Create(ctx context.Context, m model.Message) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (sender_id, recipient_id, sender_role, body) VALUES (?,?,?,?)",
		m.SenderID, m.RecipientID, m.SenderRole, m.Body)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one message.
func (r *MessageRepo) GetByID(ctx context.Context, id uint64) (model.Message, error) {
	var m model.Message
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE id=? LIMIT 1",
		id).Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.SenderRole, &m.Body, &m.Read, &m.CreatedAt)
	return m, err
}

// Thread returns every message where userID is sender or recipient,
// ordered by creation time ascending, oldest first.
func (r *MessageRepo) Thread(ctx context.Context, userID uint64) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE sender_id=? OR recipient_id=? ORDER BY created_at ASC, id ASC",
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.SenderRole, &m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkAdminRead flips read=false to true for every unread message
// addressed to userID that was sent by an administrator, returning
// the number of rows updated. Participant-authored rows are never
// touched and a read message never reverts: the WHERE clause only
// selects unread administrator messages.
func (r *MessageRepo) MarkAdminRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE messages SET `read`=1 WHERE recipient_id=? AND sender_role='ADMIN' AND `read`=0",
		userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
