package repository

import (
	"context"
	"strconv"
	"time"

	"kotoba-server/internal/domain/chat"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) ChatRepository {
	return &PostgresChatRepository{db: db}
}

// GetOrCreateDirect runs the check-and-create inside one transaction. The
// UNIQUE constraint on pair_key makes the insert race-safe: a concurrent
// creator wins the conflict and this call falls through to the re-select.
func (r *PostgresChatRepository) GetOrCreateDirect(ctx context.Context, a, b uuid.UUID) (chat.Chat, error) {
	key := chat.PairKey(a, b)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return chat.Chat{}, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO chats (id, pair_key) VALUES ($1, $2)
		 ON CONFLICT (pair_key) DO NOTHING`,
		uuid.New(), key)
	if err != nil {
		return chat.Chat{}, err
	}

	var c chat.Chat
	err = tx.QueryRow(ctx,
		`SELECT id, pair_key, last_message, last_message_at, created_at, updated_at
		 FROM chats WHERE pair_key = $1`, key).
		Scan(&c.ID, &c.PairKey, &c.LastMessage, &c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return chat.Chat{}, err
	}

	if tag.RowsAffected() == 1 {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2), ($1, $3)
			 ON CONFLICT DO NOTHING`,
			c.ID, a, b); err != nil {
			return chat.Chat{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return chat.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) AppendMessage(ctx context.Context, m *chat.Message) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO chat_messages (id, chat_id, sender_id, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		m.ID, m.ChatID, m.SenderID, m.Body).Scan(&m.CreatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE chats
		 SET last_message = $2, last_message_at = $3, updated_at = $3
		 WHERE id = $1`,
		m.ChatID, m.Body, m.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE chat_participants
		 SET unread_count = unread_count + 1
		 WHERE chat_id = $1 AND user_id <> $2`,
		m.ChatID, m.SenderID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresChatRepository) GetMessages(ctx context.Context, chatID uuid.UUID, limit int, before *time.Time) ([]chat.MessageWithSender, error) {
	query := `
		SELECT m.id, m.chat_id, m.sender_id, m.body, m.created_at,
		       u.name, u.email, u.avatar_url
		FROM chat_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.chat_id = $1`
	args := []any{chatID}

	if before != nil {
		query += ` AND m.created_at < $2`
		args = append(args, *before)
	}
	query += ` ORDER BY m.created_at DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []chat.MessageWithSender
	for rows.Next() {
		var m chat.MessageWithSender
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Body, &m.CreatedAt,
			&m.SenderName, &m.SenderEmail, &m.SenderAvatarURL); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query reads newest-first for the LIMIT; history is served oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *PostgresChatRepository) GetRecentChats(ctx context.Context, userID uuid.UUID, limit int) ([]chat.Summary, error) {
	// LEFT JOINs keep chats with a missing counterpart row in the result;
	// the caller maps those to the unknown-participant sentinel.
	rows, err := r.db.Query(ctx, `
		SELECT c.id,
		       other.user_id,
		       COALESCE(u.name, ''),
		       COALESCE(u.email, ''),
		       COALESCE(u.avatar_url, ''),
		       c.last_message,
		       COALESCE(c.last_message_at, c.updated_at),
		       me.unread_count
		FROM chats c
		JOIN chat_participants me ON me.chat_id = c.id AND me.user_id = $1
		LEFT JOIN chat_participants other ON other.chat_id = c.id AND other.user_id <> $1
		LEFT JOIN users u ON u.id = other.user_id
		ORDER BY c.updated_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []chat.Summary
	for rows.Next() {
		var s chat.Summary
		if err := rows.Scan(&s.ChatID, &s.OtherID, &s.OtherName, &s.OtherEmail,
			&s.OtherAvatarURL, &s.LastMessage, &s.LastActivityAt, &s.UnreadCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *PostgresChatRepository) GetUserChatIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT chat_id FROM chat_participants WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresChatRepository) ResetUnread(ctx context.Context, chatID, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE chat_participants SET unread_count = 0
		 WHERE chat_id = $1 AND user_id = $2`,
		chatID, userID)
	return err
}
