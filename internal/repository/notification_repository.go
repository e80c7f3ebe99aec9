package repository

import (
	"context"

	"kotoba-server/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresNotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if n.Data == nil {
		n.Data = map[string]any{}
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO notifications (id, user_id, title, message, type, data)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.Data,
	).Scan(&n.CreatedAt)
}

func (r *PostgresNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, title, message, type, data, read, created_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type,
			&n.Data, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		// No ids means "mark everything read".
		_, err := r.db.Exec(ctx,
			`UPDATE notifications SET read = TRUE WHERE user_id = $1`, userID)
		return err
	}
	_, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE
		 WHERE user_id = $1 AND id = ANY($2)`,
		userID, ids)
	return err
}
