package notice

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Store persists notices
type Store interface {
	Create(ctx context.Context, in NewNotice) (*Notice, error)
	GetByID(ctx context.Context, id int64) (*Notice, error)
	ListByDriverID(ctx context.Context, driverID string, limit, offset int, unreadOnly bool) ([]*Notice, int, error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context, driverID string) error
	GetUnreadCount(ctx context.Context, driverID string) (int, error)
}

// Repository handles notice persistence in Postgres
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new notice repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const noticeColumns = `id, driver_id, kind, message, details, payment_for, is_read, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanNotice(s scanner) (*Notice, error) {
	n := &Notice{}
	var details pq.StringArray
	if err := s.Scan(
		&n.ID,
		&n.DriverID,
		&n.Kind,
		&n.Message,
		&details,
		&n.PaymentFor,
		&n.IsRead,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	n.Details = []string(details)
	return n, nil
}

// Create inserts a new notice
func (r *Repository) Create(ctx context.Context, in NewNotice) (*Notice, error) {
	query := `
		INSERT INTO driver_notices (driver_id, kind, message, details, payment_for)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + noticeColumns

	n, err := scanNotice(r.db.QueryRowContext(ctx, query, in.DriverID, in.Kind, in.Message, pq.Array(in.Details), in.PaymentFor))
	if err != nil {
		return nil, fmt.Errorf("failed to create notice: %w", err)
	}
	return n, nil
}

// GetByID retrieves a notice by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM driver_notices WHERE id = $1`

	n, err := scanNotice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notice: %w", err)
	}
	return n, nil
}

// ListByDriverID retrieves notices for a driver, newest first
func (r *Repository) ListByDriverID(ctx context.Context, driverID string, limit, offset int, unreadOnly bool) ([]*Notice, int, error) {
	filter := ` WHERE driver_id = $1`
	if unreadOnly {
		filter += ` AND is_read = false`
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM driver_notices`+filter, driverID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notices: %w", err)
	}

	query := `SELECT ` + noticeColumns + ` FROM driver_notices` + filter + ` ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, driverID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notices: %w", err)
	}
	defer rows.Close()

	var notices []*Notice
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notice: %w", err)
		}
		notices = append(notices, n)
	}

	return notices, total, rows.Err()
}

// MarkAsRead marks a notice as read
func (r *Repository) MarkAsRead(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE driver_notices SET is_read = true WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to mark notice as read: %w", err)
	}
	return nil
}

// MarkAllAsRead marks all notices of a driver as read
func (r *Repository) MarkAllAsRead(ctx context.Context, driverID string) error {
	query := `UPDATE driver_notices SET is_read = true WHERE driver_id = $1 AND is_read = false`
	if _, err := r.db.ExecContext(ctx, query, driverID); err != nil {
		return fmt.Errorf("failed to mark all notices as read: %w", err)
	}
	return nil
}

// GetUnreadCount returns the count of unread notices for a driver
func (r *Repository) GetUnreadCount(ctx context.Context, driverID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM driver_notices WHERE driver_id = $1 AND is_read = false`
	if err := r.db.QueryRowContext(ctx, query, driverID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notices: %w", err)
	}
	return count, nil
}
