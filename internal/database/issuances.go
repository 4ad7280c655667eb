package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/evidenceledger/noticegen/internal/errl"
	"github.com/evidenceledger/noticegen/internal/models"
)

// RecordIssuance notes that the notice of a paid session was delivered.
// Repeated deliveries of the same session increase its download count.
func (d *Database) RecordIssuance(ctx context.Context, sessionID string, noticeType string, price int64) error {

	query := `
		INSERT INTO issuances (
			session_id,
			notice_type,
			price,
			downloads,
			created_at,
			updated_at
		) VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			downloads = downloads + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC()

	_, err := d.db.ExecContext(ctx, query,
		sessionID,
		noticeType,
		price,
		now,
		now,
	)

	if err != nil {
		return errl.Errorf("failed to record issuance for %s: %w", sessionID, err)
	}

	slog.Info("Recorded issuance", "session_id", sessionID, "notice_type", noticeType)
	return nil
}

// GetIssuance returns the issuance of a session, or nil if there is none.
func (d *Database) GetIssuance(ctx context.Context, sessionID string) (*models.Issuance, error) {
	query := `
		SELECT session_id, notice_type, price, downloads, created_at, updated_at
		FROM issuances
		WHERE session_id = ?
	`

	var iss models.Issuance
	err := d.db.QueryRowContext(ctx, query, sessionID).Scan(
		&iss.SessionID,
		&iss.NoticeType,
		&iss.Price,
		&iss.Downloads,
		&iss.CreatedAt,
		&iss.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errl.Errorf("failed to get issuance: %w", err)
	}

	return &iss, nil
}

// ListIssuances returns the most recent issuances first.
func (d *Database) ListIssuances(ctx context.Context, limit int) ([]models.Issuance, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT session_id, notice_type, price, downloads, created_at, updated_at
		FROM issuances
		ORDER BY created_at DESC, session_id
		LIMIT ?
	`

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errl.Errorf("failed to list issuances: %w", err)
	}
	defer rows.Close()

	list := []models.Issuance{}
	for rows.Next() {
		var iss models.Issuance
		if err := rows.Scan(
			&iss.SessionID,
			&iss.NoticeType,
			&iss.Price,
			&iss.Downloads,
			&iss.CreatedAt,
			&iss.UpdatedAt,
		); err != nil {
			return nil, errl.Errorf("failed to scan issuance: %w", err)
		}
		list = append(list, iss)
	}

	if err := rows.Err(); err != nil {
		return nil, errl.Errorf("error iterating issuances: %w", err)
	}

	return list, nil
}
