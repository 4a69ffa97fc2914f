package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tankhah/internal/license"
)

// LicenseStore adapts the repository to the license package ports
// (license.RecordStore and license.KeyRegistry).
type LicenseStore struct {
	db *sql.DB
}

func (r *SQLiteRepository) Licenses() *LicenseStore {
	return &LicenseStore{db: r.db}
}

func (s *LicenseStore) Get(ctx context.Context, userID string) (*license.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, license_key, license_type, trial_start_date, trial_end_date,
			expiry_date, is_active, activated_at, created_at, updated_at
		FROM licenses WHERE user_id = ?`, userID)

	var (
		rec                  license.Record
		key                  sql.NullString
		trialStart, trialEnd sql.NullString
		expiry, activatedAt  sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&rec.ID, &rec.UserID, &key, &rec.Type, &trialStart, &trialEnd,
		&expiry, &rec.IsActive, &activatedAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get license: %w", err)
	}

	rec.LicenseKey = key.String
	if rec.TrialStart, err = parseTimePtr(trialStart); err != nil {
		return nil, err
	}
	if rec.TrialEnd, err = parseTimePtr(trialEnd); err != nil {
		return nil, err
	}
	if rec.ExpiryDate, err = parseTimePtr(expiry); err != nil {
		return nil, err
	}
	if rec.ActivatedAt, err = parseTimePtr(activatedAt); err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *LicenseStore) Upsert(ctx context.Context, rec *license.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO licenses (id, user_id, license_key, license_type, trial_start_date,
			trial_end_date, expiry_date, is_active, activated_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			license_key = excluded.license_key,
			license_type = excluded.license_type,
			trial_start_date = excluded.trial_start_date,
			trial_end_date = excluded.trial_end_date,
			expiry_date = excluded.expiry_date,
			is_active = excluded.is_active,
			activated_at = excluded.activated_at,
			updated_at = excluded.updated_at`,
		rec.ID, rec.UserID, nullString(rec.LicenseKey), rec.Type,
		fmtTimePtr(rec.TrialStart), fmtTimePtr(rec.TrialEnd), fmtTimePtr(rec.ExpiryDate),
		rec.IsActive, fmtTimePtr(rec.ActivatedAt), fmtTime(rec.CreatedAt), fmtTime(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert license: %w", err)
	}
	return nil
}

// Claim consumes an unused key with a single conditional UPDATE so two
// concurrent activations of the same key cannot both succeed.
func (s *LicenseStore) Claim(ctx context.Context, key, userID string, now time.Time) (*license.KeyEntry, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE license_keys SET is_used = 1, used_by = ?, used_at = ?
		WHERE license_key = ? AND is_used = 0`,
		userID, fmtTime(now), key)
	if err != nil {
		return nil, fmt.Errorf("claim license key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim license key: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, license_key, is_used, used_by, used_at, trial_days, created_at
		FROM license_keys WHERE license_key = ?`, key)
	return scanKeyEntry(row)
}

func (s *LicenseStore) Insert(ctx context.Context, entry *license.KeyEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO license_keys (id, license_key, is_used, used_by, used_at, trial_days, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Key, entry.IsUsed, nullString(entry.UsedBy),
		fmtTimePtr(entry.UsedAt), nullInt(entry.TrialDays), fmtTime(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert license key: %w", err)
	}
	return nil
}

func scanKeyEntry(row rowScanner) (*license.KeyEntry, error) {
	var (
		entry          license.KeyEntry
		usedBy, usedAt sql.NullString
		trialDays      sql.NullInt64
		createdAt      string
	)
	err := row.Scan(&entry.ID, &entry.Key, &entry.IsUsed, &usedBy, &usedAt, &trialDays, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("scan license key: %w", err)
	}
	entry.UsedBy = usedBy.String
	entry.TrialDays = int(trialDays.Int64)
	if entry.UsedAt, err = parseTimePtr(usedAt); err != nil {
		return nil, err
	}
	if entry.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &entry, nil
}

func nullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}
