package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/velora/study-portal/internal/model"
)

// UploadRepo provides persistence for upload records. Records are
// immutable after creation except for the verified flag, which only
// an administrator may set.
type UploadRepo struct{ DB *sql.DB }

func NewUploadRepo(db *sql.DB) *UploadRepo { return &UploadRepo{DB: db} }

var ErrUploadNotFound = errors.New("upload not found")

const uploadColumns = "id,profile_id,week_number,storage_key,consent,verified,created_at"

// Create inserts an upload record and returns its ID.
func (r *UploadRepo) Create(ctx context.Context, u model.UploadRecord) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO upload_records (profile_id, week_number, storage_key, consent) VALUES (?,?,?,?)",
		u.ProfileID, u.WeekNumber, u.StorageKey, u.Consent)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one record.
func (r *UploadRepo) GetByID(ctx context.Context, id uint64) (model.UploadRecord, error) {
	var u model.UploadRecord
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+uploadColumns+" FROM upload_records WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.ProfileID, &u.WeekNumber, &u.StorageKey, &u.Consent, &u.Verified, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, ErrUploadNotFound
	}
	return u, err
}

// ListByProfileWeek returns a profile's records for one week,
// oldest first.
func (r *UploadRepo) ListByProfileWeek(ctx context.Context, profileID uint64, week int) ([]model.UploadRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+uploadColumns+" FROM upload_records WHERE profile_id=? AND week_number=? ORDER BY created_at ASC, id ASC",
		profileID, week)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UploadRecord
	for rows.Next() {
		var u model.UploadRecord
		if err := rows.Scan(&u.ID, &u.ProfileID, &u.WeekNumber, &u.StorageKey, &u.Consent, &u.Verified, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// MarkVerified sets the verified flag. The flag is the only
// post-creation mutation the schema allows.
func (r *UploadRepo) MarkVerified(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE upload_records SET verified=1 WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// distinguish "no such row" from "already verified"
		var exists int
		if qerr := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM upload_records WHERE id=? LIMIT 1", id).Scan(&exists); qerr == sql.ErrNoRows {
			return ErrUploadNotFound
		} else if qerr != nil {
			return qerr
		}
	}
	return nil
}
