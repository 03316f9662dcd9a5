package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/velora/study-portal/internal/model"
)

// ProfileRepo provides persistence for study profiles. One profile
// exists per user; the unique key on profiles.user_id enforces it.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

var (
	ErrProfileExists   = errors.New("profile already exists for user")
	ErrProfileNotFound = errors.New("profile not found")
)

const profileColumns = "id,user_id,enrolled_at,is_admin,age_range,skin_type,concerns,lifestyle,status,is_active,created_at,updated_at"

func scanProfile(row *sql.Row) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.EnrolledAt, &p.IsAdmin, &p.AgeRange, &p.SkinType,
		&p.Concerns, &p.Lifestyle, &p.Status, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return p, ErrProfileNotFound
	}
	return p, err
}

// Create inserts a profile for the given user, recording the
// enrollment instant. Exactly one profile may exist per user; a
// second insert surfaces as ErrProfileExists via the unique key.
func (r *ProfileRepo) Create(ctx context.Context, userID uint64, enrolledAt time.Time, ageRange, skinType, concerns, lifestyle string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO profiles (user_id, enrolled_at, age_range, skin_type, concerns, lifestyle) VALUES (?,?,?,?,?,?)",
		userID, enrolledAt, ageRange, skinType, concerns, lifestyle)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrProfileExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUserID fetches the profile owned by a user.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (model.Profile, error) {
	return scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id=? LIMIT 1", userID))
}

// GetByID fetches a profile by its primary key.
func (r *ProfileRepo) GetByID(ctx context.Context, id uint64) (model.Profile, error) {
	return scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id=? LIMIT 1", id))
}

// UpdateIntake lets the owning participant revise their intake
// fields. Enrollment date, admin flag and status are not touchable
// through this path.
func (r *ProfileRepo) UpdateIntake(ctx context.Context, userID uint64, ageRange, skinType, concerns, lifestyle string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET age_range=?, skin_type=?, concerns=?, lifestyle=? WHERE user_id=?",
		ageRange, skinType, concerns, lifestyle, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// UpdateStatus is the coordinator-side mutation: free-text status,
// the admin flag and the soft lifecycle flag. Participants never
// reach this method.
func (r *ProfileRepo) UpdateStatus(ctx context.Context, id uint64, status string, isAdmin, isActive bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET status=?, is_admin=?, is_active=? WHERE id=?",
		status, isAdmin, isActive, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// ListAll returns every profile ordered by enrollment date. Used by
// the administrator reporting view only.
func (r *ProfileRepo) ListAll(ctx context.Context) ([]model.Profile, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM profiles ORDER BY enrolled_at ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Profile
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.EnrolledAt, &p.IsAdmin, &p.AgeRange, &p.SkinType,
			&p.Concerns, &p.Lifestyle, &p.Status, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
