package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/velora/study-portal/internal/model"
)

// FeedbackRepo provides persistence for weekly feedback entries.
// The unique key on (profile_id, week_number) owns the
// one-entry-per-week invariant; Exists() is advisory only and a
// racing insert is still caught by the key and reported as
// ErrDuplicateWeek.
type FeedbackRepo struct{ DB *sql.DB }

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{DB: db} }

var ErrDuplicateWeek = errors.New("feedback already submitted for week")

const feedbackColumns = "id,profile_id,week_number,skin_feel,changes,routine,reactions,overall_rating,created_at"

// Create inserts a feedback entry and returns its ID. A duplicate
// (profile, week) pair maps to ErrDuplicateWeek regardless of
// whether the caller pre-checked.
func (r *FeedbackRepo) Create(ctx context.Context, e model.FeedbackEntry) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO feedback_entries (profile_id, week_number, skin_feel, changes, routine, reactions, overall_rating) VALUES (?,?,?,?,?,?,?)",
		e.ProfileID, e.WeekNumber, e.SkinFeel, e.Changes, e.Routine, e.Reactions, e.OverallRating)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicateWeek
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByProfileWeek fetches the entry for one (profile, week) pair.
// sql.ErrNoRows is passed through; callers treat it as "no entry
// yet", not as a failure.
func (r *FeedbackRepo) GetByProfileWeek(ctx context.Context, profileID uint64, week int) (model.FeedbackEntry, error) {
	var e model.FeedbackEntry
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+feedbackColumns+" FROM feedback_entries WHERE profile_id=? AND week_number=? LIMIT 1",
		profileID, week).Scan(&e.ID, &e.ProfileID, &e.WeekNumber, &e.SkinFeel, &e.Changes,
		&e.Routine, &e.Reactions, &e.OverallRating, &e.CreatedAt)
	return e, err
}

// ListByProfile returns all entries for a profile ordered by week
// ascending. A simple bulk read; the result is finite (at most
// MaxWeek rows) so no pagination is needed.
func (r *FeedbackRepo) ListByProfile(ctx context.Context, profileID uint64) ([]model.FeedbackEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+feedbackColumns+" FROM feedback_entries WHERE profile_id=? ORDER BY week_number ASC",
		profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.FeedbackEntry
	for rows.Next() {
		var e model.FeedbackEntry
		if err := rows.Scan(&e.ID, &e.ProfileID, &e.WeekNumber, &e.SkinFeel, &e.Changes,
			&e.Routine, &e.Reactions, &e.OverallRating, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
