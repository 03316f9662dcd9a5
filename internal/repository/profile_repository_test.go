package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileCreateSecondInsertConflicts(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepo(db)

	mock.ExpectExec("INSERT INTO profiles (user_id, enrolled_at, age_range, skin_type, concerns, lifestyle) VALUES (?,?,?,?,?,?)").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '7' for key 'uq_profiles_user'"))

	_, err := repo.Create(context.Background(), 7, time.Now().UTC(), "25-34", "combination", "", "")
	assert.ErrorIs(t, err, ErrProfileExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileGetByUserIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepo(db)

	mock.ExpectQuery("SELECT " + profileColumns + " FROM profiles WHERE user_id=? LIMIT 1").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUserID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileGetByUserID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepo(db)

	enrolled := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "enrolled_at", "is_admin", "age_range", "skin_type",
		"concerns", "lifestyle", "status", "is_active", "created_at", "updated_at"}).
		AddRow(3, 7, enrolled, false, "25-34", "oily", "texture", "outdoors", "", true, now, now)

	mock.ExpectQuery("SELECT " + profileColumns + " FROM profiles WHERE user_id=? LIMIT 1").
		WithArgs(uint64(7)).
		WillReturnRows(rows)

	p, err := repo.GetByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), p.ID)
	assert.Equal(t, enrolled, p.EnrolledAt)
	assert.False(t, p.IsAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileUpdateStatusMissingRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepo(db)

	mock.ExpectExec("UPDATE profiles SET status=?, is_admin=?, is_active=? WHERE id=?").
		WithArgs("week 4 check-in done", true, true, uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 42, "week 4 check-in done", true, true)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadMarkVerifiedNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUploadRepo(db)

	mock.ExpectExec("UPDATE upload_records SET verified=1 WHERE id=?").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM upload_records WHERE id=? LIMIT 1").
		WithArgs(uint64(5)).
		WillReturnError(sql.ErrNoRows)

	err := repo.MarkVerified(context.Background(), 5)
	assert.ErrorIs(t, err, ErrUploadNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadMarkVerifiedAlreadyVerified(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUploadRepo(db)

	// zero rows affected but the row exists: the flag was already set
	mock.ExpectExec("UPDATE upload_records SET verified=1 WHERE id=?").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM upload_records WHERE id=? LIMIT 1").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	err := repo.MarkVerified(context.Background(), 5)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
