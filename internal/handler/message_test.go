package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/study-portal/internal/auth"
	"github.com/velora/study-portal/internal/config"
	"github.com/velora/study-portal/internal/repository"
)

const messageCols = "id,sender_id,recipient_id,sender_role,body,`read`,created_at"

func newMessageHandler(t *testing.T) (*MessageHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMock(t)
	cfg := config.Config{AdminChannelUserID: 1}
	return NewMessageHandler(cfg, repository.NewMessageRepo(db)), mock
}

func messageRow(id, sender, recipient uint64, role, body string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "sender_id", "recipient_id", "sender_role", "body", "read", "created_at"}).
		AddRow(id, sender, recipient, role, body, false, time.Now().UTC())
}

func TestMessageSendParticipantForcedToAdminChannel(t *testing.T) {
	h, mock := newMessageHandler(t)

	// the client names recipient 999 but a participant always writes to
	// the administrator channel, so 999 never reaches the insert
	mock.ExpectExec("INSERT INTO messages (sender_id, recipient_id, sender_role, body) VALUES (?,?,?,?)").
		WithArgs(uint64(7), uint64(1), "PARTICIPANT", "is the tingling normal?").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectQuery("SELECT "+messageCols+" FROM messages WHERE id=? LIMIT 1").
		WithArgs(uint64(21)).
		WillReturnRows(messageRow(21, 7, 1, "PARTICIPANT", "is the tingling normal?"))

	body := `{"message":"is the tingling normal?","recipientUserId":999}`
	c, rec := newCtx(t, http.MethodPost, "/v1/messages/send", echo.MIMEApplicationJSON,
		strings.NewReader(body), auth.Principal{UserID: 7})

	require.NoError(t, h.Send(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	data := envelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["recipient_id"])
	assert.Equal(t, "PARTICIPANT", data["sender_role"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageSendAdminNamesRecipient(t *testing.T) {
	h, mock := newMessageHandler(t)

	mock.ExpectExec("INSERT INTO messages (sender_id, recipient_id, sender_role, body) VALUES (?,?,?,?)").
		WithArgs(uint64(1), uint64(7), "ADMIN", "yes, that is expected in week 1").
		WillReturnResult(sqlmock.NewResult(22, 1))
	mock.ExpectQuery("SELECT "+messageCols+" FROM messages WHERE id=? LIMIT 1").
		WithArgs(uint64(22)).
		WillReturnRows(messageRow(22, 1, 7, "ADMIN", "yes, that is expected in week 1"))

	body := `{"message":"yes, that is expected in week 1","recipientUserId":7}`
	c, rec := newCtx(t, http.MethodPost, "/v1/messages/send", echo.MIMEApplicationJSON,
		strings.NewReader(body), auth.Principal{UserID: 1, IsAdmin: true})

	require.NoError(t, h.Send(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	data := envelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "ADMIN", data["sender_role"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageSendAdminWithoutRecipient(t *testing.T) {
	h, _ := newMessageHandler(t)

	c, rec := newCtx(t, http.MethodPost, "/v1/messages/send", echo.MIMEApplicationJSON,
		strings.NewReader(`{"message":"hello"}`), auth.Principal{UserID: 1, IsAdmin: true})

	require.NoError(t, h.Send(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeBadRequest, envelope(t, rec)["code"])
}

func TestMessageSendEmptyBody(t *testing.T) {
	h, _ := newMessageHandler(t)

	c, rec := newCtx(t, http.MethodPost, "/v1/messages/send", echo.MIMEApplicationJSON,
		strings.NewReader(`{"message":"   "}`), auth.Principal{UserID: 7})

	require.NoError(t, h.Send(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessageFetchForeignThreadForbidden(t *testing.T) {
	h, _ := newMessageHandler(t)

	c, rec := newCtx(t, http.MethodGet, "/v1/messages/fetch?userId=999", "", nil,
		auth.Principal{UserID: 7})

	require.NoError(t, h.FetchThread(c))
	assert.Equal(t, http.StatusForbidden, rec.Code, "foreign thread access is an explicit 403, never a redirect")
	assert.Equal(t, CodeForbidden, envelope(t, rec)["code"])
}

func TestMessageFetchOwnThread(t *testing.T) {
	h, mock := newMessageHandler(t)

	rows := sqlmock.NewRows([]string{"id", "sender_id", "recipient_id", "sender_role", "body", "read", "created_at"}).
		AddRow(1, 7, 1, "PARTICIPANT", "question", true, time.Now().UTC().Add(-time.Hour)).
		AddRow(2, 1, 7, "ADMIN", "answer", false, time.Now().UTC())
	mock.ExpectQuery("SELECT "+messageCols+" FROM messages WHERE sender_id=? OR recipient_id=? ORDER BY created_at ASC, id ASC").
		WithArgs(uint64(7), uint64(7)).
		WillReturnRows(rows)

	c, rec := newCtx(t, http.MethodGet, "/v1/messages/fetch", "", nil, auth.Principal{UserID: 7})
	require.NoError(t, h.FetchThread(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	data := envelope(t, rec)["data"].([]interface{})
	assert.Len(t, data, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageFetchAdminReadsAnyThread(t *testing.T) {
	h, mock := newMessageHandler(t)

	mock.ExpectQuery("SELECT "+messageCols+" FROM messages WHERE sender_id=? OR recipient_id=? ORDER BY created_at ASC, id ASC").
		WithArgs(uint64(5), uint64(5)).
		WillReturnRows(messageRow(9, 5, 1, "PARTICIPANT", "hi"))

	c, rec := newCtx(t, http.MethodGet, "/v1/messages/fetch?userId=5", "", nil,
		auth.Principal{UserID: 1, IsAdmin: true})
	require.NoError(t, h.FetchThread(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageMarkRead(t *testing.T) {
	h, mock := newMessageHandler(t)

	mock.ExpectExec("UPDATE messages SET `read`=1 WHERE recipient_id=? AND sender_role='ADMIN' AND `read`=0").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	c, rec := newCtx(t, http.MethodPost, "/v1/messages/mark-read", "", nil, auth.Principal{UserID: 7})
	require.NoError(t, h.MarkRead(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	data := envelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["updated"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
