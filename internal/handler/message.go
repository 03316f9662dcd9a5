package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velora/study-portal/internal/config"
	"github.com/velora/study-portal/internal/model"
	"github.com/velora/study-portal/internal/queue"
	"github.com/velora/study-portal/internal/repository"
	queue_publisher "github.com/velora/study-portal/internal/service"
)

// MessageHandler serves the participant/coordinator messaging
// endpoints. Threads are reconstructed from the flat messages table at
// read time; the sender role is always taken from the resolved
// principal, never from the request body.
type MessageHandler struct {
	Cfg      config.Config
	Messages *repository.MessageRepo
}

func NewMessageHandler(cfg config.Config, messages *repository.MessageRepo) *MessageHandler {
	if messages == nil {
		panic("nil repository passed to NewMessageHandler")
	}
	return &MessageHandler{Cfg: cfg, Messages: messages}
}

type sendReq struct {
	Message         string `json:"message"`
	RecipientUserID uint64 `json:"recipientUserId"`
}

type messageResp struct {
	ID          uint64    `json:"id"`
	SenderID    uint64    `json:"sender_id"`
	RecipientID uint64    `json:"recipient_id"`
	SenderRole  string    `json:"sender_role"`
	Body        string    `json:"body"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

func toMessageResp(m model.Message) messageResp {
	return messageResp{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		SenderRole:  m.SenderRole,
		Body:        m.Body,
		Read:        m.Read,
		CreatedAt:   m.CreatedAt,
	}
}

// Send handles POST /v1/messages/send. A participant always writes to
// the administrator channel — any client-supplied recipient is ignored —
// while an administrator must name the participant they are answering.
func (h *MessageHandler) Send(c echo.Context) error {
	p, okP := principal(c)
	if !okP {
		return fail(c, http.StatusUnauthorized, CodeUnauthenticated, "unauthorized")
	}
	var req sendReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, CodeBadRequest, "invalid body")
	}
	body := strings.TrimSpace(req.Message)
	if body == "" {
		return fail(c, http.StatusBadRequest, CodeBadRequest, "message must not be empty")
	}

	msg := model.Message{SenderID: p.UserID, Body: body}
	if p.IsAdmin {
		if req.RecipientUserID == 0 {
			return fail(c, http.StatusBadRequest, CodeBadRequest, "recipientUserId required")
		}
		msg.RecipientID = req.RecipientUserID
		msg.SenderRole = "ADMIN"
	} else {
		msg.RecipientID = h.Cfg.AdminChannelUserID
		msg.SenderRole = "PARTICIPANT"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Messages.Create(ctx, msg)
	if err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "save message failed")
	}
	created, err := h.Messages.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "load message failed")
	}

	_ = queue_publisher.PublishStudyEvent(c.Request().Context(), queue.StudyEvent{
		Type:       queue.EventMessageSent,
		UserID:     p.UserID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return ok(c, http.StatusCreated, toMessageResp(created))
}

// FetchThread handles GET /v1/messages/fetch?userId=. Participants can
// only read their own thread; asking for someone else's is a 403, not a
// silent redirect, so a broken client learns about its bug. An
// administrator may read any thread and defaults to their own.
func (h *MessageHandler) FetchThread(c echo.Context) error {
	p, okP := principal(c)
	if !okP {
		return fail(c, http.StatusUnauthorized, CodeUnauthenticated, "unauthorized")
	}

	target := p.UserID
	if raw := c.QueryParam("userId"); raw != "" {
		requested, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || requested == 0 {
			return fail(c, http.StatusBadRequest, CodeBadRequest, "invalid userId")
		}
		if requested != p.UserID && !p.IsAdmin {
			return fail(c, http.StatusForbidden, CodeForbidden, "cannot read another user's thread")
		}
		target = requested
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msgs, err := h.Messages.Thread(ctx, target)
	if err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "query failed")
	}
	out := make([]messageResp, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResp(m))
	}
	return ok(c, http.StatusOK, out)
}

// MarkRead handles POST /v1/messages/mark-read. Only administrator
// replies addressed to the caller flip to read; participant-authored
// rows are untouched and nothing ever reverts to unread.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	p, okP := principal(c)
	if !okP {
		return fail(c, http.StatusUnauthorized, CodeUnauthenticated, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Messages.MarkAdminRead(ctx, p.UserID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "update failed")
	}
	return ok(c, http.StatusOK, echo.Map{"updated": n})
}
