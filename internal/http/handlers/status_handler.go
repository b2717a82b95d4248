// Presence HTTP handlers.
//
// This file exposes the two HTTP surfaces of the presence tracker:
//   - GET /{hookId}/{status}                 (webhook status update, plain text)
//   - GET /api/v1/chats/{id}/statuses        (list a chat's statuses, paginated)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-presence-bot/internal/domain"
	"github.com/tbourn/go-presence-bot/internal/presenter"
	"github.com/tbourn/go-presence-bot/internal/services"
	"github.com/tbourn/go-presence-bot/internal/utils"
)

// Plain-text webhook bodies. Wording is part of the public contract; external
// automations display these verbatim.
const (
	msgUnknownURL = "Failed! Specified url was not found."
	msgUnknownID  = "Failed! Specified Id is not exists."
)

// PresenceService defines the presence operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PresenceService interface {
	// SetStatusByHook applies a webhook-addressed status change.
	SetStatusByHook(ctx context.Context, hookID, token string) (*services.HookResult, error)
	// StatusesPage returns a page of a chat's status views and the total count.
	StatusesPage(ctx context.Context, chatID int64, page, pageSize int) ([]domain.StatusView, int64, error)
}

// Handlers groups the HTTP endpoints of the presence tracker.
type Handlers struct {
	svc     PresenceService
	present *presenter.Presenter
}

// New constructs a Handlers instance bound to the given service and presenter.
func New(svc PresenceService, present *presenter.Presenter) *Handlers {
	return &Handlers{svc: svc, present: present}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// StatusItem is one user's presence entry in a chat listing.
type StatusItem struct {
	UserID      int64  `json:"user_id" example:"42"`
	DisplayName string `json:"display_name" example:"neo"`
	Status      string `json:"status" example:"CameToWork"`
	Time        string `json:"time" example:"2024-03-01T09:30:00Z"`
}

// ListStatusesResponse wraps a page of statuses and pagination information.
type ListStatusesResponse struct {
	Statuses   []StatusItem `json:"statuses"`
	Pagination Pagination   `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// SetStatusByHook godoc
// @ID          setStatusByHook
// @Summary     Update a status via webhook
// @Description Applies a status change addressed by the caller's personal hook id. Responds with plain text so external automations can display the body verbatim.
// @Tags        Webhook
// @Produce     plain
//
// @Param       hookId  path  string  true  "Personal hook id (UUID)"  format(uuid)
// @Param       status  path  string  true  "Status token"             Enums(came, left, stay)
//
// @Success     200  {string}  string  "Confirmation text"
// @Failure     404  {string}  string  "Unknown hook id or status token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /{hookId}/{status} [get]
func (h *Handlers) SetStatusByHook(c *gin.Context) {
	hookID := c.Param("hookId")
	if _, err := uuid.Parse(hookID); err != nil {
		c.String(http.StatusNotFound, msgUnknownURL)
		return
	}

	res, err := h.svc.SetStatusByHook(c.Request.Context(), hookID, c.Param("status"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownStatusToken):
			c.String(http.StatusNotFound, msgUnknownURL)
		case errors.Is(err, services.ErrStatusNotFound):
			c.String(http.StatusNotFound, msgUnknownID)
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	c.String(http.StatusOK, h.present.HookConfirmation(res.Previous, res.New, res.Time))
}

// ListChatStatuses godoc
// @ID          listChatStatuses
// @Summary     List a chat's statuses (paginated)
// @Description Returns a page of presence entries for one chat, newest first.
// @Tags        Statuses
// @Produce     json
//
// @Param       id         path   int  true  "Chat ID"
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListStatusesResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /api/v1/chats/{id}/statuses [get]
func (h *Handlers) ListChatStatuses(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat id must be an integer")
		return
	}
	page, pageSize := clampPagination(c)

	views, total, err := h.svc.StatusesPage(c.Request.Context(), chatID, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	items := make([]StatusItem, 0, len(views))
	for _, v := range views {
		items = append(items, StatusItem{
			UserID:      v.UserID,
			DisplayName: v.DisplayName,
			Status:      v.Status.String(),
			Time:        v.Time.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListStatusesResponse{
		Statuses: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
