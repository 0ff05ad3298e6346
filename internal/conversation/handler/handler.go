package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadchat_backend/internal/conversation/domain"
	"leadchat_backend/internal/conversation/repository"
	"leadchat_backend/internal/conversation/service"
	"leadchat_backend/internal/conversation/transport"
	"leadchat_backend/platform/httpkit"
	"leadchat_backend/platform/logger"
	"leadchat_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgInvalidSessionID = "invalid session id"
	msgValidationFailed = "validation failed"

	defaultTranscriptLimit = 100
)

// Handler serves the chat and session administration endpoints.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// RegisterPublicRoutes mounts the visitor-facing chat endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/messages", h.SendMessage)
	rg.GET("/sessions/:id/messages", h.Transcript)
}

// RegisterAdminRoutes mounts the session administration endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListSessions)
	rg.GET("/:id", h.GetSession)
	rg.GET("/:id/messages", h.Transcript)
	rg.PATCH("/:id/facts", h.OverrideFacts)
	rg.POST("/:id/complete", h.CompleteSession)
}

func (h *Handler) SendMessage(c *gin.Context) {
	var req transport.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.HandleMessage(c.Request.Context(), req.SessionID, req.Content)
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	httpkit.JSON(c, status, toSendMessageResponse(result))
}

func (h *Handler) Transcript(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	var query transport.TranscriptQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	if query.Limit == 0 {
		query.Limit = defaultTranscriptLimit
	}

	messages, err := h.svc.Transcript(c.Request.Context(), id, query.Limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toTranscriptResponse(id, messages))
}

func (h *Handler) ListSessions(c *gin.Context) {
	var query transport.ListSessionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	params := repository.ListSessionsParams{
		Status: domain.Status(query.Status),
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	sessions, total, err := h.svc.ListSessions(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.SessionResponse, len(sessions))
	for i, s := range sessions {
		items[i] = toSessionResponse(s)
	}
	httpkit.OK(c, transport.SessionListResponse{
		Items:  items,
		Total:  total,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
}

func (h *Handler) GetSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.svc.GetSession(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toSessionResponse(session))
}

func (h *Handler) OverrideFacts(c *gin.Context) {
	admin := httpkit.MustGetAdmin(c)
	if admin == nil {
		return
	}
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	var req transport.OverrideFactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	session, err := h.svc.OverrideFacts(c.Request.Context(), id, toOverride(req))
	if httpkit.HandleError(c, err) {
		return
	}

	h.log.Info("admin override applied", "sessionId", id, "admin", admin.Subject())
	httpkit.OK(c, toSessionResponse(session))
}

func (h *Handler) CompleteSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.svc.CompleteSession(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toSessionResponse(session))
}

func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidSessionID, nil)
		return uuid.Nil, false
	}
	return id, true
}
