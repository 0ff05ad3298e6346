package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadchat_backend/internal/experts/ranking"
	"leadchat_backend/internal/experts/service"
	"leadchat_backend/platform/httpkit"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

type matchesResponse struct {
	SessionID uuid.UUID       `json:"sessionId"`
	Experts   []ranking.Match `json:"experts"`
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/experts", h.MatchForSession)
}

func (h *Handler) MatchForSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid session id", nil)
		return
	}

	matches, err := h.svc.MatchForSession(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	if matches == nil {
		matches = []ranking.Match{}
	}

	httpkit.OK(c, matchesResponse{SessionID: id, Experts: matches})
}
