package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/tender-evaluation/internal/services"
	"github.com/senyabanana/tender-evaluation/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// AuditHandler отдает журнал аудита.
type AuditHandler struct {
	Service *services.AuditService
	Logger  logrus.FieldLogger
	Timeout time.Duration
}

// NewAuditHandler создаёт новый экземпляр AuditHandler.
func NewAuditHandler(service *services.AuditService, logger logrus.FieldLogger, timeout time.Duration) *AuditHandler {
	return &AuditHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// ListAuditTrail обрабатывает запросы на журнал по сущности.
func (h *AuditHandler) ListAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	entries, err := h.Service.ListAuditTrail(ctx, chi.URLParam(r, "entityType"), chi.URLParam(r, "entityId"))
	if err != nil {
		utils.SendError(w, requestLogger(h.Logger, "ListAuditTrail", r), err, "failed to fetch audit trail")
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}
