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

// BidHandler - структура для обработки запросов по предложениям.
type BidHandler struct {
	Service *services.BidOpeningService
	Logger  logrus.FieldLogger
	Timeout time.Duration
}

// NewBidHandler создаёт новый экземпляр BidHandler.
func NewBidHandler(service *services.BidOpeningService, logger logrus.FieldLogger, timeout time.Duration) *BidHandler {
	return &BidHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// OpenBids обрабатывает запросы на вскрытие поданных предложений.
func (h *BidHandler) OpenBids(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	result, err := h.Service.OpenBids(ctx, actor, chi.URLParam(r, "tenderId"))
	if err != nil {
		utils.SendError(w, requestLogger(h.Logger, "OpenBids", r), err, "failed to open bids")
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
