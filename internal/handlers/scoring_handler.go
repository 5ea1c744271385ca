package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/senyabanana/tender-evaluation/internal/report"
	"github.com/senyabanana/tender-evaluation/internal/services"
	"github.com/senyabanana/tender-evaluation/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// ScoringHandler - структура для обработки запросов оценки предложений.
type ScoringHandler struct {
	Commercial  *services.CommercialScoringService
	Combined    *services.CombinedScoringService
	Sensitivity *services.SensitivityAnalysisService
	Logger      logrus.FieldLogger
	Timeout     time.Duration
}

// NewScoringHandler создаёт новый экземпляр ScoringHandler.
func NewScoringHandler(commercial *services.CommercialScoringService, combined *services.CombinedScoringService, sensitivity *services.SensitivityAnalysisService, logger logrus.FieldLogger, timeout time.Duration) *ScoringHandler {
	return &ScoringHandler{
		Commercial:  commercial,
		Combined:    combined,
		Sensitivity: sensitivity,
		Logger:      logger,
		Timeout:     timeout,
	}
}

// CalculateCommercialScores обрабатывает запросы на расчет коммерческих оценок.
func (h *ScoringHandler) CalculateCommercialScores(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	scores, err := h.Commercial.CalculateCommercialScores(ctx, actor, chi.URLParam(r, "tenderId"))
	if err != nil {
		utils.SendError(w, requestLogger(h.Logger, "CalculateCommercialScores", r), err, "failed to calculate commercial scores")
		return
	}
	utils.WriteJSON(w, http.StatusOK, scores)
}

// CalculateCombinedScores обрабатывает запросы на пересчет итоговой таблицы.
func (h *ScoringHandler) CalculateCombinedScores(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	logger := requestLogger(h.Logger, "CalculateCombinedScores", r)
	override, err := weightOverride(r)
	if err != nil {
		utils.SendError(w, logger, err, "invalid weights")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	result, err := h.Combined.CalculateCombinedScores(ctx, actor, chi.URLParam(r, "tenderId"), override)
	if err != nil {
		utils.SendError(w, logger, err, "failed to calculate combined scores")
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// GetCombinedScorecard обрабатывает запросы на получение итоговой таблицы.
func (h *ScoringHandler) GetCombinedScorecard(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(h.Logger, "GetCombinedScorecard", r)
	override, err := weightOverride(r)
	if err != nil {
		utils.SendError(w, logger, err, "invalid weights")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	result, err := h.Combined.GetCombinedScorecard(ctx, chi.URLParam(r, "tenderId"), override)
	if err != nil {
		utils.SendError(w, logger, err, "failed to fetch combined scorecard")
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// GetSensitivityAnalysis обрабатывает запросы на анализ чувствительности.
func (h *ScoringHandler) GetSensitivityAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	analysis, err := h.Sensitivity.GetSensitivityAnalysis(ctx, chi.URLParam(r, "tenderId"))
	if err != nil {
		utils.SendError(w, requestLogger(h.Logger, "GetSensitivityAnalysis", r), err, "failed to build sensitivity analysis")
		return
	}
	utils.WriteJSON(w, http.StatusOK, analysis)
}

// ExportScorecard отдает итоговую таблицу и анализ чувствительности в виде книги Excel.
func (h *ScoringHandler) ExportScorecard(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(h.Logger, "ExportScorecard", r)
	tenderId := chi.URLParam(r, "tenderId")
	override, err := weightOverride(r)
	if err != nil {
		utils.SendError(w, logger, err, "invalid weights")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	scorecard, err := h.Combined.GetCombinedScorecard(ctx, tenderId, override)
	if err != nil {
		utils.SendError(w, logger, err, "failed to fetch combined scorecard")
		return
	}
	analysis, err := h.Sensitivity.GetSensitivityAnalysis(ctx, tenderId)
	if err != nil {
		utils.SendError(w, logger, err, "failed to build sensitivity analysis")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteScorecard(&buf, scorecard, analysis); err != nil {
		utils.SendError(w, logger, err, "failed to build scorecard workbook")
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="scorecard-%s.xlsx"`, tenderId))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.WithError(err).Error("failed to write scorecard workbook")
	}
}
