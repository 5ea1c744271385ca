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

// ApprovalHandler - структура для обработки запросов процесса утверждения.
type ApprovalHandler struct {
	Engine  *services.ApprovalWorkflowEngine
	Logger  logrus.FieldLogger
	Timeout time.Duration
}

// NewApprovalHandler создаёт новый экземпляр ApprovalHandler.
func NewApprovalHandler(engine *services.ApprovalWorkflowEngine, logger logrus.FieldLogger, timeout time.Duration) *ApprovalHandler {
	return &ApprovalHandler{
		Engine:  engine,
		Logger:  logger,
		Timeout: timeout,
	}
}

// InitiateApproval обрабатывает запросы на запуск процесса утверждения.
func (h *ApprovalHandler) InitiateApproval(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	logger := requestLogger(h.Logger, "InitiateApproval", r)

	var req services.InitiateApprovalRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.SendError(w, logger, err, "invalid request body")
		return
	}
	req.TenderID = chi.URLParam(r, "tenderId")

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	result, err := h.Engine.InitiateApproval(ctx, actor, req)
	if err != nil {
		utils.SendError(w, logger, err, "failed to initiate approval")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, result)
}

// GetApprovalWorkflow обрабатывает запросы на получение процесса утверждения.
func (h *ApprovalHandler) GetApprovalWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	workflow, err := h.Engine.GetApprovalWorkflow(ctx, chi.URLParam(r, "tenderId"))
	if err != nil {
		utils.SendError(w, requestLogger(h.Logger, "GetApprovalWorkflow", r), err, "failed to fetch approval workflow")
		return
	}
	utils.WriteJSON(w, http.StatusOK, workflow)
}

// SubmitApprovalDecision обрабатывает решения утверждающих.
func (h *ApprovalHandler) SubmitApprovalDecision(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	logger := requestLogger(h.Logger, "SubmitApprovalDecision", r)

	var req services.SubmitDecisionRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.SendError(w, logger, err, "invalid request body")
		return
	}
	req.TenderID = chi.URLParam(r, "tenderId")

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	result, err := h.Engine.SubmitApprovalDecision(ctx, actor, req)
	if err != nil {
		utils.SendError(w, logger, err, "failed to submit approval decision")
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// ListPendingApprovals обрабатывает запросы на список ожидающих решений пользователя.
func (h *ApprovalHandler) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	pending, err := h.Engine.ListPendingApprovals(ctx, actor)
	if err != nil {
		utils.SendError(w, requestLogger(h.Logger, "ListPendingApprovals", r), err, "failed to fetch pending approvals")
		return
	}
	utils.WriteJSON(w, http.StatusOK, pending)
}
