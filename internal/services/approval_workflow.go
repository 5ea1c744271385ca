package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/notification"
	"github.com/senyabanana/tender-evaluation/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const unauthorizedDecisionMessage = "Cannot assign decision: you are not authorized to approve at the current level"

// ApprovalPolicy - настраиваемые параметры процесса утверждения.
type ApprovalPolicy struct {
	Levels                int
	ChangeReasonMinLength int
	CommentMaxLength      int
}

// DefaultApprovalPolicy - три уровня, причина смены утверждающих от 10 символов, комментарий до 2000.
func DefaultApprovalPolicy() ApprovalPolicy {
	return ApprovalPolicy{Levels: 3, ChangeReasonMinLength: 10, CommentMaxLength: 2000}
}

// InitiateApprovalRequest - запрос на запуск (или перезапуск) утверждения.
type InitiateApprovalRequest struct {
	TenderID       string       `json:"-" validate:"required"`
	ApproverIDs    []string     `json:"approverIds" validate:"required,unique,dive,required"`
	LevelDeadlines []*time.Time `json:"levelDeadlines"`
	AwardPackRef   *string      `json:"awardPackRef" validate:"omitempty,max=500"`
	ChangeReason   *string      `json:"changeReason" validate:"omitempty,max=2000"`
}

// SubmitDecisionRequest - решение утверждающего по активному уровню.
type SubmitDecisionRequest struct {
	TenderID string          `json:"-" validate:"required"`
	Decision models.Decision `json:"decision" validate:"required,oneof=Approve Reject ReturnForRevision"`
	Comment  *string         `json:"comment"`
}

// WorkflowDetails - процесс утверждения вместе с уровнями.
type WorkflowDetails struct {
	models.ApprovalWorkflow
	Levels []models.ApprovalLevel `json:"levels"`
}

// ActiveLevel возвращает активный уровень или nil.
func (w *WorkflowDetails) ActiveLevel() *models.ApprovalLevel {
	for i := range w.Levels {
		if w.Levels[i].Status == models.LevelActive {
			return &w.Levels[i]
		}
	}
	return nil
}

// InitiateApprovalResult - результат запуска утверждения.
type InitiateApprovalResult struct {
	WorkflowID             string           `json:"workflowId"`
	Workflow               *WorkflowDetails `json:"workflow"`
	Level1NotificationSent bool             `json:"level1NotificationSent"`
}

// SubmitDecisionResult - результат решения по уровню.
type SubmitDecisionResult struct {
	Success            bool             `json:"success"`
	Workflow           *WorkflowDetails `json:"workflow"`
	Message            string           `json:"message"`
	IsWorkflowComplete bool             `json:"isWorkflowComplete"`
	NotificationSent   bool             `json:"notificationSent"`
}

// PendingApproval - активный уровень, ожидающий решения пользователя.
type PendingApproval struct {
	models.ApprovalLevel
	TenderID        string `json:"tenderId"`
	TenderTitle     string `json:"tenderTitle"`
	TenderReference string `json:"tenderReference"`
}

// notice - уведомление, подготовленное в транзакции и отправляемое после фиксации.
type notice struct {
	fields logrus.Fields
	send   func(ctx context.Context, sender notification.Sender) error
}

// ApprovalWorkflowEngine ведет последовательное многоуровневое утверждение победителя.
type ApprovalWorkflowEngine struct {
	uow           repository.UnitOfWork
	notifier      notification.Sender
	policy        ApprovalPolicy
	logger        logrus.FieldLogger
	notifyTimeout time.Duration
	now           func() time.Time
}

// NewApprovalWorkflowEngine создает новый экземпляр ApprovalWorkflowEngine.
func NewApprovalWorkflowEngine(uow repository.UnitOfWork, notifier notification.Sender, policy ApprovalPolicy, notifyTimeout time.Duration, logger logrus.FieldLogger) *ApprovalWorkflowEngine {
	return &ApprovalWorkflowEngine{
		uow:           uow,
		notifier:      notifier,
		policy:        policy,
		logger:        logger,
		notifyTimeout: notifyTimeout,
		now:           time.Now,
	}
}

// InitiateApproval создает процесс утверждения. После отклонения или возврата на доработку
// прежний процесс удаляется и создается заново; смена утверждающих требует причины.
func (e *ApprovalWorkflowEngine) InitiateApproval(ctx context.Context, actor models.Actor, req InitiateApprovalRequest) (*InitiateApprovalResult, error) {
	now := e.now().UTC()
	if err := e.validateInitiation(req, now); err != nil {
		return nil, err
	}

	var (
		details *WorkflowDetails
		pending *notice
	)
	err := e.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		tender, err := repos.Tenders.GetTender(ctx, req.TenderID)
		if err != nil {
			return storeError(err, "tender not found")
		}
		if tender.Status != models.EvaluationTender {
			return models.NewInvalidState(fmt.Sprintf("approval can only be initiated for a tender in evaluation, current status is %s", tender.Status))
		}

		approvers, err := loadApprovers(ctx, repos.Users, req.ApproverIDs)
		if err != nil {
			return err
		}

		audit := NewAuditRecorder(repos.Audit, actor, now)
		previous, err := e.replacePrevious(ctx, repos, audit, req)
		if err != nil {
			return err
		}

		details = newWorkflow(req, actor, now)
		if err := repos.Approvals.CreateWorkflow(ctx, details.ApprovalWorkflow, details.Levels); err != nil {
			return err
		}

		action := models.AuditApprovalInitiated
		if previous != nil {
			action = models.AuditApprovalReinitiated
		}
		if err := audit.Record(ctx, action, models.EntityTender, req.TenderID, previous, details); err != nil {
			return err
		}

		first := details.Levels[0]
		approver := approvers[first.ApproverID]
		msg := notification.ApprovalRequest{
			ApproverEmail:     approver.Email,
			ApproverFirstName: approver.FirstName,
			TenderTitle:       tender.Title,
			TenderReference:   tender.Reference,
			InitiatorName:     actor.Name,
			LevelNumber:       first.LevelNumber,
			Deadline:          first.Deadline,
		}
		pending = &notice{
			fields: noticeFields("InitiateApproval", req.TenderID, first.LevelNumber),
			send: func(ctx context.Context, sender notification.Sender) error {
				return sender.SendApprovalRequest(ctx, msg)
			},
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to initiate approval")
	}

	e.logger.WithFields(logrus.Fields{
		"module":     "services",
		"funcName":   "InitiateApproval",
		"tenderId":   req.TenderID,
		"workflowId": details.ID,
	}).Info("approval workflow initiated")

	return &InitiateApprovalResult{
		WorkflowID:             details.ID,
		Workflow:               details,
		Level1NotificationSent: e.dispatch(ctx, pending),
	}, nil
}

func (e *ApprovalWorkflowEngine) validateInitiation(req InitiateApprovalRequest, now time.Time) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if len(req.ApproverIDs) != e.policy.Levels {
		return models.NewValidationFailure(fmt.Sprintf("expected %d approvers, got %d", e.policy.Levels, len(req.ApproverIDs)))
	}
	if req.LevelDeadlines != nil && len(req.LevelDeadlines) != len(req.ApproverIDs) {
		return models.NewValidationFailure(fmt.Sprintf("expected %d level deadlines, got %d", len(req.ApproverIDs), len(req.LevelDeadlines)))
	}
	for i, deadline := range req.LevelDeadlines {
		if deadline != nil && !deadline.After(now) {
			return models.NewValidationFailure(fmt.Sprintf("deadline for level %d must be in the future", i+1))
		}
	}
	return nil
}

// loadApprovers проверяет, что все утверждающие существуют и активны.
func loadApprovers(ctx context.Context, users repository.UserRepository, ids []string) (map[string]models.User, error) {
	found, err := users.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			return nil, models.NewNotFound(fmt.Sprintf("approver %s not found", id))
		}
		if !u.IsActive {
			return nil, models.NewValidationFailure(fmt.Sprintf("approver %s is not an active user", id))
		}
	}
	return byID, nil
}

// replacePrevious удаляет завершенный процесс перед перезапуском и возвращает его снимок.
func (e *ApprovalWorkflowEngine) replacePrevious(ctx context.Context, repos repository.Repositories, audit *AuditRecorder, req InitiateApprovalRequest) (*WorkflowDetails, error) {
	existing, err := repos.Approvals.GetWorkflowByTender(ctx, req.TenderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !existing.Status.CanReinitiate() {
		if existing.Status == models.WorkflowInProgress {
			return nil, models.NewInvalidState("an approval workflow is already in progress for this tender")
		}
		return nil, models.NewInvalidState(fmt.Sprintf("approval workflow is already %s and cannot be re-initiated", existing.Status))
	}

	levels, err := repos.Approvals.GetLevels(ctx, existing.ID)
	if err != nil {
		return nil, err
	}
	previous := &WorkflowDetails{ApprovalWorkflow: *existing, Levels: levels}

	oldApprovers := make([]string, len(levels))
	for i, l := range levels {
		oldApprovers[i] = l.ApproverID
	}
	if !sameApprovers(oldApprovers, req.ApproverIDs) {
		reason := ""
		if req.ChangeReason != nil {
			reason = strings.TrimSpace(*req.ChangeReason)
		}
		if utf8.RuneCountInString(reason) < e.policy.ChangeReasonMinLength {
			return nil, models.NewValidationFailure(fmt.Sprintf("a reason of at least %d characters is required when changing approvers", e.policy.ChangeReasonMinLength))
		}
		err := audit.Record(ctx, models.AuditApproversChanged, models.EntityTender, req.TenderID,
			map[string]any{"approverIds": oldApprovers},
			map[string]any{"approverIds": req.ApproverIDs, "reason": reason})
		if err != nil {
			return nil, err
		}
	}

	if err := repos.Approvals.DeleteWorkflow(ctx, existing.ID); err != nil {
		return nil, err
	}
	return previous, nil
}

func sameApprovers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newWorkflow(req InitiateApprovalRequest, actor models.Actor, now time.Time) *WorkflowDetails {
	workflowId := uuid.New().String()
	details := &WorkflowDetails{
		ApprovalWorkflow: models.ApprovalWorkflow{
			ID:           workflowId,
			TenderID:     req.TenderID,
			Status:       models.WorkflowInProgress,
			InitiatedBy:  actor.UserID,
			InitiatedAt:  now,
			AwardPackRef: req.AwardPackRef,
		},
		Levels: make([]models.ApprovalLevel, len(req.ApproverIDs)),
	}
	for i, approverId := range req.ApproverIDs {
		level := models.ApprovalLevel{
			ID:          uuid.New().String(),
			WorkflowID:  workflowId,
			LevelNumber: i + 1,
			ApproverID:  approverId,
			Status:      models.LevelWaiting,
		}
		if i < len(req.LevelDeadlines) {
			level.Deadline = req.LevelDeadlines[i]
		}
		if i == 0 {
			level.Status = models.LevelActive
			notifiedAt := now
			level.NotifiedAt = &notifiedAt
		}
		details.Levels[i] = level
	}
	return details
}

// SubmitApprovalDecision применяет решение активного утверждающего. Отклонение или возврат
// завершают весь процесс; одобрение последнего уровня присуждает тендер.
func (e *ApprovalWorkflowEngine) SubmitApprovalDecision(ctx context.Context, actor models.Actor, req SubmitDecisionRequest) (*SubmitDecisionResult, error) {
	if err := e.validateDecision(req); err != nil {
		return nil, err
	}
	now := e.now().UTC()

	var (
		result  *SubmitDecisionResult
		pending *notice
	)
	err := e.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		tender, err := repos.Tenders.GetTender(ctx, req.TenderID)
		if err != nil {
			return storeError(err, "tender not found")
		}
		workflow, err := repos.Approvals.GetWorkflowByTender(ctx, req.TenderID)
		if err != nil {
			return storeError(err, "no approval workflow exists for this tender")
		}
		if workflow.Status != models.WorkflowInProgress {
			return models.NewInvalidState(fmt.Sprintf("approval workflow is already %s and accepts no further decisions", workflow.Status))
		}
		levels, err := repos.Approvals.GetLevels(ctx, workflow.ID)
		if err != nil {
			return err
		}
		details := &WorkflowDetails{ApprovalWorkflow: *workflow, Levels: levels}

		active, err := singleActiveLevel(details)
		if err != nil {
			return err
		}
		if active.ApproverID != actor.UserID {
			return models.NewUnauthorized(unauthorizedDecisionMessage)
		}
		next := nextLevel(details, active.LevelNumber)
		if req.Decision == models.DecisionApprove && next == nil && tender.Status != models.EvaluationTender {
			return models.NewInvalidState(fmt.Sprintf("tender cannot be awarded from status %s", tender.Status))
		}

		before := *active
		decision := req.Decision
		active.Decision = &decision
		active.DecisionComment = trimmedComment(req.Comment)
		active.DecidedAt = &now

		tx := decisionTx{repos: repos, actor: actor, tender: tender, details: details, active: active, now: now}
		switch req.Decision {
		case models.DecisionApprove:
			active.Status = models.LevelApproved
			if next != nil {
				result, pending, err = tx.advance(ctx, next)
			} else {
				result, pending, err = tx.complete(ctx)
			}
		case models.DecisionReject:
			active.Status = models.LevelRejected
			result, pending, err = tx.terminate(ctx, models.WorkflowRejected, models.LevelRejected)
		case models.DecisionReturnForRevision:
			active.Status = models.LevelReturned
			result, pending, err = tx.terminate(ctx, models.WorkflowRevisionNeeded, models.LevelReturned)
		}
		if err != nil {
			return err
		}

		return NewAuditRecorder(repos.Audit, actor, now).Record(ctx,
			models.AuditApprovalDecision, models.EntityTender, req.TenderID,
			before, map[string]any{"level": active, "workflowStatus": details.Status})
	})
	if err != nil {
		return nil, storeError(err, "failed to submit approval decision")
	}

	e.logger.WithFields(logrus.Fields{
		"module":     "services",
		"funcName":   "SubmitApprovalDecision",
		"tenderId":   req.TenderID,
		"decision":   string(req.Decision),
		"workflowId": result.Workflow.ID,
		"status":     string(result.Workflow.Status),
	}).Info("approval decision recorded")

	result.NotificationSent = e.dispatch(ctx, pending)
	return result, nil
}

func (e *ApprovalWorkflowEngine) validateDecision(req SubmitDecisionRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	comment := trimmedComment(req.Comment)
	if comment == nil && req.Decision != models.DecisionApprove {
		return models.NewValidationFailure("a comment is required when rejecting or returning for revision")
	}
	if comment != nil && utf8.RuneCountInString(*comment) > e.policy.CommentMaxLength {
		return models.NewValidationFailure(fmt.Sprintf("comment must be at most %d characters", e.policy.CommentMaxLength))
	}
	return nil
}

func trimmedComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func singleActiveLevel(details *WorkflowDetails) (*models.ApprovalLevel, error) {
	var active *models.ApprovalLevel
	for i := range details.Levels {
		if details.Levels[i].Status != models.LevelActive {
			continue
		}
		if active != nil {
			return nil, models.NewInvalidState("approval workflow has more than one active level")
		}
		active = &details.Levels[i]
	}
	if active == nil {
		return nil, models.NewInvalidState("approval workflow has no active level")
	}
	return active, nil
}

func nextLevel(details *WorkflowDetails, levelNumber int) *models.ApprovalLevel {
	for i := range details.Levels {
		if details.Levels[i].LevelNumber == levelNumber+1 {
			return &details.Levels[i]
		}
	}
	return nil
}

// decisionTx - изменения одного решения внутри транзакции.
type decisionTx struct {
	repos   repository.Repositories
	actor   models.Actor
	tender  *models.Tender
	details *WorkflowDetails
	active  *models.ApprovalLevel
	now     time.Time
}

func (t decisionTx) saveActive(ctx context.Context) error {
	err := t.repos.Approvals.UpdateLevel(ctx, *t.active, models.LevelActive)
	return concurrentUpdate(err, "this level was already decided by another request, refresh and retry")
}

// advance передает процесс следующему уровню и готовит запрос его утверждающему.
func (t decisionTx) advance(ctx context.Context, next *models.ApprovalLevel) (*SubmitDecisionResult, *notice, error) {
	if err := t.saveActive(ctx); err != nil {
		return nil, nil, err
	}
	next.Status = models.LevelActive
	notifiedAt := t.now
	next.NotifiedAt = &notifiedAt
	if err := t.repos.Approvals.UpdateLevel(ctx, *next, models.LevelWaiting); err != nil {
		return nil, nil, concurrentUpdate(err, "the next level was changed by another request, refresh and retry")
	}

	approver, err := t.repos.Users.GetUser(ctx, next.ApproverID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}
	var pending *notice
	if approver != nil {
		initiatorName := t.initiatorName(ctx)
		msg := notification.ApprovalRequest{
			ApproverEmail:     approver.Email,
			ApproverFirstName: approver.FirstName,
			TenderTitle:       t.tender.Title,
			TenderReference:   t.tender.Reference,
			InitiatorName:     initiatorName,
			LevelNumber:       next.LevelNumber,
			Deadline:          next.Deadline,
		}
		pending = &notice{
			fields: noticeFields("SubmitApprovalDecision", t.tender.ID, next.LevelNumber),
			send: func(ctx context.Context, sender notification.Sender) error {
				return sender.SendApprovalRequest(ctx, msg)
			},
		}
	}

	return &SubmitDecisionResult{
		Success:  true,
		Workflow: t.details,
		Message:  fmt.Sprintf("Level %d approved. Level %d approver has been notified.", t.active.LevelNumber, next.LevelNumber),
	}, pending, nil
}

// complete закрывает процесс одобрением и переводит тендер в статус Awarded.
func (t decisionTx) complete(ctx context.Context) (*SubmitDecisionResult, *notice, error) {
	if err := t.saveActive(ctx); err != nil {
		return nil, nil, err
	}
	if err := t.closeWorkflow(ctx, models.WorkflowApproved); err != nil {
		return nil, nil, err
	}
	err := t.repos.Tenders.UpdateTenderStatus(ctx, t.tender.ID, models.EvaluationTender, models.AwardedTender)
	if err != nil {
		return nil, nil, concurrentUpdate(err, "tender status was changed by another request, refresh and retry")
	}
	err = NewAuditRecorder(t.repos.Audit, t.actor, t.now).Record(ctx, models.AuditTenderAwarded, models.EntityTender, t.tender.ID,
		map[string]any{"status": t.tender.Status},
		map[string]any{"status": models.AwardedTender, "workflowId": t.details.ID})
	if err != nil {
		return nil, nil, err
	}

	initiator, err := t.initiator(ctx)
	if err != nil {
		return nil, nil, err
	}
	var pending *notice
	if initiator != nil {
		msg := notification.Award{
			RecipientEmail:     initiator.Email,
			RecipientFirstName: initiator.FirstName,
			TenderTitle:        t.tender.Title,
			TenderReference:    t.tender.Reference,
		}
		pending = &notice{
			fields: noticeFields("SubmitApprovalDecision", t.tender.ID, t.active.LevelNumber),
			send: func(ctx context.Context, sender notification.Sender) error {
				return sender.SendAwardNotification(ctx, msg)
			},
		}
	}

	return &SubmitDecisionResult{
		Success:            true,
		Workflow:           t.details,
		Message:            "All levels approved. The tender has been awarded.",
		IsWorkflowComplete: true,
	}, pending, nil
}

// terminate завершает процесс отклонением или возвратом; ожидающие уровни закрываются тем же статусом.
func (t decisionTx) terminate(ctx context.Context, status models.WorkflowStatus, waitingTo models.LevelStatus) (*SubmitDecisionResult, *notice, error) {
	if err := t.saveActive(ctx); err != nil {
		return nil, nil, err
	}
	for i := range t.details.Levels {
		level := &t.details.Levels[i]
		if level.Status != models.LevelWaiting {
			continue
		}
		level.Status = waitingTo
		if err := t.repos.Approvals.UpdateLevel(ctx, *level, models.LevelWaiting); err != nil {
			return nil, nil, concurrentUpdate(err, "a waiting level was changed by another request, refresh and retry")
		}
	}
	if err := t.closeWorkflow(ctx, status); err != nil {
		return nil, nil, err
	}

	initiator, err := t.initiator(ctx)
	if err != nil {
		return nil, nil, err
	}
	decision := *t.active.Decision
	var pending *notice
	if initiator != nil {
		msg := notification.ApprovalDecision{
			RecipientEmail:     initiator.Email,
			RecipientFirstName: initiator.FirstName,
			TenderTitle:        t.tender.Title,
			TenderReference:    t.tender.Reference,
			DecisionLabel:      decision.Label(),
			LevelNumber:        t.active.LevelNumber,
		}
		if t.active.DecisionComment != nil {
			msg.Comment = *t.active.DecisionComment
		}
		pending = &notice{
			fields: noticeFields("SubmitApprovalDecision", t.tender.ID, t.active.LevelNumber),
			send: func(ctx context.Context, sender notification.Sender) error {
				return sender.SendApprovalDecision(ctx, msg)
			},
		}
	}

	return &SubmitDecisionResult{
		Success:            true,
		Workflow:           t.details,
		Message:            fmt.Sprintf("Level %d %s. The approval workflow is closed.", t.active.LevelNumber, strings.ToLower(decision.Label())),
		IsWorkflowComplete: true,
	}, pending, nil
}

func (t decisionTx) closeWorkflow(ctx context.Context, status models.WorkflowStatus) error {
	t.details.Status = status
	completedAt := t.now
	t.details.CompletedAt = &completedAt
	err := t.repos.Approvals.UpdateWorkflow(ctx, t.details.ApprovalWorkflow, models.WorkflowInProgress)
	return concurrentUpdate(err, "approval workflow was changed by another request, refresh and retry")
}

// initiator возвращает инициатора процесса или nil, если пользователь удален.
func (t decisionTx) initiator(ctx context.Context) (*models.User, error) {
	u, err := t.repos.Users.GetUser(ctx, t.details.InitiatedBy)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (t decisionTx) initiatorName(ctx context.Context) string {
	u, err := t.initiator(ctx)
	if err != nil || u == nil {
		return ""
	}
	return u.FullName()
}

func noticeFields(funcName, tenderId string, level int) logrus.Fields {
	return logrus.Fields{
		"module":   "services",
		"funcName": funcName,
		"tenderId": tenderId,
		"level":    level,
	}
}

func (e *ApprovalWorkflowEngine) dispatch(ctx context.Context, pending *notice) bool {
	if pending == nil || e.notifier == nil {
		return false
	}
	return deliver(ctx, e.logger, e.notifyTimeout, pending.fields, func(ctx context.Context) error {
		return pending.send(ctx, e.notifier)
	})
}

// GetApprovalWorkflow возвращает текущий процесс утверждения тендера.
func (e *ApprovalWorkflowEngine) GetApprovalWorkflow(ctx context.Context, tenderId string) (*WorkflowDetails, error) {
	var details *WorkflowDetails
	err := e.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Tenders.GetTender(ctx, tenderId); err != nil {
			return storeError(err, "tender not found")
		}
		workflow, err := repos.Approvals.GetWorkflowByTender(ctx, tenderId)
		if err != nil {
			return storeError(err, "no approval workflow exists for this tender")
		}
		levels, err := repos.Approvals.GetLevels(ctx, workflow.ID)
		if err != nil {
			return err
		}
		details = &WorkflowDetails{ApprovalWorkflow: *workflow, Levels: levels}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to load approval workflow")
	}
	return details, nil
}

// ListPendingApprovals возвращает активные уровни, назначенные пользователю.
func (e *ApprovalWorkflowEngine) ListPendingApprovals(ctx context.Context, actor models.Actor) ([]PendingApproval, error) {
	pending := []PendingApproval{}
	err := e.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		levels, err := repos.Approvals.GetActiveLevelsForApprover(ctx, actor.UserID)
		if err != nil {
			return err
		}
		for _, level := range levels {
			workflow, err := repos.Approvals.GetWorkflow(ctx, level.WorkflowID)
			if err != nil {
				return err
			}
			if workflow.Status != models.WorkflowInProgress {
				continue
			}
			tender, err := repos.Tenders.GetTender(ctx, workflow.TenderID)
			if err != nil {
				return err
			}
			pending = append(pending, PendingApproval{
				ApprovalLevel:   level,
				TenderID:        tender.ID,
				TenderTitle:     tender.Title,
				TenderReference: tender.Reference,
			})
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to load pending approvals")
	}
	return pending, nil
}
