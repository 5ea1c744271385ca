package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/repository"
	"github.com/senyabanana/tender-evaluation/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultApprovers = []string{"approver-1", "approver-2", "approver-3"}

func newEngine(store *memory.Store, sender *recordingSender) *ApprovalWorkflowEngine {
	engine := NewApprovalWorkflowEngine(store, sender, DefaultApprovalPolicy(), time.Second, testLogger())
	engine.now = func() time.Time { return fixedNow }
	return engine
}

func initiate(t *testing.T, engine *ApprovalWorkflowEngine, store *memory.Store, approvers ...string) *InitiateApprovalResult {
	t.Helper()
	if len(approvers) == 0 {
		approvers = defaultApprovers
	}
	result, err := engine.InitiateApproval(context.Background(), actorOf(store, "initiator"), InitiateApprovalRequest{
		TenderID:    testTenderID,
		ApproverIDs: approvers,
	})
	require.NoError(t, err)
	return result
}

func decide(engine *ApprovalWorkflowEngine, store *memory.Store, userId string, decision models.Decision, comment string) (*SubmitDecisionResult, error) {
	req := SubmitDecisionRequest{TenderID: testTenderID, Decision: decision}
	if comment != "" {
		req.Comment = &comment
	}
	return engine.SubmitApprovalDecision(context.Background(), actorOf(store, userId), req)
}

func levelStatuses(details *WorkflowDetails) []models.LevelStatus {
	statuses := make([]models.LevelStatus, len(details.Levels))
	for i, l := range details.Levels {
		statuses[i] = l.Status
	}
	return statuses
}

func TestInitiateApproval_CreatesFirstActiveLevel(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	sender := &recordingSender{}
	engine := newEngine(store, sender)
	deadline := fixedNow.Add(48 * time.Hour)

	result, err := engine.InitiateApproval(context.Background(), actorOf(store, "initiator"), InitiateApprovalRequest{
		TenderID:       testTenderID,
		ApproverIDs:    defaultApprovers,
		LevelDeadlines: []*time.Time{&deadline, nil, nil},
		AwardPackRef:   strPtr("award-pack-7"),
	})
	require.NoError(t, err)

	assert.True(t, result.Level1NotificationSent)
	assert.Equal(t, result.WorkflowID, result.Workflow.ID)
	assert.Equal(t, models.WorkflowInProgress, result.Workflow.Status)
	assert.Equal(t, "initiator", result.Workflow.InitiatedBy)
	assert.Equal(t, "award-pack-7", *result.Workflow.AwardPackRef)
	assert.Nil(t, result.Workflow.CompletedAt)
	assert.Equal(t, []models.LevelStatus{models.LevelActive, models.LevelWaiting, models.LevelWaiting}, levelStatuses(result.Workflow))
	assert.NotNil(t, result.Workflow.Levels[0].NotifiedAt)
	assert.Nil(t, result.Workflow.Levels[1].NotifiedAt)
	assert.True(t, result.Workflow.Levels[0].Deadline.Equal(deadline))

	require.Len(t, sender.requests, 1)
	assert.Equal(t, "a1@tenders.local", sender.requests[0].ApproverEmail)
	assert.Equal(t, "Anton", sender.requests[0].ApproverFirstName)
	assert.Equal(t, "Irina Petrova", sender.requests[0].InitiatorName)
	assert.Equal(t, "TND-2026-001", sender.requests[0].TenderReference)
	assert.Equal(t, 1, sender.requests[0].LevelNumber)

	stored, err := engine.GetApprovalWorkflow(context.Background(), testTenderID)
	require.NoError(t, err)
	assert.Equal(t, result.WorkflowID, stored.ID)

	trail := loadTrail(t, store)
	require.Len(t, trail, 1)
	assert.Equal(t, models.AuditApprovalInitiated, trail[0].Action)
	assert.Nil(t, trail[0].OldValues)
}

func TestInitiateApproval_ValidationFailures(t *testing.T) {
	past := fixedNow.Add(-time.Hour)
	cases := []struct {
		name string
		req  InitiateApprovalRequest
		kind models.ErrorKind
	}{
		{"too few approvers", InitiateApprovalRequest{TenderID: testTenderID, ApproverIDs: []string{"approver-1", "approver-2"}}, models.KindValidationFailure},
		{"no approvers", InitiateApprovalRequest{TenderID: testTenderID}, models.KindValidationFailure},
		{"duplicate approvers", InitiateApprovalRequest{TenderID: testTenderID, ApproverIDs: []string{"approver-1", "approver-1", "approver-3"}}, models.KindValidationFailure},
		{"blank approver", InitiateApprovalRequest{TenderID: testTenderID, ApproverIDs: []string{"approver-1", "", "approver-3"}}, models.KindValidationFailure},
		{"deadline in the past", InitiateApprovalRequest{TenderID: testTenderID, ApproverIDs: defaultApprovers, LevelDeadlines: []*time.Time{nil, &past, nil}}, models.KindValidationFailure},
		{"deadline count mismatch", InitiateApprovalRequest{TenderID: testTenderID, ApproverIDs: defaultApprovers, LevelDeadlines: []*time.Time{nil}}, models.KindValidationFailure},
		{"unknown approver", InitiateApprovalRequest{TenderID: testTenderID, ApproverIDs: []string{"approver-1", "ghost", "approver-3"}}, models.KindNotFound},
		{"inactive approver", InitiateApprovalRequest{TenderID: testTenderID, ApproverIDs: []string{"approver-1", "retired", "approver-3"}}, models.KindValidationFailure},
		{"unknown tender", InitiateApprovalRequest{TenderID: "missing", ApproverIDs: defaultApprovers}, models.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(models.EvaluationTender)
			sender := &recordingSender{}
			_, err := newEngine(store, sender).InitiateApproval(context.Background(), actorOf(store, "initiator"), tc.req)
			requireKind(t, err, tc.kind)
			assert.Zero(t, sender.total())
			assert.Empty(t, loadTrail(t, store))
		})
	}
}

func TestInitiateApproval_InvalidStates(t *testing.T) {
	t.Run("tender not in evaluation", func(t *testing.T) {
		store := newTestStore(models.PublishedTender)
		_, err := newEngine(store, &recordingSender{}).InitiateApproval(context.Background(), actorOf(store, "initiator"),
			InitiateApprovalRequest{TenderID: testTenderID, ApproverIDs: defaultApprovers})
		requireKind(t, err, models.KindInvalidState)
	})
	t.Run("workflow already in progress", func(t *testing.T) {
		store := newTestStore(models.EvaluationTender)
		engine := newEngine(store, &recordingSender{})
		first := initiate(t, engine, store)

		_, err := engine.InitiateApproval(context.Background(), actorOf(store, "initiator"),
			InitiateApprovalRequest{TenderID: testTenderID, ApproverIDs: defaultApprovers})
		requireKind(t, err, models.KindInvalidState)

		stored, err := engine.GetApprovalWorkflow(context.Background(), testTenderID)
		require.NoError(t, err)
		assert.Equal(t, first.WorkflowID, stored.ID)
	})
}

func TestInitiateApproval_ConfigurableLevelCount(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	engine := newEngine(store, &recordingSender{})
	engine.policy.Levels = 2

	result := initiate(t, engine, store, "approver-1", "approver-2")
	assert.Len(t, result.Workflow.Levels, 2)

	_, err := decide(engine, store, "approver-1", models.DecisionApprove, "")
	require.NoError(t, err)
	done, err := decide(engine, store, "approver-2", models.DecisionApprove, "")
	require.NoError(t, err)
	assert.True(t, done.IsWorkflowComplete)
}

func TestInitiateApproval_NotificationFailureDoesNotRollBack(t *testing.T) {
	for _, sender := range []*recordingSender{{fail: true}, {panics: true}} {
		store := newTestStore(models.EvaluationTender)
		engine := newEngine(store, sender)

		result := initiate(t, engine, store)
		assert.False(t, result.Level1NotificationSent)

		stored, err := engine.GetApprovalWorkflow(context.Background(), testTenderID)
		require.NoError(t, err)
		assert.Equal(t, models.WorkflowInProgress, stored.Status)
	}
}

func TestSubmitApprovalDecision_ApproveAdvancesToNextLevel(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	sender := &recordingSender{}
	engine := newEngine(store, sender)
	initiate(t, engine, store)
	sender.reset()

	result, err := decide(engine, store, "approver-1", models.DecisionApprove, "")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, result.IsWorkflowComplete)
	assert.True(t, result.NotificationSent)
	assert.Equal(t, models.WorkflowInProgress, result.Workflow.Status)
	assert.Equal(t, []models.LevelStatus{models.LevelApproved, models.LevelActive, models.LevelWaiting}, levelStatuses(result.Workflow))
	assert.NotNil(t, result.Workflow.Levels[0].DecidedAt)
	assert.NotNil(t, result.Workflow.Levels[1].NotifiedAt)
	assert.Nil(t, result.Workflow.Levels[2].NotifiedAt)

	assert.Equal(t, 1, sender.total())
	require.Len(t, sender.requests, 1)
	assert.Equal(t, "a2@tenders.local", sender.requests[0].ApproverEmail)
	assert.Equal(t, 2, sender.requests[0].LevelNumber)
	assert.Equal(t, "Irina Petrova", sender.requests[0].InitiatorName)

	stored, err := engine.GetApprovalWorkflow(context.Background(), testTenderID)
	require.NoError(t, err)
	assert.Equal(t, levelStatuses(result.Workflow), levelStatuses(stored))
	assert.Equal(t, models.EvaluationTender, loadTender(t, store).Status)
}

func TestSubmitApprovalDecision_RejectTerminatesWorkflow(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	sender := &recordingSender{}
	engine := newEngine(store, sender)
	initiate(t, engine, store)
	_, err := decide(engine, store, "approver-1", models.DecisionApprove, "")
	require.NoError(t, err)
	sender.reset()

	result, err := decide(engine, store, "approver-2", models.DecisionReject, "Price breakdown is incomplete")
	require.NoError(t, err)

	assert.True(t, result.IsWorkflowComplete)
	assert.Equal(t, models.WorkflowRejected, result.Workflow.Status)
	require.NotNil(t, result.Workflow.CompletedAt)
	assert.Equal(t, []models.LevelStatus{models.LevelApproved, models.LevelRejected, models.LevelRejected}, levelStatuses(result.Workflow))
	assert.Equal(t, "Price breakdown is incomplete", *result.Workflow.Levels[1].DecisionComment)
	assert.Nil(t, result.Workflow.Levels[2].Decision)

	require.Len(t, sender.decisions, 1)
	assert.Equal(t, "initiator@tenders.local", sender.decisions[0].RecipientEmail)
	assert.Equal(t, "Rejected", sender.decisions[0].DecisionLabel)
	assert.Equal(t, 2, sender.decisions[0].LevelNumber)
	assert.Equal(t, "Price breakdown is incomplete", sender.decisions[0].Comment)

	_, err = decide(engine, store, "approver-3", models.DecisionApprove, "")
	requireKind(t, err, models.KindInvalidState)
	_, err = decide(engine, store, "approver-2", models.DecisionApprove, "")
	requireKind(t, err, models.KindInvalidState)
	assert.Equal(t, models.EvaluationTender, loadTender(t, store).Status)
}

func TestSubmitApprovalDecision_ReturnForRevision(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	sender := &recordingSender{}
	engine := newEngine(store, sender)
	initiate(t, engine, store)

	result, err := decide(engine, store, "approver-1", models.DecisionReturnForRevision, "Attach the evaluation minutes")
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowRevisionNeeded, result.Workflow.Status)
	assert.NotNil(t, result.Workflow.CompletedAt)
	assert.Equal(t, []models.LevelStatus{models.LevelReturned, models.LevelReturned, models.LevelReturned}, levelStatuses(result.Workflow))
	require.Len(t, sender.decisions, 1)
	assert.Equal(t, "Returned for revision", sender.decisions[0].DecisionLabel)
}

func TestSubmitApprovalDecision_FinalApprovalAwardsTender(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	sender := &recordingSender{}
	engine := newEngine(store, sender)
	initiate(t, engine, store)

	for _, approver := range defaultApprovers[:2] {
		_, err := decide(engine, store, approver, models.DecisionApprove, "")
		require.NoError(t, err)
	}
	sender.reset()

	result, err := decide(engine, store, "approver-3", models.DecisionApprove, "Agreed with the panel")
	require.NoError(t, err)

	assert.True(t, result.IsWorkflowComplete)
	assert.True(t, result.NotificationSent)
	assert.Equal(t, models.WorkflowApproved, result.Workflow.Status)
	require.NotNil(t, result.Workflow.CompletedAt)
	assert.True(t, result.Workflow.CompletedAt.Equal(fixedNow))
	assert.Equal(t, []models.LevelStatus{models.LevelApproved, models.LevelApproved, models.LevelApproved}, levelStatuses(result.Workflow))

	tender := loadTender(t, store)
	assert.Equal(t, models.AwardedTender, tender.Status)
	assert.Equal(t, int32(2), tender.Version)

	require.Len(t, sender.awards, 1)
	assert.Equal(t, "initiator@tenders.local", sender.awards[0].RecipientEmail)
	assert.Equal(t, "Road resurfacing", sender.awards[0].TenderTitle)

	trail := loadTrail(t, store)
	actions := make([]string, len(trail))
	for i, e := range trail {
		actions[i] = e.Action
	}
	assert.Contains(t, actions, models.AuditTenderAwarded)
	assert.Equal(t, 3, strings.Count(strings.Join(actions, ","), models.AuditApprovalDecision))
}

func TestSubmitApprovalDecision_UnauthorizedLeavesStateUntouched(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	sender := &recordingSender{}
	engine := newEngine(store, sender)
	initiate(t, engine, store)
	sender.reset()
	before, err := engine.GetApprovalWorkflow(context.Background(), testTenderID)
	require.NoError(t, err)
	trailBefore := loadTrail(t, store)

	for _, userId := range []string{"approver-2", "approver-3", "initiator", "stranger"} {
		_, err := decide(engine, store, userId, models.DecisionApprove, "")
		resp := requireKind(t, err, models.KindUnauthorized)
		assert.Equal(t, "Cannot assign decision: you are not authorized to approve at the current level", resp.Message)
	}

	after, err := engine.GetApprovalWorkflow(context.Background(), testTenderID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Zero(t, sender.total())
	assert.Len(t, loadTrail(t, store), len(trailBefore))
}

func TestSubmitApprovalDecision_InputValidation(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	engine := newEngine(store, &recordingSender{})
	initiate(t, engine, store)

	_, err := decide(engine, store, "approver-1", models.DecisionReject, "")
	requireKind(t, err, models.KindValidationFailure)
	_, err = decide(engine, store, "approver-1", models.DecisionReturnForRevision, "   ")
	requireKind(t, err, models.KindValidationFailure)
	_, err = decide(engine, store, "approver-1", models.DecisionApprove, strings.Repeat("x", 2001))
	requireKind(t, err, models.KindValidationFailure)
	_, err = decide(engine, store, "approver-1", models.Decision("Escalate"), "")
	requireKind(t, err, models.KindValidationFailure)

	result, err := decide(engine, store, "approver-1", models.DecisionApprove, strings.Repeat("x", 2000))
	require.NoError(t, err)
	assert.Len(t, *result.Workflow.Levels[0].DecisionComment, 2000)
}

func TestSubmitApprovalDecision_NoWorkflow(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	_, err := decide(newEngine(store, &recordingSender{}), store, "approver-1", models.DecisionApprove, "")
	requireKind(t, err, models.KindNotFound)
}

func TestSubmitApprovalDecision_NotificationFailureStillCommits(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	sender := &recordingSender{}
	engine := newEngine(store, sender)
	initiate(t, engine, store)
	sender.fail = true

	result, err := decide(engine, store, "approver-1", models.DecisionApprove, "")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.NotificationSent)

	stored, err := engine.GetApprovalWorkflow(context.Background(), testTenderID)
	require.NoError(t, err)
	assert.Equal(t, models.LevelActive, stored.Levels[1].Status)
}

func TestReinitiateApproval_ChangedApproversRequireReason(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	sender := &recordingSender{}
	engine := newEngine(store, sender)
	first := initiate(t, engine, store)
	_, err := decide(engine, store, "approver-1", models.DecisionReject, "Wrong award pack attached")
	require.NoError(t, err)

	changed := []string{"approver-1", "approver-4", "approver-3"}
	req := InitiateApprovalRequest{TenderID: testTenderID, ApproverIDs: changed}
	_, err = engine.InitiateApproval(context.Background(), actorOf(store, "initiator"), req)
	requireKind(t, err, models.KindValidationFailure)

	req.ChangeReason = strPtr("too short")
	_, err = engine.InitiateApproval(context.Background(), actorOf(store, "initiator"), req)
	requireKind(t, err, models.KindValidationFailure)

	req.ChangeReason = strPtr("         padded   ")
	_, err = engine.InitiateApproval(context.Background(), actorOf(store, "initiator"), req)
	requireKind(t, err, models.KindValidationFailure)

	stored, err := engine.GetApprovalWorkflow(context.Background(), testTenderID)
	require.NoError(t, err)
	assert.Equal(t, first.WorkflowID, stored.ID)
	assert.Equal(t, models.WorkflowRejected, stored.Status)

	sender.reset()
	req.ChangeReason = strPtr("Boris is on leave until May")
	result, err := engine.InitiateApproval(context.Background(), actorOf(store, "initiator"), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.WorkflowID, result.WorkflowID)
	assert.Equal(t, []models.LevelStatus{models.LevelActive, models.LevelWaiting, models.LevelWaiting}, levelStatuses(result.Workflow))
	assert.Equal(t, "approver-4", result.Workflow.Levels[1].ApproverID)
	assert.True(t, result.Level1NotificationSent)

	require.NoError(t, store.Do(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		_, err := repos.Approvals.GetWorkflow(ctx, first.WorkflowID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		levels, err := repos.Approvals.GetLevels(ctx, first.WorkflowID)
		assert.Empty(t, levels)
		return err
	}))

	var changeEntry *models.AuditLog
	trail := loadTrail(t, store)
	for i := range trail {
		if trail[i].Action == models.AuditApproversChanged {
			changeEntry = &trail[i]
		}
	}
	require.NotNil(t, changeEntry)
	assert.Equal(t, "initiator", changeEntry.UserID)

	var oldValues struct {
		ApproverIDs []string `json:"approverIds"`
	}
	var newValues struct {
		ApproverIDs []string `json:"approverIds"`
		Reason      string   `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(changeEntry.OldValues, &oldValues))
	require.NoError(t, json.Unmarshal(changeEntry.NewValues, &newValues))
	assert.Equal(t, defaultApprovers, oldValues.ApproverIDs)
	assert.Equal(t, changed, newValues.ApproverIDs)
	assert.Equal(t, "Boris is on leave until May", newValues.Reason)
	assert.Equal(t, models.AuditApprovalReinitiated, trail[0].Action)
}

func TestReinitiateApproval_SameApproversNeedNoReason(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	engine := newEngine(store, &recordingSender{})
	initiate(t, engine, store)
	_, err := decide(engine, store, "approver-1", models.DecisionReturnForRevision, "Clarify the retention terms")
	require.NoError(t, err)

	result := initiate(t, engine, store)
	assert.Equal(t, models.WorkflowInProgress, result.Workflow.Status)

	for _, entry := range loadTrail(t, store) {
		assert.NotEqual(t, models.AuditApproversChanged, entry.Action)
	}
}

func TestReinitiateApproval_ConfigurableReasonLength(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	engine := newEngine(store, &recordingSender{})
	engine.policy.ChangeReasonMinLength = 3
	initiate(t, engine, store)
	_, err := decide(engine, store, "approver-1", models.DecisionReject, "No")
	require.NoError(t, err)

	_, err = engine.InitiateApproval(context.Background(), actorOf(store, "initiator"), InitiateApprovalRequest{
		TenderID:     testTenderID,
		ApproverIDs:  []string{"approver-4", "approver-2", "approver-3"},
		ChangeReason: strPtr("Ill"),
	})
	require.NoError(t, err)
}

func TestReinitiateApproval_ApprovedWorkflowIsFinal(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	engine := newEngine(store, &recordingSender{})
	initiate(t, engine, store)
	for _, approver := range defaultApprovers {
		_, err := decide(engine, store, approver, models.DecisionApprove, "")
		require.NoError(t, err)
	}

	_, err := engine.InitiateApproval(context.Background(), actorOf(store, "initiator"),
		InitiateApprovalRequest{TenderID: testTenderID, ApproverIDs: defaultApprovers})
	requireKind(t, err, models.KindInvalidState)
}

func TestListPendingApprovals(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	engine := newEngine(store, &recordingSender{})
	initiate(t, engine, store)

	pending, err := engine.ListPendingApprovals(context.Background(), actorOf(store, "approver-1"))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, testTenderID, pending[0].TenderID)
	assert.Equal(t, "Road resurfacing", pending[0].TenderTitle)
	assert.Equal(t, 1, pending[0].LevelNumber)

	_, err = decide(engine, store, "approver-1", models.DecisionApprove, "")
	require.NoError(t, err)

	pending, err = engine.ListPendingApprovals(context.Background(), actorOf(store, "approver-1"))
	require.NoError(t, err)
	assert.Empty(t, pending)
	pending, err = engine.ListPendingApprovals(context.Background(), actorOf(store, "approver-2"))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].LevelNumber)
}

func TestGetApprovalWorkflow_NotFound(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	engine := newEngine(store, &recordingSender{})

	_, err := engine.GetApprovalWorkflow(context.Background(), testTenderID)
	requireKind(t, err, models.KindNotFound)
	_, err = engine.GetApprovalWorkflow(context.Background(), "missing")
	requireKind(t, err, models.KindNotFound)
}
