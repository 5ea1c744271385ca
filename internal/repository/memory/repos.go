package memory

import (
	"context"
	"sort"
	"time"

	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/repository"

	"github.com/shopspring/decimal"
)

type tenderRepo struct{ st *state }

func (r *tenderRepo) GetTender(_ context.Context, tenderId string) (*models.Tender, error) {
	t, ok := r.st.tenders[tenderId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *tenderRepo) UpdateTenderStatus(_ context.Context, tenderId string, from, to models.TenderStatus) error {
	t, ok := r.st.tenders[tenderId]
	if !ok || t.Status != from {
		return repository.ErrConcurrentUpdate
	}
	t.Status = to
	t.Version++
	t.UpdatedAt = time.Now().UTC()
	r.st.tenders[tenderId] = t
	return nil
}

type userRepo struct{ st *state }

func (r *userRepo) GetUser(_ context.Context, userId string) (*models.User, error) {
	u, ok := r.st.users[userId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetUsers(_ context.Context, userIds []string) ([]models.User, error) {
	var users []models.User
	for _, id := range userIds {
		if u, ok := r.st.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

type bidRepo struct{ st *state }

func (r *bidRepo) GetTenderSubmissions(_ context.Context, tenderId string) ([]models.BidSubmission, error) {
	var bids []models.BidSubmission
	for _, b := range r.st.submissions {
		if b.TenderID == tenderId {
			bids = append(bids, b)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].BidderName < bids[j].BidderName })
	return bids, nil
}

func (r *bidRepo) GetTenderPricing(_ context.Context, tenderId string) ([]models.BidPricing, error) {
	var pricing []models.BidPricing
	for _, p := range r.st.pricing {
		if b, ok := r.st.submissions[p.SubmissionID]; ok && b.TenderID == tenderId {
			pricing = append(pricing, p)
		}
	}
	return pricing, nil
}

func (r *bidRepo) UpdateSubmissionStatus(_ context.Context, submissionId string, from, to models.BidStatus, at time.Time) error {
	b, ok := r.st.submissions[submissionId]
	if !ok || b.Status != from {
		return repository.ErrConcurrentUpdate
	}
	b.Status = to
	if to == models.OpenedBid {
		b.OpenedAt = &at
	}
	r.st.submissions[submissionId] = b
	return nil
}

type scoreRepo struct{ st *state }

func (r *scoreRepo) SaveCommercialScores(_ context.Context, scores []models.CommercialScore) error {
	r.st.commercial = append(r.st.commercial, scores...)
	return nil
}

func (r *scoreRepo) GetLatestCommercialScores(_ context.Context, tenderId string) ([]models.CommercialScore, error) {
	var latest time.Time
	for _, s := range r.st.commercial {
		if s.TenderID == tenderId && s.CalculatedAt.After(latest) {
			latest = s.CalculatedAt
		}
	}
	var scores []models.CommercialScore
	for _, s := range r.st.commercial {
		if s.TenderID == tenderId && s.CalculatedAt.Equal(latest) {
			scores = append(scores, s)
		}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Rank != scores[j].Rank {
			return scores[i].Rank < scores[j].Rank
		}
		return scores[i].BidderName < scores[j].BidderName
	})
	return scores, nil
}

func (r *scoreRepo) GetTechnicalAverages(_ context.Context, tenderId string) ([]models.TechnicalAverage, error) {
	sums := map[string]decimal.Decimal{}
	counts := map[string]int64{}
	var order []string
	for _, ts := range r.st.technical {
		if ts.TenderID != tenderId || ts.IsDraft {
			continue
		}
		if _, seen := counts[ts.BidderID]; !seen {
			order = append(order, ts.BidderID)
		}
		sums[ts.BidderID] = sums[ts.BidderID].Add(ts.Score)
		counts[ts.BidderID]++
	}
	averages := make([]models.TechnicalAverage, 0, len(order))
	for _, bidderId := range order {
		averages = append(averages, models.TechnicalAverage{
			BidderID: bidderId,
			Average:  sums[bidderId].Div(decimal.NewFromInt(counts[bidderId])),
		})
	}
	return averages, nil
}

func sameWeights(c models.CombinedScorecard, tenderId string, techWeight, commWeight decimal.Decimal) bool {
	return c.TenderID == tenderId && c.TechnicalWeight.Equal(techWeight) && c.CommercialWeight.Equal(commWeight)
}

func (r *scoreRepo) ReplaceCombinedScorecards(_ context.Context, tenderId string, techWeight, commWeight decimal.Decimal, cards []models.CombinedScorecard) error {
	kept := r.st.combined[:0:0]
	for _, c := range r.st.combined {
		if !sameWeights(c, tenderId, techWeight, commWeight) {
			kept = append(kept, c)
		}
	}
	r.st.combined = append(kept, cards...)
	return nil
}

func (r *scoreRepo) GetCombinedScorecards(_ context.Context, tenderId string, techWeight, commWeight decimal.Decimal) ([]models.CombinedScorecard, error) {
	var cards []models.CombinedScorecard
	for _, c := range r.st.combined {
		if sameWeights(c, tenderId, techWeight, commWeight) {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].FinalRank != cards[j].FinalRank {
			return cards[i].FinalRank < cards[j].FinalRank
		}
		return cards[i].BidderName < cards[j].BidderName
	})
	return cards, nil
}

type approvalRepo struct{ st *state }

func (r *approvalRepo) GetWorkflow(_ context.Context, workflowId string) (*models.ApprovalWorkflow, error) {
	wf, ok := r.st.workflows[workflowId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &wf, nil
}

func (r *approvalRepo) GetWorkflowByTender(_ context.Context, tenderId string) (*models.ApprovalWorkflow, error) {
	for _, wf := range r.st.workflows {
		if wf.TenderID == tenderId {
			return &wf, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *approvalRepo) GetLevels(_ context.Context, workflowId string) ([]models.ApprovalLevel, error) {
	var levels []models.ApprovalLevel
	for _, l := range r.st.levels {
		if l.WorkflowID == workflowId {
			levels = append(levels, l)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].LevelNumber < levels[j].LevelNumber })
	return levels, nil
}

func (r *approvalRepo) CreateWorkflow(_ context.Context, workflow models.ApprovalWorkflow, levels []models.ApprovalLevel) error {
	r.st.workflows[workflow.ID] = workflow
	for _, l := range levels {
		r.st.levels[l.ID] = l
	}
	return nil
}

func (r *approvalRepo) DeleteWorkflow(_ context.Context, workflowId string) error {
	for id, l := range r.st.levels {
		if l.WorkflowID == workflowId {
			delete(r.st.levels, id)
		}
	}
	delete(r.st.workflows, workflowId)
	return nil
}

func (r *approvalRepo) UpdateWorkflow(_ context.Context, workflow models.ApprovalWorkflow, expected models.WorkflowStatus) error {
	current, ok := r.st.workflows[workflow.ID]
	if !ok || current.Status != expected {
		return repository.ErrConcurrentUpdate
	}
	current.Status = workflow.Status
	current.CompletedAt = workflow.CompletedAt
	r.st.workflows[workflow.ID] = current
	return nil
}

func (r *approvalRepo) UpdateLevel(_ context.Context, level models.ApprovalLevel, expected models.LevelStatus) error {
	current, ok := r.st.levels[level.ID]
	if !ok || current.Status != expected {
		return repository.ErrConcurrentUpdate
	}
	current.Status = level.Status
	current.Decision = level.Decision
	current.DecisionComment = level.DecisionComment
	current.DecidedAt = level.DecidedAt
	current.NotifiedAt = level.NotifiedAt
	r.st.levels[level.ID] = current
	return nil
}

func (r *approvalRepo) GetActiveLevelsForApprover(_ context.Context, approverId string) ([]models.ApprovalLevel, error) {
	var levels []models.ApprovalLevel
	for _, l := range r.st.levels {
		if l.ApproverID == approverId && l.Status == models.LevelActive {
			levels = append(levels, l)
		}
	}
	sort.Slice(levels, func(i, j int) bool {
		a, b := levels[i].Deadline, levels[j].Deadline
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return levels, nil
}

type auditRepo struct{ st *state }

func (r *auditRepo) Append(_ context.Context, entry models.AuditLog) error {
	r.st.audit = append(r.st.audit, entry)
	return nil
}

func (r *auditRepo) GetEntityTrail(_ context.Context, entityType, entityId string) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	for i := len(r.st.audit) - 1; i >= 0; i-- {
		e := r.st.audit[i]
		if e.EntityType == entityType && e.EntityID == entityId {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	return entries, nil
}
