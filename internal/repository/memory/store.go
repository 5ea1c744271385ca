// Package memory implements the repository interfaces in process memory.
// Transactions are serialized and applied copy-on-commit: a failed unit of work leaves no trace.
package memory

import (
	"context"
	"sync"

	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/repository"
)

type state struct {
	tenders     map[string]models.Tender
	users       map[string]models.User
	submissions map[string]models.BidSubmission
	pricing     []models.BidPricing
	technical   []models.TechnicalScore
	commercial  []models.CommercialScore
	combined    []models.CombinedScorecard
	workflows   map[string]models.ApprovalWorkflow
	levels      map[string]models.ApprovalLevel
	audit       []models.AuditLog
}

func newState() *state {
	return &state{
		tenders:     map[string]models.Tender{},
		users:       map[string]models.User{},
		submissions: map[string]models.BidSubmission{},
		workflows:   map[string]models.ApprovalWorkflow{},
		levels:      map[string]models.ApprovalLevel{},
	}
}

func (s *state) clone() *state {
	c := &state{
		tenders:     make(map[string]models.Tender, len(s.tenders)),
		users:       make(map[string]models.User, len(s.users)),
		submissions: make(map[string]models.BidSubmission, len(s.submissions)),
		pricing:     append([]models.BidPricing(nil), s.pricing...),
		technical:   append([]models.TechnicalScore(nil), s.technical...),
		commercial:  append([]models.CommercialScore(nil), s.commercial...),
		combined:    append([]models.CombinedScorecard(nil), s.combined...),
		workflows:   make(map[string]models.ApprovalWorkflow, len(s.workflows)),
		levels:      make(map[string]models.ApprovalLevel, len(s.levels)),
		audit:       append([]models.AuditLog(nil), s.audit...),
	}
	for k, v := range s.tenders {
		c.tenders[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.submissions {
		c.submissions[k] = v
	}
	for k, v := range s.workflows {
		c.workflows[k] = v
	}
	for k, v := range s.levels {
		c.levels[k] = v
	}
	return c
}

// Store - хранилище в памяти с транзакциями копированием при фиксации.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore создает пустое хранилище.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Do выполняет fn над копией состояния и подменяет состояние при успехе.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(ctx, repositoriesFor(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

func repositoriesFor(st *state) repository.Repositories {
	return repository.Repositories{
		Tenders:   &tenderRepo{st: st},
		Users:     &userRepo{st: st},
		Bids:      &bidRepo{st: st},
		Scores:    &scoreRepo{st: st},
		Approvals: &approvalRepo{st: st},
		Audit:     &auditRepo{st: st},
	}
}

// AddTender добавляет тендер.
func (s *Store) AddTender(t models.Tender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.tenders[t.ID] = t
}

// AddUser добавляет пользователя.
func (s *Store) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[u.ID] = u
}

// AddSubmission добавляет предложение вместе с его строками цен.
func (s *Store) AddSubmission(b models.BidSubmission, pricing ...models.BidPricing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.submissions[b.ID] = b
	s.state.pricing = append(s.state.pricing, pricing...)
}

// AddTechnicalScore добавляет оценку члена комиссии.
func (s *Store) AddTechnicalScore(ts models.TechnicalScore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.technical = append(s.state.technical, ts)
}
