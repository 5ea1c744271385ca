package router

import (
	"net/http"

	"github.com/senyabanana/tender-evaluation/internal/handlers"
	"github.com/senyabanana/tender-evaluation/internal/identity"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers - набор обработчиков, подключаемых к маршрутам.
type Handlers struct {
	Scoring  *handlers.ScoringHandler
	Approval *handlers.ApprovalHandler
	Bids     *handlers.BidHandler
	Audit    *handlers.AuditHandler
}

// InitRoutes регистрирует маршруты API. Все маршруты, кроме /api/ping, требуют заголовок X-User-Id.
func InitRoutes(h Handlers, identities *identity.Provider) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", handlers.PingHandler)

	r.Group(func(r chi.Router) {
		r.Use(identities.Middleware)

		r.Route("/api/tenders/{tenderId}", func(r chi.Router) {
			r.Post("/bids/open", h.Bids.OpenBids)

			r.Post("/scores/commercial", h.Scoring.CalculateCommercialScores)
			r.Post("/scores/combined", h.Scoring.CalculateCombinedScores)
			r.Get("/scores/combined", h.Scoring.GetCombinedScorecard)
			r.Get("/scores/combined/export", h.Scoring.ExportScorecard)
			r.Get("/scores/sensitivity", h.Scoring.GetSensitivityAnalysis)

			r.Post("/approval", h.Approval.InitiateApproval)
			r.Get("/approval", h.Approval.GetApprovalWorkflow)
			r.Post("/approval/decision", h.Approval.SubmitApprovalDecision)
		})

		r.Get("/api/approvals/pending", h.Approval.ListPendingApprovals)
		r.Get("/api/audit/{entityType}/{entityId}", h.Audit.ListAuditTrail)
	})

	return r
}
