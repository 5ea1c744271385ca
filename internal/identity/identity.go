// Package identity resolves the acting user of a request.
package identity

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/repository"
	"github.com/senyabanana/tender-evaluation/internal/utils"

	"github.com/sirupsen/logrus"
)

// Header - заголовок с идентификатором пользователя, выставляемый шлюзом аутентификации.
const Header = "X-User-Id"

type ctxKey struct{}

// Provider сопоставляет идентификатор из запроса с активным пользователем.
type Provider struct {
	uow     repository.UnitOfWork
	logger  logrus.FieldLogger
	timeout time.Duration
}

// NewProvider создает новый экземпляр Provider.
func NewProvider(uow repository.UnitOfWork, logger logrus.FieldLogger, timeout time.Duration) *Provider {
	return &Provider{uow: uow, logger: logger, timeout: timeout}
}

// Resolve возвращает Actor для пользователя userId.
func (p *Provider) Resolve(ctx context.Context, userId string) (models.Actor, error) {
	if userId == "" {
		return models.Actor{}, models.NewErrorResponse(http.StatusUnauthorized, "missing "+Header+" header")
	}
	var user *models.User
	err := p.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		user, err = repos.Users.GetUser(ctx, userId)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !user.IsActive) {
		return models.Actor{}, models.NewErrorResponse(http.StatusUnauthorized, "user does not exist or is not active")
	}
	if err != nil {
		return models.Actor{}, err
	}
	return models.ActorFromUser(*user), nil
}

// Middleware кладет Actor в контекст запроса или отвечает 401.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
		actor, err := p.Resolve(ctx, r.Header.Get(Header))
		cancel()
		if err != nil {
			utils.SendError(w, p.logger.WithField("module", "identity"), err, "failed to resolve current user")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// WithActor возвращает контекст с Actor.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// FromContext извлекает Actor, положенный Middleware.
func FromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(ctxKey{}).(models.Actor)
	return actor, ok
}
