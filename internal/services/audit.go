package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/repository"

	"github.com/google/uuid"
)

// AuditRecorder пишет снимки до/после в журнал аудита от имени конкретного пользователя.
// Создается на одну единицу работы, поэтому запись фиксируется вместе с изменением.
type AuditRecorder struct {
	repo  repository.AuditRepository
	actor models.Actor
	now   time.Time
}

// NewAuditRecorder создает новый экземпляр AuditRecorder.
func NewAuditRecorder(repo repository.AuditRepository, actor models.Actor, now time.Time) *AuditRecorder {
	return &AuditRecorder{repo: repo, actor: actor, now: now}
}

// Record сериализует oldValues/newValues в JSON и добавляет запись.
func (a *AuditRecorder) Record(ctx context.Context, action, entityType, entityId string, oldValues, newValues any) error {
	oldJSON, err := snapshot(oldValues)
	if err != nil {
		return fmt.Errorf("audit %s: %w", action, err)
	}
	newJSON, err := snapshot(newValues)
	if err != nil {
		return fmt.Errorf("audit %s: %w", action, err)
	}
	return a.repo.Append(ctx, models.AuditLog{
		ID:         uuid.New().String(),
		UserID:     a.actor.UserID,
		UserEmail:  a.actor.Email,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityId,
		OldValues:  oldJSON,
		NewValues:  newJSON,
		CreatedAt:  a.now,
	})
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// AuditService отдает журнал аудита по сущности.
type AuditService struct {
	uow repository.UnitOfWork
}

// NewAuditService создает новый экземпляр AuditService.
func NewAuditService(uow repository.UnitOfWork) *AuditService {
	return &AuditService{uow: uow}
}

// ListAuditTrail возвращает записи по сущности, новые первыми.
func (s *AuditService) ListAuditTrail(ctx context.Context, entityType, entityId string) ([]models.AuditLog, error) {
	if entityType == "" || entityId == "" {
		return nil, models.NewValidationFailure("entityType and entityId are required")
	}
	var entries []models.AuditLog
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		entries, err = repos.Audit.GetEntityTrail(ctx, entityType, entityId)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to load audit trail")
	}
	if entries == nil {
		entries = []models.AuditLog{}
	}
	return entries, nil
}
