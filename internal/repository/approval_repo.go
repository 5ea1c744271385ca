package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/tender-evaluation/internal/models"

	"github.com/jackc/pgx/v5"
)

// ApprovalRepository - интерфейс для работы с процессами утверждения.
type ApprovalRepository interface {
	GetWorkflow(ctx context.Context, workflowId string) (*models.ApprovalWorkflow, error)
	GetWorkflowByTender(ctx context.Context, tenderId string) (*models.ApprovalWorkflow, error)
	GetLevels(ctx context.Context, workflowId string) ([]models.ApprovalLevel, error)
	CreateWorkflow(ctx context.Context, workflow models.ApprovalWorkflow, levels []models.ApprovalLevel) error
	DeleteWorkflow(ctx context.Context, workflowId string) error
	UpdateWorkflow(ctx context.Context, workflow models.ApprovalWorkflow, expected models.WorkflowStatus) error
	UpdateLevel(ctx context.Context, level models.ApprovalLevel, expected models.LevelStatus) error
	GetActiveLevelsForApprover(ctx context.Context, approverId string) ([]models.ApprovalLevel, error)
}

// PostgresApprovalRepository - реализация ApprovalRepository для базы данных.
type PostgresApprovalRepository struct {
	DB Querier
}

// NewPostgresApprovalRepository создает новый экземпляр PostgresApprovalRepository.
func NewPostgresApprovalRepository(db Querier) *PostgresApprovalRepository {
	return &PostgresApprovalRepository{DB: db}
}

const workflowColumns = `id, tender_id, status, initiated_by, initiated_at, award_pack_ref, completed_at`

const levelColumns = `id, workflow_id, level_number, approver_id, deadline, status, decision,
	decision_comment, decided_at, notified_at`

func scanWorkflow(row pgx.Row) (*models.ApprovalWorkflow, error) {
	var wf models.ApprovalWorkflow
	err := row.Scan(
		&wf.ID,
		&wf.TenderID,
		&wf.Status,
		&wf.InitiatedBy,
		&wf.InitiatedAt,
		&wf.AwardPackRef,
		&wf.CompletedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &wf, nil
}

func scanLevels(rows pgx.Rows) ([]models.ApprovalLevel, error) {
	defer rows.Close()

	var levels []models.ApprovalLevel
	for rows.Next() {
		var l models.ApprovalLevel
		if err := rows.Scan(
			&l.ID,
			&l.WorkflowID,
			&l.LevelNumber,
			&l.ApproverID,
			&l.Deadline,
			&l.Status,
			&l.Decision,
			&l.DecisionComment,
			&l.DecidedAt,
			&l.NotifiedAt); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

// GetWorkflow возвращает процесс утверждения по ID.
func (r *PostgresApprovalRepository) GetWorkflow(ctx context.Context, workflowId string) (*models.ApprovalWorkflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM approval_workflow WHERE id = $1`
	return scanWorkflow(r.DB.QueryRow(ctx, query, workflowId))
}

// GetWorkflowByTender возвращает процесс утверждения тендера.
func (r *PostgresApprovalRepository) GetWorkflowByTender(ctx context.Context, tenderId string) (*models.ApprovalWorkflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM approval_workflow WHERE tender_id = $1`
	return scanWorkflow(r.DB.QueryRow(ctx, query, tenderId))
}

// GetLevels возвращает уровни процесса в порядке номеров.
func (r *PostgresApprovalRepository) GetLevels(ctx context.Context, workflowId string) ([]models.ApprovalLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM approval_level WHERE workflow_id = $1 ORDER BY level_number`
	rows, err := r.DB.Query(ctx, query, workflowId)
	if err != nil {
		return nil, err
	}
	return scanLevels(rows)
}

// CreateWorkflow создает процесс вместе с уровнями.
func (r *PostgresApprovalRepository) CreateWorkflow(ctx context.Context, workflow models.ApprovalWorkflow, levels []models.ApprovalLevel) error {
	insertWorkflow := `INSERT INTO approval_workflow (` + workflowColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.Exec(ctx, insertWorkflow,
		workflow.ID,
		workflow.TenderID,
		workflow.Status,
		workflow.InitiatedBy,
		workflow.InitiatedAt,
		workflow.AwardPackRef,
		workflow.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert approval workflow: %w", err)
	}

	insertLevel := `INSERT INTO approval_level (` + levelColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, l := range levels {
		_, err := r.DB.Exec(ctx, insertLevel,
			l.ID,
			l.WorkflowID,
			l.LevelNumber,
			l.ApproverID,
			l.Deadline,
			l.Status,
			l.Decision,
			l.DecisionComment,
			l.DecidedAt,
			l.NotifiedAt)
		if err != nil {
			return fmt.Errorf("insert approval level %d: %w", l.LevelNumber, err)
		}
	}
	return nil
}

// DeleteWorkflow удаляет процесс и его уровни.
func (r *PostgresApprovalRepository) DeleteWorkflow(ctx context.Context, workflowId string) error {
	if _, err := r.DB.Exec(ctx, `DELETE FROM approval_level WHERE workflow_id = $1`, workflowId); err != nil {
		return fmt.Errorf("delete approval levels: %w", err)
	}
	if _, err := r.DB.Exec(ctx, `DELETE FROM approval_workflow WHERE id = $1`, workflowId); err != nil {
		return fmt.Errorf("delete approval workflow: %w", err)
	}
	return nil
}

// UpdateWorkflow сохраняет статус процесса, если текущий статус равен expected.
func (r *PostgresApprovalRepository) UpdateWorkflow(ctx context.Context, workflow models.ApprovalWorkflow, expected models.WorkflowStatus) error {
	updateQuery := `
		UPDATE approval_workflow
		SET status = $1, completed_at = $2
		WHERE id = $3 AND status = $4`
	tag, err := r.DB.Exec(ctx, updateQuery, workflow.Status, workflow.CompletedAt, workflow.ID, expected)
	if err != nil {
		return fmt.Errorf("update approval workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

// UpdateLevel сохраняет уровень, если его текущий статус равен expected.
// Два одновременных решения по одному уровню не могут оба пройти эту проверку.
func (r *PostgresApprovalRepository) UpdateLevel(ctx context.Context, level models.ApprovalLevel, expected models.LevelStatus) error {
	updateQuery := `
		UPDATE approval_level
		SET status = $1, decision = $2, decision_comment = $3, decided_at = $4, notified_at = $5
		WHERE id = $6 AND status = $7`
	tag, err := r.DB.Exec(ctx, updateQuery,
		level.Status,
		level.Decision,
		level.DecisionComment,
		level.DecidedAt,
		level.NotifiedAt,
		level.ID,
		expected)
	if err != nil {
		return fmt.Errorf("update approval level: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

// GetActiveLevelsForApprover возвращает активные уровни, ожидающие решения пользователя.
func (r *PostgresApprovalRepository) GetActiveLevelsForApprover(ctx context.Context, approverId string) ([]models.ApprovalLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM approval_level WHERE approver_id = $1 AND status = 'Active' ORDER BY deadline NULLS LAST`
	rows, err := r.DB.Query(ctx, query, approverId)
	if err != nil {
		return nil, err
	}
	return scanLevels(rows)
}
