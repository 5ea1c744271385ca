package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound возвращается, когда запись отсутствует.
	ErrNotFound = errors.New("record not found")
	// ErrConcurrentUpdate возвращается, когда условное обновление не затронуло ни одной строки.
	ErrConcurrentUpdate = errors.New("record was changed by another request")
)

// Querier - общий интерфейс пула соединений и транзакции.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories - набор репозиториев, работающих в одной транзакции.
type Repositories struct {
	Tenders   TenderRepository
	Users     UserRepository
	Bids      BidRepository
	Scores    ScoreRepository
	Approvals ApprovalRepository
	Audit     AuditRepository
}

// UnitOfWork выполняет fn в одной транзакции: изменения фиксируются только при успешном возврате.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// NewPostgresRepositories создает репозитории поверх пула или транзакции.
func NewPostgresRepositories(q Querier) Repositories {
	return Repositories{
		Tenders:   NewPostgresTenderRepository(q),
		Users:     NewPostgresUserRepository(q),
		Bids:      NewPostgresBidRepository(q),
		Scores:    NewPostgresScoreRepository(q),
		Approvals: NewPostgresApprovalRepository(q),
		Audit:     NewPostgresAuditRepository(q),
	}
}

// PostgresUnitOfWork - реализация UnitOfWork на транзакциях pgx.
type PostgresUnitOfWork struct {
	Pool *pgxpool.Pool
}

// NewPostgresUnitOfWork создает новый экземпляр PostgresUnitOfWork.
func NewPostgresUnitOfWork(pool *pgxpool.Pool) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{Pool: pool}
}

// Do открывает транзакцию, передает репозитории в fn и фиксирует или откатывает ее.
func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return pgx.BeginFunc(ctx, u.Pool, func(tx pgx.Tx) error {
		return fn(ctx, NewPostgresRepositories(tx))
	})
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
