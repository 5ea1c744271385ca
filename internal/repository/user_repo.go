package repository

import (
	"context"

	"github.com/senyabanana/tender-evaluation/internal/models"
)

// UserRepository - интерфейс для чтения пользователей.
type UserRepository interface {
	GetUser(ctx context.Context, userId string) (*models.User, error)
	GetUsers(ctx context.Context, userIds []string) ([]models.User, error)
}

// PostgresUserRepository - реализация UserRepository для базы данных.
type PostgresUserRepository struct {
	DB Querier
}

// NewPostgresUserRepository создает новый экземпляр PostgresUserRepository.
func NewPostgresUserRepository(db Querier) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// GetUser возвращает пользователя по ID.
func (r *PostgresUserRepository) GetUser(ctx context.Context, userId string) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, first_name, last_name, is_active FROM employee WHERE id = $1`
	err := r.DB.QueryRow(ctx, query, userId).Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.IsActive)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUsers возвращает найденных пользователей из списка ID; отсутствующие пропускаются.
func (r *PostgresUserRepository) GetUsers(ctx context.Context, userIds []string) ([]models.User, error) {
	query := `SELECT id, email, first_name, last_name, is_active FROM employee WHERE id = ANY($1)`
	rows, err := r.DB.Query(ctx, query, userIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.IsActive); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
