package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workhubhq/presence-gateway/internal/domain"
	"github.com/workhubhq/presence-gateway/internal/repository"
	"github.com/workhubhq/presence-gateway/pkg/logger"
)

type userRepository struct {
	pool *pgxpool.Pool
	l    logger.Logger
}

func NewUserRepository(pool *pgxpool.Pool, l logger.Logger) repository.UserRepository {
	return &userRepository{
		pool: pool,
		l:    l,
	}
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
		SELECT id, email, full_name, role
		FROM users
		WHERE id = $1`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.FullName, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		r.l.Errorf(ctx, "userRepository.FindByID: %v", err)
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &u, nil
}
