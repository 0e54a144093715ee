package repository

import (
	"context"
	"errors"
	"fmt"

	"staffclock/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

func (r *PostgresUserRepository) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT uid, email, name, photo_url, role, created_at
		FROM users
		WHERE uid = $1
	`, uid).Scan(&u.UID, &u.Email, &u.Name, &u.PhotoURL, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (uid, email, name, photo_url, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (uid) DO NOTHING
	`, u.UID, u.Email, u.Name, u.PhotoURL, u.Role, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) SetRole(ctx context.Context, uid, role string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET role = $1 WHERE uid = $2`, role, uid)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
