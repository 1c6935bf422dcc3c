package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmatch/chatbot/internal/models"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func (r *PostgresRepository) GetBySourceID(ctx context.Context, sourceID string) (*models.LinkedUser, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT source_id, user_id, display_name, linked_at
		FROM linked_users
		WHERE source_id = $1
	`

	var user models.LinkedUser
	err := r.pool.QueryRow(ctx, query, sourceID).Scan(
		&user.SourceID, &user.UserID, &user.DisplayName, &user.LinkedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get linked user: %w", err)
	}

	return &user, nil
}

func (r *PostgresRepository) Link(ctx context.Context, user *models.LinkedUser) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO linked_users (source_id, user_id, display_name, linked_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		user.SourceID, user.UserID, user.DisplayName, user.LinkedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrLinkExists
		}
		return fmt.Errorf("failed to link user: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Unlink(ctx context.Context, sourceID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM linked_users WHERE source_id = $1`, sourceID)
	if err != nil {
		return fmt.Errorf("failed to unlink user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.LinkedUser, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT source_id, user_id, display_name, linked_at
		FROM linked_users
		ORDER BY linked_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked users: %w", err)
	}
	defer rows.Close()

	var users []*models.LinkedUser
	for rows.Next() {
		var user models.LinkedUser
		if err := rows.Scan(&user.SourceID, &user.UserID, &user.DisplayName, &user.LinkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan linked user: %w", err)
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}
