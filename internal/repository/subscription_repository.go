package repository

import (
	"context"
	"fmt"

	"foodgram/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// subscriptionRepository implements the SubscriptionRepository interface using PostgreSQL.
type subscriptionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSubscriptionRepository creates a new PostgreSQL-backed subscription repository.
func NewSubscriptionRepository(pool *pgxpool.Pool, logger zerolog.Logger) SubscriptionRepository {
	return &subscriptionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "subscription").Logger(),
	}
}

// Add records that userID follows authorID. Reports whether a row was created.
func (r *subscriptionRepository) Add(ctx context.Context, userID, authorID int64) (bool, error) {
	query := `
		INSERT INTO subscriptions (user_id, author_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query, userID, authorID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Int64("author_id", authorID).
			Msg("failed to add subscription")
		return false, fmt.Errorf("failed to add subscription: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// Remove deletes the relationship. Reports whether a row was removed.
func (r *subscriptionRepository) Remove(ctx context.Context, userID, authorID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE user_id = $1 AND author_id = $2`, userID, authorID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Int64("author_id", authorID).
			Msg("failed to remove subscription")
		return false, fmt.Errorf("failed to remove subscription: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// Following reports which of authorIDs userID follows.
func (r *subscriptionRepository) Following(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(authorIDs))
	if userID == 0 || len(authorIDs) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT author_id FROM subscriptions WHERE user_id = $1 AND author_id = ANY($2)`,
		userID, authorIDs)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query subscriptions")
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		result[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return result, nil
}

// ListAuthors returns one page of authors userID follows and the total count.
func (r *subscriptionRepository) ListAuthors(ctx context.Context, userID int64, limit, offset int) ([]model.User, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to count subscriptions")
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	query := `
		SELECT u.id, u.email, u.username, u.first_name, u.last_name,
		       u.password_hash, u.is_blocked, u.is_superuser, u.created_at
		FROM subscriptions s
		JOIN users u ON u.id = s.author_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC, u.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query subscribed authors")
		return nil, 0, fmt.Errorf("failed to query subscribed authors: %w", err)
	}
	defer rows.Close()

	authors := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan author row")
			return nil, 0, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, u)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating authors: %w", err)
	}

	return authors, total, nil
}
