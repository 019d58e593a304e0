package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"social-service/internal/apperror"
	"social-service/internal/models"
)

// UserRepository is the read-mostly mirror of the identity provider's users.
type UserRepository interface {
	UpsertUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// UpsertUser refreshes the mirrored identity record.
func (r *UserRepo) UpsertUser(ctx context.Context, user models.User) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (id, username, display_name) VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, display_name = EXCLUDED.display_name`,
		user.ID, user.Username, user.DisplayName)
	return wrapStore(err)
}

// GetUser fetches a mirrored user by id.
func (r *UserRepo) GetUser(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, username, display_name FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperror.NotFound("user not found")
	}
	return user, wrapStore(err)
}

// GetUsersByIDs fetches multiple mirrored users in one round trip.
func (r *UserRepo) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	query, args, err := sqlx.In(`SELECT id, username, display_name FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var users []models.User
	err = r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...)
	return users, wrapStore(err)
}
