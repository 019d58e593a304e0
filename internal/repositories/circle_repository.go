package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"social-service/internal/apperror"
	"social-service/internal/models"
)

const circleColumns = `c.id, c.name, c.goal, c.tendency, c.max_members, c.streak, c.created_at,
        (SELECT COUNT(*) FROM circle_members m WHERE m.circle_id = c.id) AS member_count`

// CircleRepository persists circles and their capacity-bounded membership.
type CircleRepository interface {
	CreateCircle(ctx context.Context, name, goal, tendency string, maxMembers int, creator string) (models.Circle, error)
	GetCircle(ctx context.Context, id string) (models.Circle, error)
	ListCirclesForUser(ctx context.Context, uid string) ([]models.Circle, error)
	FindOpenCircles(ctx context.Context, goal, excludeUID string) ([]models.Circle, error)
	AddMember(ctx context.Context, circleID, uid string) error
	RemoveMember(ctx context.Context, circleID, uid string) error
	IsMember(ctx context.Context, circleID, uid string) (bool, error)
}

// CircleRepo is a sqlx implementation of CircleRepository.
type CircleRepo struct {
	db *sqlx.DB
}

// NewCircleRepo constructs a CircleRepo.
func NewCircleRepo(db *sqlx.DB) *CircleRepo {
	return &CircleRepo{db: db}
}

// CreateCircle inserts the circle and its creator as first member in one
// transaction.
func (r *CircleRepo) CreateCircle(ctx context.Context, name, goal, tendency string, maxMembers int, creator string) (models.Circle, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Circle{}, wrapStore(err)
	}
	defer tx.Rollback()

	circle := models.Circle{
		ID:          uuid.NewString(),
		Name:        name,
		Goal:        goal,
		Tendency:    tendency,
		MaxMembers:  maxMembers,
		MemberCount: 1,
	}
	if err := tx.QueryRowxContext(ctx, `INSERT INTO circles (id, name, goal, tendency, max_members)
        VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		circle.ID, name, goal, tendency, maxMembers).Scan(&circle.CreatedAt); err != nil {
		return models.Circle{}, wrapStore(err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO circle_members (circle_id, user_id) VALUES ($1, $2)`,
		circle.ID, creator); err != nil {
		return models.Circle{}, wrapStore(err)
	}

	if err := tx.Commit(); err != nil {
		return models.Circle{}, wrapStore(err)
	}
	return circle, nil
}

// GetCircle fetches a circle with its current member count.
func (r *CircleRepo) GetCircle(ctx context.Context, id string) (models.Circle, error) {
	var circle models.Circle
	err := r.db.GetContext(ctx, &circle, `SELECT `+circleColumns+` FROM circles c WHERE c.id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Circle{}, apperror.NotFound("circle not found")
	}
	return circle, wrapStore(err)
}

// ListCirclesForUser returns the circles the user belongs to.
func (r *CircleRepo) ListCirclesForUser(ctx context.Context, uid string) ([]models.Circle, error) {
	var circles []models.Circle
	err := r.db.SelectContext(ctx, &circles, `SELECT `+circleColumns+` FROM circles c
        JOIN circle_members me ON me.circle_id = c.id AND me.user_id = $1
        ORDER BY me.joined_at DESC`, uid)
	return circles, wrapStore(err)
}

// FindOpenCircles returns circles sharing the goal that still have room and do
// not already contain the seeker. Ranking happens at the service layer.
func (r *CircleRepo) FindOpenCircles(ctx context.Context, goal, excludeUID string) ([]models.Circle, error) {
	var circles []models.Circle
	err := r.db.SelectContext(ctx, &circles, `SELECT `+circleColumns+` FROM circles c
        WHERE c.goal = $1
        AND (SELECT COUNT(*) FROM circle_members m WHERE m.circle_id = c.id) < c.max_members
        AND NOT EXISTS (SELECT 1 FROM circle_members m WHERE m.circle_id = c.id AND m.user_id = $2)`,
		goal, excludeUID)
	return circles, wrapStore(err)
}

// AddMember adds the user under a row lock on the circle so concurrent joins
// serialize and capacity can never be exceeded. The capacity check and the
// insert commit as one unit.
func (r *CircleRepo) AddMember(ctx context.Context, circleID, uid string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapStore(err)
	}
	defer tx.Rollback()

	var maxMembers int
	err = tx.GetContext(ctx, &maxMembers, `SELECT max_members FROM circles WHERE id=$1 FOR UPDATE`, circleID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound("circle not found")
	}
	if err != nil {
		return wrapStore(err)
	}

	var memberCount int
	if err := tx.GetContext(ctx, &memberCount, `SELECT COUNT(*) FROM circle_members WHERE circle_id=$1`, circleID); err != nil {
		return wrapStore(err)
	}
	if memberCount >= maxMembers {
		return apperror.Conflict("this circle is full")
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO circle_members (circle_id, user_id) VALUES ($1, $2)`, circleID, uid)
	if isUniqueViolation(err) {
		return apperror.Conflict("already a member of this circle")
	}
	if err != nil {
		return wrapStore(err)
	}

	return wrapStore(tx.Commit())
}

// RemoveMember removes the user from the circle. A no-op when not a member.
func (r *CircleRepo) RemoveMember(ctx context.Context, circleID, uid string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM circle_members WHERE circle_id=$1 AND user_id=$2`, circleID, uid)
	return wrapStore(err)
}

// IsMember checks circle membership.
func (r *CircleRepo) IsMember(ctx context.Context, circleID, uid string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM circle_members WHERE circle_id=$1 AND user_id=$2)`, circleID, uid)
	return exists, wrapStore(err)
}
