package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"social-service/internal/apperror"
)

func TestWrapStoreClassifiesDriverFailures(t *testing.T) {
	err := wrapStore(errors.New("dial tcp 127.0.0.1:5432: connection refused"))

	assert.True(t, apperror.Retryable(err))
	assert.True(t, errors.Is(err, apperror.ErrTransientStore))
}

func TestWrapStorePassesThroughClassifiedErrors(t *testing.T) {
	conflict := apperror.Conflict("request already sent")
	assert.Equal(t, conflict, wrapStore(conflict))

	wrapped := fmt.Errorf("create request: %w", apperror.Conflict("request already sent"))
	assert.Equal(t, wrapped, wrapStore(wrapped))
	assert.False(t, apperror.Retryable(wrapStore(wrapped)))
}

func TestWrapStorePassesThroughRowSentinels(t *testing.T) {
	assert.Equal(t, sql.ErrNoRows, wrapStore(sql.ErrNoRows))
	assert.NoError(t, wrapStore(nil))
}

func TestConstraintViolationDetection(t *testing.T) {
	unique := &pq.Error{Code: pqUniqueViolation}
	fk := &pq.Error{Code: pqForeignKeyViolation}

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(fk))
	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isForeignKeyViolation(errors.New("plain")))
}
