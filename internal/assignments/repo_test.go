package assignments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAssignIfUnassignedOnlyWritesOnce(t *testing.T) {
	f := newFixture(t)
	quoteID := f.quote(t, "Polo", 100, time.Hour)
	repo := NewRepository(f.db)

	ok, err := repo.AssignIfUnassigned(context.Background(), quoteID, uuid.New(), fixedNow)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AssignIfUnassigned(context.Background(), quoteID, uuid.New(), fixedNow)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.AssignIfUnassigned(context.Background(), uuid.New(), uuid.New(), fixedNow)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.FindQuote(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
