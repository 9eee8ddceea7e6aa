package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"messagely/internal/domain"
)

// Malformed ids are answered before any query, so no database is needed.
func TestMessageRepository_MalformedIDIsNotFound(t *testing.T) {
	repo := NewMessageRepository(nil)
	ctx := context.Background()

	for _, id := range []string{"no-such-id", "123", "' OR 1=1 --"} {
		_, err := repo.Get(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)

		_, err = repo.MarkRead(ctx, id, time.Now())
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
	}
}

func TestRequireMessageID(t *testing.T) {
	assert.NoError(t, requireMessageID("0b6f2b0e-8c1a-4f53-9a3e-3d2f6c1b7a10"))
	assert.ErrorIs(t, requireMessageID(""), domain.ErrNotFound)
}
