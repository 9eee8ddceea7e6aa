package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messagely/internal/domain"
	"messagely/internal/repository"
)

func newTestRepos(t *testing.T) (repository.UserRepository, repository.MessageRepository) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := NewUserRepository(db)
	messages := NewMessageRepository(db)
	ctx := context.Background()
	require.NoError(t, users.Init(ctx))
	require.NoError(t, messages.Init(ctx))
	return users, messages
}

func seedUser(t *testing.T, users repository.UserRepository, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:     username,
		PasswordHash: "hash-" + username,
		FirstName:    "First",
		LastName:     "Last",
		Phone:        "555-0100",
		JoinedAt:     time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	users, _ := newTestRepos(t)
	ctx := context.Background()
	want := seedUser(t, users, "bob")

	got, err := users.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, want.Username, got.Username)
	assert.Equal(t, want.PasswordHash, got.PasswordHash)
	assert.Equal(t, want.Phone, got.Phone)
	assert.True(t, want.JoinedAt.Equal(got.JoinedAt), "join_at %v != %v", got.JoinedAt, want.JoinedAt)
	assert.Nil(t, got.LastLoginAt)
}

func TestUserRepository_DuplicateIsConflict(t *testing.T) {
	users, _ := newTestRepos(t)
	ctx := context.Background()
	seedUser(t, users, "bob")

	dup := &domain.User{
		Username:     "bob",
		PasswordHash: "other",
		FirstName:    "Other",
		LastName:     "Person",
		Phone:        "555-9999",
		JoinedAt:     time.Now(),
	}
	err := users.Create(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := users.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "hash-bob", got.PasswordHash, "duplicate must not overwrite")
}

func TestUserRepository_GetMissing(t *testing.T) {
	users, _ := newTestRepos(t)
	_, err := users.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_UpdateLastLoginAndList(t *testing.T) {
	users, _ := newTestRepos(t)
	ctx := context.Background()
	seedUser(t, users, "carol")
	seedUser(t, users, "bob")

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, users.UpdateLastLogin(ctx, "bob", at))
	require.NoError(t, users.UpdateLastLogin(ctx, "ghost", at))

	got, err := users.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, at.Equal(*got.LastLoginAt))

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bob", all[0].Username)
	assert.Equal(t, "carol", all[1].Username)
}

func TestMessageRepository_CreateGetList(t *testing.T) {
	users, messages := newTestRepos(t)
	ctx := context.Background()
	seedUser(t, users, "bob")
	seedUser(t, users, "carol")

	base := time.Now().UTC().Truncate(time.Second)
	for i, body := range []string{"first", "second"} {
		require.NoError(t, messages.Create(ctx, &domain.Message{
			ID:           "msg-" + body,
			FromUsername: "bob",
			ToUsername:   "carol",
			Body:         body,
			SentAt:       base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := messages.Get(ctx, "msg-first")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.FromUsername)
	assert.Equal(t, "carol", got.ToUsername)
	assert.Equal(t, "first", got.Body)
	assert.Nil(t, got.ReadAt)

	sent, err := messages.ListBySender(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, sent, 2)
	assert.Equal(t, "first", sent[0].Body)
	assert.Equal(t, "second", sent[1].Body)

	received, err := messages.ListByRecipient(ctx, "carol")
	require.NoError(t, err)
	assert.Len(t, received, 2)

	none, err := messages.ListByRecipient(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = messages.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMessageRepository_RejectsUnknownParticipant(t *testing.T) {
	users, messages := newTestRepos(t)
	seedUser(t, users, "bob")

	err := messages.Create(context.Background(), &domain.Message{
		ID:           "m1",
		FromUsername: "bob",
		ToUsername:   "ghost",
		Body:         "hi",
		SentAt:       time.Now(),
	})
	assert.Error(t, err)
}

func TestMessageRepository_MarkReadOnce(t *testing.T) {
	users, messages := newTestRepos(t)
	ctx := context.Background()
	seedUser(t, users, "bob")
	seedUser(t, users, "carol")
	require.NoError(t, messages.Create(ctx, &domain.Message{
		ID: "m1", FromUsername: "bob", ToUsername: "carol", Body: "hi", SentAt: time.Now(),
	}))

	first := time.Now().UTC().Truncate(time.Second)
	readAt, err := messages.MarkRead(ctx, "m1", first)
	require.NoError(t, err)
	assert.True(t, first.Equal(readAt))

	readAt, err = messages.MarkRead(ctx, "m1", first.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, first.Equal(readAt), "second mark must keep the original read_at")

	_, err = messages.MarkRead(ctx, "missing", first)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMessageRepository_ConcurrentMarkRead(t *testing.T) {
	users, messages := newTestRepos(t)
	ctx := context.Background()
	seedUser(t, users, "bob")
	seedUser(t, users, "carol")
	require.NoError(t, messages.Create(ctx, &domain.Message{
		ID: "m1", FromUsername: "bob", ToUsername: "carol", Body: "hi", SentAt: time.Now(),
	}))

	const workers = 8
	results := make([]time.Time, workers)
	var wg sync.WaitGroup
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			readAt, err := messages.MarkRead(ctx, "m1", base.Add(time.Duration(i)*time.Minute))
			assert.NoError(t, err)
			results[i] = readAt
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.True(t, results[0].Equal(results[i]), "all callers must observe the same read_at")
	}
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "live.db"))
	require.NoError(t, err)
	defer db.Close()

	users := NewUserRepository(db)
	require.NoError(t, users.Init(context.Background()))
	seedUser(t, users, "bob")

	dest := filepath.Join(dir, "snapshots", "copy.db")
	require.NoError(t, Snapshot(context.Background(), db, dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	copyDB, err := Open(dest)
	require.NoError(t, err)
	defer copyDB.Close()
	got, err := NewUserRepository(copyDB).GetByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
}
