package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"messagely/internal/auth"
	"messagely/internal/repository"
	"messagely/internal/repository/sqlite"
)

var testSecret = []byte("messagely-test-secret-32-bytes!!")

type testEnv struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	tokens   *auth.JWTManager
	guard    *auth.Guard
	auth     AuthService
	msgs     MessageService
	dir      UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := sqlite.NewUserRepository(db)
	messages := sqlite.NewMessageRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, messages.Init(ctx))

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewJWTManager(testSecret, time.Hour)
	require.NoError(t, err)
	guard := auth.NewGuard(tokens)

	return &testEnv{
		users:    users,
		messages: messages,
		tokens:   tokens,
		guard:    guard,
		auth:     NewAuthService(users, hasher, tokens),
		msgs:     NewMessageService(messages, users, guard),
		dir:      NewUserService(users, messages, guard),
	}
}

func (e *testEnv) register(t *testing.T, usernames ...string) {
	t.Helper()
	for _, u := range usernames {
		_, err := e.auth.Register(context.Background(), u, "pw-"+u, "First", "Last", "555-0100")
		require.NoError(t, err)
	}
}
