package sessionstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/glpi/internal/constants"
	"github.com/fivetwenty-io/glpi/internal/sessionstore"
	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

func strPtr(s string) *string {
	return &s
}

// runStoreContract exercises the behavior every backend shares.
func runStoreContract(t *testing.T, store sessionstore.Store) {
	t.Helper()

	ctx := context.Background()

	_, err := store.Load(ctx, "prod")
	require.ErrorIs(t, err, constants.ErrSessionNotFound)

	session := sessionstore.NewSession("https://glpi.example.com/apirest.php", "glpi",
		glpi.SessionState{SessionToken: "sess-1", AppToken: strPtr("app")})
	require.NoError(t, store.Save(ctx, "prod", session))
	require.NoError(t, store.Save(ctx, "staging", sessionstore.NewSession("https://staging", "", glpi.SessionState{SessionToken: "sess-2"})))

	loaded, err := store.Load(ctx, "prod")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", loaded.SessionToken)
	assert.Equal(t, "https://glpi.example.com/apirest.php", loaded.Endpoint)
	assert.Equal(t, "glpi", loaded.Username)
	require.NotNil(t, loaded.AppToken)
	assert.Equal(t, "app", *loaded.AppToken)
	assert.WithinDuration(t, session.CreatedAt, loaded.CreatedAt, time.Second)

	require.NoError(t, store.Delete(ctx, "prod"))
	require.NoError(t, store.Delete(ctx, "prod"))

	_, err = store.Load(ctx, "prod")
	require.ErrorIs(t, err, constants.ErrSessionNotFound)

	staging, err := store.Load(ctx, "staging")
	require.NoError(t, err)
	assert.Equal(t, "sess-2", staging.SessionToken)
	assert.Nil(t, staging.AppToken)
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "sessions.yml")

	store, err := sessionstore.NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	runStoreContract(t, store)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())
	require.NoError(t, store.Close())
}

func TestFileStore_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sessions.yml")
	require.NoError(t, os.WriteFile(path, []byte("sessions: [not, a, map"), constants.ConfigFilePerm))

	store, err := sessionstore.NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "prod")
	require.Error(t, err)
	assert.NotErrorIs(t, err, constants.ErrSessionNotFound)
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	store := sessionstore.NewRedisStoreFromClient(client)
	runStoreContract(t, store)

	require.NoError(t, store.Save(context.Background(), "prod", &sessionstore.Session{SessionToken: "sess-9"}))
	assert.True(t, server.Exists(constants.SessionKeyPrefix+"prod"))

	require.NoError(t, store.Close())
}

func TestRedisStore_TTLAndPrefix(t *testing.T) {
	t.Parallel()

	server := miniredis.RunT(t)
	store := sessionstore.NewRedisStore(server.Addr(), "", 0,
		sessionstore.WithTTL(time.Minute), sessionstore.WithPrefix("test:"))

	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "prod", &sessionstore.Session{SessionToken: "sess-1"}))
	assert.Equal(t, time.Minute, server.TTL("test:prod"))

	server.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "prod")
	require.ErrorIs(t, err, constants.ErrSessionNotFound)
}

func TestRedisStore_Unreachable(t *testing.T) {
	t.Parallel()

	store := sessionstore.NewRedisStore("127.0.0.1:1", "", 0)

	defer func() { _ = store.Close() }()

	_, err := store.Load(context.Background(), "prod")
	require.Error(t, err)
	assert.NotErrorIs(t, err, constants.ErrSessionNotFound)
}

func TestNew(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	store, err := sessionstore.New(ctx, sessionstore.Config{Path: filepath.Join(t.TempDir(), "s.yml")})
	require.NoError(t, err)
	assert.IsType(t, &sessionstore.FileStore{}, store)

	server := miniredis.RunT(t)
	store, err = sessionstore.New(ctx, sessionstore.Config{Kind: constants.SessionStoreRedis, RedisAddr: server.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &sessionstore.RedisStore{}, store)
	require.NoError(t, store.Close())

	_, err = sessionstore.New(ctx, sessionstore.Config{Kind: "etcd"})
	require.ErrorIs(t, err, constants.ErrUnknownSessionStore)
}

func TestSession_State(t *testing.T) {
	t.Parallel()

	appToken := "app"
	session := sessionstore.NewSession("https://glpi", "glpi", glpi.SessionState{SessionToken: "sess-1", AppToken: &appToken})
	appToken = "changed"

	state := session.State()
	assert.Equal(t, "sess-1", state.SessionToken)
	require.NotNil(t, state.AppToken)
	assert.Equal(t, "app", *state.AppToken)

	*state.AppToken = "mutated"
	assert.Equal(t, "app", *session.AppToken)
}
