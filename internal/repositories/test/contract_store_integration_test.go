package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-greeter/internal/contract"
	"github.com/bionicotaku/lingo-services-greeter/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/docker/go-connections/nat"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func setupRepository(t *testing.T) (context.Context, *pgxpool.Pool, *repositories.ContractStoreRepository, *testClock) {
	t.Helper()
	ctx := context.Background()
	dsn, terminate := startPostgres(ctx, t)
	t.Cleanup(terminate)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	applyMigrations(ctx, t, pool)

	clock := &testClock{now: time.Now().UTC().Truncate(time.Millisecond)}
	repo := repositories.NewContractStoreRepository(pool, log.NewStdLogger(io.Discard)).
		WithClock(clock.Now).
		WithMinTTL(time.Hour)
	return ctx, pool, repo, clock
}

func TestContractStoreRepository_GetSetHas(t *testing.T) {
	t.Parallel()
	ctx, _, repo, _ := setupRepository(t)
	store := repo.Bind(nil)
	key := contract.LastGreetingKey(contract.Address(uuid.NewString()))

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)
	has, err := store.Has(ctx, key)
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, store.Set(ctx, key, []byte("first")))
	require.NoError(t, store.Set(ctx, key, []byte("second")))

	value, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("second"), value)

	entry, err := repo.FindEntry(ctx, nil, key)
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, key.String(), entry.Key)
	require.Equal(t, string(contract.ClassPersistent), entry.StorageClass)
}

func TestContractStoreRepository_RetentionAndArchive(t *testing.T) {
	t.Parallel()
	ctx, _, repo, clock := setupRepository(t)
	store := repo.Bind(nil)
	start := clock.Now()
	key := contract.GreetingCountKey
	require.NoError(t, store.Set(ctx, key, []byte{0x01}))

	entry, err := repo.FindEntry(ctx, nil, key)
	require.NoError(t, err)
	require.WithinDuration(t, start.Add(time.Hour), entry.ExpiresAt, time.Millisecond)

	// Remaining TTL above the threshold: no bump.
	require.NoError(t, store.ExtendTTL(ctx, key, 10*time.Minute, 2*time.Hour))
	entry, err = repo.FindEntry(ctx, nil, key)
	require.NoError(t, err)
	require.WithinDuration(t, start.Add(time.Hour), entry.ExpiresAt, time.Millisecond)

	clock.Advance(55 * time.Minute)
	require.NoError(t, store.ExtendTTL(ctx, key, 10*time.Minute, 2*time.Hour))
	entry, err = repo.FindEntry(ctx, nil, key)
	require.NoError(t, err)
	require.WithinDuration(t, clock.Now().Add(2*time.Hour), entry.ExpiresAt, time.Millisecond)

	clock.Advance(3 * time.Hour)
	_, _, err = store.Get(ctx, key)
	require.ErrorIs(t, err, contract.ErrArchived)
	_, err = store.Has(ctx, key)
	require.ErrorIs(t, err, contract.ErrArchived)
	require.ErrorIs(t, store.Set(ctx, key, []byte{0x02}), contract.ErrArchived)
	require.ErrorIs(t, store.ExtendTTL(ctx, key, time.Hour, 2*time.Hour), contract.ErrArchived)

	archived, err := repo.CountArchived(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, archived)

	restored, err := store.Restore(ctx, key, time.Hour)
	require.NoError(t, err)
	require.True(t, restored)
	value, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte{0x01}, value, "restore keeps the archived value")

	restored, err = store.Restore(ctx, key, time.Hour)
	require.NoError(t, err)
	require.False(t, restored)
	archived, err = repo.CountArchived(ctx)
	require.NoError(t, err)
	require.Zero(t, archived)
}

func TestContractStoreRepository_ArchivedAdminBlocksInitialize(t *testing.T) {
	t.Parallel()
	ctx, _, repo, clock := setupRepository(t)
	admin, attacker := contract.Address(uuid.NewString()), contract.Address(uuid.NewString())
	retention := contract.Retention{Threshold: time.Hour, ExtendTo: time.Hour}

	state := contract.NewState(repo.Bind(nil), retention)
	require.NoError(t, state.Initialize(ctx, admin))

	clock.Advance(2 * time.Hour)
	require.ErrorIs(t, state.Initialize(ctx, attacker), contract.ErrArchived)

	restored, err := state.Restore(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 3, restored)
	require.ErrorIs(t, state.Initialize(ctx, attacker), contract.ErrAlreadyInitialized)

	got, ok, err := state.GetAdmin(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, admin, got)
}

func TestContractStoreRepository_ContractRollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx, pool, repo, _ := setupRepository(t)
	logger := log.NewStdLogger(io.Discard)
	mgr, err := txmanager.NewManager(pool, txmanager.Config{}, txmanager.Dependencies{Logger: logger})
	require.NoError(t, err)

	admin := contract.Address(uuid.NewString())
	err = mgr.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		return contract.NewState(repo.Bind(sess), contract.DefaultRetention).Initialize(txCtx, admin)
	})
	require.NoError(t, err)

	user := contract.Address(uuid.NewString())
	boom := errors.New("boom")
	err = mgr.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		state := contract.NewState(repo.Bind(sess), contract.DefaultRetention)
		if _, err := state.Greet(txCtx, user, "hola"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	state := contract.NewState(repo.Bind(nil), contract.DefaultRetention)
	count, err := state.GetCounter(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
	_, found, err := state.GetLastGreeting(ctx, user)
	require.NoError(t, err)
	require.False(t, found)

	err = mgr.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		_, err := contract.NewState(repo.Bind(sess), contract.DefaultRetention).Greet(txCtx, user, "hola")
		return err
	})
	require.NoError(t, err)
	count, err = state.GetUserCounter(ctx, user)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func startPostgres(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       "greeter",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
			return fmt.Sprintf("postgres://postgres:postgres@%s:%s/greeter?sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("skip integration: cannot start postgres container: %v", err)
		return "", func() {}
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/greeter?sslmode=disable", host, port.Port())
	cleanup := func() {
		termCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = container.Terminate(termCtx)
	}
	return dsn, cleanup
}

func applyMigrations(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	migrationsDir := filepath.Join("..", "..", "..", "migrations")
	files, err := os.ReadDir(migrationsDir)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".sql" {
			continue
		}
		paths = append(paths, filepath.Join(migrationsDir, f.Name()))
	}
	sort.Strings(paths)

	for _, path := range paths {
		sqlBytes, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		_, execErr := pool.Exec(ctx, string(sqlBytes))
		require.NoErrorf(t, execErr, "apply migration %s", filepath.Base(path))
	}
}
