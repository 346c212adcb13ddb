//go:build integration

package identity_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/fintrack/fintrack/internal/identity"
	"github.com/fintrack/fintrack/internal/infra"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("fintrack_test"),
		postgres.WithUsername("fintrack"),
		postgres.WithPassword("fintrack"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := infra.NewMigrator(connStr)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	return connStr
}

func TestPostgresCredentialStore(t *testing.T) {
	connStr := startPostgres(t)
	ctx := context.Background()

	pool, err := infra.NewPostgresPool(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	svc, err := identity.NewService(identity.NewPostgresRepository(pool), identity.NewBcryptHasher(bcrypt.MinCost))
	require.NoError(t, err)

	t.Run("register then login", func(t *testing.T) {
		id, err := svc.Register(ctx, identity.Credentials{Login: "alice", Password: "s3cret"})
		require.NoError(t, err)

		got, err := svc.Login(ctx, identity.Credentials{Login: "alice", Password: "s3cret"})
		require.NoError(t, err)
		assert.Equal(t, id, got)

		_, err = svc.Login(ctx, identity.Credentials{Login: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})

	t.Run("concurrent duplicate registration", func(t *testing.T) {
		const attempts = 4
		errs := make(chan error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Register(ctx, identity.Credentials{Login: "bob", Password: "pw"})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var ok int
		for err := range errs {
			if err == nil {
				ok++
				continue
			}
			assert.True(t, errors.Is(err, identity.ErrDuplicateLogin), "unexpected error %v", err)
		}
		assert.Equal(t, 1, ok)
	})
}
