package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestPostgres(t *testing.T) (*PostgresStorage, func()) {
	if testing.Short() {
		t.Skip("skipping Postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	s, err := NewPostgresStorage(&Credentials{
		Host:     host,
		Port:     port.Int(),
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	})
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations())

	cleanup := func() {
		s.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return s, cleanup
}

func TestPostgresStorage(t *testing.T) {
	s, cleanup := setupTestPostgres(t)
	defer cleanup()
	ctx := context.Background()

	_, err := s.Get(ctx, "@GoMarketplace")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "@GoMarketplace", "[]"))
	require.NoError(t, s.Set(ctx, "@GoMarketplace", `[{"id":"x1","quantity":1}]`))

	value, err := s.Get(ctx, "@GoMarketplace")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"x1","quantity":1}]`, value)
}

func TestPostgresStorage_MigrationsIdempotent(t *testing.T) {
	s, cleanup := setupTestPostgres(t)
	defer cleanup()

	assert.NoError(t, s.RunMigrations())
}
