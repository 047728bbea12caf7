// Package pgtest starts a throwaway PostgreSQL for repository suites.
package pgtest

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Start runs postgres in a container and returns a migrated pool. Callers
// close the pool and terminate the container.
func Start(ctx context.Context) (testcontainers.Container, *pgxpool.Pool, error) {
	container, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("pos"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, nil, fmt.Errorf("container.ConnectionString: %w", err)
	}

	pool, err := postgres.Connect(ctx, connStr)
	if err != nil {
		return container, nil, err
	}

	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return container, nil, err
	}

	return container, pool, nil
}

// Truncate empties the given tables between tests.
func Truncate(ctx context.Context, pool *pgxpool.Pool, tables ...string) error {
	for _, t := range tables {
		if _, err := pool.Exec(ctx, "TRUNCATE TABLE "+t+" CASCADE"); err != nil {
			return fmt.Errorf("truncate %s: %w", t, err)
		}
	}
	return nil
}
