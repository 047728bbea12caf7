// Package redistest starts a throwaway Redis for integration tests.
package redistest

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-juice-pos/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func Start(ctx context.Context) (testcontainers.Container, *redis.Client, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("testcontainers.GenericContainer: %w", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		return container, nil, fmt.Errorf("container.Endpoint: %w", err)
	}

	rdb, err := redisx.New(ctx, endpoint)
	if err != nil {
		return container, nil, err
	}

	return container, rdb, nil
}
