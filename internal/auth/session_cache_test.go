package auth_test

import (
	"context"
	"testing"
	"time"

	"ms-bookings/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestSessionCacheIntegration exercises revocation against a real Redis
// container.
func TestSessionCacheIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)

	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	sessions, err := auth.NewSessionCache(host+":"+port.Port(), time.Minute, nil)
	require.NoError(t, err)

	token := "header.payload.signature"

	// Fresh token is not revoked
	assert.False(t, sessions.IsRevoked(ctx, token))

	// Revoke and check again
	require.NoError(t, sessions.Revoke(ctx, token))
	assert.True(t, sessions.IsRevoked(ctx, token))

	// A different token stays valid
	assert.False(t, sessions.IsRevoked(ctx, "another.token.entirely"))
}
