package natsclient

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test basic client creation
func TestNewClient(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	assert.NoError(t, err)

	assert.NotNil(t, client)
	assert.Equal(t, "nats://localhost:4222", client.URL())
	assert.Equal(t, StatusDisconnected, client.Status())
	assert.False(t, client.IsHealthy())
}

// Test circuit breaker opens after failures
func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	client, err := NewClient("nats://invalid:4222")
	assert.NoError(t, err)

	// Record 4 failures - should not open
	for i := 0; i < 4; i++ {
		client.recordFailure()
	}
	assert.NotEqual(t, StatusCircuitOpen, client.Status())

	// 5th failure should open circuit
	client.recordFailure()
	assert.Equal(t, StatusCircuitOpen, client.Status())
	assert.Equal(t, int32(5), client.Failures())
}

// Test circuit breaker reset
func TestCircuitBreaker_Reset(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	assert.NoError(t, err)

	for i := 0; i < 5; i++ {
		client.recordFailure()
	}
	assert.Equal(t, StatusCircuitOpen, client.Status())

	client.resetCircuit()
	assert.Equal(t, int32(0), client.Failures())
	assert.NotEqual(t, StatusCircuitOpen, client.Status())
}

// Test exponential backoff
func TestCircuitBreaker_ExponentialBackoff(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	assert.NoError(t, err)

	// Initial backoff should be 1 second
	assert.Equal(t, time.Second, client.Backoff())

	for i := 0; i < 5; i++ {
		client.recordFailure()
	}
	assert.Equal(t, 2*time.Second, client.Backoff())

	for i := 0; i < 5; i++ {
		client.recordFailure()
	}
	assert.Equal(t, 4*time.Second, client.Backoff())
}

// Test backoff is capped at the configured maximum
func TestCircuitBreaker_BackoffCap(t *testing.T) {
	client, err := NewClient("nats://localhost:4222",
		WithMaxBackoff(3*time.Second),
	)
	assert.NoError(t, err)

	for round := 0; round < 4; round++ {
		for i := 0; i < 5; i++ {
			client.recordFailure()
		}
	}
	assert.Equal(t, 3*time.Second, client.Backoff())
}

// Test custom circuit breaker threshold
func TestCircuitBreaker_CustomThreshold(t *testing.T) {
	client, err := NewClient("nats://localhost:4222",
		WithCircuitBreakerThreshold(2),
	)
	assert.NoError(t, err)

	client.recordFailure()
	assert.NotEqual(t, StatusCircuitOpen, client.Status())

	client.recordFailure()
	assert.Equal(t, StatusCircuitOpen, client.Status())
}

// Test circuit test transitions open -> disconnected
func TestCircuitBreaker_TestCircuit(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	assert.NoError(t, err)

	for i := 0; i < 5; i++ {
		client.recordFailure()
	}
	assert.Equal(t, StatusCircuitOpen, client.Status())

	client.testCircuit()
	assert.Equal(t, StatusDisconnected, client.Status())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "disconnected", StatusDisconnected.String())
	assert.Equal(t, "connecting", StatusConnecting.String())
	assert.Equal(t, "connected", StatusConnected.String())
	assert.Equal(t, "reconnecting", StatusReconnecting.String())
	assert.Equal(t, "circuit_open", StatusCircuitOpen.String())
}

// Concurrent failure recording must not race or panic
func TestConcurrentSafety(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				client.recordFailure()
				_ = client.Status()
				_ = client.Backoff()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(200), client.Failures())
}

// Publish without a connection fails with ErrNotConnected
func TestPublish_NotConnected(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	err = client.Publish(context.Background(), "wasmbus.inventory.hosts", []byte("{}"))
	assert.ErrorIs(t, err, ErrNotConnected)

	err = client.PublishRequest(context.Background(), "wasmbus.inventory.hosts", "_INBOX.x", []byte("{}"))
	assert.ErrorIs(t, err, ErrNotConnected)
}

// Reply inboxes are unique even before the connection exists
func TestNewReplyInbox_Unique(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		inbox := client.NewReplyInbox()
		assert.NotEmpty(t, inbox)
		assert.False(t, seen[inbox], "inbox %s minted twice", inbox)
		seen[inbox] = true
	}
}

func TestWaitForConnection_Timeout(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = client.WaitForConnection(ctx)
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, client.Close(ctx))
	assert.NoError(t, client.Close(ctx))
}

func TestConnectionOptions(t *testing.T) {
	client, err := NewClient("nats://localhost:4222",
		WithMaxReconnects(3),
		WithReconnectWait(100*time.Millisecond),
		WithName("test-client"),
		WithTimeout(time.Second),
	)
	require.NoError(t, err)

	opts := client.ConnectionOptions()
	assert.NotEmpty(t, opts)
}
