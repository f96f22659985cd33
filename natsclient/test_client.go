package natsclient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestClient provides a throwaway NATS server via testcontainers, connected
// through the same Client the library uses in production. Tests exercise
// the real bus; there are no transport mocks at this layer.
type TestClient struct {
	container testcontainers.Container
	Client    *Client
	URL       string
	cleanup   func()
}

// testConfig holds configuration for the test client
type testConfig struct {
	natsVersion  string
	timeout      time.Duration
	startTimeout time.Duration
}

// TestOption configures the test client
type TestOption func(*testConfig)

// WithNATSVersion pins a specific NATS server image version
func WithNATSVersion(version string) TestOption {
	return func(cfg *testConfig) {
		cfg.natsVersion = version
	}
}

// WithTestTimeout sets the connection timeout for the test client
func WithTestTimeout(timeout time.Duration) TestOption {
	return func(cfg *testConfig) {
		cfg.timeout = timeout
	}
}

// WithStartTimeout sets the container startup timeout
func WithStartTimeout(timeout time.Duration) TestOption {
	return func(cfg *testConfig) {
		cfg.startTimeout = timeout
	}
}

func defaultTestConfig() *testConfig {
	return &testConfig{
		natsVersion:  "2.11.7-alpine",
		timeout:      5 * time.Second,
		startTimeout: 30 * time.Second,
	}
}

// NewSharedTestClient starts a NATS container for use in TestMain. Unlike
// NewTestClient it does not require testing.TB and returns errors instead of
// failing a test.
func NewSharedTestClient(opts ...TestOption) (*TestClient, error) {
	cfg := defaultTestConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return startTestClient(cfg)
}

// NewTestClient starts a NATS container and connects a client to it,
// registering cleanup with the test. Accepts testing.TB so it works with
// both *testing.T and *testing.B.
func NewTestClient(t testing.TB, opts ...TestOption) *TestClient {
	t.Helper()

	cfg := defaultTestConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	tc, err := startTestClient(cfg)
	if err != nil {
		t.Fatalf("failed to start NATS test client: %v", err)
	}
	t.Cleanup(tc.Close)
	return tc
}

func startTestClient(cfg *testConfig) (*TestClient, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "nats:" + cfg.natsVersion,
		ExposedPorts: []string{"4222/tcp", "8222/tcp"},
		Cmd: []string{
			"--port", "4222",
			"--http_port", "8222",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("4222/tcp"),
			wait.ForHTTP("/").WithPort("8222/tcp").WithStartupTimeout(cfg.startTimeout),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start NATS container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "4222")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	url := fmt.Sprintf("nats://%s:%s", host, port.Port())

	client, err := NewClient(url,
		WithTimeout(cfg.timeout),
		WithMaxReconnects(0),  // No reconnects in tests
		WithHealthInterval(0), // Disable health monitoring
	)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create bus client: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	if err := client.Connect(connectCtx); err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	if err := client.WaitForConnection(connectCtx); err != nil {
		_ = client.Close(ctx)
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("NATS connection not ready: %w", err)
	}

	return &TestClient{
		container: container,
		Client:    client,
		URL:       url,
		cleanup: func() {
			_ = client.Close(context.Background())
			_ = container.Terminate(context.Background())
		},
	}, nil
}

// Close shuts down the client and the container.
func (tc *TestClient) Close() {
	if tc.cleanup != nil {
		tc.cleanup()
		tc.cleanup = nil
	}
}
