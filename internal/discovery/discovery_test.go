package discovery

import (
	"testing"
	"time"

	"github.com/virajbhartiya/map-reduce/internal/config"
	"github.com/virajbhartiya/map-reduce/internal/coordinator"
)

func TestSingleNodeMesh(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "ERROR"
	coord := coordinator.New(cfg)

	d, err := New(Config{
		NodeID:   "test-node",
		BindAddr: "127.0.0.1",
		BindPort: 0,
		LogLevel: "ERROR",
	}, coord)
	if err != nil {
		t.Fatalf("failed to start discovery: %v", err)
	}
	defer d.Shutdown()

	if got := d.NumMembers(); got != 1 {
		t.Fatalf("expected 1 member, got %d", got)
	}

	// The local node is the coordinator side of the mesh, not a worker.
	if got := len(coord.Workers()); got != 0 {
		t.Fatalf("local node should not be registered as a worker, got %d", got)
	}
}

func TestJoiningNodeRegistersAsWorker(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "ERROR"
	coord := coordinator.New(cfg)

	server, err := New(Config{
		NodeID:   "coordinator-node",
		BindAddr: "127.0.0.1",
		BindPort: 0,
		LogLevel: "ERROR",
	}, coord)
	if err != nil {
		t.Fatalf("failed to start server mesh: %v", err)
	}
	defer server.Shutdown()

	serverAddr := server.memberlist.LocalNode().Address()

	workerCoord := coordinator.New(cfg)
	worker, err := New(Config{
		NodeID:    "worker-node",
		BindAddr:  "127.0.0.1",
		BindPort:  0,
		JoinAddrs: []string{serverAddr},
		LogLevel:  "ERROR",
	}, workerCoord)
	if err != nil {
		t.Fatalf("failed to start worker mesh: %v", err)
	}
	defer worker.Shutdown()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := coord.Worker("worker-node"); ok {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("joining node was never registered with the coordinator")
}
