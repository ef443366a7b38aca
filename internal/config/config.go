package config

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// DefaultPort is the port the server binds and the client targets
// unless overridden.
const DefaultPort = 50051

// Config holds the process-wide settings. It is built once at startup
// and passed into the coordinator, service and client constructors;
// nothing reads it through package state.
type Config struct {
	// ListenAddr is the server bind address.
	ListenAddr string

	// ServerAddr is the address the client dials.
	ServerAddr string

	// WorkerThreads bounds the per-request reduce pool.
	WorkerThreads int

	// HealthCheckInterval is the cadence of the worker liveness sweep.
	HealthCheckInterval time.Duration

	// WorkerTimeout is the heartbeat age past which a worker is
	// considered dead and its tasks are requeued.
	WorkerTimeout time.Duration

	// HeartbeatInterval is how often the client pings the server.
	HeartbeatInterval time.Duration

	// InputExt is the file extension the job client discovers.
	InputExt string

	// LogLevel is the minimum level the loggers emit.
	LogLevel string
}

// Default returns the standard configuration. MR_WORKER_THREADS
// overrides the reduce pool size, matching the original deployment knob.
func Default() Config {
	return Config{
		ListenAddr:          "0.0.0.0:" + strconv.Itoa(DefaultPort),
		ServerAddr:          "localhost:" + strconv.Itoa(DefaultPort),
		WorkerThreads:       workerThreads(),
		HealthCheckInterval: 10 * time.Second,
		WorkerTimeout:       30 * time.Second,
		HeartbeatInterval:   5 * time.Second,
		InputExt:            ".txt",
		LogLevel:            "INFO",
	}
}

func workerThreads() int {
	if v := os.Getenv("MR_WORKER_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}
