// Package client drives map-reduce jobs against a running server: it
// discovers input files, issues one Map call per file, accumulates the
// intermediate pairs, and finishes with a single Reduce call. It also
// identifies itself as a worker and keeps a heartbeat going.
package client

import (
	"net/rpc"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/virajbhartiya/map-reduce/internal/config"
	"github.com/virajbhartiya/map-reduce/internal/logger"
	"github.com/virajbhartiya/map-reduce/internal/protocol"
	"github.com/virajbhartiya/map-reduce/internal/types"
)

// Client is a connection to the map-reduce server with a stable worker
// identity.
type Client struct {
	cfg      config.Config
	workerID string
	rpc      *rpc.Client
	log      *logger.Logger

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Dial connects to the server at addr and assigns the client a fresh
// worker identity.
func Dial(cfg config.Config, addr string) (*Client, error) {
	conn, err := rpc.Dial("tcp", addr)
	if err != nil {
		return nil, protocol.Errorf(protocol.CodeUnavailable, "cannot reach server at %s: %v", addr, err)
	}

	return &Client{
		cfg:      cfg,
		workerID: uuid.New().String(),
		rpc:      conn,
		log:      logger.New("client", cfg.LogLevel),
		done:     make(chan struct{}),
	}, nil
}

// WorkerID returns the identity this client pings under.
func (c *Client) WorkerID() string {
	return c.workerID
}

// Ping sends one liveness probe carrying the client's worker identity
// and returns the server's status string.
func (c *Client) Ping() (string, error) {
	args := &protocol.PingArgs{Metadata: protocol.Metadata{WorkerID: c.workerID}}
	var reply protocol.PingReply
	if err := c.rpc.Call(protocol.ServiceName+".Ping", args, &reply); err != nil {
		return "", err
	}
	return reply.Status, nil
}

// StartHeartbeat pings the server on the configured interval until the
// client is closed.
func (c *Client) StartHeartbeat() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.cfg.HeartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-c.done:
				return
			case <-ticker.C:
				if _, err := c.Ping(); err != nil {
					c.log.Warn("heartbeat failed: %v", err)
				}
			}
		}
	}()
}

// RunJob maps every file in order, accumulating the intermediate pairs,
// then issues exactly one Reduce over the full accumulation and returns
// the final result. The first failed call aborts the job; there is no
// partial result.
func (c *Client) RunJob(files []string, mapFunction, reduceFunction string) (string, error) {
	var intermediate []types.KeyValue

	for _, file := range files {
		args := &protocol.MapArgs{FilePath: file, MapFunction: mapFunction}
		var reply protocol.MapReply
		if err := c.rpc.Call(protocol.ServiceName+".Map", args, &reply); err != nil {
			return "", err
		}
		intermediate = append(intermediate, reply.IntermediateResults...)
		c.log.Debug("mapped %s: %d pairs", file, len(reply.IntermediateResults))
	}

	args := &protocol.ReduceArgs{
		IntermediateResults: intermediate,
		ReduceFunction:      reduceFunction,
	}
	var reply protocol.ReduceReply
	if err := c.rpc.Call(protocol.ServiceName+".Reduce", args, &reply); err != nil {
		return "", err
	}

	c.log.Info("job complete: files=%d pairs=%d", len(files), len(intermediate))
	return reply.FinalResult, nil
}

// Close stops the heartbeat and closes the connection.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	c.wg.Wait()
	return c.rpc.Close()
}
