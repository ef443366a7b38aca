// Package service implements the MapReduce RPC surface: Map and Reduce
// execution against the function registry, and Ping-driven heartbeat
// tracking against the coordinator.
package service

import (
	"os"
	"strings"
	"sync"

	"github.com/virajbhartiya/map-reduce/internal/config"
	"github.com/virajbhartiya/map-reduce/internal/coordinator"
	"github.com/virajbhartiya/map-reduce/internal/functions"
	"github.com/virajbhartiya/map-reduce/internal/logger"
	"github.com/virajbhartiya/map-reduce/internal/protocol"
	"github.com/virajbhartiya/map-reduce/internal/types"
)

// Service is the RPC handler set. Map and Reduce execute immediately
// per request; the coordinator's task registry records each execution
// for observability but does not gate it.
type Service struct {
	cfg      config.Config
	coord    *coordinator.Coordinator
	registry *functions.Registry
	log      *logger.Logger
}

// New creates a service around an existing coordinator and registry.
func New(cfg config.Config, coord *coordinator.Coordinator, registry *functions.Registry) *Service {
	return &Service{
		cfg:      cfg,
		coord:    coord,
		registry: registry,
		log:      logger.New("service", cfg.LogLevel),
	}
}

// Map reads the requested file and applies the named map function,
// returning the intermediate pairs it emits.
func (s *Service) Map(args *protocol.MapArgs, reply *protocol.MapReply) error {
	mapFn, ok := s.registry.Map(args.MapFunction)
	if !ok {
		return protocol.Errorf(protocol.CodeFunctionNotFound, "map function %q is not registered", args.MapFunction)
	}

	taskID := s.coord.CreateTask()

	data, err := os.ReadFile(args.FilePath)
	if err != nil {
		s.coord.UpdateTaskStatus(taskID, types.TaskFailed)
		return protocol.Errorf(protocol.CodeNotFound, "cannot open %s: %v", args.FilePath, err)
	}

	reply.IntermediateResults = mapFn(string(data))
	s.coord.UpdateTaskStatus(taskID, types.TaskCompleted)

	s.log.Debug("map done: file=%s function=%s pairs=%d", args.FilePath, args.MapFunction, len(reply.IntermediateResults))
	return nil
}

// Reduce groups the intermediate pairs by key and applies the named
// reduce function once per distinct key, serializing the outputs as
// ", "-joined "key:value" entries.
func (s *Service) Reduce(args *protocol.ReduceArgs, reply *protocol.ReduceReply) error {
	reduceFn, ok := s.registry.Reduce(args.ReduceFunction)
	if !ok {
		return protocol.Errorf(protocol.CodeFunctionNotFound, "reduce function %q is not registered", args.ReduceFunction)
	}

	taskID := s.coord.CreateTask()

	grouped := make(map[string][]string)
	for _, kv := range args.IntermediateResults {
		grouped[kv.Key] = append(grouped[kv.Key], kv.Value)
	}

	reduced, err := s.reduceAll(grouped, reduceFn)
	if err != nil {
		s.coord.UpdateTaskStatus(taskID, types.TaskFailed)
		return protocol.Errorf(protocol.CodeInvalidArgument, "%v", err)
	}

	reply.FinalResult = serialize(reduced)
	s.coord.UpdateTaskStatus(taskID, types.TaskCompleted)

	s.log.Debug("reduce done: function=%s keys=%d", args.ReduceFunction, len(grouped))
	return nil
}

// reduceAll applies the reduce function to every key group using a pool
// bounded by the configured worker-thread count. The first failure wins.
func (s *Service) reduceAll(grouped map[string][]string, reduceFn functions.ReduceFunc) (map[string]string, error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	result := make(map[string]string, len(grouped))
	var firstErr error

	threads := s.cfg.WorkerThreads
	if threads < 1 {
		threads = 1
	}
	sem := make(chan struct{}, threads)

	for key, values := range grouped {
		wg.Add(1)
		go func(k string, vs []string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			out, err := reduceFn(k, vs)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			result[k] = out
		}(key, values)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

func serialize(reduced map[string]string) string {
	entries := make([]string, 0, len(reduced))
	for key, value := range reduced {
		entries = append(entries, key+":"+value)
	}
	return strings.Join(entries, ", ")
}

// Ping answers a liveness probe. A request without a worker identity
// gets StatusUnknown; any identified caller gets StatusOK and has its
// heartbeat record created or refreshed.
func (s *Service) Ping(args *protocol.PingArgs, reply *protocol.PingReply) error {
	workerID := args.Metadata.WorkerID
	if workerID == "" {
		reply.Status = protocol.StatusUnknown
		return nil
	}

	s.coord.Touch(workerID)
	reply.Status = protocol.StatusOK
	return nil
}
