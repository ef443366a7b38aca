package service

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/virajbhartiya/map-reduce/internal/config"
	"github.com/virajbhartiya/map-reduce/internal/coordinator"
	"github.com/virajbhartiya/map-reduce/internal/functions"
	"github.com/virajbhartiya/map-reduce/internal/protocol"
	"github.com/virajbhartiya/map-reduce/internal/types"
)

func newTestService(t *testing.T) (*Service, *coordinator.Coordinator) {
	t.Helper()
	cfg := config.Default()
	cfg.LogLevel = "ERROR"
	cfg.WorkerThreads = 4

	coord := coordinator.New(cfg)
	return New(cfg, coord, functions.NewRegistry()), coord
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func countByKey(kvs []types.KeyValue) map[string]int {
	counts := make(map[string]int)
	for _, kv := range kvs {
		n, _ := strconv.Atoi(kv.Value)
		counts[kv.Key] += n
	}
	return counts
}

func TestMapWithValidFile(t *testing.T) {
	svc, _ := newTestService(t)
	path := writeFile(t, "test.txt", "hello world\nhello rust\nworld of rust")

	var reply protocol.MapReply
	err := svc.Map(&protocol.MapArgs{FilePath: path, MapFunction: "word_count"}, &reply)
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}

	counts := countByKey(reply.IntermediateResults)
	expected := map[string]int{"hello": 2, "world": 2, "rust": 2, "of": 1}
	for word, want := range expected {
		if counts[word] != want {
			t.Errorf("count for %q: want %d, got %d", word, want, counts[word])
		}
	}
}

func TestMapWithNonexistentFile(t *testing.T) {
	svc, _ := newTestService(t)

	var reply protocol.MapReply
	err := svc.Map(&protocol.MapArgs{FilePath: "/nonexistent/file.txt", MapFunction: "word_count"}, &reply)
	if protocol.CodeOf(err) != protocol.CodeNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestMapWithUnknownFunction(t *testing.T) {
	svc, _ := newTestService(t)
	path := writeFile(t, "test.txt", "hello")

	var reply protocol.MapReply
	err := svc.Map(&protocol.MapArgs{FilePath: path, MapFunction: "no_such_fn"}, &reply)
	if protocol.CodeOf(err) != protocol.CodeFunctionNotFound {
		t.Fatalf("expected FunctionNotFound, got %v", err)
	}
}

func TestReduce(t *testing.T) {
	svc, _ := newTestService(t)

	args := &protocol.ReduceArgs{
		IntermediateResults: []types.KeyValue{
			{Key: "hello", Value: "2"},
			{Key: "world", Value: "3"},
		},
		ReduceFunction: "sum",
	}
	var reply protocol.ReduceReply
	if err := svc.Reduce(args, &reply); err != nil {
		t.Fatalf("reduce failed: %v", err)
	}

	if !strings.Contains(reply.FinalResult, "hello:2") {
		t.Errorf("result missing hello:2: %q", reply.FinalResult)
	}
	if !strings.Contains(reply.FinalResult, "world:3") {
		t.Errorf("result missing world:3: %q", reply.FinalResult)
	}
}

func TestReduceGroupsDuplicateKeys(t *testing.T) {
	svc, _ := newTestService(t)

	args := &protocol.ReduceArgs{
		IntermediateResults: []types.KeyValue{
			{Key: "a", Value: "1"},
			{Key: "b", Value: "3"},
			{Key: "a", Value: "2"},
		},
		ReduceFunction: "sum",
	}
	var reply protocol.ReduceReply
	if err := svc.Reduce(args, &reply); err != nil {
		t.Fatalf("reduce failed: %v", err)
	}

	if !strings.Contains(reply.FinalResult, "a:3") {
		t.Errorf("values for a duplicate key should be reduced together: %q", reply.FinalResult)
	}
	if !strings.Contains(reply.FinalResult, "b:3") {
		t.Errorf("result missing b:3: %q", reply.FinalResult)
	}
}

func TestReduceWithInvalidValue(t *testing.T) {
	svc, _ := newTestService(t)

	args := &protocol.ReduceArgs{
		IntermediateResults: []types.KeyValue{{Key: "hello", Value: "not_a_number"}},
		ReduceFunction:      "sum",
	}
	var reply protocol.ReduceReply
	err := svc.Reduce(args, &reply)
	if protocol.CodeOf(err) != protocol.CodeInvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestReduceWithUnknownFunction(t *testing.T) {
	svc, _ := newTestService(t)

	args := &protocol.ReduceArgs{
		IntermediateResults: []types.KeyValue{{Key: "a", Value: "1"}},
		ReduceFunction:      "no_such_fn",
	}
	var reply protocol.ReduceReply
	err := svc.Reduce(args, &reply)
	if protocol.CodeOf(err) != protocol.CodeFunctionNotFound {
		t.Fatalf("expected FunctionNotFound, got %v", err)
	}
}

func TestPingWithWorkerID(t *testing.T) {
	svc, coord := newTestService(t)

	args := &protocol.PingArgs{Metadata: protocol.Metadata{WorkerID: "test-worker-1"}}
	var reply protocol.PingReply
	if err := svc.Ping(args, &reply); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	if reply.Status != protocol.StatusOK {
		t.Fatalf("expected %s, got %s", protocol.StatusOK, reply.Status)
	}

	if _, ok := coord.Worker("test-worker-1"); !ok {
		t.Fatalf("ping should create a heartbeat record for the presented identity")
	}
}

func TestPingWithoutWorkerID(t *testing.T) {
	svc, _ := newTestService(t)

	var reply protocol.PingReply
	if err := svc.Ping(&protocol.PingArgs{}, &reply); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	if reply.Status != protocol.StatusUnknown {
		t.Fatalf("expected %s, got %s", protocol.StatusUnknown, reply.Status)
	}
}

func TestExecutionRecordsAdvisoryTasks(t *testing.T) {
	svc, coord := newTestService(t)
	path := writeFile(t, "test.txt", "hello")

	var mapReply protocol.MapReply
	if err := svc.Map(&protocol.MapArgs{FilePath: path, MapFunction: "word_count"}, &mapReply); err != nil {
		t.Fatalf("map failed: %v", err)
	}

	var reduceReply protocol.ReduceReply
	err := svc.Reduce(&protocol.ReduceArgs{
		IntermediateResults: []types.KeyValue{{Key: "x", Value: "oops"}},
		ReduceFunction:      "sum",
	}, &reduceReply)
	if err == nil {
		t.Fatalf("expected reduce to fail")
	}

	completed, failed := 0, 0
	for _, task := range coord.Tasks() {
		switch task.Status {
		case types.TaskCompleted:
			completed++
		case types.TaskFailed:
			failed++
		}
	}
	if completed != 1 || failed != 1 {
		t.Fatalf("expected 1 completed and 1 failed task record, got %d/%d", completed, failed)
	}
}
