// Package protocol defines the wire contract between the job client and
// the map-reduce service: the three RPC operations (Map, Reduce, Ping),
// their request and reply shapes, and the error taxonomy that survives
// the trip across net/rpc.
package protocol

import "github.com/virajbhartiya/map-reduce/internal/types"

// ServiceName is the name the handler set is registered under; clients
// call "MapReduce.Map", "MapReduce.Reduce" and "MapReduce.Ping".
const ServiceName = "MapReduce"

// Ping status values.
const (
	StatusOK      = "OK"
	StatusUnknown = "UNKNOWN"
)

// Metadata carries request metadata that is not part of the operation
// body, such as the caller's worker identity on Ping.
type Metadata struct {
	WorkerID string
}

// MapArgs asks the service to run a named map function over one file.
type MapArgs struct {
	FilePath    string
	MapFunction string
}

// MapReply carries the intermediate pairs emitted by the map function.
type MapReply struct {
	IntermediateResults []types.KeyValue
}

// ReduceArgs asks the service to group intermediate pairs by key and
// run a named reduce function once per distinct key.
type ReduceArgs struct {
	IntermediateResults []types.KeyValue
	ReduceFunction      string
}

// ReduceReply carries the serialized final result: "key:value" entries
// joined by ", ", in no guaranteed order.
type ReduceReply struct {
	FinalResult string
}

// PingArgs is a liveness probe. The worker identity travels in the
// metadata, not the body.
type PingArgs struct {
	Metadata Metadata
}

// PingReply reports StatusOK for any non-empty identity and
// StatusUnknown when none was supplied.
type PingReply struct {
	Status string
}
