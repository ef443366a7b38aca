// Package discovery lets workers join the cluster over gossip instead
// of calling RegisterWorker themselves: every node that joins the
// memberlist mesh is registered with the coordinator under its node
// name. Departures are left to the coordinator's liveness sweep, which
// is the single removal path for worker records.
package discovery

import (
	"fmt"
	"net"
	"time"

	"github.com/hashicorp/memberlist"

	"github.com/virajbhartiya/map-reduce/internal/coordinator"
	"github.com/virajbhartiya/map-reduce/internal/logger"
)

// Config for gossip discovery.
type Config struct {
	NodeID    string   // unique name of this node in the mesh
	BindAddr  string   // address to bind the gossip listener to
	BindPort  int      // port to bind the gossip listener to
	JoinAddrs []string // existing members to join, as "host:port"
	LogLevel  string
}

// WorkerDiscovery bridges memberlist membership events into the
// coordinator's worker registry.
type WorkerDiscovery struct {
	memberlist *memberlist.Memberlist
	coord      *coordinator.Coordinator
	log        *logger.Logger
	localID    string
}

type eventDelegate struct {
	d *WorkerDiscovery
}

func (ed *eventDelegate) NotifyJoin(node *memberlist.Node) {
	ed.d.handleJoin(node)
}

func (ed *eventDelegate) NotifyLeave(node *memberlist.Node) {
	ed.d.handleLeave(node)
}

func (ed *eventDelegate) NotifyUpdate(node *memberlist.Node) {
	ed.d.handleJoin(node)
}

// New starts gossip discovery and joins the given addresses if any.
// A failed join is logged and the node continues alone.
func New(cfg Config, coord *coordinator.Coordinator) (*WorkerDiscovery, error) {
	d := &WorkerDiscovery{
		coord:   coord,
		log:     logger.New("discovery", cfg.LogLevel),
		localID: cfg.NodeID,
	}

	mlConfig := memberlist.DefaultLocalConfig()
	mlConfig.Name = cfg.NodeID
	mlConfig.BindAddr = cfg.BindAddr
	mlConfig.BindPort = cfg.BindPort
	mlConfig.ProbeInterval = 1 * time.Second
	mlConfig.ProbeTimeout = 500 * time.Millisecond
	mlConfig.GossipInterval = 200 * time.Millisecond
	mlConfig.Events = &eventDelegate{d: d}

	ml, err := memberlist.Create(mlConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create memberlist: %w", err)
	}
	d.memberlist = ml

	if len(cfg.JoinAddrs) > 0 {
		if _, err := ml.Join(cfg.JoinAddrs); err != nil {
			d.log.Warn("failed to join cluster: %v (continuing as single node)", err)
		} else {
			d.log.Info("joined cluster with %d members", ml.NumMembers())
		}
	}

	return d, nil
}

func (d *WorkerDiscovery) handleJoin(node *memberlist.Node) {
	if node.Name == d.localID {
		return
	}

	address := net.JoinHostPort(node.Addr.String(), fmt.Sprintf("%d", node.Port))
	d.coord.RegisterWorkerID(node.Name, address)
	d.log.Info("worker joined via gossip: id=%s address=%s", node.Name, address)
}

func (d *WorkerDiscovery) handleLeave(node *memberlist.Node) {
	// The record stays until the health sweep times it out; gossip
	// departure is advisory only.
	d.log.Info("worker left mesh: id=%s", node.Name)
}

// NumMembers returns the number of nodes in the gossip mesh, including
// this one.
func (d *WorkerDiscovery) NumMembers() int {
	return d.memberlist.NumMembers()
}

// Leave gracefully announces departure from the mesh.
func (d *WorkerDiscovery) Leave(timeout time.Duration) error {
	return d.memberlist.Leave(timeout)
}

// Shutdown tears down the gossip listener.
func (d *WorkerDiscovery) Shutdown() error {
	return d.memberlist.Shutdown()
}
