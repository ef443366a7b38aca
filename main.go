package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/virajbhartiya/map-reduce/internal/client"
	"github.com/virajbhartiya/map-reduce/internal/config"
	"github.com/virajbhartiya/map-reduce/internal/discovery"
	"github.com/virajbhartiya/map-reduce/internal/report"
	"github.com/virajbhartiya/map-reduce/internal/service"
)

const (
	defaultMapFn    = "word_count"
	defaultReduceFn = "sum"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  Server mode: %s server [flags]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  Client mode: %s client -dir <directory> [flags]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nRun '%s server -h' or '%s client -h' for flags.\n", os.Args[0], os.Args[0])
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "server":
		runServer(os.Args[2:])
	case "client":
		runClient(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode: %s\n", os.Args[1])
		usage()
	}
}

func runServer(args []string) {
	cfg := config.Default()

	fs := flag.NewFlagSet("server", flag.ExitOnError)
	addr := fs.String("addr", cfg.ListenAddr, "address to listen on")
	logLevel := fs.String("log-level", cfg.LogLevel, "log level (DEBUG, INFO, WARN, ERROR)")
	gossip := fs.Bool("gossip", false, "enable gossip-based worker discovery")
	gossipAddr := fs.String("gossip-addr", "0.0.0.0", "gossip bind address")
	gossipPort := fs.Int("gossip-port", 7946, "gossip bind port")
	nodeID := fs.String("node-id", "", "gossip node id (default: generated)")
	join := fs.String("join", "", "comma-separated gossip addresses to join")
	fs.Parse(args)

	cfg.ListenAddr = *addr
	cfg.LogLevel = *logLevel

	srv, err := service.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	if *gossip {
		id := *nodeID
		if id == "" {
			id = "coordinator-" + uuid.New().String()[:8]
		}
		dcfg := discovery.Config{
			NodeID:   id,
			BindAddr: *gossipAddr,
			BindPort: *gossipPort,
			LogLevel: cfg.LogLevel,
		}
		if *join != "" {
			dcfg.JoinAddrs = strings.Split(*join, ",")
		}
		d, err := discovery.New(dcfg, srv.Coordinator())
		if err != nil {
			log.Fatalf("failed to start discovery: %v", err)
		}
		defer d.Shutdown()
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", cfg.ListenAddr, err)
	}

	log.Printf("Starting Map-Reduce server on %s", cfg.ListenAddr)
	srv.Serve(ln)
}

func runClient(args []string) {
	cfg := config.Default()

	fs := flag.NewFlagSet("client", flag.ExitOnError)
	server := fs.String("server", cfg.ServerAddr, "server address")
	dir := fs.String("dir", "", "directory containing input files (required)")
	mapFn := fs.String("map", defaultMapFn, "map function name")
	reduceFn := fs.String("reduce", defaultReduceFn, "reduce function name")
	logLevel := fs.String("log-level", cfg.LogLevel, "log level (DEBUG, INFO, WARN, ERROR)")
	fs.Parse(args)

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "Error: directory path required for client mode")
		fs.Usage()
		os.Exit(1)
	}

	cfg.ServerAddr = *server
	cfg.LogLevel = *logLevel

	files, err := client.DiscoverInputs(*dir, cfg.InputExt)
	if err != nil {
		log.Fatalf("failed to discover inputs: %v", err)
	}
	if len(files) == 0 {
		fmt.Printf("No %s files found in %s\n", cfg.InputExt, *dir)
		return
	}

	report.PrintJobInfo(files, cfg.ServerAddr, *mapFn, *reduceFn)

	c, err := client.Dial(cfg, cfg.ServerAddr)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer c.Close()
	c.StartHeartbeat()

	start := time.Now()
	result, err := c.RunJob(files, *mapFn, *reduceFn)
	if err != nil {
		log.Fatalf("job failed: %v", err)
	}
	elapsed := time.Since(start)

	outputFile, err := report.Save(result, files, *mapFn, *reduceFn)
	if err != nil {
		log.Fatalf("failed to save results: %v", err)
	}

	report.PrintSummary(result, outputFile)
	fmt.Printf("Total files processed: %d\n", len(files))
	fmt.Printf("Total time: %s\n", elapsed.Round(time.Millisecond))
}
