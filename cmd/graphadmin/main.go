package main

import (
	"context"
	"log"
	"os"

	"github.com/custodia-labs/graphadmin/internal/adapters/driven/auth"
	"github.com/custodia-labs/graphadmin/internal/adapters/driven/config"
	"github.com/custodia-labs/graphadmin/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/graphadmin/internal/adapters/driving/cli"
	"github.com/custodia-labs/graphadmin/internal/adapters/driving/mcpserver"
	"github.com/custodia-labs/graphadmin/internal/graph"
	"github.com/custodia-labs/graphadmin/internal/logger"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)
	cli.SetServeFunc(serve)

	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}

// serve wires the adapters and runs the MCP server until ctx is done.
// Configuration problems are fatal here; everything after startup is
// surfaced per-request as tool results.
func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("failed to load configuration: %v", err)
		return err
	}

	tokens := auth.NewProvider(cfg.Credentials)
	client := graph.NewClient(tokens)

	// Audit log is best-effort: a broken local database shouldn't keep
	// the server from starting.
	var audit mcpserver.AuditRecorder
	auditStore, err := sqlite.NewAuditStore("")
	if err != nil {
		logger.Warn("audit store unavailable", "error", err)
	} else {
		defer auditStore.Close()
		audit = auditStore
	}

	server := mcpserver.New(client, audit, version)
	return server.Run(ctx)
}
