// Package mcpserver exposes the Graph directory operations as MCP tools
// over a stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/graphadmin/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/graphadmin/internal/graph"
	"github.com/custodia-labs/graphadmin/internal/logger"
)

// serverName matches the original server identity announced to MCP hosts.
const serverName = "microsoft-graph-mcp"

// AuditRecorder records completed tool invocations. Satisfied by
// *sqlite.AuditStore.
type AuditRecorder interface {
	Record(ctx context.Context, e sqlite.Entry) error
}

// Server wires the seven Graph tools into an MCP server.
type Server struct {
	graph *graph.Client
	audit AuditRecorder
	mcp   *mcp.Server
}

// New creates an MCP server backed by the given Graph client.
// audit may be nil to disable audit logging.
func New(client *graph.Client, audit AuditRecorder, version string) *Server {
	s := &Server{
		graph: client,
		audit: audit,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Run serves MCP over stdin/stdout until the context is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("starting MCP server", "name", serverName)
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// result renders a success payload the way the original server did:
// a headline followed by the indented Graph response.
func result(headline string, payload json.RawMessage) *mcp.CallToolResult {
	text := headline
	if len(payload) > 0 && string(payload) != "{}" {
		var buf []byte
		if indented, err := json.MarshalIndent(json.RawMessage(payload), "", "  "); err == nil {
			buf = indented
		} else {
			buf = payload
		}
		text += "\n" + string(buf)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult converts a gateway error into a failed tool result.
// Upstream error bodies pass through verbatim; errors never propagate as
// protocol faults, so one failing operation cannot take down the host
// session.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + err.Error()}},
	}
}

// record writes an audit entry for a completed invocation. Audit
// failures are logged and swallowed; they never fail the operation.
func (s *Server) record(ctx context.Context, tool, target string, err error) {
	if s.audit == nil {
		return
	}
	entry := sqlite.Entry{
		ID:      uuid.NewString(),
		Tool:    tool,
		Target:  target,
		Outcome: "success",
	}
	if err != nil {
		entry.Outcome = "error"
		var apiErr *graph.APIError
		if errors.As(err, &apiErr) {
			entry.Status = apiErr.StatusCode
		}
	}
	if recErr := s.audit.Record(ctx, entry); recErr != nil {
		logger.Warn("audit record failed", "tool", tool, "error", recErr)
	}
}
