// Package mcpserver implements the MCP tool registry and the JSON-RPC 2.0
// stdio dispatcher layered on top of it: initialize, tools/list, tools/call,
// and the single-threaded read loop that drives them.
package mcpserver

import (
	"context"

	"github.com/ternarybob/atlassian-mcp/internal/jsonx"
	"github.com/ternarybob/atlassian-mcp/internal/toolresponse"
)

// ToolHandler executes one tool call. args is never nil - a call with no
// arguments object still yields an empty ArgumentMap.
type ToolHandler func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse

// ToolDescriptor is the static, immutable description of one registered
// tool: its name, a human-readable description, and the product family it
// belongs to.
type ToolDescriptor struct {
	Name        string
	Description string
	Product     toolresponse.Product
}
