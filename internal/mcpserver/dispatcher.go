package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atlassian-mcp/internal/jsonx"
)

const protocolVersion = "2024-11-05"

// ServerInfo names this gateway in the initialize handshake.
type ServerInfo struct {
	Name    string
	Version string
}

// Dispatcher parses one JSON-RPC 2.0 request line at a time and returns the
// response line to write (or "" for a notification, which receives none).
// Every field of the request envelope - method, id, params - is read
// through jsonx, never encoding/json, so the id's exact shape (number,
// string, or null) is preserved byte for byte.
type Dispatcher struct {
	registry *Registry
	info     ServerInfo
	logger   arbor.ILogger
}

// NewDispatcher builds a Dispatcher over registry.
func NewDispatcher(registry *Registry, info ServerInfo, logger arbor.ILogger) *Dispatcher {
	return &Dispatcher{registry: registry, info: info, logger: logger}
}

// Handle parses and responds to one request line. ok is false when the line
// was a notification (no id present) and no response should be written.
func (d *Dispatcher) Handle(ctx context.Context, line string) (response string, ok bool) {
	method, hasMethod := jsonx.StringAt(line, "method")
	idToken := jsonx.RawToken(line, "id")
	isNotification := idToken == ""

	if !hasMethod {
		if isNotification {
			return "", false
		}
		return d.errorResponse(idToken, -32601, "Method not found: (missing)"), true
	}

	var result string
	var rpcErr *rpcError

	switch method {
	case "initialize":
		result = d.handleInitialize()
	case "tools/list":
		result = d.handleToolsList()
	case "tools/call":
		result, rpcErr = d.handleToolsCall(ctx, line)
	default:
		rpcErr = &rpcError{code: -32601, message: "Method not found: " + method}
	}

	if isNotification {
		return "", false
	}
	if rpcErr != nil {
		return d.errorResponse(idToken, rpcErr.code, rpcErr.message), true
	}
	return `{"jsonrpc":"2.0","id":` + idToken + `,"result":` + result + `}`, true
}

type rpcError struct {
	code    int
	message string
}

func (d *Dispatcher) errorResponse(idToken string, code int, message string) string {
	if idToken == "" {
		idToken = "null"
	}
	return fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"error":{"code":%d,"message":"%s"}}`, idToken, code, jsonx.EscapeString(message))
}

func (d *Dispatcher) handleInitialize() string {
	return fmt.Sprintf(
		`{"protocolVersion":"%s","capabilities":{"tools":{}},"serverInfo":{"name":"%s","version":"%s"}}`,
		protocolVersion, jsonx.EscapeString(d.info.Name), jsonx.EscapeString(d.info.Version),
	)
}

func (d *Dispatcher) handleToolsList() string {
	var sb strings.Builder
	sb.WriteString(`{"tools":[`)
	for i, t := range d.registry.Tools() {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"name":"`)
		sb.WriteString(jsonx.EscapeString(t.Name))
		sb.WriteString(`","description":"`)
		sb.WriteString(jsonx.EscapeString(t.Description))
		sb.WriteString(`","inputSchema":{"type":"object","properties":{},"additionalProperties":true}}`)
	}
	sb.WriteString(`]}`)
	return sb.String()
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, line string) (string, *rpcError) {
	params := jsonx.Block(line, "params")
	if params == "" {
		return "", &rpcError{code: -32602, message: "Missing required argument: 'params'"}
	}
	name, ok := jsonx.StringAt(params, "name")
	if !ok || strings.TrimSpace(name) == "" {
		return "", &rpcError{code: -32602, message: "Missing required argument: 'name'"}
	}

	argsBlock := jsonx.Block(params, "arguments")
	args := jsonx.ExtractArgumentMap(argsBlock)

	handler, found := d.registry.Lookup(name)
	if !found {
		return "", &rpcError{code: -32602, message: "Unknown tool: " + name}
	}

	correlationID := uuid.NewString()
	start := time.Now()
	resp := handler(ctx, args)
	duration := time.Since(start)

	if d.logger != nil {
		event := d.logger.Info()
		if resp.IsError {
			event = d.logger.Warn()
		}
		event.Str("correlation_id", correlationID).
			Str("tool", name).
			Dur("duration", duration).
			Bool("is_error", resp.IsError).
			Msg("tool call completed")
	}

	text := resp.Text()
	result := fmt.Sprintf(`{"content":[{"type":"text","text":"%s"}],"isError":%t}`, jsonx.EscapeString(text), resp.IsError)
	return result, nil
}
