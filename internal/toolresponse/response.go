// Package toolresponse holds the value type every tool handler returns,
// shared by the Jira/Confluence/Bitbucket handlers, the unified search
// engine, and the dispatcher that serializes it onto the wire.
package toolresponse

// Product names the subsystem a ToolResponse originated from.
type Product string

const (
	ProductJira        Product = "Jira"
	ProductConfluence  Product = "Confluence"
	ProductBitbucket   Product = "Bitbucket"
	ProductUnified     Product = "Unified"
)

// ToolResponse is the value every tool invocation returns. Content is copied
// on construction so callers cannot mutate it after the fact. ItemCount is 0
// for errors and single-item results; otherwise it names how many items the
// content represents (used by the unified search hit tally).
type ToolResponse struct {
	Product   Product
	ToolName  string
	IsError   bool
	Content   []string
	ItemCount int
}

func copyContent(content []string) []string {
	c := make([]string, len(content))
	copy(c, content)
	return c
}

// Success builds a non-error ToolResponse from one or more text blocks.
func Success(product Product, toolName string, content ...string) ToolResponse {
	return ToolResponse{
		Product:  product,
		ToolName: toolName,
		IsError:  false,
		Content:  copyContent(content),
	}
}

// SuccessWithCount is Success plus an explicit item count, for responses
// that represent more than one returned item (e.g. a search result list).
func SuccessWithCount(product Product, toolName string, itemCount int, content ...string) ToolResponse {
	r := Success(product, toolName, content...)
	r.ItemCount = itemCount
	return r
}

// Error builds an error ToolResponse carrying a single human-readable
// message. Per MCP convention this is still a successful JSON-RPC response;
// IsError only marks the content block as a tool-level failure.
func Error(product Product, toolName, message string) ToolResponse {
	return ToolResponse{
		Product:  product,
		ToolName: toolName,
		IsError:  true,
		Content:  []string{message},
	}
}

// Text returns the first content block, or "" if there is none.
func (r ToolResponse) Text() string {
	if len(r.Content) == 0 {
		return ""
	}
	return r.Content[0]
}
