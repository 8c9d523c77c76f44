package confluence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ternarybob/atlassian-mcp/internal/atlassian/querylang"
	"github.com/ternarybob/atlassian-mcp/internal/jsonx"
	"github.com/ternarybob/atlassian-mcp/internal/mcpserver"
	"github.com/ternarybob/atlassian-mcp/internal/toolresponse"
)

const (
	defaultSearchLimit = 25
	defaultPageVersion = 1
)

// createPageRequest is validated before confluence_create_page synthesizes
// its request body.
type createPageRequest struct {
	SpaceID string `validate:"required"`
	Title   string `validate:"required"`
}

func (r createPageRequest) Validate() error {
	return validator.New().Struct(r)
}

func missingArg(toolName, name string) toolresponse.ToolResponse {
	return toolresponse.Error(toolresponse.ProductConfluence, toolName, fmt.Sprintf("Missing required argument: '%s'", name))
}

func remoteFailure(toolName string, err error) toolresponse.ToolResponse {
	return toolresponse.Error(toolresponse.ProductConfluence, toolName, err.Error())
}

// Register adds all 7 confluence_* tools to registry. When unavailableReason
// is non-empty every handler returns that reason as an error (unconfigured
// mode) without touching client.
func Register(registry *mcpserver.Registry, client *Client, unavailableReason string) {
	tools := []struct {
		name        string
		description string
		handler     mcpserver.ToolHandler
	}{
		{"confluence_search", "Search Confluence pages using CQL or free text", handleSearch(client)},
		{"confluence_get_page", "Get a Confluence page's content as Markdown", handleGetPage(client)},
		{"confluence_create_page", "Create a new Confluence page", handleCreatePage(client)},
		{"confluence_update_page", "Update an existing Confluence page", handleUpdatePage(client)},
		{"confluence_list_spaces", "List all Confluence spaces", handleListSpaces(client)},
		{"confluence_get_page_children", "List a Confluence page's child pages", handleGetPageChildren(client)},
		{"confluence_delete_page", "Delete a Confluence page", handleDeletePage(client)},
	}

	for _, t := range tools {
		handler := t.handler
		if unavailableReason != "" {
			name := t.name
			handler = func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
				return toolresponse.Error(toolresponse.ProductConfluence, name, "Confluence is not configured: "+unavailableReason)
			}
		}
		registry.Register(mcpserver.ToolDescriptor{Name: t.name, Description: t.description, Product: toolresponse.ProductConfluence}, handler)
	}
}

func handleSearch(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		query, ok := args.Get("query")
		if !ok {
			return missingArg("confluence_search", "query")
		}
		cql := querylang.CQLOrDefault(query)
		limit := args.GetInt("maxResults", defaultSearchLimit)

		body, err := client.SearchCQL(ctx, cql, limit)
		if err != nil {
			return remoteFailure("confluence_search", err)
		}
		total := jsonx.IntAt(body, "totalSize", jsonx.IntAt(body, "size", 0))
		return toolresponse.SuccessWithCount(toolresponse.ProductConfluence, "confluence_search", total, body)
	}
}

func handleGetPage(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		pageID, ok := args.Get("pageId")
		if !ok {
			return missingArg("confluence_get_page", "pageId")
		}
		body, err := client.GetPage(ctx, pageID)
		if err != nil {
			return remoteFailure("confluence_get_page", err)
		}

		title := jsonx.StringOrDefault(body, "title", "")
		storageHTML := jsonx.Navigate(body, "body", "storage", "value")
		markdown := renderStorageFormat(storageHTML, client.logger)

		text := "# " + title + "\n\n" + markdown
		return toolresponse.Success(toolresponse.ProductConfluence, "confluence_get_page", text)
	}
}

func handleCreatePage(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		spaceID, ok := args.Get("spaceId")
		if !ok {
			return missingArg("confluence_create_page", "spaceId")
		}
		title, ok := args.Get("title")
		if !ok {
			return missingArg("confluence_create_page", "title")
		}
		content := args.GetOrDefault("content", "")

		req := createPageRequest{SpaceID: spaceID, Title: title}
		if err := req.Validate(); err != nil {
			return toolresponse.Error(toolresponse.ProductConfluence, "confluence_create_page", "Invalid arguments: "+err.Error())
		}

		body := fmt.Sprintf(
			`{"spaceId":"%s","status":"current","title":"%s","body":{"representation":"storage","value":"%s"}}`,
			jsonx.EscapeString(spaceID), jsonx.EscapeString(title), jsonx.EscapeString(content),
		)

		result, err := client.CreatePage(ctx, body)
		if err != nil {
			return remoteFailure("confluence_create_page", err)
		}
		return toolresponse.Success(toolresponse.ProductConfluence, "confluence_create_page", result)
	}
}

func handleUpdatePage(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		pageID, ok := args.Get("pageId")
		if !ok {
			return missingArg("confluence_update_page", "pageId")
		}
		title, ok := args.Get("title")
		if !ok {
			return missingArg("confluence_update_page", "title")
		}
		content := args.GetOrDefault("content", "")
		version := args.GetInt("version", defaultPageVersion)

		body := fmt.Sprintf(
			`{"id":"%s","status":"current","title":"%s","body":{"representation":"storage","value":"%s"},"version":{"number":%d}}`,
			jsonx.EscapeString(pageID), jsonx.EscapeString(title), jsonx.EscapeString(content), version+1,
		)

		result, err := client.UpdatePage(ctx, pageID, body)
		if err != nil {
			return remoteFailure("confluence_update_page", err)
		}
		return toolresponse.Success(toolresponse.ProductConfluence, "confluence_update_page", result)
	}
}

func handleListSpaces(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		body, err := client.ListSpaces(ctx)
		if err != nil {
			return remoteFailure("confluence_list_spaces", err)
		}
		return toolresponse.Success(toolresponse.ProductConfluence, "confluence_list_spaces", body)
	}
}

func handleGetPageChildren(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		pageID, ok := args.Get("pageId")
		if !ok {
			return missingArg("confluence_get_page_children", "pageId")
		}
		body, err := client.GetPageChildren(ctx, pageID)
		if err != nil {
			return remoteFailure("confluence_get_page_children", err)
		}

		children := jsonx.ArrayBlocks(body, "results")
		var text strings.Builder
		for _, child := range children {
			title := jsonx.StringOrDefault(child, "title", "")
			storageHTML := jsonx.Navigate(child, "body", "storage", "value")
			markdown := renderStorageFormat(storageHTML, client.logger)
			text.WriteString("## " + title + "\n\n" + markdown + "\n\n")
		}
		return toolresponse.SuccessWithCount(toolresponse.ProductConfluence, "confluence_get_page_children", len(children), text.String())
	}
}

func handleDeletePage(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		pageID, ok := args.Get("pageId")
		if !ok {
			return missingArg("confluence_delete_page", "pageId")
		}
		if err := client.DeletePage(ctx, pageID); err != nil {
			return remoteFailure("confluence_delete_page", err)
		}
		return toolresponse.Success(toolresponse.ProductConfluence, "confluence_delete_page", "Page "+pageID+" deleted")
	}
}
