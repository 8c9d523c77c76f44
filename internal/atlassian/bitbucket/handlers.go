package bitbucket

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ternarybob/atlassian-mcp/internal/jsonx"
	"github.com/ternarybob/atlassian-mcp/internal/mcpserver"
	"github.com/ternarybob/atlassian-mcp/internal/toolresponse"
)

const defaultPageLen = 25

// createPullRequestRequest is validated before bitbucket_create_pull_request
// synthesizes its request body.
type createPullRequestRequest struct {
	Title             string `validate:"required"`
	SourceBranch      string `validate:"required"`
	DestinationBranch string `validate:"required"`
}

func (r createPullRequestRequest) Validate() error {
	return validator.New().Struct(r)
}

func missingArg(toolName, name string) toolresponse.ToolResponse {
	return toolresponse.Error(toolresponse.ProductBitbucket, toolName, fmt.Sprintf("Missing required argument: '%s'", name))
}

func remoteFailure(toolName string, err error) toolresponse.ToolResponse {
	return toolresponse.Error(toolresponse.ProductBitbucket, toolName, err.Error())
}

// Register adds all 8 bitbucket_* tools to registry. When unavailableReason
// is non-empty every handler returns that reason as an error (unconfigured
// mode) without touching client.
func Register(registry *mcpserver.Registry, client *Client, unavailableReason string) {
	tools := []struct {
		name        string
		description string
		handler     mcpserver.ToolHandler
	}{
		{"bitbucket_list_repos", "List repositories in a Bitbucket workspace", handleListRepos(client)},
		{"bitbucket_get_repo", "Get a single Bitbucket repository", handleGetRepo(client)},
		{"bitbucket_list_pull_requests", "List pull requests for a Bitbucket repository", handleListPullRequests(client)},
		{"bitbucket_get_pull_request", "Get a single Bitbucket pull request", handleGetPullRequest(client)},
		{"bitbucket_search_code", "Search code across a Bitbucket workspace", handleSearchCode(client)},
		{"bitbucket_create_pull_request", "Open a new Bitbucket pull request", handleCreatePullRequest(client)},
		{"bitbucket_list_branches", "List branches in a Bitbucket repository", handleListBranches(client)},
		{"bitbucket_get_commits", "List commits in a Bitbucket repository", handleGetCommits(client)},
	}

	for _, t := range tools {
		handler := t.handler
		if unavailableReason != "" {
			name := t.name
			handler = func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
				return toolresponse.Error(toolresponse.ProductBitbucket, name, "Bitbucket is not configured: "+unavailableReason)
			}
		}
		registry.Register(mcpserver.ToolDescriptor{Name: t.name, Description: t.description, Product: toolresponse.ProductBitbucket}, handler)
	}
}

func requireWorkspaceAndRepo(toolName string, args *jsonx.ArgumentMap) (workspace, repoSlug string, errResp *toolresponse.ToolResponse) {
	workspace, ok := args.Get("workspace")
	if !ok {
		r := missingArg(toolName, "workspace")
		return "", "", &r
	}
	repoSlug, ok = args.Get("repoSlug")
	if !ok {
		r := missingArg(toolName, "repoSlug")
		return "", "", &r
	}
	return workspace, repoSlug, nil
}

func handleListRepos(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		workspace, ok := args.Get("workspace")
		if !ok {
			return missingArg("bitbucket_list_repos", "workspace")
		}
		pageLen := args.GetInt("pageLen", defaultPageLen)

		body, err := client.ListRepos(ctx, workspace, pageLen)
		if err != nil {
			return remoteFailure("bitbucket_list_repos", err)
		}
		return toolresponse.Success(toolresponse.ProductBitbucket, "bitbucket_list_repos", body)
	}
}

func handleGetRepo(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		workspace, repoSlug, errResp := requireWorkspaceAndRepo("bitbucket_get_repo", args)
		if errResp != nil {
			return *errResp
		}
		body, err := client.GetRepo(ctx, workspace, repoSlug)
		if err != nil {
			return remoteFailure("bitbucket_get_repo", err)
		}
		return toolresponse.Success(toolresponse.ProductBitbucket, "bitbucket_get_repo", body)
	}
}

func handleListPullRequests(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		workspace, repoSlug, errResp := requireWorkspaceAndRepo("bitbucket_list_pull_requests", args)
		if errResp != nil {
			return *errResp
		}
		pageLen := args.GetInt("pageLen", defaultPageLen)
		state := args.GetOrDefault("state", "")

		body, err := client.ListPullRequests(ctx, workspace, repoSlug, pageLen, state)
		if err != nil {
			return remoteFailure("bitbucket_list_pull_requests", err)
		}
		return toolresponse.Success(toolresponse.ProductBitbucket, "bitbucket_list_pull_requests", body)
	}
}

func handleGetPullRequest(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		workspace, repoSlug, errResp := requireWorkspaceAndRepo("bitbucket_get_pull_request", args)
		if errResp != nil {
			return *errResp
		}
		prID, ok := args.Get("pullRequestId")
		if !ok {
			return missingArg("bitbucket_get_pull_request", "pullRequestId")
		}
		body, err := client.GetPullRequest(ctx, workspace, repoSlug, prID)
		if err != nil {
			return remoteFailure("bitbucket_get_pull_request", err)
		}
		return toolresponse.Success(toolresponse.ProductBitbucket, "bitbucket_get_pull_request", body)
	}
}

func handleSearchCode(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		workspace, ok := args.Get("workspace")
		if !ok {
			return missingArg("bitbucket_search_code", "workspace")
		}
		query, ok := args.Get("query")
		if !ok {
			return missingArg("bitbucket_search_code", "query")
		}
		body, err := client.SearchCode(ctx, workspace, query)
		if err != nil {
			return remoteFailure("bitbucket_search_code", err)
		}
		return toolresponse.Success(toolresponse.ProductBitbucket, "bitbucket_search_code", body)
	}
}

func handleCreatePullRequest(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		workspace, repoSlug, errResp := requireWorkspaceAndRepo("bitbucket_create_pull_request", args)
		if errResp != nil {
			return *errResp
		}
		title, ok := args.Get("title")
		if !ok {
			return missingArg("bitbucket_create_pull_request", "title")
		}
		sourceBranch, ok := args.Get("sourceBranch")
		if !ok {
			return missingArg("bitbucket_create_pull_request", "sourceBranch")
		}
		destinationBranch := args.GetOrDefault("destinationBranch", "main")
		description := args.GetOrDefault("description", "")

		req := createPullRequestRequest{Title: title, SourceBranch: sourceBranch, DestinationBranch: destinationBranch}
		if err := req.Validate(); err != nil {
			return toolresponse.Error(toolresponse.ProductBitbucket, "bitbucket_create_pull_request", "Invalid arguments: "+err.Error())
		}

		body := fmt.Sprintf(
			`{"title":"%s","description":"%s","source":{"branch":{"name":"%s"}},"destination":{"branch":{"name":"%s"}}}`,
			jsonx.EscapeString(title), jsonx.EscapeString(description), jsonx.EscapeString(sourceBranch), jsonx.EscapeString(destinationBranch),
		)

		result, err := client.CreatePullRequest(ctx, workspace, repoSlug, body)
		if err != nil {
			return remoteFailure("bitbucket_create_pull_request", err)
		}
		return toolresponse.Success(toolresponse.ProductBitbucket, "bitbucket_create_pull_request", result)
	}
}

func handleListBranches(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		workspace, repoSlug, errResp := requireWorkspaceAndRepo("bitbucket_list_branches", args)
		if errResp != nil {
			return *errResp
		}
		pageLen := args.GetInt("pageLen", defaultPageLen)

		body, err := client.ListBranches(ctx, workspace, repoSlug, pageLen)
		if err != nil {
			return remoteFailure("bitbucket_list_branches", err)
		}
		return toolresponse.Success(toolresponse.ProductBitbucket, "bitbucket_list_branches", body)
	}
}

func handleGetCommits(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		workspace, repoSlug, errResp := requireWorkspaceAndRepo("bitbucket_get_commits", args)
		if errResp != nil {
			return *errResp
		}
		pageLen := args.GetInt("pageLen", defaultPageLen)
		include := args.GetOrDefault("include", "")

		body, err := client.GetCommits(ctx, workspace, repoSlug, pageLen, include)
		if err != nil {
			return remoteFailure("bitbucket_get_commits", err)
		}
		return toolresponse.Success(toolresponse.ProductBitbucket, "bitbucket_get_commits", body)
	}
}
