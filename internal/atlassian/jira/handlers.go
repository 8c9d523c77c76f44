package jira

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ternarybob/atlassian-mcp/internal/atlassian/querylang"
	"github.com/ternarybob/atlassian-mcp/internal/jsonx"
	"github.com/ternarybob/atlassian-mcp/internal/mcpserver"
	"github.com/ternarybob/atlassian-mcp/internal/toolresponse"
)

const defaultMaxResults = 25

// createIssueRequest is validated before jira_create_issue synthesizes its
// request body, so a blank project key, summary or issue type fails with a
// clear message instead of an opaque 400 from the Jira API.
type createIssueRequest struct {
	ProjectKey string `validate:"required"`
	Summary    string `validate:"required"`
	IssueType  string `validate:"required"`
}

func (r createIssueRequest) Validate() error {
	return validator.New().Struct(r)
}

func missingArg(toolName, name string) toolresponse.ToolResponse {
	return toolresponse.Error(toolresponse.ProductJira, toolName, fmt.Sprintf("Missing required argument: '%s'", name))
}

func remoteFailure(toolName string, err error) toolresponse.ToolResponse {
	return toolresponse.Error(toolresponse.ProductJira, toolName, err.Error())
}

// Register adds all 11 jira_* tools to registry. When unavailableReason is
// non-empty, client is not used - every handler immediately returns that
// reason as an error response (unconfigured mode), but the tools are still
// listed.
func Register(registry *mcpserver.Registry, client *Client, unavailableReason string) {
	tools := []struct {
		name        string
		description string
		handler     mcpserver.ToolHandler
	}{
		{"jira_search_issues", "Search Jira issues using JQL or free text", handleSearchIssues(client)},
		{"jira_get_issue", "Get a single Jira issue by key", handleGetIssue(client)},
		{"jira_create_issue", "Create a new Jira issue", handleCreateIssue(client)},
		{"jira_update_issue", "Update fields on an existing Jira issue", handleUpdateIssue(client)},
		{"jira_transition_issue", "Move a Jira issue through a workflow transition", handleTransitionIssue(client)},
		{"jira_list_projects", "List all Jira projects", handleListProjects(client)},
		{"jira_get_sprint", "Get the active sprint for a board", handleGetSprint(client)},
		{"jira_add_comment", "Add a comment to a Jira issue", handleAddComment(client)},
		{"jira_get_comments", "List comments on a Jira issue", handleGetComments(client)},
		{"jira_assign_issue", "Assign a Jira issue to a user", handleAssignIssue(client)},
		{"jira_get_sprint_issues", "List issues in a board's active sprint", handleGetSprintIssues(client)},
	}

	for _, t := range tools {
		handler := t.handler
		if unavailableReason != "" {
			name := t.name
			handler = func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
				return toolresponse.Error(toolresponse.ProductJira, name, "Jira is not configured: "+unavailableReason)
			}
		}
		registry.Register(mcpserver.ToolDescriptor{Name: t.name, Description: t.description, Product: toolresponse.ProductJira}, handler)
	}
}

func handleSearchIssues(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		query, ok := args.Get("query")
		if !ok {
			return missingArg("jira_search_issues", "query")
		}
		jql := querylang.JQLOrDefault(query)
		maxResults := args.GetInt("maxResults", defaultMaxResults)

		body, err := client.SearchIssues(ctx, jql, maxResults)
		if err != nil {
			return remoteFailure("jira_search_issues", err)
		}
		total := jsonx.IntAt(body, "total", 0)
		return toolresponse.SuccessWithCount(toolresponse.ProductJira, "jira_search_issues", total, body)
	}
}

func handleGetIssue(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		issueKey, ok := args.Get("issueKey")
		if !ok {
			return missingArg("jira_get_issue", "issueKey")
		}
		body, err := client.GetIssue(ctx, issueKey)
		if err != nil {
			return remoteFailure("jira_get_issue", err)
		}
		return toolresponse.Success(toolresponse.ProductJira, "jira_get_issue", body)
	}
}

func handleCreateIssue(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		projectKey, ok := args.Get("projectKey")
		if !ok {
			return missingArg("jira_create_issue", "projectKey")
		}
		summary, ok := args.Get("summary")
		if !ok {
			return missingArg("jira_create_issue", "summary")
		}
		issueType := args.GetOrDefault("issueType", "Task")
		description := args.GetOrDefault("description", "")

		req := createIssueRequest{ProjectKey: projectKey, Summary: summary, IssueType: issueType}
		if err := req.Validate(); err != nil {
			return toolresponse.Error(toolresponse.ProductJira, "jira_create_issue", "Invalid arguments: "+err.Error())
		}

		fields := fmt.Sprintf(
			`{"project":{"key":"%s"},"summary":"%s","issuetype":{"name":"%s"}`,
			jsonx.EscapeString(projectKey), jsonx.EscapeString(summary), jsonx.EscapeString(issueType),
		)
		if description != "" {
			fields += `,"description":` + buildADFDocument(description)
		}
		fields += "}"
		body := `{"fields":` + fields + "}"

		result, err := client.CreateIssue(ctx, body)
		if err != nil {
			return remoteFailure("jira_create_issue", err)
		}
		return toolresponse.Success(toolresponse.ProductJira, "jira_create_issue", result)
	}
}

func handleUpdateIssue(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		issueKey, ok := args.Get("issueKey")
		if !ok {
			return missingArg("jira_update_issue", "issueKey")
		}

		var fieldParts []string
		if summary, ok := args.Get("summary"); ok {
			fieldParts = append(fieldParts, `"summary":"`+jsonx.EscapeString(summary)+`"`)
		}
		if description, ok := args.Get("description"); ok {
			fieldParts = append(fieldParts, `"description":`+buildADFDocument(description))
		}
		if len(fieldParts) == 0 {
			return missingArg("jira_update_issue", "summary or description")
		}

		body := `{"fields":{`
		for i, p := range fieldParts {
			if i > 0 {
				body += ","
			}
			body += p
		}
		body += "}}"

		_, err := client.UpdateIssue(ctx, issueKey, body)
		if err != nil {
			return remoteFailure("jira_update_issue", err)
		}
		return toolresponse.Success(toolresponse.ProductJira, "jira_update_issue", "Issue "+issueKey+" updated")
	}
}

func handleTransitionIssue(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		issueKey, ok := args.Get("issueKey")
		if !ok {
			return missingArg("jira_transition_issue", "issueKey")
		}
		transitionID, ok := args.Get("transitionId")
		if !ok {
			return missingArg("jira_transition_issue", "transitionId")
		}
		body := `{"transition":{"id":"` + jsonx.EscapeString(transitionID) + `"}}`

		_, err := client.TransitionIssue(ctx, issueKey, body)
		if err != nil {
			return remoteFailure("jira_transition_issue", err)
		}
		return toolresponse.Success(toolresponse.ProductJira, "jira_transition_issue", "Issue "+issueKey+" transitioned")
	}
}

func handleListProjects(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		body, err := client.ListProjects(ctx)
		if err != nil {
			return remoteFailure("jira_list_projects", err)
		}
		return toolresponse.Success(toolresponse.ProductJira, "jira_list_projects", body)
	}
}

func handleGetSprint(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		boardID, ok := args.Get("boardId")
		if !ok {
			return missingArg("jira_get_sprint", "boardId")
		}
		body, err := client.GetActiveSprint(ctx, boardID)
		if err != nil {
			return remoteFailure("jira_get_sprint", err)
		}
		return toolresponse.Success(toolresponse.ProductJira, "jira_get_sprint", body)
	}
}

func handleAddComment(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		issueKey, ok := args.Get("issueKey")
		if !ok {
			return missingArg("jira_add_comment", "issueKey")
		}
		comment, ok := args.Get("comment")
		if !ok {
			return missingArg("jira_add_comment", "comment")
		}
		body := wrapADFField("body", comment)

		result, err := client.AddComment(ctx, issueKey, body)
		if err != nil {
			return remoteFailure("jira_add_comment", err)
		}
		return toolresponse.Success(toolresponse.ProductJira, "jira_add_comment", result)
	}
}

func handleGetComments(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		issueKey, ok := args.Get("issueKey")
		if !ok {
			return missingArg("jira_get_comments", "issueKey")
		}
		body, err := client.GetComments(ctx, issueKey)
		if err != nil {
			return remoteFailure("jira_get_comments", err)
		}
		return toolresponse.Success(toolresponse.ProductJira, "jira_get_comments", body)
	}
}

func handleAssignIssue(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		issueKey, ok := args.Get("issueKey")
		if !ok {
			return missingArg("jira_assign_issue", "issueKey")
		}
		assignee, ok := args.Get("assignee")
		if !ok {
			return missingArg("jira_assign_issue", "assignee")
		}

		accountID, err := resolveAccountID(ctx, client, assignee)
		if err != nil {
			return remoteFailure("jira_assign_issue", err)
		}
		if accountID == "" {
			return toolresponse.Error(toolresponse.ProductJira, "jira_assign_issue", "No Jira user found matching: '"+assignee+"'")
		}

		body := `{"accountId":"` + jsonx.EscapeString(accountID) + `"}`
		_, err = client.AssignIssue(ctx, issueKey, body)
		if err != nil {
			return remoteFailure("jira_assign_issue", err)
		}
		return toolresponse.Success(toolresponse.ProductJira, "jira_assign_issue", "Issue "+issueKey+" assigned to "+assignee)
	}
}

// resolveAccountID looks up assignee (a free-text name or email) against
// /rest/api/3/user/search and returns the first match's accountId, or "" if
// the search returns no users. Every assignee goes through the search; a
// value that is already an account id is not used directly.
func resolveAccountID(ctx context.Context, client *Client, assignee string) (string, error) {
	results, err := client.SearchUsers(ctx, assignee)
	if err != nil {
		return "", err
	}
	matches := jsonx.ArrayBlocks(`{"root":`+results+`}`, "root")
	if len(matches) == 0 {
		return "", nil
	}
	accountID, _ := jsonx.StringAt(matches[0], "accountId")
	return accountID, nil
}

func handleGetSprintIssues(client *Client) mcpserver.ToolHandler {
	return func(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
		boardID, ok := args.Get("boardId")
		if !ok {
			return missingArg("jira_get_sprint_issues", "boardId")
		}
		maxResults := args.GetInt("maxResults", defaultMaxResults)

		body, err := client.GetSprintIssues(ctx, boardID, maxResults)
		if err != nil {
			return remoteFailure("jira_get_sprint_issues", err)
		}
		return toolresponse.Success(toolresponse.ProductJira, "jira_get_sprint_issues", body)
	}
}
