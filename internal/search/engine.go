// Package search implements the unified search engine (C8): it fans a
// single query out across the enabled Jira, Confluence, and Bitbucket
// clients concurrently, and assembles one Markdown document from whichever
// branches succeed - a failing branch renders its own "Search failed"
// section rather than aborting the others.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atlassian-mcp/internal/atlassian/bitbucket"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/confluence"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/jira"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/querylang"
	"github.com/ternarybob/atlassian-mcp/internal/common"
	"github.com/ternarybob/atlassian-mcp/internal/jsonx"
	"github.com/ternarybob/atlassian-mcp/internal/mcpserver"
	"github.com/ternarybob/atlassian-mcp/internal/toolresponse"
)

const defaultMaxResultsPerProduct = 10

// Engine holds the product clients the unified search fans out across. A
// nil client means that product is unconfigured or disabled - its branch is
// skipped entirely rather than attempted and failed.
type Engine struct {
	jiraClient       *jira.Client
	confluenceClient *confluence.Client
	bitbucketClient  *bitbucket.Client
	logger           arbor.ILogger
}

// NewEngine builds an Engine. Any client may be nil.
func NewEngine(jiraClient *jira.Client, confluenceClient *confluence.Client, bitbucketClient *bitbucket.Client, logger arbor.ILogger) *Engine {
	return &Engine{jiraClient: jiraClient, confluenceClient: confluenceClient, bitbucketClient: bitbucketClient, logger: logger}
}

// Register adds the single atlassian_unified_search tool to registry.
func Register(registry *mcpserver.Registry, engine *Engine) {
	registry.Register(
		mcpserver.ToolDescriptor{
			Name:        "atlassian_unified_search",
			Description: "Search across Jira, Confluence, and Bitbucket in one call",
			Product:     toolresponse.ProductUnified,
		},
		engine.handle,
	)
}

type branchResult struct {
	heading string
	section string
	total   int
	err     error
}

func (e *Engine) handle(ctx context.Context, args *jsonx.ArgumentMap) toolresponse.ToolResponse {
	query, ok := args.Get("query")
	if !ok || strings.TrimSpace(query) == "" {
		return toolresponse.Error(toolresponse.ProductUnified, "atlassian_unified_search", "Missing required argument: 'query'")
	}
	maxResults := args.GetInt("maxResults", defaultMaxResultsPerProduct)
	workspace := args.GetOrDefault("workspace", "")

	products := parseProducts(args.GetOrDefault("products", "jira,confluence"))

	runJira := products["jira"] && e.jiraClient != nil
	runConfluence := products["confluence"] && e.confluenceClient != nil
	runBitbucket := products["bitbucket"] && e.bitbucketClient != nil && workspace != ""

	var wg sync.WaitGroup
	var jiraResult, confluenceResult, bitbucketResult *branchResult

	// SafeGo (not SafeGoWithContext) is deliberate: that variant skips fn
	// entirely on an already-cancelled context, which would leave wg.Done
	// uncalled and deadlock Wait below. Per-request cancellation is still
	// honored - each branch's HTTP call carries ctx itself.
	// A branch that panics is recorded as failed, so it still renders its
	// "Search failed" section instead of disappearing from the document.
	recordPanic := func(heading string, slot **branchResult) {
		if r := recover(); r != nil {
			*slot = &branchResult{heading: heading, err: fmt.Errorf("panic: %v", r)}
		}
	}
	if runJira {
		wg.Add(1)
		common.SafeGo(e.logger, "unified_search.jira", func() {
			defer wg.Done()
			defer recordPanic("Jira", &jiraResult)
			jiraResult = e.searchJira(ctx, query, maxResults)
		})
	}
	if runConfluence {
		wg.Add(1)
		common.SafeGo(e.logger, "unified_search.confluence", func() {
			defer wg.Done()
			defer recordPanic("Confluence Pages", &confluenceResult)
			confluenceResult = e.searchConfluence(ctx, query, maxResults)
		})
	}
	if runBitbucket {
		wg.Add(1)
		common.SafeGo(e.logger, "unified_search.bitbucket", func() {
			defer wg.Done()
			defer recordPanic("Bitbucket", &bitbucketResult)
			bitbucketResult = e.searchBitbucket(ctx, workspace, query)
		})
	}
	wg.Wait()

	results := []*branchResult{}
	if jiraResult != nil {
		results = append(results, jiraResult)
	}
	if confluenceResult != nil {
		results = append(results, confluenceResult)
	}
	if bitbucketResult != nil {
		results = append(results, bitbucketResult)
	}

	if len(results) == 0 {
		return toolresponse.Success(toolresponse.ProductUnified, "atlassian_unified_search", fmt.Sprintf("No results found for: %q", query))
	}

	// A branch that failed still renders its "Search failed" section, so an
	// all-zero-hit result with no failures is the only case collapsed to
	// the single-line empty response - failures must stay visible.
	totalHits := 0
	anyFailure := false
	var doc strings.Builder
	doc.WriteString("# Unified Search Results\n\n")
	doc.WriteString(fmt.Sprintf("Query: %q\n", query))
	doc.WriteString("Products: " + strings.Join(enabledProductNames(runJira, runConfluence, runBitbucket), ", ") + "\n\n")

	for _, r := range results {
		if r.err != nil {
			anyFailure = true
			doc.WriteString("### " + r.heading + "\n_Search failed: " + r.err.Error() + "_\n\n")
			continue
		}
		totalHits += r.total
		doc.WriteString(fmt.Sprintf("### %s (%d found)\n%s\n", r.heading, r.total, r.section))
	}

	if totalHits == 0 && !anyFailure {
		return toolresponse.Success(toolresponse.ProductUnified, "atlassian_unified_search", fmt.Sprintf("No results found for: %q", query))
	}

	doc.WriteString(fmt.Sprintf("\nTotal results: %d\n", totalHits))

	return toolresponse.SuccessWithCount(toolresponse.ProductUnified, "atlassian_unified_search", totalHits, doc.String())
}

func (e *Engine) searchJira(ctx context.Context, query string, maxResults int) *branchResult {
	jql := querylang.JQLOrDefault(query)
	body, err := e.jiraClient.SearchIssues(ctx, jql, maxResults)
	if err != nil {
		return &branchResult{heading: "Jira", err: err}
	}
	section, total := formatJiraResults(body)
	return &branchResult{heading: "Jira", section: section, total: total}
}

func (e *Engine) searchConfluence(ctx context.Context, query string, maxResults int) *branchResult {
	cql := querylang.CQLOrDefault(query)
	body, err := e.confluenceClient.SearchCQL(ctx, cql, maxResults)
	if err != nil {
		return &branchResult{heading: "Confluence Pages", err: err}
	}
	section, total := formatConfluenceResults(body)
	return &branchResult{heading: "Confluence Pages", section: section, total: total}
}

func (e *Engine) searchBitbucket(ctx context.Context, workspace, query string) *branchResult {
	body, err := e.bitbucketClient.SearchCode(ctx, workspace, query)
	if err != nil {
		return &branchResult{heading: "Bitbucket", err: err}
	}
	section, total := formatBitbucketResults(body)
	return &branchResult{heading: "Bitbucket", section: section, total: total}
}

func parseProducts(csv string) map[string]bool {
	out := map[string]bool{}
	for _, p := range strings.Split(csv, ",") {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			out[trimmed] = true
		}
	}
	return out
}

func enabledProductNames(jiraOn, confluenceOn, bitbucketOn bool) []string {
	var names []string
	if jiraOn {
		names = append(names, "jira")
	}
	if confluenceOn {
		names = append(names, "confluence")
	}
	if bitbucketOn {
		names = append(names, "bitbucket")
	}
	return names
}
