package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/atlassian-mcp/internal/atlassian/bitbucket"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/confluence"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/jira"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/transport"
	"github.com/ternarybob/atlassian-mcp/internal/common"
	"github.com/ternarybob/atlassian-mcp/internal/config"
	"github.com/ternarybob/atlassian-mcp/internal/mcpserver"
	"github.com/ternarybob/atlassian-mcp/internal/search"
)

func main() {
	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> shared file -> local file -> env)
	// 2. Resolve into connections, or unconfigured mode
	// 3. Initialize logger (never a console writer - stdout is the wire)
	// 4. Print banner (redirected to stderr)
	// 5. Build the tool registry
	// 6. Run the stdio loop

	cfg, err := config.Load(config.DefaultFilePaths(os.Getenv("ATLASSIAN_CONFIG_DIR"))...)
	if err != nil {
		tempLogger := common.SetupLogger("warn", "", "")
		tempLogger.Fatal().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	resolved := config.Resolve(cfg)

	logger := common.SetupLogger("warn", "15:04:05.000", "")
	common.InstallCrashHandler("./logs")
	defer common.RecoverWithCrashFile()

	unconfiguredReason := ""
	if resolved.ConfigError != nil {
		unconfiguredReason = resolved.ConfigError.Error()
		logger.Warn().Err(resolved.ConfigError).Msg("starting in unconfigured mode")
	}

	common.PrintBanner(common.BannerInfo{
		BaseURL:           cfg.BaseURL,
		AuthMode:          cfg.AuthMode,
		JiraEnabled:       resolved.Enabled("jira"),
		ConfluenceEnabled: resolved.Enabled("confluence"),
		BitbucketEnabled:  resolved.Enabled("bitbucket"),
		Unconfigured:      resolved.ConfigError != nil,
	}, logger)

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	httpTransport := transport.New(timeout, logger)

	var jiraClient *jira.Client
	var confluenceClient *confluence.Client
	var bitbucketClient *bitbucket.Client
	if resolved.JiraConn != nil {
		jiraClient = jira.NewClient(resolved.JiraConn, httpTransport)
		confluenceClient = confluence.NewClient(resolved.ConfluenceConn, httpTransport, logger)
	}
	if resolved.BitbucketConn != nil {
		bitbucketClient = bitbucket.NewClient(resolved.BitbucketConn, httpTransport)
	}

	registry := mcpserver.NewRegistry()
	jira.Register(registry, jiraClient, reasonFor(unconfiguredReason, resolved.Enabled("jira"), "jira"))
	confluence.Register(registry, confluenceClient, reasonFor(unconfiguredReason, resolved.Enabled("confluence"), "confluence"))
	bitbucket.Register(registry, bitbucketClient, reasonFor(unconfiguredReason, resolved.Enabled("bitbucket"), "bitbucket"))

	var searchJiraClient *jira.Client
	var searchConfluenceClient *confluence.Client
	var searchBitbucketClient *bitbucket.Client
	if unconfiguredReason == "" {
		if resolved.Enabled("jira") {
			searchJiraClient = jiraClient
		}
		if resolved.Enabled("confluence") {
			searchConfluenceClient = confluenceClient
		}
		if resolved.Enabled("bitbucket") {
			searchBitbucketClient = bitbucketClient
		}
	}
	engine := search.NewEngine(searchJiraClient, searchConfluenceClient, searchBitbucketClient, logger)
	search.Register(registry, engine)

	dispatcher := mcpserver.NewDispatcher(registry, mcpserver.ServerInfo{
		Name:    "atlassian-mcp",
		Version: common.GetVersion(),
	}, logger)

	server := mcpserver.NewServer(dispatcher, os.Stdin, os.Stdout, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info().Msg("interrupt signal received, stopping mcp server loop")
		server.Stop()
	}()

	if err := server.Run(context.Background()); err != nil {
		logger.Error().Err(err).Msg("mcp server loop terminated with error")
		common.PrintShutdownBanner(logger)
		os.Exit(1)
	}

	common.PrintShutdownBanner(logger)
}

// reasonFor returns the reason a product's tools should report themselves
// unconfigured: the top-level config error if one exists, or an
// enabled-products exclusion message, or "" if the product is fully usable.
func reasonFor(configErr string, enabled bool, product string) string {
	if configErr != "" {
		return configErr
	}
	if !enabled {
		return product + " is not in ATLASSIAN_ENABLED_PRODUCTS"
	}
	return ""
}
