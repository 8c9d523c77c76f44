package common

import (
	"fmt"
	"io"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// BannerInfo carries the values PrintBanner renders; kept separate from any
// config type so this package has no dependency on internal/config.
type BannerInfo struct {
	BaseURL           string
	AuthMode          string
	JiraEnabled       bool
	ConfluenceEnabled bool
	BitbucketEnabled  bool
	Unconfigured      bool
}

// withStdoutRedirectedToStderr runs fn with os.Stdout swapped for a pipe that
// copies straight to stderr. banner.Print* writes to the process's real
// stdout; this process's real stdout is the JSON-RPC transport, so anything
// the banner library emits must be intercepted rather than trusted to go
// wherever the library's author hardcoded it.
func withStdoutRedirectedToStderr(fn func()) {
	realStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		// Can't redirect safely - skip the visual banner rather than risk
		// corrupting the JSON-RPC stream.
		return
	}
	os.Stdout = w
	done := make(chan struct{})
	go func() {
		io.Copy(os.Stderr, r)
		close(done)
	}()

	fn()

	w.Close()
	<-done
	os.Stdout = realStdout
}

// PrintBanner writes the startup banner to stderr. Stdout is reserved for the
// JSON-RPC transport.
func PrintBanner(info BannerInfo, logger arbor.ILogger) {
	version := GetVersion()

	withStdoutRedirectedToStderr(func() {
		b := banner.New().
			SetStyle(banner.StyleDouble).
			SetBorderColor(banner.ColorGreen).
			SetTextColor(banner.ColorWhite).
			SetBold(true).
			SetWidth(72)

		b.PrintTopLine()
		b.PrintCenteredText("ATLASSIAN MCP GATEWAY")
		b.PrintCenteredText("Jira / Confluence / Bitbucket tool surface over JSON-RPC")
		b.PrintSeparatorLine()
		b.PrintKeyValue("Version", version, 15)
		b.PrintKeyValue("Base URL", info.BaseURL, 15)
		b.PrintKeyValue("Auth mode", info.AuthMode, 15)
		if info.Unconfigured {
			b.PrintKeyValue("Status", "UNCONFIGURED - tool calls will fail", 15)
		} else {
			b.PrintKeyValue("Status", "configured", 15)
		}
		b.PrintBottomLine()
	})

	logger.Info().
		Str("version", version).
		Str("base_url", info.BaseURL).
		Str("auth_mode", info.AuthMode).
		Bool("jira_enabled", info.JiraEnabled).
		Bool("confluence_enabled", info.ConfluenceEnabled).
		Bool("bitbucket_enabled", info.BitbucketEnabled).
		Bool("unconfigured", info.Unconfigured).
		Msg("gateway starting")

	fmt.Fprintf(os.Stderr, "\nEnabled products:\n")
	if info.JiraEnabled {
		fmt.Fprintf(os.Stderr, "  - jira\n")
	}
	if info.ConfluenceEnabled {
		fmt.Fprintf(os.Stderr, "  - confluence\n")
	}
	if info.BitbucketEnabled {
		fmt.Fprintf(os.Stderr, "  - bitbucket\n")
	}
	fmt.Fprintf(os.Stderr, "\n")
}

// PrintShutdownBanner writes the shutdown banner to stderr.
func PrintShutdownBanner(logger arbor.ILogger) {
	withStdoutRedirectedToStderr(func() {
		b := banner.New().
			SetStyle(banner.StyleDouble).
			SetBorderColor(banner.ColorGreen).
			SetTextColor(banner.ColorWhite).
			SetBold(true).
			SetWidth(42)

		b.PrintTopLine()
		b.PrintCenteredText("SHUTTING DOWN")
		b.PrintBottomLine()
	})

	logger.Info().Msg("gateway shutting down")
}
