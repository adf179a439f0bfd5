// Command aggregator is the local CLI for the event pipeline: process
// a single page, fetch and process a URL, or inspect the configured
// sources, without touching AWS.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ibiza-events-aggregator/internal/extract"
	"ibiza-events-aggregator/internal/models"
	"ibiza-events-aggregator/internal/pipeline"
	"ibiza-events-aggregator/internal/services"
)

var (
	flagPlatform    string
	flagSourceURL   string
	flagSiteConfigs string
	flagThreshold   float64
	flagFormat      string
	flagTimeout     time.Duration
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregator",
		Short: "Turn scraped Ibiza event listings into canonical, quality-scored records",
	}

	cmd.AddCommand(newProcessCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newSourcesCmd())

	return cmd
}

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <html-file>",
		Short: "Run the pipeline over a saved HTML page",
		Args:  cobra.ExactArgs(1),
		RunE:  runProcess,
	}

	cmd.Flags().StringVar(&flagPlatform, "platform", "unknown", "Source platform id")
	cmd.Flags().StringVar(&flagSourceURL, "url", "", "Original URL of the page (required)")
	cmd.Flags().StringVar(&flagSiteConfigs, "site-configs", "", "YAML selector set file (defaults to built-ins)")
	cmd.Flags().Float64Var(&flagThreshold, "quality-threshold", 0, "Override the acceptance threshold")
	cmd.Flags().StringVar(&flagFormat, "format", "json", "Output format: json or summary")
	cmd.MarkFlagRequired("url")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	html, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	event, report, err := pipeline.Process(string(html), flagPlatform, flagSourceURL, time.Now().UTC(), cfg)
	if err != nil {
		return fmt.Errorf("processing %s: %w", args[0], err)
	}

	return printResult(cmd, event, report)
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a listing page and run the pipeline over it",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetch,
	}

	cmd.Flags().StringVar(&flagPlatform, "platform", "", "Source platform id (derived from URL when empty)")
	cmd.Flags().StringVar(&flagSiteConfigs, "site-configs", "", "YAML selector set file (defaults to built-ins)")
	cmd.Flags().Float64Var(&flagThreshold, "quality-threshold", 0, "Override the acceptance threshold")
	cmd.Flags().StringVar(&flagFormat, "format", "json", "Output format: json or summary")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 60*time.Second, "Fetch timeout")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	url := args[0]

	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	fetcher := services.NewFetcherService()
	fetched, err := fetcher.FetchPage(ctx, url)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}

	platform := flagPlatform
	if platform == "" {
		platform = models.ExtractDomain(url)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	event, report, err := pipeline.Process(fetched.HTML, platform, url, fetched.FetchedAt, cfg)
	if err != nil {
		return fmt.Errorf("processing %s: %w", url, err)
	}

	return printResult(cmd, event, report)
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured listing sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, source := range services.NewSourceRegistry().Enabled() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-24s %s\n",
					source.Platform, source.Domain, strings.Join(source.URLs, ", "))
			}
			return nil
		},
	}
}

func buildConfig() (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()

	if flagSiteConfigs != "" {
		configs, err := extract.LoadSiteConfigs(flagSiteConfigs)
		if err != nil {
			return cfg, err
		}
		cfg.SiteConfigs = configs
	}
	if flagThreshold > 0 {
		cfg.QualityThreshold = flagThreshold
	}

	return cfg, nil
}

func printResult(cmd *cobra.Command, event models.CanonicalEvent, report models.QualityReport) error {
	out := cmd.OutOrStdout()

	if flagFormat == "summary" {
		fmt.Fprintf(out, "%s\n", event.Title)
		fmt.Fprintf(out, "  id:      %s\n", event.EventID)
		fmt.Fprintf(out, "  quality: %.2f (%s)\n", report.OverallScore, report.Level)
		for _, flag := range report.Flags {
			fmt.Fprintf(out, "  flag:    %s/%s\n", flag.Field, flag.Issue)
		}
		return nil
	}

	payload := struct {
		Event   models.CanonicalEvent `json:"event"`
		Quality models.QualityReport  `json:"quality"`
	}{event, report}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
