package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/secseg/internal/config"
	"github.com/dgallion1/secseg/internal/edgar"
	"github.com/dgallion1/secseg/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	fetchForm  string
	fetchSince string
	fetchUntil string
	fetchDir   string
	fetchLimit int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [cik]",
	Short: "Download filings for a company from EDGAR",
	Long: `Lists a company's filings on EDGAR, filters by form type and date,
and downloads the documents into the input directory for later processing.
Set EDGAR_USER_AGENT to identify yourself to the SEC.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchForm, "form", "8-K", "form type to fetch")
	fetchCmd.Flags().StringVar(&fetchSince, "since", "", "earliest filing date (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchUntil, "until", "", "latest filing date (YYYY-MM-DD)")
	fetchCmd.Flags().StringVarP(&fetchDir, "dir", "d", "downloaded_html", "download directory")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "max filings to download (0 = all)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := config.Load()
	if cfg.EdgarUserAgent == "" {
		return fmt.Errorf("EDGAR_USER_AGENT is required (e.g. \"Your Name your@email.example\")")
	}

	var since, until time.Time
	var err error
	if fetchSince != "" {
		if since, err = time.Parse("2006-01-02", fetchSince); err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
	}
	if fetchUntil != "" {
		if until, err = time.Parse("2006-01-02", fetchUntil); err != nil {
			return fmt.Errorf("invalid --until: %w", err)
		}
	}

	if err := os.MkdirAll(fetchDir, 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}

	client := edgar.NewClient(cfg.EdgarBaseURL, cfg.EdgarUserAgent, cfg.EdgarRateRPS)
	defer client.Close()

	ctx := cmd.Context()
	filings, err := client.ListFilings(ctx, args[0], edgar.FormType(fetchForm), since, until)
	if err != nil {
		return fmt.Errorf("list filings: %w", err)
	}
	log.Info("found filings", "cik", args[0], "form", fetchForm, "count", len(filings))

	downloaded := 0
	for _, filing := range filings {
		if fetchLimit > 0 && downloaded >= fetchLimit {
			break
		}

		var data []byte
		var lastErr error
		for attempt := 0; attempt < pipeline.MaxRetries; attempt++ {
			data, lastErr = client.Download(ctx, filing)
			if lastErr == nil || !pipeline.IsRetryable(lastErr) {
				break
			}
			log.Warn("retryable download error", "filing", filing.AccessionNumber, "attempt", attempt, "error", lastErr)
			select {
			case <-time.After(pipeline.Backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr != nil {
			log.Error("download failed", "filing", filing.AccessionNumber, "error", lastErr)
			continue
		}

		name := filing.AccessionNumber + ".html"
		if err := os.WriteFile(filepath.Join(fetchDir, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		log.Info("downloaded filing", "file", name, "filed", filing.FilingDate.Format("2006-01-02"))
		downloaded++
	}

	log.Info("fetch complete", "downloaded", downloaded)
	return nil
}
