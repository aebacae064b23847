package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/secseg/internal/config"
	"github.com/dgallion1/secseg/internal/jsonout"
	"github.com/dgallion1/secseg/internal/parser"
	"github.com/dgallion1/secseg/internal/report"
	"github.com/dgallion1/secseg/internal/segment"
	"github.com/spf13/cobra"
)

var (
	processOutDir  string
	processSummary bool
)

var processCmd = &cobra.Command{
	Use:   "process [input-dir]",
	Short: "Segment every filing in a directory",
	Long: `Walks the input directory, segments each supported filing
(.html, .htm, .md) and writes <out>/human_output/<name>.json and
<out>/llm_output/<name>.json.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processOutDir, "out", "o", "output", "output directory")
	processCmd.Flags().BoolVar(&processSummary, "summary", false, "print a per-filing summary")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := config.Load()
	params := segment.Params{
		TitleMaxLen:         cfg.TitleMaxLen,
		TitleMaxWords:       cfg.TitleMaxWords,
		SupplementaryMaxLen: cfg.SupplementaryMaxLen,
	}

	inputDir := args[0]
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("read input dir: %w", err)
	}

	humanDir := filepath.Join(processOutDir, "human_output")
	llmDir := filepath.Join(processOutDir, "llm_output")
	for _, dir := range []string{humanDir, llmDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	var processed, failed int
	for _, entry := range entries {
		if entry.IsDir() || !parser.IsSupportedExtension(entry.Name()) {
			continue
		}
		if err := processOne(inputDir, entry.Name(), humanDir, llmDir, params); err != nil {
			log.Error("processing failed", "file", entry.Name(), "error", err)
			failed++
			continue
		}
		processed++
	}

	log.Info("batch complete", "processed", processed, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d filings failed", failed, processed+failed)
	}
	return nil
}

func processOne(inputDir, name, humanDir, llmDir string, params segment.Params) error {
	f, err := os.Open(filepath.Join(inputDir, name))
	if err != nil {
		return fmt.Errorf("open filing: %w", err)
	}
	defer f.Close()

	root, err := parser.Load(f, name)
	if err != nil {
		return err
	}
	tree := segment.Segment(root, params)

	human, err := jsonout.MarshalHuman(tree)
	if err != nil {
		return err
	}
	llm, err := jsonout.MarshalLLM(tree)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(name, filepath.Ext(name)) + ".json"
	if err := os.WriteFile(filepath.Join(humanDir, base), human, 0o644); err != nil {
		return fmt.Errorf("write human output: %w", err)
	}
	if err := os.WriteFile(filepath.Join(llmDir, base), llm, 0o644); err != nil {
		return fmt.Errorf("write llm output: %w", err)
	}

	if processSummary {
		printSummary(name, report.Summarize(tree))
	}
	return nil
}

func printSummary(name string, s report.Summary) {
	fmt.Printf("=== %s ===\n", name)
	fmt.Println("Element counts:")
	for typ, count := range s.ElementCounts {
		fmt.Printf("  %s: %d\n", typ, count)
	}
	if len(s.Sections) > 0 {
		fmt.Println("Sections:")
		for _, title := range s.Sections {
			fmt.Printf("  %s\n", title)
		}
	}
	fmt.Printf("Tables: %d, text length: %d\n", len(s.Tables), s.TextLength)
}
