package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/secseg/internal/jsonout"
	"github.com/dgallion1/secseg/internal/parser"
	"github.com/dgallion1/secseg/internal/report"
	"github.com/dgallion1/secseg/internal/segment"
)

// Worker processes a single segmentation job. Filings are independent, so
// any number of workers run without coordination.
type Worker struct {
	log    *slog.Logger
	params segment.Params
	outDir string
}

func NewWorker(log *slog.Logger, params segment.Params, outDir string) *Worker {
	return &Worker{
		log:    log,
		params: params,
		outDir: outDir,
	}
}

// Process runs the full segmentation pipeline for one job:
// parse → segment → summarize → serialize both shapes → write outputs.
func (w *Worker) Process(job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	root, err := parser.Load(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Phase 2: Segment
	job.SetStatus(StatusSegmenting, "segmenting")
	tree := segment.Segment(root, w.params)
	summary := report.Summarize(tree)
	log.Info("segmented filing",
		"elements", len(tree.Children),
		"sections", len(summary.Sections),
		"tables", len(summary.Tables),
	)

	// Phase 3: Serialize both shapes. Failure here means the builder
	// produced an invalid tree, which is a bug worth failing loudly over.
	job.SetStatus(StatusSerializing, "serializing")
	human, err := jsonout.MarshalHuman(tree)
	if err != nil {
		log.Error("human serialization failed", "error", err)
		job.AddError(fmt.Sprintf("serialize human: %s", err))
		job.SetStatus(StatusFailed, "serializing")
		return
	}
	llm, err := jsonout.MarshalLLM(tree)
	if err != nil {
		log.Error("llm serialization failed", "error", err)
		job.AddError(fmt.Sprintf("serialize llm: %s", err))
		job.SetStatus(StatusFailed, "serializing")
		return
	}

	// Phase 4: Write parallel outputs keyed by the document identifier.
	humanPath, llmPath, err := w.writeOutputs(job.DocID, human, llm)
	if err != nil {
		log.Error("write outputs failed", "error", err)
		job.AddError(fmt.Sprintf("write: %s", err))
		job.SetStatus(StatusFailed, "writing")
		return
	}

	job.SetResult(summary, humanPath, llmPath)
	job.SetStatus(StatusCompleted, "done")
	log.Info("segmentation complete", "human_path", humanPath, "llm_path", llmPath)
}

func (w *Worker) writeOutputs(docID string, human, llm []byte) (string, string, error) {
	humanDir := filepath.Join(w.outDir, "human_output")
	llmDir := filepath.Join(w.outDir, "llm_output")
	for _, dir := range []string{humanDir, llmDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", "", fmt.Errorf("create output dir: %w", err)
		}
	}

	name := sanitizeDocID(docID) + ".json"
	humanPath := filepath.Join(humanDir, name)
	llmPath := filepath.Join(llmDir, name)

	if err := os.WriteFile(humanPath, human, 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", humanPath, err)
	}
	if err := os.WriteFile(llmPath, llm, 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", llmPath, err)
	}
	return humanPath, llmPath, nil
}

func sanitizeDocID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, id)
}
