package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dgallion1/secseg/internal/jsonout"
	"github.com/dgallion1/secseg/internal/parser"
	"github.com/dgallion1/secseg/internal/pipeline"
	"github.com/dgallion1/secseg/internal/report"
	"github.com/dgallion1/secseg/internal/segment"
	"github.com/go-chi/chi/v5"
)

// handleSegment segments one uploaded filing synchronously and returns the
// requested JSON shape (?shape=human, the default, or ?shape=llm).
func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	root, err := parser.Load(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse: "+err.Error(), http.StatusBadRequest)
		return
	}
	tree := segment.Segment(root, s.orchestrator.Params())

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Query().Get("shape") {
	case "", "human":
		out, err := jsonout.MarshalHuman(tree)
		if err != nil {
			jsonError(w, "serialize: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write(out)
	case "llm":
		out, err := jsonout.MarshalLLM(tree)
		if err != nil {
			jsonError(w, "serialize: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write(out)
	default:
		jsonError(w, "shape must be human or llm", http.StatusBadRequest)
	}
}

// handleReport segments one uploaded filing and returns its summary.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	root, err := parser.Load(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse: "+err.Error(), http.StatusBadRequest)
		return
	}
	tree := segment.Segment(root, s.orchestrator.Params())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report.Summarize(tree))
}

// handleSubmitJob queues an async segmentation job that writes both output
// shapes to the configured output directories.
func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	docID := r.FormValue("doc_id")
	if docID == "" {
		docID = pipeline.ContentHashHex(data)[:16]
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:        pipeline.ContentHashHex([]byte(fmt.Sprintf("%s-%d", filename, now.UnixNano())))[:20],
		DocID:     docID,
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"doc_id":   job.DocID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// readUpload pulls the filing out of a multipart form, enforcing the size
// limit and extension filter. The bool result is false after an error
// response has been written.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return nil, "", false
	}

	data, ok := s.readLimited(w, file)
	if !ok {
		return nil, "", false
	}
	return data, filename, true
}

func (s *Server) readLimited(w http.ResponseWriter, file multipart.File) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return data, true
}

func sanitizeFilename(name string) string {
	return filepath.Base(filepath.Clean(name))
}
