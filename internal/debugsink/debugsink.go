// Package debugsink implements orchestrator.DebugSink, persisting a JSON
// snapshot of each step's chosen action for offline inspection, in the
// teacher's style of writing diagnostic artifacts straight to the
// filesystem (see internal/s3's DownloadObject for the download-side
// analogue; uploads here stay local since the pack ships no S3 put path).
package debugsink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	ijson "github.com/antflydb/deepresearch/internal/json"
	"github.com/antflydb/deepresearch/internal/model"
)

// FileSink writes one JSON file per step under a directory.
type FileSink struct {
	dir string
}

// NewFileSink returns a FileSink rooted at dir, creating it if necessary.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("debugsink: creating %s: %w", dir, err)
	}
	return &FileSink{dir: dir}, nil
}

type stepSnapshot struct {
	Step      int         `json:"step"`
	Question  string      `json:"question"`
	Action    model.Action `json:"action"`
	Timestamp time.Time   `json:"timestamp"`
}

// RecordStep writes step's question and chosen action to <dir>/step-NNNN.json.
// Write failures are logged to stderr rather than propagated, so a debug
// sink never aborts a research session.
func (f *FileSink) RecordStep(step int, question string, action model.Action) {
	snapshot := stepSnapshot{
		Step:      step,
		Question:  question,
		Action:    action,
		Timestamp: time.Now(),
	}

	data, err := ijson.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "debugsink: marshal step %d: %v\n", step, err)
		return
	}

	path := filepath.Join(f.dir, fmt.Sprintf("step-%04d.json", step))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "debugsink: write %s: %v\n", path, err)
	}
}
