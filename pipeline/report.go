package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"schemaorg_pipeline/cfg"

	json "github.com/SCP002/jsonexraw"
	"github.com/cockroachdb/errors"
)

// ReportFileName is the name of the report file written into the output directory
const ReportFileName = "report.json"

// Report represents outcome of a pipeline run
type Report struct {
	Backend   cfg.Backend   `json:"backend"`
	OutputDir string        `json:"output_dir"`
	Started   time.Time     `json:"started"`
	Duration  time.Duration `json:"duration_ns"`
	Total     int           `json:"total"`
	Processed []string      `json:"processed"`
	Failed    []Failure     `json:"failed"`
	Skipped   []string      `json:"skipped"`
}

// Failure represents failed item and the reason
type Failure struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// OK returns true if every item was processed
func (r Report) OK() bool {
	return len(r.Failed) == 0 && len(r.Skipped) == 0
}

// sort orders item lists of <r> by name, as pool finishes items in arbitrary order
func (r *Report) sort() {
	sort.Strings(r.Processed)
	sort.Strings(r.Skipped)
	sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i].Item < r.Failed[j].Item })
}

// Write writes <r> as JSON to the output directory and returns path to the file
func (r Report) Write() (string, error) {
	raw, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return "", errors.Wrap(err, "Serialize report")
	}
	path := filepath.Join(r.OutputDir, ReportFileName)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", errors.Wrap(err, "Write report")
	}
	return path, nil
}
