// Package pipeline runs a compiled mapping against a batch of source records on a bounded worker pool.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"schemaorg_pipeline/cfg"
	"schemaorg_pipeline/extract"
	"schemaorg_pipeline/util/network"

	"github.com/alitto/pond"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// repo represents pipeline runner
type repo struct {
	log *logrus.Logger
	cfg cfg.Root
}

// NewRepo returns new pipeline runner
func NewRepo(log *logrus.Logger, cfg cfg.Root) repo {
	return repo{log: log, cfg: cfg}
}

// Run transforms every item of <items> with <transformer> and writes results to the output directory.
//
// Failure of one item is logged and recorded in returned Report, the rest of items are still processed. When <ctx>
// is done, items not started yet are skipped.
func (r repo) Run(ctx context.Context, transformer extract.Transformer, items []Item) (Report, error) {
	outDir := r.cfg.General.OutputDir
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return Report{}, errors.Wrap(err, "Create output directory")
	}

	report := Report{
		Backend:   r.cfg.General.Backend,
		OutputDir: outDir,
		Started:   time.Now(),
		Total:     len(items),
	}

	pool := pond.New(r.cfg.General.MaxWorkers, 0, pond.MinWorkers(0))
	var mut sync.Mutex
	itemsDone := 0

	// getProgress returns formatted progress of items processed
	getProgress := func() string {
		mut.Lock()
		defer mut.Unlock()
		percent := (itemsDone * 100) / max(len(items), 1)
		return fmt.Sprintf("%v / %v (%v%%)", itemsDone, len(items), percent)
	}

	for _, item := range items {
		item := item
		pool.Submit(func() {
			if ctx.Err() != nil {
				mut.Lock()
				report.Skipped = append(report.Skipped, item.Name)
				itemsDone++
				mut.Unlock()
				return
			}

			r.log.WithFields(logrus.Fields{"item": item.Name, "progress": getProgress()}).Debug("Start processing item")
			err := r.process(ctx, transformer, item)

			mut.Lock()
			if err != nil {
				report.Failed = append(report.Failed, Failure{Item: item.Name, Reason: network.Reason(err)})
			} else {
				report.Processed = append(report.Processed, item.Name)
			}
			itemsDone++
			mut.Unlock()

			if err != nil {
				r.log.WithFields(logrus.Fields{"item": item.Name, "progress": getProgress()}).
					Errorf("Failed %v: %v", item.Name, err)
			} else {
				r.log.WithFields(logrus.Fields{"item": item.Name, "progress": getProgress()}).Info("Done")
			}
		})
	}

	pool.StopAndWait()

	report.Duration = time.Since(report.Started)
	report.sort()
	return report, nil
}

// process loads, transforms and writes single <item>
func (r repo) process(ctx context.Context, transformer extract.Transformer, item Item) error {
	input, err := item.Load()
	if err != nil {
		return errors.Wrap(err, "Load item")
	}
	output, err := transformer.Transform(ctx, input)
	if err != nil {
		return errors.Wrap(err, "Transform item")
	}
	path := filepath.Join(r.cfg.General.OutputDir, item.Output)
	if err := os.WriteFile(path, output, 0644); err != nil {
		return errors.Wrap(err, "Write output")
	}
	return nil
}
