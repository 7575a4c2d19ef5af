// Package launcher builds and runs training commands for a dataset collection.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/runmanager/internal/domain/dataset"
	"github.com/zjrosen/runmanager/internal/log"
)

var (
	// ErrNoDatasets is returned when the collection is empty.
	ErrNoDatasets = errors.New("collection has no datasets")
	// ErrInfoNotLoaded is returned when trial counts are needed but not loaded.
	ErrInfoNotLoaded = errors.New("collection info not loaded")
	// ErrInfeasibleBatchSize is returned when the run's batch size exceeds
	// what the smallest dataset supports.
	ErrInfeasibleBatchSize = errors.New("batch size not supported by collection")
	// ErrNoProgram is returned when no program is configured.
	ErrNoProgram = errors.New("no program configured")
)

// Builder assembles training command lines.
type Builder struct {
	Program   string
	Script    string
	OutputDir string
	WorkDir   string
	// Args are extra --key value pairs appended to every command.
	Args map[string]string

	newID func() uuid.UUID
}

// Command is a fully resolved training invocation.
type Command struct {
	RunID   string
	Program string
	Args    []string
	Dir     string
	SaveDir string
}

// Build resolves the command for run over coll. runArgs override Builder.Args.
func (b Builder) Build(coll dataset.CollectionReader, run dataset.RunParams, runArgs map[string]string) (*Command, error) {
	if b.Program == "" {
		return nil, ErrNoProgram
	}
	if coll.NDatasets() == 0 {
		return nil, fmt.Errorf("collection %s: %w", coll.Name(), ErrNoDatasets)
	}
	if !coll.InfoLoaded() {
		return nil, fmt.Errorf("collection %s: %w", coll.Name(), ErrInfoNotLoaded)
	}

	maxBatch, minTrials := coll.ComputeMaxBatchSizeForTrainToRatio(run.TrainToTestRatio)
	if run.BatchSize > maxBatch {
		return nil, fmt.Errorf("run %s: %w: batch size %d exceeds %d (min trials %d, ratio %g)",
			run.Name, ErrInfeasibleBatchSize, run.BatchSize, maxBatch, minTrials, run.TrainToTestRatio)
	}

	newID := b.newID
	if newID == nil {
		newID = uuid.New
	}
	runID := newID().String()

	label := run.Name
	if label == "" {
		label = "run"
	}
	saveDir := filepath.Join(b.OutputDir, label+"-"+runID[:8])

	var args []string
	if b.Script != "" {
		args = append(args, b.Script)
	}
	args = append(args,
		"--kind", "train",
		"--data_dir", coll.Path(),
		"--datasets", strings.Join(coll.DatasetNames(), ","),
		"--lfads_save_dir", saveDir,
		"--batch_size", strconv.Itoa(run.BatchSize),
		"--train_to_test_ratio", strconv.FormatFloat(run.TrainToTestRatio, 'g', -1, 64),
	)

	extra := maps.Clone(b.Args)
	if extra == nil {
		extra = make(map[string]string, len(runArgs))
	}
	maps.Copy(extra, runArgs)
	for _, key := range slices.Sorted(maps.Keys(extra)) {
		args = append(args, "--"+key, extra[key])
	}

	log.Debug(log.CatLaunch, "built command", "run", run.Name, "runID", runID, "datasets", coll.NDatasets())
	return &Command{
		RunID:   runID,
		Program: b.Program,
		Args:    args,
		Dir:     b.WorkDir,
		SaveDir: saveDir,
	}, nil
}

// String renders the command as a shell-quoted line.
func (c *Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, shellQuote(c.Program))
	for _, arg := range c.Args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

// Run executes the command and blocks until it exits or ctx is cancelled.
// The save directory is created first.
func (c *Command) Run(ctx context.Context, stdout, stderr io.Writer) error {
	saveDir := c.SaveDir
	if c.Dir != "" && !filepath.IsAbs(saveDir) {
		saveDir = filepath.Join(c.Dir, saveDir)
	}
	if err := os.MkdirAll(saveDir, 0o750); err != nil {
		return fmt.Errorf("creating save directory: %w", err)
	}

	start := time.Now()
	//nolint:gosec // G204: program and args come from the user's own configuration
	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	log.Info(log.CatLaunch, "starting run", "runID", c.RunID, "command", c.String())
	err := cmd.Run()
	log.Info(log.CatLaunch, "run finished", "runID", c.RunID, "duration", time.Since(start), "error", err)
	if err != nil {
		return fmt.Errorf("run %s: %w", c.RunID, err)
	}
	return nil
}

// shellQuote single-quotes s unless it only contains characters that are
// safe unquoted in POSIX shells.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isShellSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("_-./,=:@%+", r)
}
