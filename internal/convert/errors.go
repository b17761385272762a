package convert

import (
	"errors"
	"fmt"
	"strings"

	"chanmap/internal/preflight"
)

var (
	// ErrOutputLocked reports another process holding the output lock.
	ErrOutputLocked = errors.New("output locked by another conversion")
	// ErrOutputExists reports an existing output while overwrite is disabled.
	ErrOutputExists = errors.New("output already exists")
	// ErrOutputDir reports an unusable destination directory.
	ErrOutputDir = preflight.ErrOutputDir
	// ErrBaseName reports a base name that sanitizes to nothing.
	ErrBaseName = errors.New("invalid base name")
)

// Pipeline stages, used in error messages and the stage log field.
const (
	StageRead     = "read metadata"
	StageCounts   = "channel counts"
	StageGeometry = "geometry"
	StageAssemble = "assemble"
	StageResolve  = "resolve output"
	StageLock     = "lock output"
	StageWrite    = "write output"
)

func stageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	if stage = strings.TrimSpace(stage); stage == "" {
		return err
	}
	return fmt.Errorf("%s: %w", stage, err)
}
