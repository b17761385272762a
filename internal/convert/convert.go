package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"chanmap/internal/config"
	"chanmap/internal/fileutil"
	"chanmap/internal/history"
	"chanmap/internal/logging"
	"chanmap/internal/matfile"
	"chanmap/internal/preflight"
	"chanmap/internal/spikeglx"
	"chanmap/internal/textutil"
)

const (
	outputFileMode = 0o644
	lockSuffix     = ".lock"
	producerName   = "chanmap"
)

// Request identifies one conversion.
type Request struct {
	MetaPath string
	// OutputPath, when set, is used verbatim instead of the derived
	// <dir>/<baseName><suffix> location.
	OutputPath string
	// BaseName overrides the metadata file stem.
	BaseName string
	// Strict rejects duplicate metadata keys regardless of config.
	Strict bool
}

// Result describes a completed conversion.
type Result struct {
	RunID          string
	SourcePath     string
	OutputPath     string
	BaseName       string
	Channels       int
	ConnectedCount int
	ShankCount     int
	Recorded       bool
}

// OutputDir returns the directory holding the written file.
func (r *Result) OutputDir() string {
	return filepath.Dir(r.OutputPath)
}

// OutputFile returns the written file name.
func (r *Result) OutputFile() string {
	return filepath.Base(r.OutputPath)
}

// Recorder persists completed conversions.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (*history.Entry, error)
}

// Converter runs conversions against a config.
type Converter struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
}

// Option customizes a Converter.
type Option func(*Converter)

// WithRecorder records each successful conversion.
func WithRecorder(r Recorder) Option {
	return func(c *Converter) {
		c.recorder = r
	}
}

// WithClock overrides the timestamp source for headers and history.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.now = now
		}
	}
}

// New constructs a Converter. A nil logger discards output.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Converter {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Converter{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "convert"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert reads req.MetaPath and writes its Kilosort channel map. Nothing is
// written unless every stage succeeds.
func (c *Converter) Convert(ctx context.Context, req Request) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, c.logger).With(logging.String(logging.FieldSourcePath, req.MetaPath))

	loaded, err := Load(req.MetaPath, req.BaseName, spikeglx.ParseOptions{
		StrictDuplicates: req.Strict || c.cfg.Parsing.StrictDuplicateKeys,
	})
	if err != nil {
		logger.Debug("conversion failed", logging.String(logging.FieldEventType, "convert_failed"), logging.Error(err))
		return nil, err
	}
	logger.Debug("channel map assembled",
		logging.Int("channels", loaded.Map.Len()),
		logging.Int("shanks", loaded.Geometry.Header.NShank),
		logging.Float64("shank_pitch", loaded.Geometry.Header.ShankPitch),
	)

	outPath, err := c.resolveOutputPath(req, loaded)
	if err != nil {
		return nil, stageError(StageResolve, err)
	}
	logger = logger.With(logging.String(logging.FieldOutputPath, outPath))

	if err := preflight.CheckOutputDir(filepath.Dir(outPath)); err != nil {
		return nil, stageError(StageResolve, err)
	}

	vars, err := loaded.Map.Variables()
	if err != nil {
		return nil, stageError(StageAssemble, err)
	}

	lock := flock.New(outPath + lockSuffix)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, stageError(StageLock, fmt.Errorf("acquire %s: %w", lock.Path(), err))
	}
	if !ok {
		return nil, stageError(StageLock, fmt.Errorf("%w: %s", ErrOutputLocked, lock.Path()))
	}
	// The lock file stays on disk; unlinking it after Unlock would let a
	// waiter hold a lock on an inode that a newcomer can no longer see.
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	created := c.now()
	err = fileutil.WriteFileAtomic(outPath, outputFileMode, c.cfg.Output.Overwrite, func(w io.Writer) error {
		return matfile.Encode(w, matfile.EncodeOptions{Created: created, Producer: producerName}, vars...)
	})
	if errors.Is(err, fileutil.ErrExists) {
		err = fmt.Errorf("%w: %s (set output.overwrite = true to replace it)", ErrOutputExists, outPath)
	}
	if err != nil {
		return nil, stageError(StageWrite, err)
	}

	result := &Result{
		RunID:          runID,
		SourcePath:     req.MetaPath,
		OutputPath:     outPath,
		BaseName:       loaded.BaseName,
		Channels:       loaded.Map.Len(),
		ConnectedCount: loaded.Map.ConnectedCount(),
		ShankCount:     loaded.Geometry.Header.NShank,
	}
	logger.Info("channel map written",
		logging.String(logging.FieldEventType, "convert_complete"),
		logging.Int("channels", result.Channels),
		logging.Int("connected", result.ConnectedCount),
	)

	if c.recorder != nil {
		_, recErr := c.recorder.Record(ctx, history.Entry{
			RunID:          runID,
			SourcePath:     absOrSelf(req.MetaPath),
			OutputPath:     absOrSelf(outPath),
			BaseName:       loaded.BaseName,
			ChannelCount:   result.Channels,
			ConnectedCount: result.ConnectedCount,
			ShankCount:     result.ShankCount,
			ShankPitch:     loaded.Geometry.Header.ShankPitch,
			LFCount:        loaded.Counts.LF,
			SYCount:        loaded.Counts.SY,
			CreatedAt:      created,
		})
		if recErr != nil {
			logging.WarnWithContext(logger, "failed to record conversion history", "history_record",
				logging.Error(recErr),
				logging.String(logging.FieldErrorHint, "check state_dir permissions or disable [history]"),
			)
		} else {
			result.Recorded = true
		}
	}

	return result, nil
}

func (c *Converter) resolveOutputPath(req Request, loaded *Loaded) (string, error) {
	if explicit := strings.TrimSpace(req.OutputPath); explicit != "" {
		return config.ExpandPath(explicit)
	}

	dir := c.cfg.Paths.OutputDir
	if dir == "" {
		dir = filepath.Dir(req.MetaPath)
	}
	name := textutil.SanitizeFileName(loaded.BaseName)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrBaseName, loaded.BaseName)
	}
	return filepath.Join(dir, name+c.cfg.Output.Suffix), nil
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
