package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every resolved file system location used by a run.
// This is the single source of truth for input and output paths.
type Paths struct {
	BaseDir string

	// Inputs
	OffsetsDir string
	LevelsDir  string
	DeltasFile string
	PointsDir  string

	// Outputs
	OutputDir   string
	LogsDir     string
	LogFile     string
	TraceFile   string
	MetricsFile string
}

// ResolvePaths resolves the configured paths. Relative entries are joined
// to BaseDir; an empty BaseDir means the directory holding the executable,
// never the current working directory.
func ResolvePaths(cfg *Config) (*Paths, error) {
	base := cfg.Paths.BaseDir
	if base == "" {
		exeDir, err := ExecutableDir()
		if err != nil {
			return nil, err
		}
		base = exeDir
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	paths := &Paths{
		BaseDir:    base,
		OffsetsDir: resolve(cfg.Paths.OffsetsDir),
		LevelsDir:  resolve(cfg.Paths.LevelsDir),
		DeltasFile: resolve(cfg.Paths.DeltasFile),
		PointsDir:  resolve(cfg.Paths.PointsDir),
		OutputDir:  resolve(cfg.Paths.OutputDir),
		LogsDir:    resolve(cfg.Paths.LogsDir),
	}

	paths.LogFile = resolveUnder(paths.LogsDir, cfg.Logging.FilePath, DefaultLogFile)
	paths.TraceFile = resolveUnder(paths.LogsDir, cfg.Telemetry.TraceFile, DefaultTraceFile)
	paths.MetricsFile = resolveUnder(paths.OutputDir, cfg.Telemetry.MetricsFile, DefaultMetricsFile)

	return paths, nil
}

// resolveUnder places a relative file name under dir, falling back to def
func resolveUnder(dir, name, def string) string {
	if name == "" {
		name = def
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// ExecutableDir returns the directory of the running executable with
// symlinks resolved
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return filepath.Dir(exe), nil
}

// EnsureDirectories creates the output and log directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.OutputDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// OutputPath returns the path of a file inside the output directory
func (p *Paths) OutputPath(name string) string {
	return filepath.Join(p.OutputDir, name)
}

// LevelOffsetsDir returns the offsets sub-directory for one shoreline level
func (p *Paths) LevelOffsetsDir(level string) string {
	return filepath.Join(p.OffsetsDir, level)
}

// LogPathResolution logs every resolved path at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("offsets_dir", p.OffsetsDir),
		slog.String("levels_dir", p.LevelsDir),
		slog.String("deltas_file", p.DeltasFile),
		slog.String("points_dir", p.PointsDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("logs_dir", p.LogsDir))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
