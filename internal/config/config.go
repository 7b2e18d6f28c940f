package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "shoreline/internal/errors"
	"shoreline/internal/shoreline"
)

// Config represents the complete application configuration
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// AnalysisConfig controls binning, reduction and input discovery
type AnalysisConfig struct {
	Tolerance       float64  `yaml:"tolerance" envconfig:"TOLERANCE" validate:"gt=0,lte=180"`
	Mode            string   `yaml:"mode" envconfig:"MODE" validate:"required"`
	RadiusKm        float64  `yaml:"radius_km" envconfig:"RADIUS_KM" validate:"gt=0"`
	Extensions      []string `yaml:"extensions" envconfig:"EXTENSIONS" validate:"min=1,dive,startswith=."`
	Exclude         []string `yaml:"exclude" envconfig:"EXCLUDE"`
	Recursive       bool     `yaml:"recursive" envconfig:"RECURSIVE"`
	OffsetColumn    string   `yaml:"offset_column" envconfig:"OFFSET_COLUMN" validate:"required"`
	ElevationColumn string   `yaml:"elevation_column" envconfig:"ELEVATION_COLUMN" validate:"required"`
	PointsLayout    string   `yaml:"points_layout" envconfig:"POINTS_LAYOUT" validate:"oneof=points vertices"`
}

// PathsConfig contains file system paths configuration. Relative paths are
// resolved against BaseDir, which defaults to the executable directory.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	OffsetsDir string `yaml:"offsets_dir" envconfig:"OFFSETS_DIR" validate:"required"`
	LevelsDir  string `yaml:"levels_dir" envconfig:"LEVELS_DIR" validate:"required"`
	DeltasFile string `yaml:"deltas_file" envconfig:"DELTAS_FILE"`
	PointsDir  string `yaml:"points_dir" envconfig:"POINTS_DIR" validate:"required"`
	OutputDir  string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig controls tracing and the metrics textfile
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	TraceFile      string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	MetricsFile    string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Tolerance:       shoreline.DefaultTolerance,
			Mode:            shoreline.ModeMin.String(),
			RadiusKm:        shoreline.MarsMeanRadiusKm,
			Extensions:      append([]string(nil), DefaultExtensions...),
			Exclude:         []string{DefaultExcludePattern},
			Recursive:       true,
			OffsetColumn:    DefaultOffsetColumn,
			ElevationColumn: DefaultElevationColumn,
			PointsLayout:    PointsLayoutPoints,
		},
		Paths: PathsConfig{
			OffsetsDir: DefaultOffsetsDir,
			LevelsDir:  DefaultLevelsDir,
			DeltasFile: DefaultDeltasFile,
			PointsDir:  DefaultPointsDir,
			OutputDir:  DefaultOutputDir,
			LogsDir:    DefaultLogsDir,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "console",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TraceExporter:  "none",
			TraceFile:      DefaultTraceFile,
			MetricsEnabled: true,
			MetricsFile:    DefaultMetricsFile,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. An empty configFile
// searches the usual locations; a named file that does not exist is an error.
func Load(configFile string) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, apperrors.NewConfigError("failed to load .env file", err)
	}

	cfg := Default()

	explicit := configFile != ""
	if !explicit {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			if explicit {
				return nil, apperrors.NewNotFoundError("config file "+configFile, err)
			}
		} else if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				InFile(configFile)
		}
	}

	// Fields without a matching variable are left as they are, so the
	// environment only overrides what it names.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile decodes a YAML file on top of cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv exports the variables of a .env file without overriding ones
// already set in the process environment
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}

	locations := []string{
		"shoreline.yaml",
		"configs/shoreline.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report YAML key names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Validate checks field ranges and the reduction mode
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return apperrors.NewConfigError("config validation failed", err)
		}

		out := make([]apperrors.ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, apperrors.ValidationError{
				Field:   fe.Namespace(),
				Message: formatValidationError(fe),
			})
		}
		return apperrors.NewValidationErrors(out)
	}

	if _, err := shoreline.ParseMode(c.Analysis.Mode); err != nil {
		return err
	}

	return nil
}

// Mode returns the parsed reduction mode
func (c *Config) Mode() (shoreline.Mode, error) {
	return shoreline.ParseMode(c.Analysis.Mode)
}

// Grid returns the longitude grid described by the analysis tolerance
func (c *Config) Grid() (shoreline.Grid, error) {
	return shoreline.NewGrid(c.Analysis.Tolerance)
}

// Body returns the sphere used for distance calculations
func (c *Config) Body() shoreline.Sphere {
	return shoreline.Sphere{RadiusKm: c.Analysis.RadiusKm}
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
