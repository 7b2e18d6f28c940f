package config

// Application constants
const (
	AppName    = "shoreline"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable (SHORE_ANALYSIS_MODE, ...)
	EnvPrefix = "SHORE"

	// ConfigFileEnv overrides the config file search
	ConfigFileEnv = "SHORE_CONFIG"

	// DotEnvFile is loaded, if present, before the environment is read
	DotEnvFile = ".env"

	// Default input layout, relative to the base directory
	DefaultOffsetsDir = "Offset_CSV_files"
	DefaultLevelsDir  = "Levels_CSV_files"
	DefaultDeltasFile = "Delta_CSV_files/DiAchille2010_Deltas_Z.csv"
	DefaultPointsDir  = "PointsOutput/data"

	// Default output layout, relative to the base directory
	DefaultOutputDir = "output"
	DefaultLogsDir   = "logs"

	// Well-known file names
	DefaultLogFile     = "shoreline.log"
	DefaultTraceFile   = "trace.json"
	DefaultMetricsFile = "shoreline.prom"

	// Column names written by the GIS export
	DefaultOffsetColumn    = "Geodesic Length [km]"
	DefaultElevationColumn = "Elevation [m]"

	// Points layouts: trailing "lat, lon" or trailing "lat, lon, elev"
	PointsLayoutPoints   = "points"
	PointsLayoutVertices = "vertices"

	// Perron et al. (2007) is a subset of Carr and Head (2003)
	DefaultExcludePattern = "2007"
)

// DefaultExtensions are the delimited-text extensions the GIS export produces
var DefaultExtensions = []string{".csv", ".txt"}
