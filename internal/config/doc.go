// Package config provides centralized configuration management for the
// shoreline tools.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources in order of
// precedence:
//
//	1. Command line flags (applied by each cmd after Load)
//	2. Environment variables, optionally seeded from a .env file
//	3. A YAML configuration file
//	4. Default values
//
// # Environment Variables
//
// All environment variables follow the pattern SHORE_<SECTION>_<KEY>:
//
//	SHORE_ANALYSIS_TOLERANCE=0.25
//	SHORE_ANALYSIS_MODE=min
//	SHORE_ANALYSIS_RADIUS_KM=3376.2
//	SHORE_PATHS_BASE_DIR=/data/shorelines
//	SHORE_LOGGING_LEVEL=debug
//	SHORE_TELEMETRY_TRACE_EXPORTER=stdout
//
// SHORE_CONFIG names the YAML file explicitly; otherwise shoreline.yaml and
// configs/shoreline.yaml are tried.
//
// # Path Management
//
// ResolvePaths turns the configured (usually relative) locations into
// absolute paths anchored at the base directory, which defaults to the
// directory holding the executable.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := config.ResolvePaths(cfg)
package config
