// Package app wires configuration, logging, telemetry and the step manager
// into a single batch run.
//
// # Initialization Flow
//
// The typical sequence:
//
//	1. Load configuration from defaults, a YAML file and the environment
//	2. Apply command-line overrides and validate again
//	3. Resolve paths and create the output and log directories
//	4. Initialize logging and telemetry
//	5. Register the steps of the requested pipeline
//
// # Usage
//
//	application, err := app.NewApplication(app.Options{
//	    Name:     "discrepancy",
//	    Pipeline: operations.DiscrepancyPipeline,
//	})
//	if err != nil {
//	    return err
//	}
//	if _, err := application.Run(context.Background()); err != nil {
//	    return err
//	}
//
// # Shutdown
//
// SIGINT and SIGTERM cancel the run between steps. Stop always flushes the
// metrics textfile and the trace exporter, even after a failed run.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The app does not
// call os.Exit() directly, allowing the main function to control the exit
// process.
package app
