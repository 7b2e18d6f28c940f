// Package operations runs a comparison as an ordered list of steps.
//
// A Manager executes the steps registered in its Registry one after another
// against a shared OperationState. Each step reads what earlier steps left
// in the state (loaded datasets, aggregated series, extremal pairs) and adds
// its own results. The first failing step stops the run.
//
// Every step runs inside its own span, and its duration and outcome are
// recorded on the pipeline metrics of the run's Telemetry.
//
// Core Components:
//
// Manager: executes registered steps sequentially, stopping between steps
// when the context is done.
//
// Step: a single unit of work. Steps in this package cover loading, binning,
// the extremal search, CSV and workbook output, plotting and the summary.
//
// Registry: keeps steps in registration order and rejects duplicate ids.
//
// Example usage:
//
//	state := operations.NewOperationState(runID, cfg, paths)
//	manager := operations.NewManager(operations.DiscrepancyPipeline(), telemetry, logger)
//	if err := manager.Execute(ctx, state); err != nil {
//		return err
//	}
package operations
