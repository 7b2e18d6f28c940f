package operations

import (
	"io"
	"os"
	"sync"
	"time"

	"shoreline/internal/config"
	"shoreline/internal/dataset"
	"shoreline/internal/report"
	"shoreline/internal/shoreline"
)

// OperationStatusValue represents the overall operation status enum
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// OperationState carries the configuration of one run and everything its
// steps produce. Steps run one at a time, so the data fields are accessed
// without locking; only the status bookkeeping is guarded.
type OperationState struct {
	mu sync.RWMutex

	ID        string
	Status    OperationStatusValue
	StartTime time.Time
	EndTime   *time.Time
	Steps     map[string]*StepState
	Error     error

	Config *config.Config
	Paths  *config.Paths

	// Stdout receives the text summary in addition to the summary file
	Stdout io.Writer

	// Inputs
	Offsets    map[shoreline.Level][]shoreline.Dataset
	Elevations []shoreline.Dataset
	Deltas     []shoreline.Point
	Points     []shoreline.Dataset
	Inputs     []report.InputStats

	// Results
	Series        map[shoreline.Mode]map[shoreline.Level][]shoreline.BinValue
	Bins          *shoreline.Bins
	Discrepancies []shoreline.Discrepancy
	Outputs       []string
}

// NewOperationState creates the state of a run
func NewOperationState(id string, cfg *config.Config, paths *config.Paths) *OperationState {
	return &OperationState{
		ID:      id,
		Status:  OperationStatusPending,
		Steps:   make(map[string]*StepState),
		Config:  cfg,
		Paths:   paths,
		Stdout:  os.Stdout,
		Offsets: make(map[shoreline.Level][]shoreline.Dataset),
		Series:  make(map[shoreline.Mode]map[shoreline.Level][]shoreline.BinValue),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the current status
func (p *OperationState) GetStatus() OperationStatusValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStep returns the state of a specific step
func (p *OperationState) GetStep(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stepID]
}

// SetStep updates the state of a specific step
func (p *OperationState) SetStep(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[stepID] = state
}

// AddInput records the load report of one input collection
func (p *OperationState) AddInput(collection string, datasets int, rep dataset.LoadReport) {
	p.Inputs = append(p.Inputs, report.InputStats{
		Collection: collection,
		Datasets:   datasets,
		Report:     rep,
	})
}

// AddOutput records a written file
func (p *OperationState) AddOutput(paths ...string) {
	p.Outputs = append(p.Outputs, paths...)
}

// SetSeries stores an aggregated series
func (p *OperationState) SetSeries(mode shoreline.Mode, level shoreline.Level, series []shoreline.BinValue) {
	byLevel, ok := p.Series[mode]
	if !ok {
		byLevel = make(map[shoreline.Level][]shoreline.BinValue)
		p.Series[mode] = byLevel
	}
	byLevel[level] = series
}

// AllOffsets returns the offset datasets of every level in reporting order
func (p *OperationState) AllOffsets() []shoreline.Dataset {
	var out []shoreline.Dataset
	for _, level := range shoreline.Levels {
		out = append(out, p.Offsets[level]...)
	}
	return out
}
