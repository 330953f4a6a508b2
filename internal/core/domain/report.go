package domain

import "time"

// RunStatus is the terminal state of a workflow run.
type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

// WorkflowStep identifies one stage of the discovery pipeline.
type WorkflowStep string

const (
	StepConnect  WorkflowStep = "connect"
	StepCollect  WorkflowStep = "collect"
	StepIdentify WorkflowStep = "identify"
	StepEnrich   WorkflowStep = "enrich"
	StepExport   WorkflowStep = "export"
)

// ItemError records a single-item failure inside a step. Item errors are
// aggregated into the report; they never abort the run.
type ItemError struct {
	Step    WorkflowStep `json:"step"`
	Item    string       `json:"item,omitempty"` // device id, record ref...
	Message string       `json:"message"`
}

// StepResult summarizes one executed step.
type StepResult struct {
	Step     WorkflowStep  `json:"step"`
	Items    int           `json:"items"`
	Dropped  int           `json:"dropped,omitempty"`
	Errors   []ItemError   `json:"errors,omitempty"`
	Duration time.Duration `json:"duration"`
}

// WorkflowReport is what a run always returns: a status, the scene when one
// was produced, and the aggregated item-level errors.
type WorkflowReport struct {
	RunID    string       `json:"run_id"`
	Status   RunStatus    `json:"status"`
	Scene    *Scene       `json:"scene,omitempty"`
	Steps    []StepResult `json:"steps"`
	Errors   []ItemError  `json:"errors,omitempty"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
}

// ErrorCount returns the total number of item-level errors across steps.
func (r WorkflowReport) ErrorCount() int {
	return len(r.Errors)
}
