package scenario

// StepEvent identifies one step execution within a run.
type StepEvent struct {
	RunID          string
	StepName       StepName
	StepNumber     int
	StepCount      int
	RepositoryPath string
}

// StepEventObserver receives lifecycle notifications for scenario steps.
type StepEventObserver interface {
	// StepStarted notifies observers that a step is beginning.
	StepStarted(event StepEvent)
	// StepCompleted notifies observers that a step left the repository in the expected state.
	StepCompleted(event StepEvent)
	// StepFailed reports the failure that aborted the run.
	StepFailed(event StepEvent, failure error)
}

// noopStepEventObserver discards all step events.
type noopStepEventObserver struct{}

// StepStarted implements StepEventObserver for the no-op observer.
func (noopStepEventObserver) StepStarted(StepEvent) {}

// StepCompleted implements StepEventObserver for the no-op observer.
func (noopStepEventObserver) StepCompleted(StepEvent) {}

// StepFailed implements StepEventObserver for the no-op observer.
func (noopStepEventObserver) StepFailed(StepEvent, error) {}
