package scenario

import (
	"context"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/repoverify/internal/harnesserrors"
)

const (
	runStartedMessageConstant          = "scenario run started"
	runCompletedMessageConstant        = "scenario run completed"
	runFailedMessageConstant           = "scenario run failed"
	unknownStepMessageTemplateConstant = "Unknown scenario step %s"
	repositoryMissingMessageConstant   = "Repository handle not provided"
	runCancelledMessageConstant        = "Scenario run cancelled"
	logFieldRunIDConstant              = "run_id"
	logFieldStepConstant               = "step"
	logFieldStepsConstant              = "steps"
	logFieldRepositoryPathConstant     = "repository_path"
)

// StepName identifies a scenario step.
type StepName string

// Scenario step names.
const (
	StepListBranches                  StepName = StepName("listBranches")
	StepListIndexes                   StepName = StepName("listIndexes")
	StepVerifyNothingModified         StepName = StepName("verifyNothingModified")
	StepStageAndUnstage               StepName = StepName("stageAndUnstage")
	StepUnstageAll                    StepName = StepName("unstageAll")
	StepCommitAndResetHard            StepName = StepName("commitAndResetHard")
	StepCreateAndDeleteLightweightTag StepName = StepName("createAndDeleteLightweightTag")
	StepCreateAndDeleteAnnotatedTag   StepName = StepName("createAndDeleteAnnotatedTag")
	StepCreateAndDumpDiffs            StepName = StepName("createAndDumpDiffs")
)

// AutoSequence returns the full verification sequence in execution order.
func AutoSequence() []StepName {
	return []StepName{
		StepListBranches,
		StepListIndexes,
		StepVerifyNothingModified,
		StepStageAndUnstage,
		StepCommitAndResetHard,
		StepCreateAndDeleteLightweightTag,
		StepCreateAndDeleteAnnotatedTag,
		StepCreateAndDumpDiffs,
	}
}

// CleanupSequence returns the single step that unstages everything.
func CleanupSequence() []StepName {
	return []StepName{StepUnstageAll}
}

type stepFunction func(repository RepositoryHandle) error

// Runner executes scenario steps against a repository handle on the caller's goroutine.
type Runner struct {
	configuration Configuration
	logger        *zap.Logger
	observer      StepEventObserver
	dumpWriter    io.Writer
	runIDSource   func() string
	steps         map[StepName]stepFunction
}

// NewRunner constructs a Runner. Nil collaborators are replaced with no-op implementations.
func NewRunner(configuration Configuration, logger *zap.Logger, observer StepEventObserver, dumpWriter io.Writer) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = noopStepEventObserver{}
	}
	if dumpWriter == nil {
		dumpWriter = io.Discard
	}

	runner := &Runner{
		configuration: configuration.Sanitize(),
		logger:        logger,
		observer:      observer,
		dumpWriter:    dumpWriter,
		runIDSource:   uuid.NewString,
	}
	runner.steps = map[StepName]stepFunction{
		StepListBranches:                  runner.listBranches,
		StepListIndexes:                   runner.listIndexes,
		StepVerifyNothingModified:         runner.verifyNothingModified,
		StepStageAndUnstage:               runner.stageAndUnstage,
		StepUnstageAll:                    runner.unstageAll,
		StepCommitAndResetHard:            runner.commitAndResetHard,
		StepCreateAndDeleteLightweightTag: runner.createAndDeleteLightweightTag,
		StepCreateAndDeleteAnnotatedTag:   runner.createAndDeleteAnnotatedTag,
		StepCreateAndDumpDiffs:            runner.createAndDumpDiffs,
	}
	return runner
}

// Run executes stepNames in order and stops at the first failure. The
// returned error is a HarnessError decorated with the repository's current
// diagnostic text.
func (runner *Runner) Run(executionContext context.Context, repository RepositoryHandle, stepNames []StepName) error {
	if repository == nil {
		return harnesserrors.New(repositoryMissingMessageConstant)
	}

	runID := runner.runIDSource()
	runLogger := runner.logger.With(
		zap.String(logFieldRunIDConstant, runID),
		zap.String(logFieldRepositoryPathConstant, repository.RootPath()),
	)
	runLogger.Info(runStartedMessageConstant, zap.Int(logFieldStepsConstant, len(stepNames)))

	for stepIndex, stepName := range stepNames {
		event := StepEvent{
			RunID:          runID,
			StepName:       stepName,
			StepNumber:     stepIndex + 1,
			StepCount:      len(stepNames),
			RepositoryPath: repository.RootPath(),
		}

		stepError := runner.runStep(executionContext, repository, event)
		if stepError != nil {
			decoratedError := harnesserrors.Decorate(stepError, repository.ErrorText())
			runner.observer.StepFailed(event, decoratedError)
			runLogger.Error(runFailedMessageConstant, zap.String(logFieldStepConstant, string(stepName)), zap.Error(decoratedError))
			return decoratedError
		}
		runner.observer.StepCompleted(event)
	}

	runLogger.Info(runCompletedMessageConstant)
	return nil
}

func (runner *Runner) runStep(executionContext context.Context, repository RepositoryHandle, event StepEvent) error {
	if executionContext != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return harnesserrors.WithCause(runCancelledMessageConstant, contextError)
		}
	}

	step, known := runner.steps[event.StepName]
	if !known {
		return harnesserrors.Newf(unknownStepMessageTemplateConstant, event.StepName)
	}

	runner.observer.StepStarted(event)
	return step(repository)
}
