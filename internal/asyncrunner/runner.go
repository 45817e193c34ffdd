package asyncrunner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/repoverify/internal/harnesserrors"
	"github.com/temirov/repoverify/internal/lock"
)

const (
	runOutstandingMessageConstant       = "an operation is already outstanding"
	noRunStartedMessageConstant         = "no operation has been started"
	stillOutstandingMessageConstant     = "operation still outstanding"
	operationRequiredMessageConstant    = "operation not configured"
	operationPanickedTemplateConstant   = "operation panicked: %v"
	defaultSuccessMessageConstant       = "operation completed"
	runStartedLogMessageConstant        = "async operation started"
	runSucceededLogMessageConstant      = "async operation succeeded"
	runFailedLogMessageConstant         = "async operation failed"
	lockReleaseFailedLogMessageConstant = "failed to release repository lock"
	logFieldRunIDConstant               = "run_id"
	logFieldRepositoryPathConstant      = "repository_path"
	logFieldMessageConstant             = "message"
	logFieldDurationConstant            = "duration"
)

var (
	// ErrRunOutstanding indicates Start was called before the previous run completed.
	ErrRunOutstanding = errors.New(runOutstandingMessageConstant)
	// ErrNoRunStarted indicates WaitForCompletion was called before Start.
	ErrNoRunStarted = errors.New(noRunStartedMessageConstant)
	// ErrStillOutstanding indicates the wait timed out before the worker completed.
	ErrStillOutstanding = errors.New(stillOutstandingMessageConstant)
	// ErrOperationRequired indicates the runner was constructed without an operation.
	ErrOperationRequired = errors.New(operationRequiredMessageConstant)
)

// Completion is the single result posted by a run.
type Completion struct {
	RunID   string
	Success bool
	Message string
}

// RunContext describes the run an Operation executes within.
type RunContext struct {
	RunID          string
	RepositoryPath string
	Logger         *zap.Logger
}

// Operation performs the work of one run on the worker goroutine and
// returns a success message. The operation owns any repository it opens
// and must release it before returning.
type Operation func(executionContext context.Context, runContext RunContext) (string, error)

// Runner executes an Operation against one repository path off the caller's goroutine.
type Runner struct {
	repositoryPath string
	operation      Operation
	lockManager    *lock.Manager
	logger         *zap.Logger
	runIDSource    func() string

	mutex      sync.Mutex
	currentRun *run
}

// run holds one run's completion, published by closing done.
type run struct {
	runID      string
	done       chan struct{}
	completion Completion
}

func (currentRun *run) finished() bool {
	select {
	case <-currentRun.done:
		return true
	default:
		return false
	}
}

// NewRunner constructs a Runner. A nil lockManager disables cross-process locking.
func NewRunner(repositoryPath string, operation Operation, lockManager *lock.Manager, logger *zap.Logger) (*Runner, error) {
	if operation == nil {
		return nil, ErrOperationRequired
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		repositoryPath: strings.TrimSpace(repositoryPath),
		operation:      operation,
		lockManager:    lockManager,
		logger:         logger,
		runIDSource:    uuid.NewString,
	}, nil
}

// Start begins a run and returns its identifier without waiting for it.
func (runner *Runner) Start(executionContext context.Context) (string, error) {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()

	if runner.currentRun != nil && !runner.currentRun.finished() {
		return "", fmt.Errorf("%w: %s", ErrRunOutstanding, runner.currentRun.runID)
	}

	var repositoryLock *lock.Lock
	if runner.lockManager != nil {
		acquiredLock, lockError := runner.lockManager.TryAcquire(runner.repositoryPath)
		if lockError != nil {
			return "", lockError
		}
		repositoryLock = acquiredLock
	}

	if executionContext == nil {
		executionContext = context.Background()
	}

	runID := runner.runIDSource()
	startedRun := &run{runID: runID, done: make(chan struct{})}
	runner.currentRun = startedRun

	runLogger := runner.logger.With(
		zap.String(logFieldRunIDConstant, runID),
		zap.String(logFieldRepositoryPathConstant, runner.repositoryPath),
	)
	runLogger.Info(runStartedLogMessageConstant)

	go runner.work(executionContext, RunContext{RunID: runID, RepositoryPath: runner.repositoryPath, Logger: runLogger}, startedRun, repositoryLock)
	return runID, nil
}

// WaitForCompletion blocks until the latest run completes or timeout
// elapses. A timeout of zero or less waits indefinitely. On timeout it
// returns ErrStillOutstanding and the run continues. Any number of callers
// may wait on the same run and all receive its completion.
func (runner *Runner) WaitForCompletion(timeout time.Duration) (Completion, error) {
	runner.mutex.Lock()
	awaitedRun := runner.currentRun
	runner.mutex.Unlock()

	if awaitedRun == nil {
		return Completion{}, ErrNoRunStarted
	}

	if timeout <= 0 {
		<-awaitedRun.done
		return awaitedRun.completion, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-awaitedRun.done:
		return awaitedRun.completion, nil
	case <-timer.C:
		return Completion{}, ErrStillOutstanding
	}
}

func (runner *Runner) work(executionContext context.Context, runContext RunContext, startedRun *run, repositoryLock *lock.Lock) {
	startTime := time.Now()
	completion := runner.execute(executionContext, runContext)

	if completion.Success {
		runContext.Logger.Info(runSucceededLogMessageConstant,
			zap.String(logFieldMessageConstant, completion.Message),
			zap.Duration(logFieldDurationConstant, time.Since(startTime)))
	} else {
		runContext.Logger.Warn(runFailedLogMessageConstant,
			zap.String(logFieldMessageConstant, completion.Message),
			zap.Duration(logFieldDurationConstant, time.Since(startTime)))
	}

	if releaseError := repositoryLock.Release(); releaseError != nil {
		runContext.Logger.Warn(lockReleaseFailedLogMessageConstant, zap.Error(releaseError))
	}

	startedRun.completion = completion
	close(startedRun.done)
}

func (runner *Runner) execute(executionContext context.Context, runContext RunContext) (completion Completion) {
	completion = Completion{RunID: runContext.RunID}
	defer func() {
		if recovered := recover(); recovered != nil {
			completion.Success = false
			completion.Message = fmt.Sprintf(operationPanickedTemplateConstant, recovered)
		}
	}()

	message, operationError := runner.operation(executionContext, runContext)
	if operationError != nil {
		completion.Message = harnesserrors.From(operationError).Error()
		return completion
	}

	completion.Success = true
	completion.Message = message
	if len(strings.TrimSpace(completion.Message)) == 0 {
		completion.Message = defaultSuccessMessageConstant
	}
	return completion
}
