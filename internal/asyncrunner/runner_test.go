package asyncrunner_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/repoverify/internal/asyncrunner"
	"github.com/temirov/repoverify/internal/harnesserrors"
	"github.com/temirov/repoverify/internal/lock"
	"github.com/temirov/repoverify/internal/progress"
)

const (
	testSuccessMessageConstant = "pulled"
	testFailureMessageConstant = "Failed to pull [authentication required]"
	testShortTimeoutConstant   = 20 * time.Millisecond
)

func TestRunnerCompletions(testInstance *testing.T) {
	testCases := []struct {
		name            string
		operation       asyncrunner.Operation
		expectedSuccess bool
		expectedMessage string
	}{
		{
			name: "success",
			operation: func(context.Context, asyncrunner.RunContext) (string, error) {
				return testSuccessMessageConstant, nil
			},
			expectedSuccess: true,
			expectedMessage: testSuccessMessageConstant,
		},
		{
			name: "success_default_message",
			operation: func(context.Context, asyncrunner.RunContext) (string, error) {
				return "", nil
			},
			expectedSuccess: true,
			expectedMessage: "operation completed",
		},
		{
			name: "harness_failure",
			operation: func(context.Context, asyncrunner.RunContext) (string, error) {
				return "", harnesserrors.New(testFailureMessageConstant)
			},
			expectedMessage: testFailureMessageConstant,
		},
		{
			name: "coded_failure",
			operation: func(context.Context, asyncrunner.RunContext) (string, error) {
				return "", harnesserrors.WithCode(testFailureMessageConstant, 12)
			},
			expectedMessage: testFailureMessageConstant + " (code 12)",
		},
		{
			name: "foreign_failure",
			operation: func(context.Context, asyncrunner.RunContext) (string, error) {
				return "", errors.New("remote hung up")
			},
			expectedMessage: "remote hung up",
		},
		{
			name: "panic",
			operation: func(context.Context, asyncrunner.RunContext) (string, error) {
				panic("boom")
			},
			expectedMessage: "operation panicked: boom",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			runner, runnerError := asyncrunner.NewRunner(testInstance.TempDir(), testCase.operation, nil, nil)
			require.NoError(testInstance, runnerError)

			runID, startError := runner.Start(context.Background())
			require.NoError(testInstance, startError)
			require.NotEmpty(testInstance, runID)

			completion, waitError := runner.WaitForCompletion(0)
			require.NoError(testInstance, waitError)
			require.Equal(testInstance, asyncrunner.Completion{RunID: runID, Success: testCase.expectedSuccess, Message: testCase.expectedMessage}, completion)
		})
	}
}

func TestRunnerSingleOutstandingRun(testInstance *testing.T) {
	release := make(chan struct{})
	started := make(chan asyncrunner.RunContext, 1)
	operation := func(_ context.Context, runContext asyncrunner.RunContext) (string, error) {
		started <- runContext
		<-release
		return testSuccessMessageConstant, nil
	}

	repositoryPath := testInstance.TempDir()
	runner, runnerError := asyncrunner.NewRunner(repositoryPath, operation, nil, nil)
	require.NoError(testInstance, runnerError)

	_, noRunError := runner.WaitForCompletion(testShortTimeoutConstant)
	require.ErrorIs(testInstance, noRunError, asyncrunner.ErrNoRunStarted)

	firstRunID, startError := runner.Start(context.Background())
	require.NoError(testInstance, startError)
	runContext := <-started
	require.Equal(testInstance, firstRunID, runContext.RunID)
	require.Equal(testInstance, repositoryPath, runContext.RepositoryPath)

	_, outstandingError := runner.Start(context.Background())
	require.ErrorIs(testInstance, outstandingError, asyncrunner.ErrRunOutstanding)

	_, timeoutError := runner.WaitForCompletion(testShortTimeoutConstant)
	require.ErrorIs(testInstance, timeoutError, asyncrunner.ErrStillOutstanding)

	close(release)
	completion, waitError := runner.WaitForCompletion(0)
	require.NoError(testInstance, waitError)
	require.True(testInstance, completion.Success)
	require.Equal(testInstance, firstRunID, completion.RunID)

	secondRunID, restartError := runner.Start(context.Background())
	require.NoError(testInstance, restartError)
	require.NotEqual(testInstance, firstRunID, secondRunID)
	<-started
	secondCompletion, secondWaitError := runner.WaitForCompletion(time.Second)
	require.NoError(testInstance, secondWaitError)
	require.Equal(testInstance, secondRunID, secondCompletion.RunID)
}

func TestRunnerConcurrentWaitersShareCompletion(testInstance *testing.T) {
	release := make(chan struct{})
	operation := func(context.Context, asyncrunner.RunContext) (string, error) {
		<-release
		return testSuccessMessageConstant, nil
	}

	runner, runnerError := asyncrunner.NewRunner(testInstance.TempDir(), operation, nil, nil)
	require.NoError(testInstance, runnerError)
	runID, startError := runner.Start(context.Background())
	require.NoError(testInstance, startError)

	const waiterCount = 3
	type waitResult struct {
		completion asyncrunner.Completion
		waitError  error
	}
	results := make(chan waitResult, waiterCount)
	for waiterIndex := 0; waiterIndex < waiterCount; waiterIndex++ {
		go func() {
			completion, waitError := runner.WaitForCompletion(0)
			results <- waitResult{completion: completion, waitError: waitError}
		}()
	}

	close(release)
	for waiterIndex := 0; waiterIndex < waiterCount; waiterIndex++ {
		select {
		case result := <-results:
			require.NoError(testInstance, result.waitError)
			require.True(testInstance, result.completion.Success)
			require.Equal(testInstance, runID, result.completion.RunID)
			require.Equal(testInstance, testSuccessMessageConstant, result.completion.Message)
		case <-time.After(5 * time.Second):
			testInstance.Fatalf("waiter %d did not receive the completion", waiterIndex)
		}
	}

	repeatedCompletion, repeatedWaitError := runner.WaitForCompletion(testShortTimeoutConstant)
	require.NoError(testInstance, repeatedWaitError)
	require.Equal(testInstance, runID, repeatedCompletion.RunID)
}

func TestRunnerHonorsRepositoryLock(testInstance *testing.T) {
	lockManager, managerError := lock.NewManager(testInstance.TempDir())
	require.NoError(testInstance, managerError)

	release := make(chan struct{})
	blockingOperation := func(context.Context, asyncrunner.RunContext) (string, error) {
		<-release
		return testSuccessMessageConstant, nil
	}
	immediateOperation := func(context.Context, asyncrunner.RunContext) (string, error) {
		return testSuccessMessageConstant, nil
	}

	repositoryPath := testInstance.TempDir()
	firstRunner, firstRunnerError := asyncrunner.NewRunner(repositoryPath, blockingOperation, lockManager, nil)
	require.NoError(testInstance, firstRunnerError)
	secondRunner, secondRunnerError := asyncrunner.NewRunner(repositoryPath, immediateOperation, lockManager, nil)
	require.NoError(testInstance, secondRunnerError)

	_, firstStartError := firstRunner.Start(context.Background())
	require.NoError(testInstance, firstStartError)

	_, lockedError := secondRunner.Start(context.Background())
	require.ErrorIs(testInstance, lockedError, lock.ErrRepositoryLocked)

	close(release)
	_, firstWaitError := firstRunner.WaitForCompletion(0)
	require.NoError(testInstance, firstWaitError)

	_, secondStartError := secondRunner.Start(context.Background())
	require.NoError(testInstance, secondStartError)
	secondCompletion, secondWaitError := secondRunner.WaitForCompletion(0)
	require.NoError(testInstance, secondWaitError)
	require.True(testInstance, secondCompletion.Success)
}

func TestRunnerDeliversProgressBeforeCompletion(testInstance *testing.T) {
	recordingSink := &progress.RecordingSink{}
	operation := func(context.Context, asyncrunner.RunContext) (string, error) {
		tracker := progress.NewTracker(recordingSink)
		for receivedObjects := 1; receivedObjects <= 5; receivedObjects++ {
			_, writeError := io.WriteString(tracker, fmt.Sprintf("Counting objects: %d%% (%d/5)\r", receivedObjects*20, receivedObjects))
			if writeError != nil {
				return "", writeError
			}
		}
		return testSuccessMessageConstant, tracker.Flush()
	}

	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	runner, runnerError := asyncrunner.NewRunner(testInstance.TempDir(), operation, nil, zap.New(observedCore))
	require.NoError(testInstance, runnerError)

	_, startError := runner.Start(context.Background())
	require.NoError(testInstance, startError)
	completion, waitError := runner.WaitForCompletion(0)
	require.NoError(testInstance, waitError)
	require.True(testInstance, completion.Success)

	snapshots := recordingSink.Snapshots()
	require.Len(testInstance, snapshots, 5)
	require.Equal(testInstance, progress.Snapshot{ReceivedObjects: 5, TotalObjects: 5}, snapshots[4])

	require.Equal(testInstance, 1, observedLogs.FilterMessage("async operation started").Len())
	require.Equal(testInstance, 1, observedLogs.FilterMessage("async operation succeeded").Len())
}

func TestNewRunnerRequiresOperation(testInstance *testing.T) {
	_, runnerError := asyncrunner.NewRunner(testInstance.TempDir(), nil, nil, nil)
	require.ErrorIs(testInstance, runnerError, asyncrunner.ErrOperationRequired)
}
