package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/repoverify/internal/scenario"
	"github.com/temirov/repoverify/internal/ui"
)

const (
	testRepositoryPathConstant           = "/tmp/project"
	testFailureReasonConstant            = "Failed to find local branch develop []"
	testStepLabelExpectationConstant     = "[2/8] listIndexes (in /tmp/project)"
	testStartMessageExpectationConstant  = "Running " + testStepLabelExpectationConstant
	testDoneMessageExpectationConstant   = "Completed " + testStepLabelExpectationConstant
	testFailureMessageExpectation        = testStepLabelExpectationConstant + " failed: " + testFailureReasonConstant
	testSingleStepMessageExpectation     = "Running unstageAll"
	testUnknownFailureMessageExpectation = "unstageAll failed: unknown error"
)

func TestConsoleStepEventLoggerEmitsMessages(testInstance *testing.T) {
	event := scenario.StepEvent{
		RunID:          "run",
		StepName:       scenario.StepListIndexes,
		StepNumber:     2,
		StepCount:      8,
		RepositoryPath: testRepositoryPathConstant,
	}
	singleStepEvent := scenario.StepEvent{StepName: scenario.StepUnstageAll, StepNumber: 1, StepCount: 1}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleStepEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "step_started",
			invoke: func(logger *ui.ConsoleStepEventLogger) {
				logger.StepStarted(event)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testStartMessageExpectationConstant,
		},
		{
			name: "step_completed",
			invoke: func(logger *ui.ConsoleStepEventLogger) {
				logger.StepCompleted(event)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testDoneMessageExpectationConstant,
		},
		{
			name: "step_failed",
			invoke: func(logger *ui.ConsoleStepEventLogger) {
				logger.StepFailed(event, errors.New(testFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: testFailureMessageExpectation,
		},
		{
			name: "single_step_without_counter",
			invoke: func(logger *ui.ConsoleStepEventLogger) {
				logger.StepStarted(singleStepEvent)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testSingleStepMessageExpectation,
		},
		{
			name: "failure_without_error",
			invoke: func(logger *ui.ConsoleStepEventLogger) {
				logger.StepFailed(singleStepEvent, nil)
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: testUnknownFailureMessageExpectation,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			consoleLogger := zap.New(observerCore)
			eventLogger := ui.NewConsoleStepEventLogger(consoleLogger)

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}

func TestNilConsoleStepEventLoggerIsSafe(testInstance *testing.T) {
	var eventLogger *ui.ConsoleStepEventLogger
	require.NotPanics(testInstance, func() {
		eventLogger.StepStarted(scenario.StepEvent{})
		eventLogger.StepCompleted(scenario.StepEvent{})
		eventLogger.StepFailed(scenario.StepEvent{}, nil)
	})
}
