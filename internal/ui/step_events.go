package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repoverify/internal/scenario"
)

const (
	stepStartedMessageTemplateConstant   = "Running %s"
	stepCompletedMessageTemplateConstant = "Completed %s"
	stepFailedMessageTemplateConstant    = "%s failed: %s"
	stepLabelTemplateConstant            = "%s%s%s"
	stepCounterTemplateConstant          = "[%d/%d] "
	repositorySuffixTemplateConstant     = " (in %s)"
	unknownFailureMessageConstant        = "unknown error"
	emptyStringConstant                  = ""
)

// StepEventFormatter builds human-readable messages for scenario step events.
type StepEventFormatter struct{}

// BuildStartedMessage formats the message describing a step about to run.
func (formatter StepEventFormatter) BuildStartedMessage(event scenario.StepEvent) string {
	return fmt.Sprintf(stepStartedMessageTemplateConstant, formatter.formatStepLabel(event))
}

// BuildCompletedMessage formats the message describing a step that left the repository clean.
func (formatter StepEventFormatter) BuildCompletedMessage(event scenario.StepEvent) string {
	return fmt.Sprintf(stepCompletedMessageTemplateConstant, formatter.formatStepLabel(event))
}

// BuildFailureMessage formats the message describing a step that aborted the run.
func (formatter StepEventFormatter) BuildFailureMessage(event scenario.StepEvent, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(stepFailedMessageTemplateConstant, formatter.formatStepLabel(event), failureMessage)
}

func (formatter StepEventFormatter) formatStepLabel(event scenario.StepEvent) string {
	counterPrefix := emptyStringConstant
	if event.StepCount > 1 {
		counterPrefix = fmt.Sprintf(stepCounterTemplateConstant, event.StepNumber, event.StepCount)
	}
	return fmt.Sprintf(stepLabelTemplateConstant, counterPrefix, event.StepName, formatter.formatRepositorySuffix(event.RepositoryPath))
}

func (formatter StepEventFormatter) formatRepositorySuffix(repositoryPath string) string {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(repositorySuffixTemplateConstant, trimmedRepositoryPath)
}

// ConsoleStepEventLogger renders scenario step events using a zap logger configured for human-readable output.
type ConsoleStepEventLogger struct {
	logger    *zap.Logger
	formatter StepEventFormatter
}

// NewConsoleStepEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleStepEventLogger(logger *zap.Logger) *ConsoleStepEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleStepEventLogger{logger: logger, formatter: StepEventFormatter{}}
}

// StepStarted implements scenario.StepEventObserver by logging step start notifications.
func (eventLogger *ConsoleStepEventLogger) StepStarted(event scenario.StepEvent) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(event))
}

// StepCompleted implements scenario.StepEventObserver by logging step completion notifications.
func (eventLogger *ConsoleStepEventLogger) StepCompleted(event scenario.StepEvent) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildCompletedMessage(event))
}

// StepFailed implements scenario.StepEventObserver by logging the failure that aborted the run.
func (eventLogger *ConsoleStepEventLogger) StepFailed(event scenario.StepEvent, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildFailureMessage(event, failure))
}
