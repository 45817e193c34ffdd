package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repoverify/internal/asyncrunner"
	"github.com/temirov/repoverify/internal/harnesserrors"
	"github.com/temirov/repoverify/internal/lock"
	"github.com/temirov/repoverify/internal/progress"
	pathutils "github.com/temirov/repoverify/internal/utils/path"
)

const (
	pullTestCommandShortDescriptionConstant = "Pull the configured ssh remote on a background worker"
	lockSetupFailedMessageConstant          = "Failed to prepare operation lock"
	startFailedMessageConstant              = "Failed to start pull"
	pullOutstandingMessageTemplateConstant  = "Pull still outstanding after %s"
	pullCompletedTemplateConstant           = "%s\n"
	pullWaitingLogMessageConstant           = "waiting for pull completion"
	logFieldTimeoutConstant                 = "timeout"
	logFieldRunIDConstant                   = "run_id"
)

// PullTestCommandBuilder assembles the test verb.
type PullTestCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider HarnessConfigurationProvider
	LocalPathProvider     LocalPathProvider
	PathResolver          *pathutils.Resolver
}

// Build constructs the test command.
func (builder PullTestCommandBuilder) Build() *cobra.Command {
	return &cobra.Command{
		Use:           testVerbConstant,
		Short:         pullTestCommandShortDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}
}

func (builder PullTestCommandBuilder) run(command *cobra.Command, _ []string) error {
	localPath, localPathError := builder.LocalPathProvider()
	if localPathError != nil {
		return localPathError
	}
	logger := resolveLogger(builder.LoggerProvider)
	configuration := builder.ConfigurationProvider()

	lockDirectory, lockDirectoryError := configuration.ResolvedLockDirectory(builder.PathResolver)
	if lockDirectoryError != nil {
		return harnesserrors.WithCause(lockSetupFailedMessageConstant, lockDirectoryError)
	}
	lockManager, lockManagerError := lock.NewManager(lockDirectory)
	if lockManagerError != nil {
		return harnesserrors.Decorate(harnesserrors.WithCause(lockSetupFailedMessageConstant, lockManagerError), lockManagerError.Error())
	}

	credentialSource, sourceError := configuration.CredentialSource(builder.PathResolver)
	if sourceError != nil {
		return harnesserrors.WithCause(credentialsFailedMessageConstant, sourceError)
	}

	runner, runnerError := asyncrunner.NewRunner(localPath, asyncrunner.PullOperation(asyncrunner.PullConfiguration{
		RemoteURL:   configuration.SSHRemoteURL,
		Credentials: credentialSource,
		Sink:        progress.NewLoggingSink(logger),
	}), lockManager, logger)
	if runnerError != nil {
		return harnesserrors.WithCause(startFailedMessageConstant, runnerError)
	}

	runID, startError := runner.Start(command.Context())
	if startError != nil {
		return harnesserrors.Decorate(harnesserrors.WithCause(startFailedMessageConstant, startError), startError.Error())
	}

	logger.Debug(pullWaitingLogMessageConstant, zap.String(logFieldRunIDConstant, runID), zap.Duration(logFieldTimeoutConstant, configuration.Timeout))
	completion, waitError := runner.WaitForCompletion(configuration.Timeout)
	if errors.Is(waitError, asyncrunner.ErrStillOutstanding) {
		return harnesserrors.Newf(pullOutstandingMessageTemplateConstant, configuration.Timeout)
	}
	if waitError != nil {
		return harnesserrors.From(waitError)
	}
	if !completion.Success {
		return harnesserrors.New(completion.Message)
	}

	fmt.Fprintf(command.OutOrStdout(), pullCompletedTemplateConstant, completion.Message)
	return nil
}
