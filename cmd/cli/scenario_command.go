package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repoverify/internal/gitrepo"
	"github.com/temirov/repoverify/internal/harnesserrors"
	"github.com/temirov/repoverify/internal/scenario"
	"github.com/temirov/repoverify/internal/ui"
	"github.com/temirov/repoverify/internal/utils"
)

const (
	openRepositoryFailedMessageConstant = "Failed to open repository"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// HarnessConfigurationProvider supplies the loaded harness configuration.
type HarnessConfigurationProvider func() HarnessConfiguration

// LocalPathProvider supplies the resolved --local-path value.
type LocalPathProvider func() (string, error)

// ScenarioCommandBuilder assembles a verb that runs scenario steps against the local repository.
type ScenarioCommandBuilder struct {
	Use                   string
	Short                 string
	Steps                 []scenario.StepName
	LoggerProvider        LoggerProvider
	ConfigurationProvider HarnessConfigurationProvider
	LocalPathProvider     LocalPathProvider
}

// Build constructs the scenario command.
func (builder ScenarioCommandBuilder) Build() *cobra.Command {
	return &cobra.Command{
		Use:           builder.Use,
		Short:         builder.Short,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}
}

func (builder ScenarioCommandBuilder) run(command *cobra.Command, _ []string) error {
	localPath, localPathError := builder.LocalPathProvider()
	if localPathError != nil {
		return localPathError
	}
	logger := resolveLogger(builder.LoggerProvider)

	repository := gitrepo.NewRepository(localPath)
	if openError := repository.Open(); openError != nil {
		return harnesserrors.Decorate(harnesserrors.WithCause(openRepositoryFailedMessageConstant, openError), repository.ErrorText())
	}
	defer repository.Close()

	dumpWriter := utils.NewLineFlushingWriter(command.OutOrStdout())
	defer dumpWriter.Flush()

	runner := scenario.NewRunner(builder.ConfigurationProvider().ScenarioConfiguration(), logger, ui.NewConsoleStepEventLogger(logger), dumpWriter)
	return runner.Run(command.Context(), repository, builder.Steps)
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	if logger := provider(); logger != nil {
		return logger
	}
	return zap.NewNop()
}
