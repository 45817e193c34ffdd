package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/repoverify/internal/harnesserrors"
	"github.com/temirov/repoverify/internal/scenario"
	"github.com/temirov/repoverify/internal/utils"
	flagutils "github.com/temirov/repoverify/internal/utils/flags"
	pathutils "github.com/temirov/repoverify/internal/utils/path"
)

const (
	applicationNameConstant                 = "repoverify"
	applicationShortDescriptionConstant     = "Exercise a git repository through a scripted verification scenario"
	applicationLongDescriptionConstant      = "repoverify drives a local git repository through branch, index, commit, tag, diff, clone, and pull checks and reports the first failure."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a YAML configuration file."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	localPathFlagNameConstant               = "local-path"
	localPathFlagUsageConstant              = "Local repository path"
	environmentPrefixConstant               = "REPOVERIFY"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationDirectoryNameConstant      = "repoverify"
	defaultConfigurationSearchPathConstant  = "."
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	noActionMessageTemplateConstant         = "No action given. Must be one of:  (%s)"
	invalidVerbMessageTemplateConstant      = "Invalid verb:  (%s)"
	localPathRequiredMessageConstant        = "--local-path must be set"
	exceptionOutputTemplateConstant         = "EXCEPTION: %s\n"
	verbSeparatorConstant                   = ","
	autoVerbConstant                        = "auto"
	cloneVerbConstant                       = "clone"
	examplesVerbConstant                    = "examples"
	testVerbConstant                        = "test"
)

var validVerbs = []string{autoVerbConstant, cloneVerbConstant, examplesVerbConstant, testVerbConstant}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	pathResolver          *pathutils.Resolver
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	localPathFlagValue    string
	executedCommand       *cobra.Command
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, configurationDirectoryNameConstant))
	}
	configurationLoader := utils.NewConfigurationLoader(configurationNameConstant, configurationTypeConstant, environmentPrefixConstant, searchPaths)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(os.Stderr),
		logger:              zap.NewNop(),
		pathResolver:        pathutils.NewResolver(),
	}

	rootCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: application.runRootCommand,
	}
	rootCommand.CompletionOptions.DisableDefaultCmd = true
	rootCommand.SetContext(context.Background())

	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	flagutils.AddChoiceFlag(persistentFlags, &application.logLevelFlagValue, logLevelFlagNameConstant, string(utils.LogLevelInfo), utils.LogLevelNames(), logLevelFlagUsageConstant)
	flagutils.AddChoiceFlag(persistentFlags, &application.logFormatFlagValue, logFormatFlagNameConstant, string(utils.LogFormatConsole), utils.LogFormatNames(), logFormatFlagUsageConstant)
	persistentFlags.StringVar(&application.localPathFlagValue, localPathFlagNameConstant, "", localPathFlagUsageConstant)

	scenarioBuilders := []ScenarioCommandBuilder{
		{
			Use:   autoVerbConstant,
			Short: "Run the full verification scenario",
			Steps: scenario.AutoSequence(),
		},
		{
			Use:   examplesVerbConstant,
			Short: "Unstage every staged file",
			Steps: scenario.CleanupSequence(),
		},
	}
	for _, scenarioBuilder := range scenarioBuilders {
		scenarioBuilder.LoggerProvider = application.currentLogger
		scenarioBuilder.ConfigurationProvider = application.harnessConfiguration
		scenarioBuilder.LocalPathProvider = application.resolveLocalPath
		rootCommand.AddCommand(scenarioBuilder.Build())
	}

	cloneBuilder := CloneCommandBuilder{
		LoggerProvider:        application.currentLogger,
		ConfigurationProvider: application.harnessConfiguration,
		LocalPathProvider:     application.resolveLocalPath,
		PathResolver:          application.pathResolver,
	}
	rootCommand.AddCommand(cloneBuilder.Build())

	pullTestBuilder := PullTestCommandBuilder{
		LoggerProvider:        application.currentLogger,
		ConfigurationProvider: application.harnessConfiguration,
		LocalPathProvider:     application.resolveLocalPath,
		PathResolver:          application.pathResolver,
	}
	rootCommand.AddCommand(pullTestBuilder.Build())

	application.rootCommand = rootCommand
	return application
}

// SetOutput redirects command output to stdout and logging plus usage to stderr.
func (application *Application) SetOutput(stdout io.Writer, stderr io.Writer) {
	application.rootCommand.SetOut(stdout)
	application.rootCommand.SetErr(stderr)
	application.loggerFactory = utils.NewLoggerFactory(stderr)
}

// SetArguments replaces the process arguments used by Execute.
func (application *Application) SetArguments(arguments []string) {
	application.rootCommand.SetArgs(arguments)
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executedCommand, executionError := application.rootCommand.ExecuteC()
	application.executedCommand = executedCommand
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// ReportFailure writes the failure line followed by the usage of the command that failed.
func (application *Application) ReportFailure(writer io.Writer, failure error) {
	if failure == nil {
		return
	}
	fmt.Fprintf(writer, exceptionOutputTemplateConstant, harnesserrors.From(failure).Error())
	usageCommand := application.executedCommand
	if usageCommand == nil {
		usageCommand = application.rootCommand
	}
	fmt.Fprint(writer, usageCommand.UsageString())
}

// Run executes the application with arguments and returns the process exit code.
func Run(arguments []string, stdout io.Writer, stderr io.Writer) int {
	application := NewApplication()
	application.SetOutput(stdout, stderr)
	application.SetArguments(arguments)
	if executionError := application.Execute(); executionError != nil {
		application.ReportFailure(stderr, executionError)
		return 1
	}
	return 0
}

// Configuration returns the configuration loaded for the last execution.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultConfigurationValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
	return nil
}

func (application *Application) runRootCommand(_ *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		return harnesserrors.Newf(noActionMessageTemplateConstant, strings.Join(validVerbs, verbSeparatorConstant))
	}
	return harnesserrors.Newf(invalidVerbMessageTemplateConstant, arguments[0])
}

func (application *Application) currentLogger() *zap.Logger {
	return application.logger
}

func (application *Application) harnessConfiguration() HarnessConfiguration {
	return application.configuration.Harness
}

func (application *Application) resolveLocalPath() (string, error) {
	if len(strings.TrimSpace(application.localPathFlagValue)) == 0 {
		return "", harnesserrors.New(localPathRequiredMessageConstant)
	}
	return application.pathResolver.Resolve(application.localPathFlagValue)
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}
