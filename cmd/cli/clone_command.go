package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repoverify/internal/credentials"
	"github.com/temirov/repoverify/internal/gitrepo"
	"github.com/temirov/repoverify/internal/harnesserrors"
	"github.com/temirov/repoverify/internal/progress"
	pathutils "github.com/temirov/repoverify/internal/utils/path"
)

const (
	cloneCommandShortDescriptionConstant = "Clone the configured https remote into the local path"
	parentMissingMessageTemplateConstant = "Parent of local-path %s does not exist"
	credentialsFailedMessageConstant     = "Failed to prepare credentials"
	cloneFailedMessageConstant           = "Failed to clone repository"
	cloneSucceededTemplateConstant       = "Successfully cloned %s into %s\n"
	cloneStartedLogMessageConstant       = "cloning repository"
	logFieldRemoteURLConstant            = "remote_url"
	logFieldLocalPathConstant            = "local_path"
)

// CloneCommandBuilder assembles the clone verb.
type CloneCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider HarnessConfigurationProvider
	LocalPathProvider     LocalPathProvider
	PathResolver          *pathutils.Resolver
}

// Build constructs the clone command.
func (builder CloneCommandBuilder) Build() *cobra.Command {
	return &cobra.Command{
		Use:           cloneVerbConstant,
		Short:         cloneCommandShortDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}
}

func (builder CloneCommandBuilder) run(command *cobra.Command, _ []string) error {
	localPath, localPathError := builder.LocalPathProvider()
	if localPathError != nil {
		return localPathError
	}
	parentInfo, parentError := os.Stat(filepath.Dir(localPath))
	if parentError != nil || !parentInfo.IsDir() {
		return harnesserrors.Newf(parentMissingMessageTemplateConstant, localPath)
	}

	logger := resolveLogger(builder.LoggerProvider)
	configuration := builder.ConfigurationProvider()

	credentialSource, sourceError := configuration.CredentialSource(builder.PathResolver)
	if sourceError != nil {
		return harnesserrors.WithCause(credentialsFailedMessageConstant, sourceError)
	}
	authMethod, authError := credentials.AuthMethod(configuration.RemoteURL, credentialSource)
	if authError != nil {
		return harnesserrors.Decorate(harnesserrors.WithCause(credentialsFailedMessageConstant, authError), authError.Error())
	}

	logger.Info(cloneStartedLogMessageConstant, zap.String(logFieldRemoteURLConstant, configuration.RemoteURL), zap.String(logFieldLocalPathConstant, localPath))
	tracker := progress.NewTracker(progress.NewLoggingSink(logger))
	repository, cloneError := gitrepo.Clone(command.Context(), localPath, gitrepo.CloneOptions{
		RemoteURL: configuration.RemoteURL,
		Auth:      authMethod,
		Progress:  tracker,
	})
	_ = tracker.Flush()
	if cloneError != nil {
		return harnesserrors.Decorate(harnesserrors.WithCause(cloneFailedMessageConstant, cloneError), repository.ErrorText())
	}
	defer repository.Close()

	fmt.Fprintf(command.OutOrStdout(), cloneSucceededTemplateConstant, configuration.RemoteURL, localPath)
	return nil
}
