package asyncrunner

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repoverify/internal/credentials"
	"github.com/temirov/repoverify/internal/gitrepo"
	"github.com/temirov/repoverify/internal/harnesserrors"
	"github.com/temirov/repoverify/internal/progress"
)

const (
	openFailedMessageConstant           = "Failed to open repository"
	remoteLookupFailedMessageConstant   = "Failed to resolve remote url"
	authenticationFailedMessageConstant = "Failed to prepare credentials"
	pullFailedMessageConstant           = "Failed to pull"
	pullSucceededTemplateConstant       = "Pulled %s into %s"
	pullOperationLogMessageConstant     = "pulling repository"
	logFieldRemoteURLConstant           = "remote_url"
)

// PullConfiguration configures PullOperation.
type PullConfiguration struct {
	RemoteName  string
	RemoteURL   string
	Credentials credentials.Source
	Sink        progress.Sink
}

// PullOperation opens the run's repository and pulls from the configured
// remote, feeding sideband progress into the configured sink. Failures are
// HarnessErrors decorated with the repository's diagnostic text.
func PullOperation(configuration PullConfiguration) Operation {
	return func(executionContext context.Context, runContext RunContext) (string, error) {
		credentialSource := configuration.Credentials
		if credentialSource == nil {
			credentialSource = credentials.EmptySource{}
		}
		progressSink := configuration.Sink
		if progressSink == nil {
			progressSink = progress.NopSink{}
		}

		repository := gitrepo.NewRepository(runContext.RepositoryPath)
		if openError := repository.Open(); openError != nil {
			return "", harnesserrors.Decorate(harnesserrors.WithCause(openFailedMessageConstant, openError), repository.ErrorText())
		}
		defer repository.Close()

		remoteURL := strings.TrimSpace(configuration.RemoteURL)
		if len(remoteURL) == 0 {
			configuredURL, remoteError := repository.RemoteURL(configuration.RemoteName)
			if remoteError != nil {
				return "", harnesserrors.Decorate(harnesserrors.WithCause(remoteLookupFailedMessageConstant, remoteError), repository.ErrorText())
			}
			remoteURL = configuredURL
		}

		authMethod, authError := credentials.AuthMethod(remoteURL, credentialSource)
		if authError != nil {
			return "", harnesserrors.Decorate(harnesserrors.WithCause(authenticationFailedMessageConstant, authError), authError.Error())
		}

		if runContext.Logger != nil {
			runContext.Logger.Debug(pullOperationLogMessageConstant, zap.String(logFieldRemoteURLConstant, remoteURL))
		}

		tracker := progress.NewTracker(progressSink)
		pullError := repository.Pull(executionContext, gitrepo.PullOptions{
			RemoteName: configuration.RemoteName,
			RemoteURL:  configuration.RemoteURL,
			Auth:       authMethod,
			Progress:   tracker,
		})
		_ = tracker.Flush()
		if pullError != nil {
			return "", harnesserrors.Decorate(harnesserrors.WithCause(pullFailedMessageConstant, pullError), repository.ErrorText())
		}

		return fmt.Sprintf(pullSucceededTemplateConstant, remoteURL, repository.RootPath()), nil
	}
}
