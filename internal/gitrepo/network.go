package gitrepo

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

const (
	defaultRemoteNameConstant        = "origin"
	remoteURLRequiredMessageConstant = "remote url required"
	remoteHasNoURLMessageConstant    = "remote has no url"
)

var (
	// ErrRemoteURLRequired indicates a network operation received no remote URL.
	ErrRemoteURLRequired = errors.New(remoteURLRequiredMessageConstant)
	// ErrRemoteHasNoURL indicates the configured remote lacks a URL.
	ErrRemoteHasNoURL = errors.New(remoteHasNoURLMessageConstant)
)

// PullOptions configures Pull. RemoteURL, when set, overrides the URL
// configured for RemoteName. Progress receives sideband text from the remote.
type PullOptions struct {
	RemoteName string
	RemoteURL  string
	Auth       transport.AuthMethod
	Progress   io.Writer
}

// CloneOptions configures Clone.
type CloneOptions struct {
	RemoteURL string
	Auth      transport.AuthMethod
	Progress  io.Writer
}

// Pull fetches from the remote and merges into the current branch. An
// already up-to-date branch is a success.
func (repository *Repository) Pull(executionContext context.Context, options PullOptions) error {
	_, worktree, worktreeError := repository.worktree(pullOperationNameConstant)
	if worktreeError != nil {
		return worktreeError
	}

	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}

	pullError := worktree.PullContext(executionContext, &git.PullOptions{
		RemoteName: remoteName,
		RemoteURL:  strings.TrimSpace(options.RemoteURL),
		Auth:       options.Auth,
		Progress:   options.Progress,
	})
	if pullError != nil && !errors.Is(pullError, git.NoErrAlreadyUpToDate) {
		return repository.fail(pullOperationNameConstant, pullError)
	}
	return nil
}

// RemoteURL returns the first URL configured for the named remote.
func (repository *Repository) RemoteURL(remoteName string) (string, error) {
	engine, engineError := repository.engine(remoteOperationNameConstant)
	if engineError != nil {
		return "", engineError
	}

	if len(strings.TrimSpace(remoteName)) == 0 {
		remoteName = defaultRemoteNameConstant
	}
	remote, remoteError := engine.Remote(remoteName)
	if remoteError != nil {
		return "", repository.fail(remoteOperationNameConstant, remoteError)
	}
	remoteURLs := remote.Config().URLs
	if len(remoteURLs) == 0 {
		return "", repository.fail(remoteOperationNameConstant, ErrRemoteHasNoURL)
	}
	return remoteURLs[0], nil
}

// Clone copies the remote into localPath and returns an open session for it.
// The returned Repository carries the failure text when cloning fails.
func Clone(executionContext context.Context, localPath string, options CloneOptions) (*Repository, error) {
	repository := NewRepository(localPath)
	if len(repository.localPath) == 0 {
		repository.state = RepositoryStateFaulted
		return repository, repository.fail(cloneOperationNameConstant, ErrLocalPathRequired)
	}
	if len(strings.TrimSpace(options.RemoteURL)) == 0 {
		repository.state = RepositoryStateFaulted
		return repository, repository.fail(cloneOperationNameConstant, ErrRemoteURLRequired)
	}

	clonedRepository, cloneError := git.PlainCloneContext(executionContext, repository.localPath, false, &git.CloneOptions{
		URL:      strings.TrimSpace(options.RemoteURL),
		Auth:     options.Auth,
		Progress: options.Progress,
	})
	if cloneError != nil {
		repository.state = RepositoryStateFaulted
		return repository, repository.fail(cloneOperationNameConstant, cloneError)
	}

	repository.bind(clonedRepository)
	return repository, nil
}
