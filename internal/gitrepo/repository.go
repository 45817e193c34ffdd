package gitrepo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
)

const (
	repositoryNotOpenMessageConstant        = "repository is not open"
	repositoryFaultedMessageConstant        = "repository failed to open"
	localPathRequiredMessageConstant        = "repository path required"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	defaultContextLinesConstant             = 3
	openOperationNameConstant               = OperationName("Open")
	statusOperationNameConstant             = OperationName("Status")
	branchesOperationNameConstant           = OperationName("Branches")
	indexOperationNameConstant              = OperationName("Index")
	headOperationNameConstant               = OperationName("Head")
	findCommitOperationNameConstant         = OperationName("FindCommit")
	commitOperationNameConstant             = OperationName("Commit")
	resetOperationNameConstant              = OperationName("Reset")
	stageOperationNameConstant              = OperationName("Stage")
	unstageOperationNameConstant            = OperationName("Unstage")
	restoreOperationNameConstant            = OperationName("Restore")
	tagsOperationNameConstant               = OperationName("Tags")
	createTagOperationNameConstant          = OperationName("CreateTag")
	findTagOperationNameConstant            = OperationName("FindTag")
	deleteTagOperationNameConstant          = OperationName("DeleteTag")
	diffOperationNameConstant               = OperationName("Diff")
	pullOperationNameConstant               = OperationName("Pull")
	cloneOperationNameConstant              = OperationName("Clone")
	remoteOperationNameConstant             = OperationName("Remote")
)

// OperationName identifies a repository operation for error reporting.
type OperationName string

// RepositoryState describes the lifecycle of a Repository session.
type RepositoryState string

// Supported repository states.
const (
	RepositoryStateUnopened RepositoryState = RepositoryState("unopened")
	RepositoryStateOpen     RepositoryState = RepositoryState("open")
	RepositoryStateFaulted  RepositoryState = RepositoryState("faulted")
)

var (
	// ErrRepositoryNotOpen indicates an operation was attempted before Open succeeded or after Close.
	ErrRepositoryNotOpen = errors.New(repositoryNotOpenMessageConstant)
	// ErrRepositoryFaulted indicates Open failed and the session cannot be used.
	ErrRepositoryFaulted = errors.New(repositoryFaultedMessageConstant)
	// ErrLocalPathRequired indicates the repository was constructed without a path.
	ErrLocalPathRequired = errors.New(localPathRequiredMessageConstant)
)

// OperationError wraps engine failures for repository operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// Repository is a single-owner session over a local repository. Every
// failure is recorded and available through ErrorText until the next failure.
type Repository struct {
	localPath  string
	rootPath   string
	repository *git.Repository
	state      RepositoryState
	errorText  string
}

// NewRepository constructs an unopened session for localPath.
func NewRepository(localPath string) *Repository {
	return &Repository{localPath: strings.TrimSpace(localPath), state: RepositoryStateUnopened}
}

// IsRepository reports whether localPath is inside a repository.
func IsRepository(localPath string) bool {
	_, openError := git.PlainOpenWithOptions(localPath, &git.PlainOpenOptions{DetectDotGit: true})
	return openError == nil
}

// Open binds the session to the repository on disk.
func (repository *Repository) Open() error {
	if len(repository.localPath) == 0 {
		repository.state = RepositoryStateFaulted
		return repository.fail(openOperationNameConstant, ErrLocalPathRequired)
	}

	openedRepository, openError := git.PlainOpenWithOptions(repository.localPath, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		repository.state = RepositoryStateFaulted
		return repository.fail(openOperationNameConstant, openError)
	}

	repository.bind(openedRepository)
	return nil
}

// Close releases the session. Closing an unopened session is a no-op.
func (repository *Repository) Close() error {
	repository.repository = nil
	repository.rootPath = ""
	if repository.state == RepositoryStateOpen {
		repository.state = RepositoryStateUnopened
	}
	return nil
}

// State returns the session lifecycle state.
func (repository *Repository) State() RepositoryState {
	return repository.state
}

// RootPath returns the working tree root, which differs from the path the
// session was created for when it was opened from a nested directory.
func (repository *Repository) RootPath() string {
	if len(repository.rootPath) == 0 {
		return repository.localPath
	}
	return repository.rootPath
}

// ErrorText returns the text of the most recent engine failure, or an empty string.
func (repository *Repository) ErrorText() string {
	return repository.errorText
}

func (repository *Repository) bind(openedRepository *git.Repository) {
	repository.repository = openedRepository
	repository.state = RepositoryStateOpen
	repository.rootPath = ""
	if worktree, worktreeError := openedRepository.Worktree(); worktreeError == nil {
		repository.rootPath = worktree.Filesystem.Root()
	}
}

func (repository *Repository) engine(operation OperationName) (*git.Repository, error) {
	switch repository.state {
	case RepositoryStateOpen:
		return repository.repository, nil
	case RepositoryStateFaulted:
		return nil, repository.fail(operation, ErrRepositoryFaulted)
	default:
		return nil, repository.fail(operation, ErrRepositoryNotOpen)
	}
}

func (repository *Repository) worktree(operation OperationName) (*git.Repository, *git.Worktree, error) {
	engine, engineError := repository.engine(operation)
	if engineError != nil {
		return nil, nil, engineError
	}
	worktree, worktreeError := engine.Worktree()
	if worktreeError != nil {
		return nil, nil, repository.fail(operation, worktreeError)
	}
	return engine, worktree, nil
}

func (repository *Repository) fail(operation OperationName, cause error) error {
	operationError := OperationError{Operation: operation, Cause: cause}
	repository.errorText = operationError.Error()
	return operationError
}
