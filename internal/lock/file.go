package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const (
	lockFileExtensionConstant                = ".lock"
	lockDirectoryPermissionsConstant         = 0o750
	repositoryLockedMessageConstant          = "repository operation already in progress"
	lockDirectoryRequiredMessageConstant     = "lock directory required"
	lockDirectoryCreationTemplateConstant    = "failed to create lock directory: %w"
	lockAcquisitionTemplateConstant          = "failed to acquire lock: %w"
	repositoryPathResolutionTemplateConstant = "failed to resolve repository path: %w"
	lockedRepositoryTemplateConstant         = "%w: %s"
)

var (
	// ErrRepositoryLocked indicates another holder owns the repository lock.
	ErrRepositoryLocked = errors.New(repositoryLockedMessageConstant)
	// ErrLockDirectoryRequired indicates the manager was constructed without a directory.
	ErrLockDirectoryRequired = errors.New(lockDirectoryRequiredMessageConstant)
)

// Manager hands out per-repository locks stored in one directory.
type Manager struct {
	lockDirectory string
}

// Lock is a held repository lock.
type Lock struct {
	flock          *flock.Flock
	lockPath       string
	repositoryPath string
}

// NewManager creates the lock directory when missing and returns a manager for it.
func NewManager(lockDirectory string) (*Manager, error) {
	trimmedDirectory := strings.TrimSpace(lockDirectory)
	if len(trimmedDirectory) == 0 {
		return nil, ErrLockDirectoryRequired
	}
	if err := os.MkdirAll(trimmedDirectory, lockDirectoryPermissionsConstant); err != nil {
		return nil, fmt.Errorf(lockDirectoryCreationTemplateConstant, err)
	}
	return &Manager{lockDirectory: trimmedDirectory}, nil
}

// LockPath returns the lock file used for repositoryPath.
func (manager *Manager) LockPath(repositoryPath string) (string, error) {
	absolutePath, err := filepath.Abs(repositoryPath)
	if err != nil {
		return "", fmt.Errorf(repositoryPathResolutionTemplateConstant, err)
	}
	lockName := uuid.NewSHA1(uuid.NameSpaceURL, []byte(filepath.Clean(absolutePath))).String()
	return filepath.Join(manager.lockDirectory, lockName+lockFileExtensionConstant), nil
}

// TryAcquire takes the lock for repositoryPath without waiting. It returns
// an error wrapping ErrRepositoryLocked when another holder owns it.
func (manager *Manager) TryAcquire(repositoryPath string) (*Lock, error) {
	lockPath, err := manager.LockPath(repositoryPath)
	if err != nil {
		return nil, err
	}

	fileLock := flock.New(lockPath)
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf(lockAcquisitionTemplateConstant, err)
	}
	if !locked {
		return nil, fmt.Errorf(lockedRepositoryTemplateConstant, ErrRepositoryLocked, repositoryPath)
	}

	return &Lock{flock: fileLock, lockPath: lockPath, repositoryPath: repositoryPath}, nil
}

// Path returns the lock file path.
func (lock *Lock) Path() string {
	return lock.lockPath
}

// Release unlocks the lock. Releasing a nil lock is a no-op.
func (lock *Lock) Release() error {
	if lock == nil || lock.flock == nil {
		return nil
	}
	return lock.flock.Unlock()
}
