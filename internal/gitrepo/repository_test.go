package gitrepo_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repoverify/internal/gitrepo"
	"github.com/temirov/repoverify/internal/gitrepo/testsupport"
)

const (
	testMissingDirectoryNameConstant = "missing"
	testOpenSuccessCaseNameConstant  = "open_root"
	testOpenNestedCaseNameConstant   = "open_nested_directory"
	testOpenMissingCaseNameConstant  = "open_missing_directory"
	testOpenEmptyCaseNameConstant    = "open_empty_path"
)

func openFixture(testInstance *testing.T) (*testsupport.FixtureRepository, *gitrepo.Repository) {
	testInstance.Helper()
	fixture := testsupport.NewFixtureRepository(testInstance)
	repository := gitrepo.NewRepository(fixture.Path)
	require.NoError(testInstance, repository.Open())
	testInstance.Cleanup(func() {
		require.NoError(testInstance, repository.Close())
	})
	return fixture, repository
}

func TestRepositoryOpen(testInstance *testing.T) {
	fixture := testsupport.NewFixtureRepository(testInstance)

	testCases := []struct {
		name          string
		path          string
		expectedState gitrepo.RepositoryState
		expectError   bool
	}{
		{name: testOpenSuccessCaseNameConstant, path: fixture.Path, expectedState: gitrepo.RepositoryStateOpen},
		{name: testOpenNestedCaseNameConstant, path: filepath.Join(fixture.Path, "subdir"), expectedState: gitrepo.RepositoryStateOpen},
		{name: testOpenMissingCaseNameConstant, path: filepath.Join(testInstance.TempDir(), testMissingDirectoryNameConstant), expectedState: gitrepo.RepositoryStateFaulted, expectError: true},
		{name: testOpenEmptyCaseNameConstant, path: " ", expectedState: gitrepo.RepositoryStateFaulted, expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			repository := gitrepo.NewRepository(testCase.path)
			require.Equal(testInstance, gitrepo.RepositoryStateUnopened, repository.State())

			openError := repository.Open()
			require.Equal(testInstance, testCase.expectedState, repository.State())
			if testCase.expectError {
				require.Error(testInstance, openError)
				require.NotEmpty(testInstance, repository.ErrorText())
				return
			}
			require.NoError(testInstance, openError)
			require.Empty(testInstance, repository.ErrorText())
		})
	}
}

func TestRepositoryRejectsOperationsWhenNotOpen(testInstance *testing.T) {
	fixture := testsupport.NewFixtureRepository(testInstance)
	repository := gitrepo.NewRepository(fixture.Path)

	_, statusError := repository.Status()
	require.ErrorIs(testInstance, statusError, gitrepo.ErrRepositoryNotOpen)
	require.Contains(testInstance, repository.ErrorText(), "repository is not open")

	require.NoError(testInstance, repository.Open())
	require.NoError(testInstance, repository.Close())
	require.Equal(testInstance, gitrepo.RepositoryStateUnopened, repository.State())

	_, branchesError := repository.Branches()
	require.ErrorIs(testInstance, branchesError, gitrepo.ErrRepositoryNotOpen)

	faultedRepository := gitrepo.NewRepository(filepath.Join(testInstance.TempDir(), testMissingDirectoryNameConstant))
	require.Error(testInstance, faultedRepository.Open())
	_, headError := faultedRepository.Head()
	require.ErrorIs(testInstance, headError, gitrepo.ErrRepositoryFaulted)
}

func TestIsRepository(testInstance *testing.T) {
	fixture := testsupport.NewFixtureRepository(testInstance)
	require.True(testInstance, gitrepo.IsRepository(fixture.Path))
	require.False(testInstance, gitrepo.IsRepository(testInstance.TempDir()))
}

func TestOperationErrorUnwrapsCause(testInstance *testing.T) {
	operationError := gitrepo.OperationError{Operation: gitrepo.OperationName("Status"), Cause: gitrepo.ErrRepositoryNotOpen}
	require.Equal(testInstance, "Status operation failed: repository is not open", operationError.Error())
	require.ErrorIs(testInstance, operationError, gitrepo.ErrRepositoryNotOpen)
	require.Equal(testInstance, "Status operation failed", gitrepo.OperationError{Operation: gitrepo.OperationName("Status")}.Error())
}
