package scenario_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/repoverify/internal/gitrepo"
	"github.com/temirov/repoverify/internal/gitrepo/testsupport"
	"github.com/temirov/repoverify/internal/harnesserrors"
	"github.com/temirov/repoverify/internal/scenario"
)

const (
	testMissingBranchConstant   = "missing-branch"
	testMissingObjectIDConstant = "0000000000000000000000000000000000000001"
	testUnknownStepConstant     = scenario.StepName("unknownStep")
)

type recordingStepObserver struct {
	started   []scenario.StepName
	completed []scenario.StepName
	failed    []scenario.StepName
	failures  []error
	runIDs    map[string]struct{}
}

func newRecordingStepObserver() *recordingStepObserver {
	return &recordingStepObserver{runIDs: map[string]struct{}{}}
}

func (recorder *recordingStepObserver) StepStarted(event scenario.StepEvent) {
	recorder.started = append(recorder.started, event.StepName)
	recorder.runIDs[event.RunID] = struct{}{}
}

func (recorder *recordingStepObserver) StepCompleted(event scenario.StepEvent) {
	recorder.completed = append(recorder.completed, event.StepName)
}

func (recorder *recordingStepObserver) StepFailed(event scenario.StepEvent, failure error) {
	recorder.failed = append(recorder.failed, event.StepName)
	recorder.failures = append(recorder.failures, failure)
}

func fixtureConfiguration(fixture *testsupport.FixtureRepository) scenario.Configuration {
	configuration := scenario.DefaultConfiguration()
	configuration.Fixtures.DevelopBranch = testsupport.DevelopBranchNameConstant
	configuration.Fixtures.IndexObjectID = testsupport.BlobID(testsupport.TrackedFileContentConstant)
	configuration.Fixtures.TagCommitID = fixture.InitialCommitID
	configuration.Fixtures.TrackedFile = testsupport.TrackedFilePathConstant
	configuration.Fixtures.DiffFiles = []string{testsupport.TrackedFilePathConstant, testsupport.HeaderFilePathConstant}
	return configuration
}

func openRepository(testInstance *testing.T, fixture *testsupport.FixtureRepository) *gitrepo.Repository {
	testInstance.Helper()
	repository := gitrepo.NewRepository(fixture.Path)
	require.NoError(testInstance, repository.Open())
	testInstance.Cleanup(func() {
		require.NoError(testInstance, repository.Close())
	})
	return repository
}

func TestRunnerAutoSequenceLeavesRepositoryClean(testInstance *testing.T) {
	fixture := testsupport.NewFixtureRepository(testInstance)
	repository := openRepository(testInstance, fixture)

	stepObserver := newRecordingStepObserver()
	dumpBuffer := &bytes.Buffer{}
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	runner := scenario.NewRunner(fixtureConfiguration(fixture), zap.New(observedCore), stepObserver, dumpBuffer)

	require.NoError(testInstance, runner.Run(context.Background(), repository, scenario.AutoSequence()))

	require.Equal(testInstance, scenario.AutoSequence(), stepObserver.started)
	require.Equal(testInstance, scenario.AutoSequence(), stepObserver.completed)
	require.Empty(testInstance, stepObserver.failed)
	require.Len(testInstance, stepObserver.runIDs, 1)

	status, statusError := repository.Status()
	require.NoError(testInstance, statusError)
	require.True(testInstance, status.IsClean())
	require.Equal(testInstance, fixture.HeadCommitID, fixture.HeadID(testInstance))
	require.Equal(testInstance, testsupport.TrackedFileContentConstant, fixture.ReadFile(testInstance, testsupport.TrackedFilePathConstant))

	tags, tagsError := repository.Tags()
	require.NoError(testInstance, tagsError)
	require.Equal(testInstance, []string{testsupport.ExistingTagNameConstant}, gitrepo.TagNames(tags))

	dumpOutput := dumpBuffer.String()
	require.Contains(testInstance, dumpOutput, "Branch: develop  Canonical Name: refs/heads/develop  Friendly Name: develop  Type: local  Ref Type: direct")
	require.Contains(testInstance, dumpOutput, "Object ID: "+testsupport.BlobID(testsupport.TrackedFileContentConstant)+"  Mode: 0100644  Stage Level: normal  Path: subdir/testclass1.cpp")
	require.Contains(testInstance, dumpOutput, "old file: subdir/testclass1.h  new file: subdir/testclass1.h")
	require.Contains(testInstance, dumpOutput, "-};\n+}; \n")

	require.Equal(testInstance, 1, observedLogs.FilterMessage("scenario run completed").Len())
}

func TestRunnerFixtureFailures(testInstance *testing.T) {
	testCases := []struct {
		name              string
		configure         func(configuration *scenario.Configuration)
		steps             []scenario.StepName
		expectedMessage   string
		expectedFailed    scenario.StepName
		expectedCompleted []scenario.StepName
	}{
		{
			name: "missing_develop_branch",
			configure: func(configuration *scenario.Configuration) {
				configuration.Fixtures.DevelopBranch = testMissingBranchConstant
			},
			steps:           scenario.AutoSequence(),
			expectedMessage: "Failed to find local branch " + testMissingBranchConstant + " []",
			expectedFailed:  scenario.StepListBranches,
		},
		{
			name: "missing_index_object",
			configure: func(configuration *scenario.Configuration) {
				configuration.Fixtures.IndexObjectID = testMissingObjectIDConstant
			},
			steps:             scenario.AutoSequence(),
			expectedMessage:   "Failed to find object " + testMissingObjectIDConstant + " []",
			expectedFailed:    scenario.StepListIndexes,
			expectedCompleted: []scenario.StepName{scenario.StepListBranches},
		},
		{
			name: "missing_tag_commit",
			configure: func(configuration *scenario.Configuration) {
				configuration.Fixtures.TagCommitID = testMissingObjectIDConstant
			},
			steps:           []scenario.StepName{scenario.StepCreateAndDeleteLightweightTag},
			expectedMessage: "Failed to find commit " + testMissingObjectIDConstant + " [FindCommit operation failed: object not found]",
			expectedFailed:  scenario.StepCreateAndDeleteLightweightTag,
		},
		{
			name:            "unknown_step",
			configure:       func(configuration *scenario.Configuration) {},
			steps:           []scenario.StepName{testUnknownStepConstant},
			expectedMessage: "Unknown scenario step unknownStep []",
			expectedFailed:  testUnknownStepConstant,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fixture := testsupport.NewFixtureRepository(testInstance)
			repository := openRepository(testInstance, fixture)

			configuration := fixtureConfiguration(fixture)
			testCase.configure(&configuration)
			stepObserver := newRecordingStepObserver()
			runner := scenario.NewRunner(configuration, nil, stepObserver, nil)

			runError := runner.Run(context.Background(), repository, testCase.steps)
			require.Error(testInstance, runError)

			var harnessError harnesserrors.HarnessError
			require.ErrorAs(testInstance, runError, &harnessError)
			require.Equal(testInstance, testCase.expectedMessage, harnessError.Message())
			require.Equal(testInstance, []scenario.StepName{testCase.expectedFailed}, stepObserver.failed)
			require.Equal(testInstance, testCase.expectedCompleted, stepObserver.completed)
		})
	}
}

func TestRunnerStopsBeforeMutatingDirtyRepository(testInstance *testing.T) {
	fixture := testsupport.NewFixtureRepository(testInstance)
	repository := openRepository(testInstance, fixture)
	fixture.WriteFile(testInstance, testsupport.ReadmeFilePathConstant, "local edit\n")

	stepObserver := newRecordingStepObserver()
	runner := scenario.NewRunner(fixtureConfiguration(fixture), nil, stepObserver, nil)

	runError := runner.Run(context.Background(), repository, scenario.AutoSequence())
	require.Error(testInstance, runError)
	require.Contains(testInstance, runError.Error(), "Expecting no modified entries but found 1")
	require.Equal(testInstance, []scenario.StepName{scenario.StepListBranches, scenario.StepListIndexes}, stepObserver.completed)
	require.Equal(testInstance, []scenario.StepName{scenario.StepVerifyNothingModified}, stepObserver.failed)
	require.Equal(testInstance, "local edit\n", fixture.ReadFile(testInstance, testsupport.ReadmeFilePathConstant))
}

func TestRunnerUnstageAll(testInstance *testing.T) {
	fixture := testsupport.NewFixtureRepository(testInstance)
	repository := openRepository(testInstance, fixture)

	fixture.WriteFile(testInstance, testsupport.TrackedFilePathConstant, testsupport.TrackedFileContentConstant+"x")
	fixture.WriteFile(testInstance, testsupport.HeaderFilePathConstant, testsupport.HeaderFileContentConstant+"y")
	require.NoError(testInstance, repository.Stage(testsupport.TrackedFilePathConstant, testsupport.HeaderFilePathConstant))

	runner := scenario.NewRunner(fixtureConfiguration(fixture), nil, nil, nil)
	require.NoError(testInstance, runner.Run(context.Background(), repository, scenario.CleanupSequence()))

	status, statusError := repository.Status()
	require.NoError(testInstance, statusError)
	require.Empty(testInstance, status.Staged())
	require.Len(testInstance, status.Modified(), 2)

	require.NoError(testInstance, runner.Run(context.Background(), repository, scenario.CleanupSequence()))
}

func TestRunnerHonorsCancelledContext(testInstance *testing.T) {
	fixture := testsupport.NewFixtureRepository(testInstance)
	repository := openRepository(testInstance, fixture)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	stepObserver := newRecordingStepObserver()
	runner := scenario.NewRunner(fixtureConfiguration(fixture), nil, stepObserver, nil)
	runError := runner.Run(cancelledContext, repository, scenario.AutoSequence())
	require.ErrorIs(testInstance, runError, context.Canceled)
	require.Empty(testInstance, stepObserver.started)
}

func TestRunnerRequiresRepository(testInstance *testing.T) {
	runner := scenario.NewRunner(scenario.DefaultConfiguration(), nil, nil, nil)
	require.EqualError(testInstance, runner.Run(context.Background(), nil, scenario.AutoSequence()), "Repository handle not provided")
}

type retargetingTagRepository struct {
	*gitrepo.Repository
	objectID string
}

func (repository retargetingTagRepository) FindTag(name string) (gitrepo.Tag, error) {
	foundTag, findError := repository.Repository.FindTag(name)
	if findError != nil {
		return nil, findError
	}
	return gitrepo.LightweightTag{Name: foundTag.TagName(), ObjectID: repository.objectID}, nil
}

func TestRunnerRejectsTagWithDifferentTarget(testInstance *testing.T) {
	fixture := testsupport.NewFixtureRepository(testInstance)
	repository := retargetingTagRepository{Repository: openRepository(testInstance, fixture), objectID: testMissingObjectIDConstant}

	configuration := fixtureConfiguration(fixture)
	runner := scenario.NewRunner(configuration, nil, nil, nil)

	runError := runner.Run(context.Background(), repository, []scenario.StepName{scenario.StepCreateAndDeleteLightweightTag})
	require.Error(testInstance, runError)

	var harnessError harnesserrors.HarnessError
	require.ErrorAs(testInstance, runError, &harnessError)
	expectedMessage := fmt.Sprintf("Found tag %s has different oid %s, expected %s []",
		configuration.Sanitize().Fixtures.LightweightTag, testMissingObjectIDConstant, configuration.Fixtures.TagCommitID)
	require.Equal(testInstance, expectedMessage, harnessError.Message())
}
