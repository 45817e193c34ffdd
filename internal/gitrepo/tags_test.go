package gitrepo_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repoverify/internal/gitrepo"
	"github.com/temirov/repoverify/internal/gitrepo/testsupport"
)

const (
	testLightweightTagNameConstant = "test-tag"
	testAnnotatedTagNameConstant   = "test-annotated-tag"
	testAnnotatedMessageConstant   = "This is my annotated tag"
)

func TestTagLifecycle(testInstance *testing.T) {
	testCases := []struct {
		name         string
		tagName      string
		expectedKind gitrepo.TagKind
		create       func(repository *gitrepo.Repository, objectID string) (gitrepo.Tag, error)
	}{
		{
			name:         "lightweight",
			tagName:      testLightweightTagNameConstant,
			expectedKind: gitrepo.TagKindLightweight,
			create: func(repository *gitrepo.Repository, objectID string) (gitrepo.Tag, error) {
				return repository.CreateLightweightTag(testLightweightTagNameConstant, objectID)
			},
		},
		{
			name:         "annotated",
			tagName:      testAnnotatedTagNameConstant,
			expectedKind: gitrepo.TagKindAnnotated,
			create: func(repository *gitrepo.Repository, objectID string) (gitrepo.Tag, error) {
				return repository.CreateAnnotatedTag(testAnnotatedTagNameConstant, objectID, testSignature(), testAnnotatedMessageConstant)
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fixture, repository := openFixture(testInstance)

			tagsBefore, tagsBeforeError := repository.Tags()
			require.NoError(testInstance, tagsBeforeError)
			require.Equal(testInstance, []string{testsupport.ExistingTagNameConstant}, gitrepo.TagNames(tagsBefore))

			createdTag, createError := testCase.create(repository, fixture.InitialCommitID)
			require.NoError(testInstance, createError)
			require.Equal(testInstance, fixture.InitialCommitID, createdTag.TargetObjectID())

			foundTag, findError := repository.FindTag(testCase.tagName)
			require.NoError(testInstance, findError)
			require.Equal(testInstance, testCase.expectedKind, foundTag.Kind())
			require.Equal(testInstance, fixture.InitialCommitID, foundTag.TargetObjectID())

			if annotatedTag, isAnnotated := foundTag.(gitrepo.AnnotatedTag); isAnnotated {
				require.Equal(testInstance, testAnnotatedMessageConstant, strings.TrimSpace(annotatedTag.Message))
				require.Equal(testInstance, testSignature().Name, annotatedTag.Tagger.Name)
				require.NotEqual(testInstance, annotatedTag.ObjectID, annotatedTag.TagObjectID)
			}

			require.NoError(testInstance, repository.DeleteTag(testCase.tagName))
			_, missingError := repository.FindTag(testCase.tagName)
			require.ErrorIs(testInstance, missingError, gitrepo.ErrTagNotFound)
			require.Contains(testInstance, repository.ErrorText(), testCase.tagName)

			tagsAfter, tagsAfterError := repository.Tags()
			require.NoError(testInstance, tagsAfterError)
			require.Equal(testInstance, gitrepo.TagNames(tagsBefore), gitrepo.TagNames(tagsAfter))
		})
	}
}

func TestTagOperationsValidateInput(testInstance *testing.T) {
	fixture, repository := openFixture(testInstance)

	_, emptyNameError := repository.CreateLightweightTag("", fixture.HeadCommitID)
	require.ErrorIs(testInstance, emptyNameError, gitrepo.ErrTagNameRequired)

	_, badTargetError := repository.CreateLightweightTag(testLightweightTagNameConstant, testMalformedObjectIDConstant)
	require.Error(testInstance, badTargetError)

	_, duplicateError := repository.CreateLightweightTag(testsupport.ExistingTagNameConstant, fixture.HeadCommitID)
	require.Error(testInstance, duplicateError)
	require.NotEmpty(testInstance, repository.ErrorText())

	require.ErrorIs(testInstance, repository.DeleteTag(testLightweightTagNameConstant), gitrepo.ErrTagNotFound)
}
