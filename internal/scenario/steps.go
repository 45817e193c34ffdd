package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/repoverify/internal/gitrepo"
	"github.com/temirov/repoverify/internal/harnesserrors"
)

const (
	branchNotFoundTemplateConstant         = "Failed to find local branch %s"
	indexObjectNotFoundTemplateConstant    = "Failed to find object %s"
	unexpectedModifiedTemplateConstant     = "Expecting no modified entries but found %d"
	unexpectedModificationsMessageConstant = "Did not find the expected modifications"
	stageFailedMessageConstant             = "Failed to stage file"
	stagedCountTemplateConstant            = "Staged file count %d != %d"
	unstageFailedMessageConstant           = "Failed to unstage file"
	restoreFailedMessageConstant           = "Failed to restore repository"
	notCleanTemplateConstant               = "Repository is not clean after %s"
	headCommitNotFoundMessageConstant      = "Failed to find head commit"
	commitFailedMessageConstant            = "Failed to commit"
	resetFailedMessageConstant             = "Failed to reset"
	headMismatchTemplateConstant           = "HEAD %s does not match recorded %s"
	commitNotFoundTemplateConstant         = "Failed to find commit %s"
	tagCreateFailedTemplateConstant        = "Failed to create tag %s"
	tagNotFoundAfterCreateTemplateConstant = "Failed to find tag %s after creation"
	tagUnexpectedKindTemplateConstant      = "Found tag %s is unexpected type %s"
	tagObjectMismatchTemplateConstant      = "Found tag %s has different oid %s, expected %s"
	tagDeleteFailedTemplateConstant        = "Failed to delete tag %s we just created"
	tagStillPresentTemplateConstant        = "Tag %s still found after deletion"
	tagsChangedTemplateConstant            = "Tags changed from [%s] to [%s]"
	diffFailedMessageConstant              = "Failed to compute diffs"
	deltaMissingPathsMessageConstant       = "Delta is missing file paths"
	deltaWithoutHunksTemplateConstant      = "Delta for %s has no hunks"
	statusFailedMessageConstant            = "Failed to read status"
	branchesFailedMessageConstant          = "Failed to list branches"
	indexFailedMessageConstant             = "Failed to read index"
	tagsFailedMessageConstant              = "Failed to list tags"
	fileNotFoundTemplateConstant           = "File %s not found"
	fileAppendFailedTemplateConstant       = "Failed to append to %s"
	tagListSeparatorConstant               = ", "
	appendedContentConstant                = " "
	expectedStagedCountConstant            = 1
)

func (runner *Runner) listBranches(repository RepositoryHandle) error {
	branches, branchesError := repository.Branches()
	if branchesError != nil {
		return harnesserrors.WithCause(branchesFailedMessageConstant, branchesError)
	}

	for _, branch := range branches {
		runner.dumpBranch(branch)
	}

	developBranch := runner.configuration.Fixtures.DevelopBranch
	if _, found := branches.FindLocalBranch(developBranch); !found {
		return harnesserrors.Newf(branchNotFoundTemplateConstant, developBranch)
	}
	return nil
}

func (runner *Runner) listIndexes(repository RepositoryHandle) error {
	entries, indexError := repository.Index()
	if indexError != nil {
		return harnesserrors.WithCause(indexFailedMessageConstant, indexError)
	}

	for _, entry := range entries {
		runner.dumpIndexEntry(entry)
	}

	indexObjectID := runner.configuration.Fixtures.IndexObjectID
	if _, found := entries.FindByObjectID(indexObjectID); !found {
		return harnesserrors.Newf(indexObjectNotFoundTemplateConstant, indexObjectID)
	}
	return nil
}

func (runner *Runner) verifyNothingModified(repository RepositoryHandle) error {
	status, statusError := repository.Status()
	if statusError != nil {
		return harnesserrors.WithCause(statusFailedMessageConstant, statusError)
	}
	if modifiedCount := len(status.Modified()); modifiedCount > 0 {
		return harnesserrors.Newf(unexpectedModifiedTemplateConstant, modifiedCount)
	}
	return nil
}

func (runner *Runner) stageAndUnstage(repository RepositoryHandle) error {
	if verifyError := runner.verifyNothingModified(repository); verifyError != nil {
		return verifyError
	}

	trackedFile := runner.configuration.Fixtures.TrackedFile
	modifiedPaths, modifyError := runner.modifyAndStage(repository, trackedFile)
	if modifyError != nil {
		return modifyError
	}

	if unstageError := repository.Unstage(modifiedPaths...); unstageError != nil {
		return harnesserrors.WithCause(unstageFailedMessageConstant, unstageError)
	}
	if restoreError := repository.Restore(trackedFile); restoreError != nil {
		return harnesserrors.WithCause(restoreFailedMessageConstant, restoreError)
	}
	return runner.requireClean(repository, StepStageAndUnstage)
}

func (runner *Runner) unstageAll(repository RepositoryHandle) error {
	status, statusError := repository.Status()
	if statusError != nil {
		return harnesserrors.WithCause(statusFailedMessageConstant, statusError)
	}
	if len(status.Staged()) == 0 {
		return nil
	}
	if unstageError := repository.Unstage(); unstageError != nil {
		return harnesserrors.WithCause(unstageFailedMessageConstant, unstageError)
	}
	return nil
}

func (runner *Runner) commitAndResetHard(repository RepositoryHandle) error {
	if verifyError := runner.verifyNothingModified(repository); verifyError != nil {
		return verifyError
	}

	headCommit, headError := runner.recordHead(repository)
	if headError != nil {
		return headError
	}

	if _, modifyError := runner.modifyAndStage(repository, runner.configuration.Fixtures.TrackedFile); modifyError != nil {
		return modifyError
	}

	signature := runner.configuration.HarnessSignature()
	createdCommit, commitError := repository.Commit(runner.configuration.Fixtures.CommitMessage, signature, signature)
	if commitError != nil {
		return harnesserrors.WithCause(commitFailedMessageConstant, commitError)
	}
	if createdCommit.IsNull() {
		return harnesserrors.New(commitFailedMessageConstant)
	}

	return runner.resetHardTo(repository, headCommit, StepCommitAndResetHard)
}

func (runner *Runner) createAndDeleteLightweightTag(repository RepositoryHandle) error {
	tagName := runner.configuration.Fixtures.LightweightTag
	return runner.createAndDeleteTag(repository, tagName, gitrepo.TagKindLightweight, func(commit gitrepo.Commit) (gitrepo.Tag, error) {
		return repository.CreateLightweightTag(tagName, commit.ObjectID)
	})
}

func (runner *Runner) createAndDeleteAnnotatedTag(repository RepositoryHandle) error {
	tagName := runner.configuration.Fixtures.AnnotatedTag
	return runner.createAndDeleteTag(repository, tagName, gitrepo.TagKindAnnotated, func(commit gitrepo.Commit) (gitrepo.Tag, error) {
		return repository.CreateAnnotatedTag(tagName, commit.ObjectID, runner.configuration.HarnessSignature(), runner.configuration.Fixtures.AnnotatedTagMessage)
	})
}

func (runner *Runner) createAndDeleteTag(repository RepositoryHandle, tagName string, expectedKind gitrepo.TagKind, create func(commit gitrepo.Commit) (gitrepo.Tag, error)) error {
	tagCommitID := runner.configuration.Fixtures.TagCommitID
	commit, findError := repository.FindCommit(tagCommitID)
	if findError != nil || commit.IsNull() {
		return harnesserrors.WithCause(fmt.Sprintf(commitNotFoundTemplateConstant, tagCommitID), findError)
	}

	otherTagsBefore, listError := runner.tagNamesExcept(repository, tagName)
	if listError != nil {
		return listError
	}

	createdTag, createError := create(commit)
	if createError != nil {
		return harnesserrors.WithCause(fmt.Sprintf(tagCreateFailedTemplateConstant, tagName), createError)
	}

	foundTag, lookupError := repository.FindTag(tagName)
	if lookupError != nil {
		return harnesserrors.WithCause(fmt.Sprintf(tagNotFoundAfterCreateTemplateConstant, tagName), lookupError)
	}

	if foundTag.Kind() != expectedKind {
		return harnesserrors.Newf(tagUnexpectedKindTemplateConstant, tagName, foundTag.Kind())
	}
	foundObjectID := foundTag.TargetObjectID()
	if foundObjectID != createdTag.TargetObjectID() || foundObjectID != commit.ObjectID {
		return harnesserrors.Newf(tagObjectMismatchTemplateConstant, tagName, foundObjectID, commit.ObjectID)
	}

	if deleteError := repository.DeleteTag(foundTag.TagName()); deleteError != nil {
		return harnesserrors.WithCause(fmt.Sprintf(tagDeleteFailedTemplateConstant, tagName), deleteError)
	}
	if _, stillPresentError := repository.FindTag(tagName); stillPresentError == nil {
		return harnesserrors.Newf(tagStillPresentTemplateConstant, tagName)
	}

	otherTagsAfter, listAfterError := runner.tagNamesExcept(repository, tagName)
	if listAfterError != nil {
		return listAfterError
	}
	if strings.Join(otherTagsBefore, tagListSeparatorConstant) != strings.Join(otherTagsAfter, tagListSeparatorConstant) {
		return harnesserrors.Newf(tagsChangedTemplateConstant,
			strings.Join(otherTagsBefore, tagListSeparatorConstant),
			strings.Join(otherTagsAfter, tagListSeparatorConstant))
	}
	return nil
}

func (runner *Runner) createAndDumpDiffs(repository RepositoryHandle) error {
	if verifyError := runner.verifyNothingModified(repository); verifyError != nil {
		return verifyError
	}

	headCommit, headError := runner.recordHead(repository)
	if headError != nil {
		return headError
	}

	diffFiles := runner.configuration.Fixtures.DiffFiles
	for _, diffFile := range diffFiles {
		if modifyError := runner.modifyFile(repository, diffFile); modifyError != nil {
			return modifyError
		}
	}

	status, statusError := repository.Status()
	if statusError != nil {
		return harnesserrors.WithCause(statusFailedMessageConstant, statusError)
	}
	if len(status.Modified()) != len(diffFiles) {
		return harnesserrors.New(unexpectedModificationsMessageConstant)
	}

	deltas, diffError := repository.DiffWorktreeToHead(gitrepo.CompareOptions{Similarity: gitrepo.SimilarityNone})
	if diffError != nil {
		return harnesserrors.WithCause(diffFailedMessageConstant, diffError)
	}
	for _, delta := range deltas {
		runner.dumpDelta(delta)
		if len(delta.OldFile.Path) == 0 || len(delta.NewFile.Path) == 0 {
			return harnesserrors.New(deltaMissingPathsMessageConstant)
		}
		if !delta.Binary && len(delta.Hunks) == 0 {
			return harnesserrors.Newf(deltaWithoutHunksTemplateConstant, delta.NewFile.Path)
		}
	}

	return runner.resetHardTo(repository, headCommit, StepCreateAndDumpDiffs)
}

func (runner *Runner) modifyAndStage(repository RepositoryHandle, relativePath string) ([]string, error) {
	if modifyError := runner.modifyFile(repository, relativePath); modifyError != nil {
		return nil, modifyError
	}

	status, statusError := repository.Status()
	if statusError != nil {
		return nil, harnesserrors.WithCause(statusFailedMessageConstant, statusError)
	}
	modified := status.Modified()
	if len(modified) != 1 || modified[0].Path != relativePath {
		return nil, harnesserrors.New(unexpectedModificationsMessageConstant)
	}

	modifiedPaths := modified.Paths()
	if stageError := repository.Stage(modifiedPaths...); stageError != nil {
		return nil, harnesserrors.WithCause(stageFailedMessageConstant, stageError)
	}

	stagedStatus, stagedError := repository.Status()
	if stagedError != nil {
		return nil, harnesserrors.WithCause(statusFailedMessageConstant, stagedError)
	}
	if stagedCount := len(stagedStatus.Staged()); stagedCount != expectedStagedCountConstant {
		return nil, harnesserrors.Newf(stagedCountTemplateConstant, stagedCount, expectedStagedCountConstant)
	}
	return modifiedPaths, nil
}

func (runner *Runner) modifyFile(repository RepositoryHandle, relativePath string) error {
	absolutePath := filepath.Join(repository.RootPath(), filepath.FromSlash(relativePath))
	if _, statError := os.Stat(absolutePath); statError != nil {
		return harnesserrors.WithCause(fmt.Sprintf(fileNotFoundTemplateConstant, absolutePath), statError)
	}

	file, openError := os.OpenFile(absolutePath, os.O_APPEND|os.O_WRONLY, 0)
	if openError != nil {
		return harnesserrors.WithCause(fmt.Sprintf(fileAppendFailedTemplateConstant, absolutePath), openError)
	}
	if _, writeError := file.WriteString(appendedContentConstant); writeError != nil {
		file.Close()
		return harnesserrors.WithCause(fmt.Sprintf(fileAppendFailedTemplateConstant, absolutePath), writeError)
	}
	if closeError := file.Close(); closeError != nil {
		return harnesserrors.WithCause(fmt.Sprintf(fileAppendFailedTemplateConstant, absolutePath), closeError)
	}
	return nil
}

func (runner *Runner) recordHead(repository RepositoryHandle) (gitrepo.Commit, error) {
	head, headError := repository.Head()
	if headError != nil {
		return gitrepo.Commit{}, harnesserrors.WithCause(headCommitNotFoundMessageConstant, headError)
	}
	headCommit, findError := repository.FindCommit(head.ObjectID)
	if findError != nil || headCommit.IsNull() {
		return gitrepo.Commit{}, harnesserrors.WithCause(headCommitNotFoundMessageConstant, findError)
	}
	return headCommit, nil
}

func (runner *Runner) resetHardTo(repository RepositoryHandle, recordedHead gitrepo.Commit, stepName StepName) error {
	if resetError := repository.Reset(recordedHead.ObjectID, gitrepo.ResetHard); resetError != nil {
		return harnesserrors.WithCause(resetFailedMessageConstant, resetError)
	}

	currentHead, headError := repository.Head()
	if headError != nil {
		return harnesserrors.WithCause(headCommitNotFoundMessageConstant, headError)
	}
	if currentHead.ObjectID != recordedHead.ObjectID {
		return harnesserrors.Newf(headMismatchTemplateConstant, currentHead.ObjectID, recordedHead.ObjectID)
	}
	return runner.requireClean(repository, stepName)
}

func (runner *Runner) requireClean(repository RepositoryHandle, stepName StepName) error {
	status, statusError := repository.Status()
	if statusError != nil {
		return harnesserrors.WithCause(statusFailedMessageConstant, statusError)
	}
	if !status.IsClean() {
		return harnesserrors.Newf(notCleanTemplateConstant, stepName)
	}
	return nil
}

func (runner *Runner) tagNamesExcept(repository RepositoryHandle, excludedName string) ([]string, error) {
	tags, tagsError := repository.Tags()
	if tagsError != nil {
		return nil, harnesserrors.WithCause(tagsFailedMessageConstant, tagsError)
	}
	names := []string{}
	for _, tagName := range gitrepo.TagNames(tags) {
		if tagName != excludedName {
			names = append(names, tagName)
		}
	}
	return names, nil
}
