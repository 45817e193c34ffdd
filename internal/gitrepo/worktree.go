package gitrepo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
)

const (
	allPathsPatternConstant             = "*"
	pathNotInIndexTemplateConstant      = "path %q is not in the index"
	unsupportedFileModeTemplateConstant = "path %q has unsupported mode %s"
)

// Stage adds the working tree content of paths to the index.
func (repository *Repository) Stage(paths ...string) error {
	_, worktree, worktreeError := repository.worktree(stageOperationNameConstant)
	if worktreeError != nil {
		return worktreeError
	}

	for _, path := range paths {
		if _, addError := worktree.Add(filepath.ToSlash(path)); addError != nil {
			return repository.fail(stageOperationNameConstant, addError)
		}
	}
	return nil
}

// Unstage resets index entries for paths back to HEAD. Calling it without
// paths, or with "*", unstages everything.
func (repository *Repository) Unstage(paths ...string) error {
	_, worktree, worktreeError := repository.worktree(unstageOperationNameConstant)
	if worktreeError != nil {
		return worktreeError
	}

	resetOptions := &git.ResetOptions{Mode: git.MixedReset}
	if !coversAllPaths(paths) {
		resetOptions.Files = normalizePaths(paths)
	}

	if resetError := worktree.Reset(resetOptions); resetError != nil {
		return repository.fail(unstageOperationNameConstant, resetError)
	}
	return nil
}

// Restore overwrites the working tree copy of paths with their index content.
func (repository *Repository) Restore(paths ...string) error {
	engine, worktree, worktreeError := repository.worktree(restoreOperationNameConstant)
	if worktreeError != nil {
		return worktreeError
	}

	engineIndex, indexError := engine.Storer.Index()
	if indexError != nil {
		return repository.fail(restoreOperationNameConstant, indexError)
	}

	for _, path := range normalizePaths(paths) {
		indexEntry, entryError := engineIndex.Entry(path)
		if entryError != nil {
			if errors.Is(entryError, index.ErrEntryNotFound) {
				return repository.fail(restoreOperationNameConstant, fmt.Errorf(pathNotInIndexTemplateConstant, path))
			}
			return repository.fail(restoreOperationNameConstant, entryError)
		}
		if restoreError := restoreEntry(engine, worktree, indexEntry); restoreError != nil {
			return repository.fail(restoreOperationNameConstant, restoreError)
		}
	}
	return nil
}

func restoreEntry(engine *git.Repository, worktree *git.Worktree, indexEntry *index.Entry) error {
	if indexEntry.Mode != filemode.Regular && indexEntry.Mode != filemode.Executable {
		return fmt.Errorf(unsupportedFileModeTemplateConstant, indexEntry.Name, indexEntry.Mode)
	}

	blob, blobError := engine.BlobObject(indexEntry.Hash)
	if blobError != nil {
		return blobError
	}
	blobReader, readerError := blob.Reader()
	if readerError != nil {
		return readerError
	}
	defer blobReader.Close()

	fileMode, modeError := indexEntry.Mode.ToOSFileMode()
	if modeError != nil {
		return modeError
	}

	targetFile, openError := worktree.Filesystem.OpenFile(indexEntry.Name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if openError != nil {
		return openError
	}
	if _, copyError := io.Copy(targetFile, blobReader); copyError != nil {
		targetFile.Close()
		return copyError
	}
	return targetFile.Close()
}

func coversAllPaths(paths []string) bool {
	if len(paths) == 0 {
		return true
	}
	for _, path := range paths {
		if path == allPathsPatternConstant {
			return true
		}
	}
	return false
}

func normalizePaths(paths []string) []string {
	normalized := make([]string, 0, len(paths))
	for _, path := range paths {
		normalized = append(normalized, filepath.ToSlash(filepath.Clean(path)))
	}
	return normalized
}
