package gitrepo

import (
	"sort"

	"github.com/go-git/go-git/v5"
)

// Status classifies every changed path in the working tree and index.
func (repository *Repository) Status() (Status, error) {
	_, worktree, worktreeError := repository.worktree(statusOperationNameConstant)
	if worktreeError != nil {
		return Status{}, worktreeError
	}

	engineStatus, statusError := worktree.Status()
	if statusError != nil {
		return Status{}, repository.fail(statusOperationNameConstant, statusError)
	}

	entries := make(StatusEntries, 0, len(engineStatus))
	for path, fileStatus := range engineStatus {
		entries = append(entries, StatusEntry{Path: path, Classification: classify(fileStatus)})
	}
	sort.Slice(entries, func(leftIndex int, rightIndex int) bool {
		return entries[leftIndex].Path < entries[rightIndex].Path
	})

	return Status{Entries: entries}, nil
}

func classify(fileStatus *git.FileStatus) StatusClassification {
	switch {
	case fileStatus.Worktree == git.Untracked:
		return StatusUntracked
	case fileStatus.Worktree != git.Unmodified:
		return StatusModified
	case fileStatus.Staging != git.Unmodified:
		return StatusStaged
	default:
		return StatusUnmodified
	}
}
