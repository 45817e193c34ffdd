package gitrepo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	invalidObjectIDTemplateConstant  = "invalid object id %q"
	unknownResetModeTemplateConstant = "unknown reset mode %q"
)

// Head returns the commit HEAD points to.
func (repository *Repository) Head() (Commit, error) {
	engine, engineError := repository.engine(headOperationNameConstant)
	if engineError != nil {
		return Commit{}, engineError
	}

	headReference, headError := engine.Head()
	if headError != nil {
		return Commit{}, repository.fail(headOperationNameConstant, headError)
	}

	headCommit, commitError := engine.CommitObject(headReference.Hash())
	if commitError != nil {
		return Commit{}, repository.fail(headOperationNameConstant, commitError)
	}
	return newCommit(headCommit), nil
}

// FindCommit looks up a commit by id. A missing or malformed id yields the
// null commit and records the failure in ErrorText.
func (repository *Repository) FindCommit(objectID string) (Commit, error) {
	engine, engineError := repository.engine(findCommitOperationNameConstant)
	if engineError != nil {
		return Commit{}, engineError
	}

	hash, hashError := parseObjectID(objectID)
	if hashError != nil {
		repository.fail(findCommitOperationNameConstant, hashError)
		return Commit{}, nil
	}

	foundCommit, commitError := engine.CommitObject(hash)
	if commitError != nil {
		if errors.Is(commitError, plumbing.ErrObjectNotFound) {
			repository.fail(findCommitOperationNameConstant, commitError)
			return Commit{}, nil
		}
		return Commit{}, repository.fail(findCommitOperationNameConstant, commitError)
	}
	return newCommit(foundCommit), nil
}

// Commit records the staged changes as a new commit on HEAD.
func (repository *Repository) Commit(message string, author Signature, committer Signature) (Commit, error) {
	engine, worktree, worktreeError := repository.worktree(commitOperationNameConstant)
	if worktreeError != nil {
		return Commit{}, worktreeError
	}

	authorSignature := engineSignature(author)
	committerSignature := engineSignature(committer)
	commitHash, commitError := worktree.Commit(message, &git.CommitOptions{
		Author:    &authorSignature,
		Committer: &committerSignature,
	})
	if commitError != nil {
		return Commit{}, repository.fail(commitOperationNameConstant, commitError)
	}

	createdCommit, lookupError := engine.CommitObject(commitHash)
	if lookupError != nil {
		return Commit{}, repository.fail(commitOperationNameConstant, lookupError)
	}
	return newCommit(createdCommit), nil
}

// Reset moves HEAD to objectID. Mixed resets also rewrite the index and hard
// resets rewrite both the index and the working tree.
func (repository *Repository) Reset(objectID string, mode ResetMode) error {
	_, worktree, worktreeError := repository.worktree(resetOperationNameConstant)
	if worktreeError != nil {
		return worktreeError
	}

	hash, hashError := parseObjectID(objectID)
	if hashError != nil {
		return repository.fail(resetOperationNameConstant, hashError)
	}

	var engineMode git.ResetMode
	switch mode {
	case ResetSoft:
		engineMode = git.SoftReset
	case ResetMixed:
		engineMode = git.MixedReset
	case ResetHard:
		engineMode = git.HardReset
	default:
		return repository.fail(resetOperationNameConstant, fmt.Errorf(unknownResetModeTemplateConstant, mode))
	}

	if resetError := worktree.Reset(&git.ResetOptions{Commit: hash, Mode: engineMode}); resetError != nil {
		return repository.fail(resetOperationNameConstant, resetError)
	}
	return nil
}

func parseObjectID(objectID string) (plumbing.Hash, error) {
	if !plumbing.IsHash(objectID) {
		return plumbing.ZeroHash, fmt.Errorf(invalidObjectIDTemplateConstant, objectID)
	}
	hash := plumbing.NewHash(objectID)
	if hash.IsZero() {
		return plumbing.ZeroHash, fmt.Errorf(invalidObjectIDTemplateConstant, objectID)
	}
	return hash, nil
}

func newCommit(engineCommit *object.Commit) Commit {
	parents := make([]string, 0, len(engineCommit.ParentHashes))
	for _, parentHash := range engineCommit.ParentHashes {
		parents = append(parents, parentHash.String())
	}
	return Commit{
		ObjectID:  engineCommit.Hash.String(),
		Parents:   parents,
		Author:    harnessSignature(engineCommit.Author),
		Committer: harnessSignature(engineCommit.Committer),
		Message:   engineCommit.Message,
	}
}

func engineSignature(signature Signature) object.Signature {
	return object.Signature{Name: signature.Name, Email: signature.Email, When: signature.When}
}

func harnessSignature(signature object.Signature) Signature {
	return Signature{Name: signature.Name, Email: signature.Email, When: signature.When}
}
