package gitrepo

import (
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
)

// Branches lists local and remote-tracking branches sorted by canonical name.
func (repository *Repository) Branches() (Branches, error) {
	engine, engineError := repository.engine(branchesOperationNameConstant)
	if engineError != nil {
		return nil, engineError
	}

	references, referencesError := engine.References()
	if referencesError != nil {
		return nil, repository.fail(branchesOperationNameConstant, referencesError)
	}
	defer references.Close()

	branches := Branches{}
	iterationError := references.ForEach(func(reference *plumbing.Reference) error {
		referenceName := reference.Name()
		var branchType BranchType
		switch {
		case referenceName.IsBranch():
			branchType = BranchTypeLocal
		case referenceName.IsRemote():
			branchType = BranchTypeRemote
		default:
			return nil
		}
		branches = append(branches, newBranch(reference, branchType))
		return nil
	})
	if iterationError != nil {
		return nil, repository.fail(branchesOperationNameConstant, iterationError)
	}

	sort.Slice(branches, func(leftIndex int, rightIndex int) bool {
		return branches[leftIndex].CanonicalName < branches[rightIndex].CanonicalName
	})
	return branches, nil
}

func newBranch(reference *plumbing.Reference, branchType BranchType) Branch {
	referenceName := reference.Name()
	shortName := referenceName.Short()

	branchReference := Reference{Name: referenceName.String()}
	if reference.Type() == plumbing.SymbolicReference {
		branchReference.Type = ReferenceTypeSymbolic
		branchReference.Target = reference.Target().String()
	} else {
		branchReference.Type = ReferenceTypeDirect
		branchReference.Target = reference.Hash().String()
	}

	return Branch{
		Name:          shortName,
		CanonicalName: referenceName.String(),
		FriendlyName:  shortName,
		Type:          branchType,
		Reference:     branchReference,
	}
}
