package gitrepo_test

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repoverify/internal/gitrepo"
	"github.com/temirov/repoverify/internal/gitrepo/testsupport"
)

const testRemoteBranchReferenceConstant = "refs/remotes/origin/feature"

func TestBranchesListsLocalAndRemote(testInstance *testing.T) {
	fixture, repository := openFixture(testInstance)

	remoteReference := plumbing.NewHashReference(plumbing.ReferenceName(testRemoteBranchReferenceConstant), plumbing.NewHash(fixture.InitialCommitID))
	require.NoError(testInstance, fixture.Engine.Storer.SetReference(remoteReference))

	branches, branchesError := repository.Branches()
	require.NoError(testInstance, branchesError)

	developBranch, found := branches.FindLocalBranch(testsupport.DevelopBranchNameConstant)
	require.True(testInstance, found)
	require.Equal(testInstance, "refs/heads/develop", developBranch.CanonicalName)
	require.Equal(testInstance, gitrepo.ReferenceTypeDirect, developBranch.Reference.Type)
	require.Equal(testInstance, fixture.HeadCommitID, developBranch.Reference.Target)

	var remoteBranch gitrepo.Branch
	for _, branch := range branches {
		if branch.Type == gitrepo.BranchTypeRemote {
			remoteBranch = branch
		}
	}
	require.Equal(testInstance, "origin/feature", remoteBranch.Name)
	require.Equal(testInstance, testRemoteBranchReferenceConstant, remoteBranch.CanonicalName)

	_, remoteFoundAsLocal := branches.FindLocalBranch("origin/feature")
	require.False(testInstance, remoteFoundAsLocal)
}
