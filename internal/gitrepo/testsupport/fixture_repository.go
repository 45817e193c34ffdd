// Package testsupport builds throwaway repositories for tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// Fixture file paths, contents, and names seeded into every fixture repository.
const (
	TrackedFilePathConstant      = "subdir/testclass1.cpp"
	HeaderFilePathConstant       = "subdir/testclass1.h"
	ReadmeFilePathConstant       = "README.md"
	TrackedFileContentConstant   = "#include \"testclass1.h\"\n\nint TestClass1::value() const {\n    return 1;\n}\n"
	HeaderFileContentConstant    = "#pragma once\n\nclass TestClass1 {\npublic:\n    int value() const;\n};\n"
	ReadmeFileContentConstant    = "fixture repository\n"
	SecondCommitContentConstant  = "fixture repository\nsecond revision\n"
	DevelopBranchNameConstant    = "develop"
	ExistingTagNameConstant      = "v0.1.0"
	SignatureNameConstant        = "fixture"
	SignatureEmailConstant       = "fixture@example.com"
	initialCommitMessageConstant = "initial commit"
	secondCommitMessageConstant  = "second commit"
	directoryPermissionsConstant = 0o755
	filePermissionsConstant      = 0o644
)

// FixtureRepository is a go-git repository seeded with two commits, a
// develop branch, and one lightweight tag.
type FixtureRepository struct {
	Path            string
	Engine          *git.Repository
	InitialCommitID string
	HeadCommitID    string
}

// FixedSignature returns the signature used for fixture commits.
func FixedSignature() object.Signature {
	return object.Signature{
		Name:  SignatureNameConstant,
		Email: SignatureEmailConstant,
		When:  time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC),
	}
}

// NewFixtureRepository initializes the fixture repository in a temporary directory.
func NewFixtureRepository(testInstance testing.TB) *FixtureRepository {
	testInstance.Helper()
	return NewFixtureRepositoryAt(testInstance, testInstance.TempDir())
}

// NewFixtureRepositoryAt initializes the fixture repository at repositoryPath.
func NewFixtureRepositoryAt(testInstance testing.TB, repositoryPath string) *FixtureRepository {
	testInstance.Helper()

	engine, initError := git.PlainInit(repositoryPath, false)
	require.NoError(testInstance, initError)

	fixture := &FixtureRepository{Path: repositoryPath, Engine: engine}
	fixture.WriteFile(testInstance, TrackedFilePathConstant, TrackedFileContentConstant)
	fixture.WriteFile(testInstance, HeaderFilePathConstant, HeaderFileContentConstant)
	fixture.WriteFile(testInstance, ReadmeFilePathConstant, ReadmeFileContentConstant)
	fixture.InitialCommitID = fixture.CommitAll(testInstance, initialCommitMessageConstant)

	fixture.WriteFile(testInstance, ReadmeFilePathConstant, SecondCommitContentConstant)
	fixture.HeadCommitID = fixture.CommitAll(testInstance, secondCommitMessageConstant)

	fixture.CreateBranch(testInstance, DevelopBranchNameConstant, fixture.HeadCommitID)
	_, tagError := engine.CreateTag(ExistingTagNameConstant, plumbing.NewHash(fixture.InitialCommitID), nil)
	require.NoError(testInstance, tagError)

	return fixture
}

// WriteFile replaces the content of a file relative to the repository root.
func (fixture *FixtureRepository) WriteFile(testInstance testing.TB, relativePath string, content string) {
	testInstance.Helper()
	absolutePath := filepath.Join(fixture.Path, filepath.FromSlash(relativePath))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), directoryPermissionsConstant))
	require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), filePermissionsConstant))
}

// ReadFile returns the content of a file relative to the repository root.
func (fixture *FixtureRepository) ReadFile(testInstance testing.TB, relativePath string) string {
	testInstance.Helper()
	content, readError := os.ReadFile(filepath.Join(fixture.Path, filepath.FromSlash(relativePath)))
	require.NoError(testInstance, readError)
	return string(content)
}

// CommitAll stages every change and commits it with the fixed signature.
func (fixture *FixtureRepository) CommitAll(testInstance testing.TB, message string) string {
	testInstance.Helper()
	worktree, worktreeError := fixture.Engine.Worktree()
	require.NoError(testInstance, worktreeError)
	require.NoError(testInstance, worktree.AddWithOptions(&git.AddOptions{All: true}))

	signature := FixedSignature()
	commitHash, commitError := worktree.Commit(message, &git.CommitOptions{Author: &signature, Committer: &signature})
	require.NoError(testInstance, commitError)
	return commitHash.String()
}

// CreateBranch points refs/heads/<name> at commitID.
func (fixture *FixtureRepository) CreateBranch(testInstance testing.TB, name string, commitID string) {
	testInstance.Helper()
	reference := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), plumbing.NewHash(commitID))
	require.NoError(testInstance, fixture.Engine.Storer.SetReference(reference))
}

// HeadID resolves HEAD to a commit id.
func (fixture *FixtureRepository) HeadID(testInstance testing.TB) string {
	testInstance.Helper()
	headReference, headError := fixture.Engine.Head()
	require.NoError(testInstance, headError)
	return headReference.Hash().String()
}

// BlobID computes the object id of content stored as a blob.
func BlobID(content string) string {
	return plumbing.ComputeHash(plumbing.BlobObject, []byte(content)).String()
}
