package scenario

import "github.com/temirov/repoverify/internal/gitrepo"

// RepositoryHandle is the repository surface the scenario steps drive.
// gitrepo.Repository satisfies it.
type RepositoryHandle interface {
	RootPath() string
	ErrorText() string
	Status() (gitrepo.Status, error)
	Branches() (gitrepo.Branches, error)
	Index() (gitrepo.IndexEntries, error)
	Head() (gitrepo.Commit, error)
	FindCommit(objectID string) (gitrepo.Commit, error)
	Commit(message string, author gitrepo.Signature, committer gitrepo.Signature) (gitrepo.Commit, error)
	Reset(objectID string, mode gitrepo.ResetMode) error
	Stage(paths ...string) error
	Unstage(paths ...string) error
	Restore(paths ...string) error
	Tags() ([]gitrepo.Tag, error)
	CreateLightweightTag(name string, objectID string) (gitrepo.LightweightTag, error)
	CreateAnnotatedTag(name string, objectID string, tagger gitrepo.Signature, message string) (gitrepo.AnnotatedTag, error)
	FindTag(name string) (gitrepo.Tag, error)
	DeleteTag(name string) error
	DiffWorktreeToHead(options gitrepo.CompareOptions) ([]gitrepo.DiffDelta, error)
}
