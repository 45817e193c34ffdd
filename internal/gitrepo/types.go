package gitrepo

import (
	"sort"
	"time"
)

// StatusClassification enumerates the mutually exclusive states of a path.
type StatusClassification string

// Supported status classifications.
const (
	StatusUnmodified StatusClassification = StatusClassification("unmodified")
	StatusModified   StatusClassification = StatusClassification("modified")
	StatusStaged     StatusClassification = StatusClassification("staged")
	StatusUntracked  StatusClassification = StatusClassification("untracked")
)

// StatusEntry reports the classification of a single path.
type StatusEntry struct {
	Path           string
	Classification StatusClassification
}

// StatusEntries is an ordered list of status entries.
type StatusEntries []StatusEntry

// Paths returns the entry paths in order.
func (entries StatusEntries) Paths() []string {
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.Path)
	}
	return paths
}

// Status is a snapshot of the working tree and index relative to HEAD.
type Status struct {
	Entries StatusEntries
}

// Modified returns entries whose working tree content differs from the index.
func (status Status) Modified() StatusEntries {
	return status.filter(StatusModified)
}

// Staged returns entries whose index content differs from HEAD.
func (status Status) Staged() StatusEntries {
	return status.filter(StatusStaged)
}

// Untracked returns entries unknown to the index.
func (status Status) Untracked() StatusEntries {
	return status.filter(StatusUntracked)
}

// IsClean reports whether no entry is modified or staged.
func (status Status) IsClean() bool {
	return len(status.Modified()) == 0 && len(status.Staged()) == 0
}

func (status Status) filter(classification StatusClassification) StatusEntries {
	filtered := StatusEntries{}
	for _, entry := range status.Entries {
		if entry.Classification == classification {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// StageLevel identifies the merge stage of an index entry.
type StageLevel int

// Supported stage levels.
const (
	StageLevelNormal   StageLevel = 0
	StageLevelAncestor StageLevel = 1
	StageLevelOurs     StageLevel = 2
	StageLevelTheirs   StageLevel = 3
)

// String names the stage level.
func (level StageLevel) String() string {
	switch level {
	case StageLevelNormal:
		return "normal"
	case StageLevelAncestor:
		return "ancestor"
	case StageLevelOurs:
		return "ours"
	case StageLevelTheirs:
		return "theirs"
	default:
		return "unknown"
	}
}

// IndexEntry is a snapshot row of the staging area.
type IndexEntry struct {
	ObjectID   string
	Mode       string
	StageLevel StageLevel
	Path       string
}

// IndexEntries is the ordered content of the staging area.
type IndexEntries []IndexEntry

// FindByObjectID returns the first entry referencing objectID.
func (entries IndexEntries) FindByObjectID(objectID string) (IndexEntry, bool) {
	for _, entry := range entries {
		if entry.ObjectID == objectID {
			return entry, true
		}
	}
	return IndexEntry{}, false
}

// BranchType distinguishes local and remote-tracking branches.
type BranchType string

// Supported branch types.
const (
	BranchTypeLocal  BranchType = BranchType("local")
	BranchTypeRemote BranchType = BranchType("remote")
)

// ReferenceType distinguishes direct and symbolic references.
type ReferenceType string

// Supported reference types.
const (
	ReferenceTypeDirect   ReferenceType = ReferenceType("direct")
	ReferenceTypeSymbolic ReferenceType = ReferenceType("symbolic")
)

// Reference describes the reference backing a branch.
type Reference struct {
	Name   string
	Type   ReferenceType
	Target string
}

// Branch describes a local or remote-tracking branch.
type Branch struct {
	Name          string
	CanonicalName string
	FriendlyName  string
	Type          BranchType
	Reference     Reference
}

// Branches is the ordered list of repository branches.
type Branches []Branch

// FindLocalBranch returns the local branch with the provided short name.
func (branches Branches) FindLocalBranch(name string) (Branch, bool) {
	for _, branch := range branches {
		if branch.Type == BranchTypeLocal && branch.Name == name {
			return branch, true
		}
	}
	return Branch{}, false
}

// Signature identifies an author, committer, or tagger.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Commit describes a commit object. The zero value represents "not found".
type Commit struct {
	ObjectID  string
	Parents   []string
	Author    Signature
	Committer Signature
	Message   string
}

// IsNull reports whether the commit is the not-found sentinel.
func (commit Commit) IsNull() bool {
	return len(commit.ObjectID) == 0
}

// TagKind distinguishes the variants of Tag.
type TagKind string

// Supported tag kinds.
const (
	TagKindLightweight TagKind = TagKind("lightweight")
	TagKindAnnotated   TagKind = TagKind("annotated")
)

// Tag is implemented only by LightweightTag and AnnotatedTag.
type Tag interface {
	TagName() string
	// TargetObjectID returns the id of the commit the tag was created from.
	TargetObjectID() string
	Kind() TagKind
	sealedTag()
}

// LightweightTag is a bare name-to-commit pointer.
type LightweightTag struct {
	Name     string
	ObjectID string
}

// TagName implements Tag.
func (tag LightweightTag) TagName() string { return tag.Name }

// TargetObjectID implements Tag.
func (tag LightweightTag) TargetObjectID() string { return tag.ObjectID }

// Kind implements Tag.
func (LightweightTag) Kind() TagKind { return TagKindLightweight }

func (LightweightTag) sealedTag() {}

// AnnotatedTag is a tag object carrying a message and a tagger signature.
type AnnotatedTag struct {
	Name        string
	Message     string
	Tagger      Signature
	ObjectID    string
	TagObjectID string
}

// TagName implements Tag.
func (tag AnnotatedTag) TagName() string { return tag.Name }

// TargetObjectID implements Tag.
func (tag AnnotatedTag) TargetObjectID() string { return tag.ObjectID }

// Kind implements Tag.
func (AnnotatedTag) Kind() TagKind { return TagKindAnnotated }

func (AnnotatedTag) sealedTag() {}

// TagNames returns the sorted names of tags.
func TagNames(tags []Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.TagName())
	}
	sort.Strings(names)
	return names
}

// ResetMode selects how far a reset reaches.
type ResetMode string

// Supported reset modes.
const (
	ResetSoft  ResetMode = ResetMode("soft")
	ResetMixed ResetMode = ResetMode("mixed")
	ResetHard  ResetMode = ResetMode("hard")
)

// SimilarityMode controls rename detection when comparing trees.
type SimilarityMode string

// Supported similarity modes.
const (
	SimilarityNone  SimilarityMode = SimilarityMode("none")
	SimilarityExact SimilarityMode = SimilarityMode("exact")
)

// CompareOptions configures diff computation.
type CompareOptions struct {
	Similarity   SimilarityMode
	ContextLines int
}

// DefaultCompareOptions disables rename detection and uses three context lines.
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{Similarity: SimilarityNone, ContextLines: defaultContextLinesConstant}
}

// DeltaStatus describes how a file changed.
type DeltaStatus string

// Supported delta statuses.
const (
	DeltaAdded    DeltaStatus = DeltaStatus("added")
	DeltaDeleted  DeltaStatus = DeltaStatus("deleted")
	DeltaModified DeltaStatus = DeltaStatus("modified")
	DeltaRenamed  DeltaStatus = DeltaStatus("renamed")
)

// DiffFile describes one side of a delta.
type DiffFile struct {
	Path     string
	ObjectID string
	Exists   bool
}

// DiffLine is one line of a hunk. Origin is ' ', '+', or '-'.
type DiffLine struct {
	Origin  rune
	Content string
}

// DiffHunk is a contiguous group of changed lines with context.
type DiffHunk struct {
	Header string
	Lines  []DiffLine
}

// DiffDelta describes the change to a single file.
type DiffDelta struct {
	OldFile DiffFile
	NewFile DiffFile
	Status  DeltaStatus
	Binary  bool
	Hunks   []DiffHunk
}
