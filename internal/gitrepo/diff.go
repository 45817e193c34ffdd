package gitrepo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pmezard/go-difflib/difflib"
)

const (
	hunkHeaderTemplateConstant      = "@@ -%s +%s @@"
	singleLineRangeTemplateConstant = "%d"
	lineRangeTemplateConstant       = "%d,%d"
	lineTerminatorConstant          = "\n"
	diffOriginContextConstant       = ' '
	diffOriginAdditionConstant      = '+'
	diffOriginDeletionConstant      = '-'
	opCodeEqualConstant             = 'e'
	opCodeReplaceConstant           = 'r'
	opCodeDeleteConstant            = 'd'
	opCodeInsertConstant            = 'i'
)

type worktreeChange struct {
	path    string
	oldFile *object.File
	newFile *object.File
}

// DiffWorktreeToHead compares the working tree against the HEAD tree.
// Untracked files are not reported.
func (repository *Repository) DiffWorktreeToHead(options CompareOptions) ([]DiffDelta, error) {
	engine, worktree, worktreeError := repository.worktree(diffOperationNameConstant)
	if worktreeError != nil {
		return nil, worktreeError
	}

	changes, changesError := collectWorktreeChanges(engine, worktree)
	if changesError != nil {
		return nil, repository.fail(diffOperationNameConstant, changesError)
	}

	contextLines := options.ContextLines
	if contextLines <= 0 {
		contextLines = defaultContextLinesConstant
	}

	deltas := make([]DiffDelta, 0, len(changes))
	for _, change := range changes {
		delta, deltaError := buildDelta(change, contextLines)
		if deltaError != nil {
			return nil, repository.fail(diffOperationNameConstant, deltaError)
		}
		deltas = append(deltas, delta)
	}

	if options.Similarity == SimilarityExact {
		deltas = pairExactRenames(deltas)
	}
	return deltas, nil
}

func collectWorktreeChanges(engine *git.Repository, worktree *git.Worktree) ([]worktreeChange, error) {
	engineStatus, statusError := worktree.Status()
	if statusError != nil {
		return nil, statusError
	}

	headTree, treeError := headTree(engine)
	if treeError != nil {
		return nil, treeError
	}

	paths := make([]string, 0, len(engineStatus))
	for path, fileStatus := range engineStatus {
		if fileStatus.Worktree == git.Untracked {
			continue
		}
		if fileStatus.Worktree == git.Unmodified && fileStatus.Staging == git.Unmodified {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	changes := make([]worktreeChange, 0, len(paths))
	for _, path := range paths {
		oldFile, oldError := fileFromTree(headTree, path)
		if oldError != nil {
			return nil, oldError
		}
		newFile, newError := fileFromWorktree(worktree, path)
		if newError != nil {
			return nil, newError
		}
		if oldFile == nil && newFile == nil {
			continue
		}
		changes = append(changes, worktreeChange{path: path, oldFile: oldFile, newFile: newFile})
	}
	return changes, nil
}

func headTree(engine *git.Repository) (*object.Tree, error) {
	headReference, headError := engine.Head()
	if headError != nil {
		if errors.Is(headError, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, headError
	}
	headCommit, commitError := engine.CommitObject(headReference.Hash())
	if commitError != nil {
		return nil, commitError
	}
	return headCommit.Tree()
}

func fileFromTree(tree *object.Tree, path string) (*object.File, error) {
	if tree == nil {
		return nil, nil
	}
	file, fileError := tree.File(path)
	if errors.Is(fileError, object.ErrFileNotFound) {
		return nil, nil
	}
	return file, fileError
}

func fileFromWorktree(worktree *git.Worktree, path string) (*object.File, error) {
	diskFile, openError := worktree.Filesystem.Open(path)
	if openError != nil {
		if os.IsNotExist(openError) {
			return nil, nil
		}
		return nil, openError
	}
	defer diskFile.Close()

	content, readError := io.ReadAll(diskFile)
	if readError != nil {
		return nil, readError
	}

	memoryObject := &plumbing.MemoryObject{}
	memoryObject.SetType(plumbing.BlobObject)
	if _, writeError := memoryObject.Write(content); writeError != nil {
		return nil, writeError
	}
	blob, decodeError := object.DecodeBlob(memoryObject)
	if decodeError != nil {
		return nil, decodeError
	}

	mode := filemode.Regular
	if fileInfo, statError := worktree.Filesystem.Lstat(path); statError == nil {
		if diskMode, modeError := filemode.NewFromOSFileMode(fileInfo.Mode()); modeError == nil {
			mode = diskMode
		}
	}
	return object.NewFile(path, mode, blob), nil
}

func buildDelta(change worktreeChange, contextLines int) (DiffDelta, error) {
	delta := DiffDelta{
		OldFile: describeFile(change.path, change.oldFile),
		NewFile: describeFile(change.path, change.newFile),
	}
	switch {
	case change.oldFile == nil:
		delta.Status = DeltaAdded
	case change.newFile == nil:
		delta.Status = DeltaDeleted
	default:
		delta.Status = DeltaModified
	}

	binary, binaryError := isBinaryChange(change)
	if binaryError != nil {
		return DiffDelta{}, binaryError
	}
	if binary {
		delta.Binary = true
		return delta, nil
	}

	oldLines, oldError := fileLines(change.oldFile)
	if oldError != nil {
		return DiffDelta{}, oldError
	}
	newLines, newError := fileLines(change.newFile)
	if newError != nil {
		return DiffDelta{}, newError
	}
	delta.Hunks = computeHunks(oldLines, newLines, contextLines)
	return delta, nil
}

func describeFile(path string, file *object.File) DiffFile {
	if file == nil {
		return DiffFile{Path: path, ObjectID: plumbing.ZeroHash.String()}
	}
	return DiffFile{Path: path, ObjectID: file.Hash.String(), Exists: true}
}

func isBinaryChange(change worktreeChange) (bool, error) {
	for _, file := range []*object.File{change.oldFile, change.newFile} {
		if file == nil {
			continue
		}
		binary, binaryError := file.IsBinary()
		if binaryError != nil {
			return false, binaryError
		}
		if binary {
			return true, nil
		}
	}
	return false, nil
}

func fileLines(file *object.File) ([]string, error) {
	if file == nil {
		return []string{}, nil
	}
	content, contentError := file.Contents()
	if contentError != nil {
		return nil, contentError
	}
	if len(content) == 0 {
		return []string{}, nil
	}
	return splitLines(content), nil
}

// splitLines keeps each line terminator and yields no empty element after a
// trailing newline.
func splitLines(content string) []string {
	lines := strings.SplitAfter(content, lineTerminatorConstant)
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func computeHunks(oldLines []string, newLines []string, contextLines int) []DiffHunk {
	matcher := difflib.NewMatcher(oldLines, newLines)
	hunks := []DiffHunk{}
	for _, group := range matcher.GetGroupedOpCodes(contextLines) {
		firstOpCode := group[0]
		lastOpCode := group[len(group)-1]
		hunk := DiffHunk{
			Header: fmt.Sprintf(hunkHeaderTemplateConstant,
				formatLineRange(firstOpCode.I1, lastOpCode.I2),
				formatLineRange(firstOpCode.J1, lastOpCode.J2)),
		}
		for _, opCode := range group {
			switch opCode.Tag {
			case opCodeEqualConstant:
				hunk.Lines = appendDiffLines(hunk.Lines, diffOriginContextConstant, oldLines[opCode.I1:opCode.I2])
			case opCodeReplaceConstant:
				hunk.Lines = appendDiffLines(hunk.Lines, diffOriginDeletionConstant, oldLines[opCode.I1:opCode.I2])
				hunk.Lines = appendDiffLines(hunk.Lines, diffOriginAdditionConstant, newLines[opCode.J1:opCode.J2])
			case opCodeDeleteConstant:
				hunk.Lines = appendDiffLines(hunk.Lines, diffOriginDeletionConstant, oldLines[opCode.I1:opCode.I2])
			case opCodeInsertConstant:
				hunk.Lines = appendDiffLines(hunk.Lines, diffOriginAdditionConstant, newLines[opCode.J1:opCode.J2])
			}
		}
		hunks = append(hunks, hunk)
	}
	return hunks
}

func appendDiffLines(lines []DiffLine, origin rune, contents []string) []DiffLine {
	for _, content := range contents {
		lines = append(lines, DiffLine{Origin: origin, Content: strings.TrimSuffix(content, lineTerminatorConstant)})
	}
	return lines
}

// formatLineRange renders a unified diff range: one-based start, omitted
// length for single lines, and start-1 for empty ranges.
func formatLineRange(start int, stop int) string {
	beginning := start + 1
	length := stop - start
	if length == 1 {
		return fmt.Sprintf(singleLineRangeTemplateConstant, beginning)
	}
	if length == 0 {
		beginning--
	}
	return fmt.Sprintf(lineRangeTemplateConstant, beginning, length)
}

func pairExactRenames(deltas []DiffDelta) []DiffDelta {
	addedByObjectID := map[string]int{}
	for deltaIndex, delta := range deltas {
		if delta.Status == DeltaAdded {
			addedByObjectID[delta.NewFile.ObjectID] = deltaIndex
		}
	}

	consumed := map[int]bool{}
	paired := make([]DiffDelta, 0, len(deltas))
	for deltaIndex, delta := range deltas {
		if delta.Status != DeltaDeleted {
			continue
		}
		addedIndex, found := addedByObjectID[delta.OldFile.ObjectID]
		if !found || consumed[addedIndex] {
			continue
		}
		consumed[addedIndex] = true
		consumed[deltaIndex] = true
		paired = append(paired, DiffDelta{
			OldFile: delta.OldFile,
			NewFile: deltas[addedIndex].NewFile,
			Status:  DeltaRenamed,
			Binary:  delta.Binary || deltas[addedIndex].Binary,
			Hunks:   []DiffHunk{},
		})
	}

	for deltaIndex, delta := range deltas {
		if !consumed[deltaIndex] {
			paired = append(paired, delta)
		}
	}
	sort.SliceStable(paired, func(leftIndex int, rightIndex int) bool {
		return paired[leftIndex].NewFile.Path < paired[rightIndex].NewFile.Path
	})
	return paired
}
