package scenario

import (
	"fmt"

	"github.com/temirov/repoverify/internal/gitrepo"
)

const (
	branchDumpTemplateConstant     = "Branch: %s  Canonical Name: %s  Friendly Name: %s  Type: %s  Ref Type: %s\n"
	indexEntryDumpTemplateConstant = "Object ID: %s  Mode: %s  Stage Level: %s  Path: %s\n"
	deltaDumpTemplateConstant      = "old file: %s  new file: %s\n"
	binaryDeltaDumpConstant        = "(binary files differ)\n"
	hunkHeaderDumpTemplateConstant = "%s\n"
	diffLineDumpTemplateConstant   = "%c%s\n"
)

func (runner *Runner) dumpBranch(branch gitrepo.Branch) {
	fmt.Fprintf(runner.dumpWriter, branchDumpTemplateConstant,
		branch.Name, branch.CanonicalName, branch.FriendlyName, branch.Type, branch.Reference.Type)
}

func (runner *Runner) dumpIndexEntry(entry gitrepo.IndexEntry) {
	fmt.Fprintf(runner.dumpWriter, indexEntryDumpTemplateConstant, entry.ObjectID, entry.Mode, entry.StageLevel, entry.Path)
}

func (runner *Runner) dumpDelta(delta gitrepo.DiffDelta) {
	fmt.Fprintf(runner.dumpWriter, deltaDumpTemplateConstant, delta.OldFile.Path, delta.NewFile.Path)
	if delta.Binary {
		fmt.Fprint(runner.dumpWriter, binaryDeltaDumpConstant)
		return
	}
	for _, hunk := range delta.Hunks {
		fmt.Fprintf(runner.dumpWriter, hunkHeaderDumpTemplateConstant, hunk.Header)
		for _, line := range hunk.Lines {
			fmt.Fprintf(runner.dumpWriter, diffLineDumpTemplateConstant, line.Origin, line.Content)
		}
	}
}
