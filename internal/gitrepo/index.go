package gitrepo

// Index returns the staging area entries in index order.
func (repository *Repository) Index() (IndexEntries, error) {
	engine, engineError := repository.engine(indexOperationNameConstant)
	if engineError != nil {
		return nil, engineError
	}

	engineIndex, indexError := engine.Storer.Index()
	if indexError != nil {
		return nil, repository.fail(indexOperationNameConstant, indexError)
	}

	entries := make(IndexEntries, 0, len(engineIndex.Entries))
	for _, engineEntry := range engineIndex.Entries {
		entries = append(entries, IndexEntry{
			ObjectID:   engineEntry.Hash.String(),
			Mode:       engineEntry.Mode.String(),
			StageLevel: StageLevel(engineEntry.Stage),
			Path:       engineEntry.Name,
		})
	}
	return entries, nil
}
