package gitrepo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	tagNameRequiredMessageConstant = "tag name required"
	tagNotFoundTemplateConstant    = "tag %q: %w"
	tagNotFoundMessageConstant     = "tag not found"
)

var (
	// ErrTagNameRequired indicates a tag operation received an empty name.
	ErrTagNameRequired = errors.New(tagNameRequiredMessageConstant)
	// ErrTagNotFound indicates the named tag does not exist.
	ErrTagNotFound = errors.New(tagNotFoundMessageConstant)
)

// Tags lists every tag sorted by name.
func (repository *Repository) Tags() ([]Tag, error) {
	engine, engineError := repository.engine(tagsOperationNameConstant)
	if engineError != nil {
		return nil, engineError
	}

	tagReferences, referencesError := engine.Tags()
	if referencesError != nil {
		return nil, repository.fail(tagsOperationNameConstant, referencesError)
	}
	defer tagReferences.Close()

	tags := []Tag{}
	iterationError := tagReferences.ForEach(func(reference *plumbing.Reference) error {
		tag, resolveError := resolveTag(engine, reference)
		if resolveError != nil {
			return resolveError
		}
		tags = append(tags, tag)
		return nil
	})
	if iterationError != nil {
		return nil, repository.fail(tagsOperationNameConstant, iterationError)
	}

	sort.Slice(tags, func(leftIndex int, rightIndex int) bool {
		return tags[leftIndex].TagName() < tags[rightIndex].TagName()
	})
	return tags, nil
}

// CreateLightweightTag points name at the commit objectID.
func (repository *Repository) CreateLightweightTag(name string, objectID string) (LightweightTag, error) {
	tag, createError := repository.createTag(name, objectID, nil)
	if createError != nil {
		return LightweightTag{}, createError
	}
	lightweightTag, _ := tag.(LightweightTag)
	return lightweightTag, nil
}

// CreateAnnotatedTag writes a tag object for commit objectID.
func (repository *Repository) CreateAnnotatedTag(name string, objectID string, tagger Signature, message string) (AnnotatedTag, error) {
	taggerSignature := engineSignature(tagger)
	tag, createError := repository.createTag(name, objectID, &git.CreateTagOptions{Tagger: &taggerSignature, Message: message})
	if createError != nil {
		return AnnotatedTag{}, createError
	}
	annotatedTag, _ := tag.(AnnotatedTag)
	return annotatedTag, nil
}

// FindTag looks up a tag by name. Missing tags produce an error wrapping ErrTagNotFound.
func (repository *Repository) FindTag(name string) (Tag, error) {
	engine, engineError := repository.engine(findTagOperationNameConstant)
	if engineError != nil {
		return nil, engineError
	}
	if len(name) == 0 {
		return nil, repository.fail(findTagOperationNameConstant, ErrTagNameRequired)
	}

	reference, lookupError := engine.Tag(name)
	if lookupError != nil {
		if errors.Is(lookupError, git.ErrTagNotFound) {
			return nil, repository.fail(findTagOperationNameConstant, fmt.Errorf(tagNotFoundTemplateConstant, name, ErrTagNotFound))
		}
		return nil, repository.fail(findTagOperationNameConstant, lookupError)
	}

	tag, resolveError := resolveTag(engine, reference)
	if resolveError != nil {
		return nil, repository.fail(findTagOperationNameConstant, resolveError)
	}
	return tag, nil
}

// DeleteTag removes the named tag reference.
func (repository *Repository) DeleteTag(name string) error {
	engine, engineError := repository.engine(deleteTagOperationNameConstant)
	if engineError != nil {
		return engineError
	}
	if len(name) == 0 {
		return repository.fail(deleteTagOperationNameConstant, ErrTagNameRequired)
	}

	if deleteError := engine.DeleteTag(name); deleteError != nil {
		if errors.Is(deleteError, git.ErrTagNotFound) {
			return repository.fail(deleteTagOperationNameConstant, fmt.Errorf(tagNotFoundTemplateConstant, name, ErrTagNotFound))
		}
		return repository.fail(deleteTagOperationNameConstant, deleteError)
	}
	return nil
}

func (repository *Repository) createTag(name string, objectID string, options *git.CreateTagOptions) (Tag, error) {
	engine, engineError := repository.engine(createTagOperationNameConstant)
	if engineError != nil {
		return nil, engineError
	}
	if len(name) == 0 {
		return nil, repository.fail(createTagOperationNameConstant, ErrTagNameRequired)
	}

	hash, hashError := parseObjectID(objectID)
	if hashError != nil {
		return nil, repository.fail(createTagOperationNameConstant, hashError)
	}

	reference, createError := engine.CreateTag(name, hash, options)
	if createError != nil {
		return nil, repository.fail(createTagOperationNameConstant, createError)
	}

	tag, resolveError := resolveTag(engine, reference)
	if resolveError != nil {
		return nil, repository.fail(createTagOperationNameConstant, resolveError)
	}
	return tag, nil
}

func resolveTag(engine *git.Repository, reference *plumbing.Reference) (Tag, error) {
	tagName := reference.Name().Short()

	tagObject, tagObjectError := engine.TagObject(reference.Hash())
	switch {
	case tagObjectError == nil:
		return newAnnotatedTag(tagName, tagObject)
	case errors.Is(tagObjectError, plumbing.ErrObjectNotFound):
		return LightweightTag{Name: tagName, ObjectID: reference.Hash().String()}, nil
	default:
		return nil, tagObjectError
	}
}

func newAnnotatedTag(tagName string, tagObject *object.Tag) (Tag, error) {
	targetCommit, peelError := tagObject.Commit()
	if peelError != nil {
		return nil, peelError
	}
	return AnnotatedTag{
		Name:        tagName,
		Message:     tagObject.Message,
		Tagger:      harnessSignature(tagObject.Tagger),
		ObjectID:    targetCommit.Hash.String(),
		TagObjectID: tagObject.Hash.String(),
	}, nil
}
