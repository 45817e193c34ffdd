package scenario

import (
	"strings"
	"time"

	"github.com/temirov/repoverify/internal/gitrepo"
)

// Default fixture values describing the reference repository.
const (
	DefaultDevelopBranchConstant       = "develop"
	DefaultIndexObjectIDConstant       = "304c4c126c442ceef235c78fa6a0af55ccbe7204"
	DefaultTagCommitIDConstant         = "fac4c156026e8f20ac701585a07705b06b7f57b0"
	DefaultTrackedFileConstant         = "subdir/testclass1.cpp"
	DefaultHeaderFileConstant          = "subdir/testclass1.h"
	DefaultLightweightTagConstant      = "test-tag"
	DefaultAnnotatedTagConstant        = "test-annotated-tag"
	DefaultAnnotatedTagMessageConstant = "This is my annotated tag"
	DefaultCommitMessageConstant       = "Temporary commit for testing"
	DefaultSignatureNameConstant       = "beavis"
	DefaultSignatureEmailConstant      = "beavis@butthead.com"
)

// SignatureTimestamp is the fixed time stamped on every harness signature.
var SignatureTimestamp = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

// Fixtures names the objects the reference repository is expected to contain.
type Fixtures struct {
	DevelopBranch       string   `mapstructure:"develop_branch"`
	IndexObjectID       string   `mapstructure:"index_object_id"`
	TagCommitID         string   `mapstructure:"tag_commit_id"`
	TrackedFile         string   `mapstructure:"tracked_file"`
	DiffFiles           []string `mapstructure:"diff_files"`
	LightweightTag      string   `mapstructure:"lightweight_tag"`
	AnnotatedTag        string   `mapstructure:"annotated_tag"`
	AnnotatedTagMessage string   `mapstructure:"annotated_tag_message"`
	CommitMessage       string   `mapstructure:"commit_message"`
}

// SignatureConfiguration names the identity used for commits and tags.
type SignatureConfiguration struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// Configuration carries the fixtures and signature a Runner checks against.
type Configuration struct {
	Fixtures  Fixtures               `mapstructure:"fixtures"`
	Signature SignatureConfiguration `mapstructure:"signature"`
}

// DefaultConfiguration returns the values matching the reference repository.
func DefaultConfiguration() Configuration {
	return Configuration{
		Fixtures: Fixtures{
			DevelopBranch:       DefaultDevelopBranchConstant,
			IndexObjectID:       DefaultIndexObjectIDConstant,
			TagCommitID:         DefaultTagCommitIDConstant,
			TrackedFile:         DefaultTrackedFileConstant,
			DiffFiles:           []string{DefaultTrackedFileConstant, DefaultHeaderFileConstant},
			LightweightTag:      DefaultLightweightTagConstant,
			AnnotatedTag:        DefaultAnnotatedTagConstant,
			AnnotatedTagMessage: DefaultAnnotatedTagMessageConstant,
			CommitMessage:       DefaultCommitMessageConstant,
		},
		Signature: SignatureConfiguration{
			Name:  DefaultSignatureNameConstant,
			Email: DefaultSignatureEmailConstant,
		},
	}
}

// Sanitize trims values and fills blanks from DefaultConfiguration.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.Fixtures.DevelopBranch = valueOrDefault(configuration.Fixtures.DevelopBranch, defaults.Fixtures.DevelopBranch)
	sanitized.Fixtures.IndexObjectID = strings.ToLower(valueOrDefault(configuration.Fixtures.IndexObjectID, defaults.Fixtures.IndexObjectID))
	sanitized.Fixtures.TagCommitID = strings.ToLower(valueOrDefault(configuration.Fixtures.TagCommitID, defaults.Fixtures.TagCommitID))
	sanitized.Fixtures.TrackedFile = valueOrDefault(configuration.Fixtures.TrackedFile, defaults.Fixtures.TrackedFile)
	sanitized.Fixtures.LightweightTag = valueOrDefault(configuration.Fixtures.LightweightTag, defaults.Fixtures.LightweightTag)
	sanitized.Fixtures.AnnotatedTag = valueOrDefault(configuration.Fixtures.AnnotatedTag, defaults.Fixtures.AnnotatedTag)
	sanitized.Fixtures.AnnotatedTagMessage = valueOrDefault(configuration.Fixtures.AnnotatedTagMessage, defaults.Fixtures.AnnotatedTagMessage)
	sanitized.Fixtures.CommitMessage = valueOrDefault(configuration.Fixtures.CommitMessage, defaults.Fixtures.CommitMessage)
	sanitized.Signature.Name = valueOrDefault(configuration.Signature.Name, defaults.Signature.Name)
	sanitized.Signature.Email = valueOrDefault(configuration.Signature.Email, defaults.Signature.Email)

	diffFiles := make([]string, 0, len(configuration.Fixtures.DiffFiles))
	for _, diffFile := range configuration.Fixtures.DiffFiles {
		trimmedDiffFile := strings.TrimSpace(diffFile)
		if len(trimmedDiffFile) > 0 {
			diffFiles = append(diffFiles, trimmedDiffFile)
		}
	}
	if len(diffFiles) == 0 {
		diffFiles = defaults.Fixtures.DiffFiles
	}
	sanitized.Fixtures.DiffFiles = diffFiles

	return sanitized
}

// HarnessSignature converts the configured identity into a signature stamped with SignatureTimestamp.
func (configuration Configuration) HarnessSignature() gitrepo.Signature {
	return gitrepo.Signature{
		Name:  configuration.Signature.Name,
		Email: configuration.Signature.Email,
		When:  SignatureTimestamp,
	}
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
