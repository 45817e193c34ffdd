// Package pathutils normalizes user supplied filesystem paths.
package pathutils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
	emptyPathMessageConstant        = "path is empty"
)

// ErrEmptyPath indicates a blank path was supplied.
var ErrEmptyPath = errors.New(emptyPathMessageConstant)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// Resolver expands a leading tilde and converts paths to cleaned absolute form.
type Resolver struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectoryOnce     sync.Once
	homeDirectory         string
}

// NewResolver constructs a Resolver backed by os.UserHomeDir.
func NewResolver() *Resolver {
	return NewResolverWithProvider(os.UserHomeDir)
}

// NewResolverWithProvider constructs a Resolver with a custom home directory lookup.
func NewResolverWithProvider(provider HomeDirectoryProvider) *Resolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &Resolver{homeDirectoryProvider: provider}
}

// Expand replaces a leading "~" or "~/" with the home directory. Paths that
// name another user's home ("~alice") and failed lookups are returned unchanged.
func (resolver *Resolver) Expand(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if !strings.HasPrefix(trimmedPath, tildeSymbolConstant) {
		return trimmedPath
	}

	homeDirectory := resolver.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return trimmedPath
	}
	if trimmedPath == tildeSymbolConstant {
		return homeDirectory
	}
	if strings.HasPrefix(trimmedPath, tildeForwardSlashPrefixConstant) || strings.HasPrefix(trimmedPath, tildeSymbolConstant+string(os.PathSeparator)) {
		return filepath.Join(homeDirectory, trimmedPath[len(tildeSymbolConstant)+1:])
	}
	return trimmedPath
}

// Resolve expands candidatePath and returns it as a cleaned absolute path.
func (resolver *Resolver) Resolve(candidatePath string) (string, error) {
	expandedPath := resolver.Expand(candidatePath)
	if len(expandedPath) == 0 {
		return "", ErrEmptyPath
	}
	return filepath.Abs(expandedPath)
}

// ResolveOptional behaves like Resolve but maps a blank path to an empty result.
func (resolver *Resolver) ResolveOptional(candidatePath string) (string, error) {
	if len(strings.TrimSpace(candidatePath)) == 0 {
		return "", nil
	}
	return resolver.Resolve(candidatePath)
}

func (resolver *Resolver) resolveHomeDirectory() string {
	resolver.homeDirectoryOnce.Do(func() {
		homeDirectory, lookupError := resolver.homeDirectoryProvider()
		if lookupError == nil {
			resolver.homeDirectory = homeDirectory
		}
	})
	return resolver.homeDirectory
}
