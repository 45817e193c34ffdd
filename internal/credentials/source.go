package credentials

import (
	"errors"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	gitHTTP "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitSSH "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/temirov/repoverify/internal/gitrepo"
)

const (
	defaultSSHUserConstant             = "git"
	sourceNotConfiguredMessageConstant = "credential source not configured"
)

// ErrSourceNotConfigured indicates AuthMethod was called without a source.
var ErrSourceNotConfigured = errors.New(sourceNotConfiguredMessageConstant)

// Credentials carries the values supplied for one authentication challenge.
type Credentials struct {
	Username       string
	Password       string
	PublicKeyPath  string
	PrivateKeyPath string
}

// IsEmpty reports whether no value is set.
func (credentials Credentials) IsEmpty() bool {
	return len(credentials.Username) == 0 &&
		len(credentials.Password) == 0 &&
		len(credentials.PublicKeyPath) == 0 &&
		len(credentials.PrivateKeyPath) == 0
}

// Source supplies credentials on demand. Implementations must not block.
type Source interface {
	Credentials() Credentials
}

// StaticSource returns fixed credentials.
type StaticSource struct {
	values Credentials
}

// NewStaticSource constructs a source returning values with surrounding whitespace removed.
func NewStaticSource(values Credentials) StaticSource {
	return StaticSource{values: Credentials{
		Username:       strings.TrimSpace(values.Username),
		Password:       values.Password,
		PublicKeyPath:  strings.TrimSpace(values.PublicKeyPath),
		PrivateKeyPath: strings.TrimSpace(values.PrivateKeyPath),
	}}
}

// Credentials implements Source.
func (source StaticSource) Credentials() Credentials {
	return source.values
}

// EmptySource never supplies credentials.
type EmptySource struct{}

// Credentials implements Source.
func (EmptySource) Credentials() Credentials {
	return Credentials{}
}

// AuthMethod selects a go-git auth method for remoteURL using values from
// source. Local remotes and empty credentials over http yield a nil method.
func AuthMethod(remoteURL string, source Source) (transport.AuthMethod, error) {
	if source == nil {
		return nil, ErrSourceNotConfigured
	}

	parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		return nil, parseError
	}

	values := source.Credentials()
	switch {
	case parsedRemote.IsSSH():
		return sshAuthMethod(parsedRemote, values)
	case parsedRemote.IsHTTP():
		if len(values.Username) == 0 && len(values.Password) == 0 {
			return nil, nil
		}
		return &gitHTTP.BasicAuth{Username: values.Username, Password: values.Password}, nil
	default:
		return nil, nil
	}
}

func sshAuthMethod(parsedRemote gitrepo.RemoteURL, values Credentials) (transport.AuthMethod, error) {
	user := parsedRemote.User
	if len(user) == 0 {
		user = values.Username
	}
	if len(user) == 0 {
		user = defaultSSHUserConstant
	}

	if len(values.PrivateKeyPath) > 0 {
		return gitSSH.NewPublicKeysFromFile(user, values.PrivateKeyPath, values.Password)
	}
	return gitSSH.NewSSHAgentAuth(user)
}
