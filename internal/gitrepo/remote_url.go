package gitrepo

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

const (
	remoteURLParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	unknownProtocolMessageConstant      = "unsupported remote protocol"
	requiredValueMessageConstant        = "value required"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
	RemoteProtocolGit   RemoteProtocol = RemoteProtocol("git")
	RemoteProtocolFile  RemoteProtocol = RemoteProtocol("file")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol RemoteProtocol
	User     string
	Host     string
	Port     int
	Path     string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedProtocolError indicates the remote uses a protocol repoverify cannot authenticate.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

// Error describes the unsupported protocol.
func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, protocolError.Protocol, unknownProtocolMessageConstant)
}

// ParseRemoteURL converts a textual remote URL, including scp-like ssh
// addresses and local paths, into a structured representation.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	endpoint, endpointError := transport.NewEndpoint(trimmedRemote)
	if endpointError != nil {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}

	protocol := RemoteProtocol(strings.ToLower(endpoint.Protocol))
	switch protocol {
	case RemoteProtocolSSH, RemoteProtocolHTTPS, RemoteProtocolHTTP, RemoteProtocolGit, RemoteProtocolFile:
	default:
		return RemoteURL{}, UnsupportedProtocolError{Protocol: protocol}
	}

	return RemoteURL{
		Protocol: protocol,
		User:     endpoint.User,
		Host:     endpoint.Host,
		Port:     endpoint.Port,
		Path:     endpoint.Path,
	}, nil
}

// IsSSH reports whether the remote is reached over ssh.
func (remoteURL RemoteURL) IsSSH() bool {
	return remoteURL.Protocol == RemoteProtocolSSH
}

// IsHTTP reports whether the remote is reached over http or https.
func (remoteURL RemoteURL) IsHTTP() bool {
	return remoteURL.Protocol == RemoteProtocolHTTPS || remoteURL.Protocol == RemoteProtocolHTTP
}
