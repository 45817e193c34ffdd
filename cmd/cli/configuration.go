package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/repoverify/internal/credentials"
	"github.com/temirov/repoverify/internal/scenario"
	"github.com/temirov/repoverify/internal/utils"
	pathutils "github.com/temirov/repoverify/internal/utils/path"
)

const (
	commonConfigurationKeyConstant   = "common"
	commonLogLevelConfigKeyConstant  = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant = commonConfigurationKeyConstant + ".log_format"
	harnessTimeoutConfigKeyConstant  = "harness.timeout"
	defaultLockDirectoryNameConstant = "repoverify-locks"
)

// ApplicationConfiguration describes the persisted configuration for the CLI.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common"`
	Harness HarnessConfiguration           `mapstructure:"harness"`
}

// ApplicationCommonConfiguration stores logging configuration shared across verbs.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// HarnessConfiguration names the remotes, credentials, and fixtures the verbs use.
type HarnessConfiguration struct {
	RemoteURL     string                          `mapstructure:"remote_url"`
	SSHRemoteURL  string                          `mapstructure:"ssh_remote_url"`
	Timeout       time.Duration                   `mapstructure:"timeout"`
	LockDirectory string                          `mapstructure:"lock_directory"`
	Credentials   CredentialsConfiguration        `mapstructure:"credentials"`
	Signature     scenario.SignatureConfiguration `mapstructure:"signature"`
	Fixtures      scenario.Fixtures               `mapstructure:"fixtures"`
}

// CredentialsConfiguration mirrors credentials.Credentials for decoding.
type CredentialsConfiguration struct {
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	PublicKeyPath  string `mapstructure:"public_key_path"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
}

func defaultConfigurationValues() map[string]any {
	return map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
		harnessTimeoutConfigKeyConstant:  "0s",
	}
}

// ScenarioConfiguration converts the harness section into a scenario configuration.
func (configuration HarnessConfiguration) ScenarioConfiguration() scenario.Configuration {
	return scenario.Configuration{
		Fixtures:  configuration.Fixtures,
		Signature: configuration.Signature,
	}.Sanitize()
}

// CredentialSource builds a static source with key paths expanded by resolver.
func (configuration HarnessConfiguration) CredentialSource(resolver *pathutils.Resolver) (credentials.Source, error) {
	publicKeyPath, publicKeyError := resolver.ResolveOptional(configuration.Credentials.PublicKeyPath)
	if publicKeyError != nil {
		return nil, publicKeyError
	}
	privateKeyPath, privateKeyError := resolver.ResolveOptional(configuration.Credentials.PrivateKeyPath)
	if privateKeyError != nil {
		return nil, privateKeyError
	}
	return credentials.NewStaticSource(credentials.Credentials{
		Username:       configuration.Credentials.Username,
		Password:       configuration.Credentials.Password,
		PublicKeyPath:  publicKeyPath,
		PrivateKeyPath: privateKeyPath,
	}), nil
}

// ResolvedLockDirectory returns the configured lock directory, defaulting
// to a directory beneath the system temporary directory.
func (configuration HarnessConfiguration) ResolvedLockDirectory(resolver *pathutils.Resolver) (string, error) {
	if len(strings.TrimSpace(configuration.LockDirectory)) == 0 {
		return filepath.Join(os.TempDir(), defaultLockDirectoryNameConstant), nil
	}
	return resolver.Resolve(configuration.LockDirectory)
}
