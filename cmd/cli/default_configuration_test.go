package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repoverify/cmd/cli"
)

type embeddedConfigurationDocument struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"common"`
	Harness struct {
		RemoteURL     string `yaml:"remote_url"`
		SSHRemoteURL  string `yaml:"ssh_remote_url"`
		Timeout       string `yaml:"timeout"`
		LockDirectory string `yaml:"lock_directory"`
		Credentials   struct {
			Username       string `yaml:"username"`
			Password       string `yaml:"password"`
			PublicKeyPath  string `yaml:"public_key_path"`
			PrivateKeyPath string `yaml:"private_key_path"`
		} `yaml:"credentials"`
		Signature struct {
			Name  string `yaml:"name"`
			Email string `yaml:"email"`
		} `yaml:"signature"`
		Fixtures map[string]any `yaml:"fixtures"`
	} `yaml:"harness"`
}

func TestEmbeddedDefaultConfiguration(testInstance *testing.T) {
	content, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)

	var document embeddedConfigurationDocument
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	require.NoError(testInstance, decoder.Decode(&document))

	require.Equal(testInstance, "info", document.Common.LogLevel)
	require.Equal(testInstance, "console", document.Common.LogFormat)
	require.Equal(testInstance, "https://github.com/StevePunak/GitTesting.git", document.Harness.RemoteURL)
	require.Equal(testInstance, "git@github.com:StevePunak/GitTesting.git", document.Harness.SSHRemoteURL)
	require.Equal(testInstance, "5m", document.Harness.Timeout)
	require.Equal(testInstance, "beavis", document.Harness.Signature.Name)
	require.Equal(testInstance, "beavis@butthead.com", document.Harness.Signature.Email)

	for _, fixtureKey := range []string{
		"develop_branch",
		"index_object_id",
		"tag_commit_id",
		"tracked_file",
		"diff_files",
		"lightweight_tag",
		"annotated_tag",
		"annotated_tag_message",
		"commit_message",
	} {
		require.Contains(testInstance, document.Harness.Fixtures, fixtureKey)
	}

	content[0] = '#'
	secondContent, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, byte('#'), secondContent[0])
}
