package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVersion(t *testing.T) {
	// Given
	originalVersion := version
	defer func() { version = originalVersion }()

	// When
	SetVersion("1.2.3")

	// Then
	assert.Equal(t, "1.2.3", version)
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "graphadmin", rootCmd.Use)
}

func TestRootCmd_Short(t *testing.T) {
	assert.Equal(t, "Microsoft Graph admin tools over MCP", rootCmd.Short)
}

func TestRootCmd_Long(t *testing.T) {
	assert.Contains(t, rootCmd.Long, "MCP stdio server")
	assert.Contains(t, rootCmd.Long, "MICROSOFT_TENANT_ID")
}

func TestRootCmd_HasVersionCommand(t *testing.T) {
	commands := rootCmd.Commands()

	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "version", "should have version command")
}

func TestExecute_ReturnsNoErrorWithHelp(t *testing.T) {
	oldOut := rootCmd.OutOrStdout()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"--help"})
	defer func() {
		rootCmd.SetOut(oldOut)
		rootCmd.SetArgs(nil)
		// Reset the help flag so later Execute calls run RunE again.
		_ = rootCmd.Flags().Set("help", "false")
	}()

	err := Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "graphadmin")
}

func TestRootCmd_RunsInjectedServeFunc(t *testing.T) {
	originalServe := serveFunc
	defer func() { serveFunc = originalServe }()

	var gotConfigPath string
	SetServeFunc(func(_ context.Context, configPath string) error {
		gotConfigPath = configPath
		return nil
	})

	rootCmd.SetArgs([]string{"--config", "/tmp/custom.toml"})
	defer rootCmd.SetArgs(nil)

	err := Execute()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.toml", gotConfigPath)
}

func TestVersionCmd(t *testing.T) {
	originalVersion := version
	defer func() { version = originalVersion }()
	SetVersion("9.9.9")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	}()

	err := Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "9.9.9")
}
