package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "streakd", cmd.Use)
	assert.Contains(t, cmd.Long, "recovery shields")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"init", "checkin", "status", "shield", "analytics", "recovery"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "streakd.db", dbFlag.DefValue)

	userFlag := cmd.PersistentFlags().Lookup("user")
	require.NotNil(t, userFlag)
	assert.Equal(t, "default", userFlag.DefValue)
}

func TestInitCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	initCmd, _, err := cmd.Find([]string{"init"})
	require.NoError(t, err)

	startFlag := initCmd.Flags().Lookup("start-date")
	require.NotNil(t, startFlag)
	assert.Equal(t, "", startFlag.DefValue)
}

func TestShieldUseFlags(t *testing.T) {
	cmd := NewRootCommand()
	useCmd, _, err := cmd.Find([]string{"shield", "use"})
	require.NoError(t, err)

	missedFlag := useCmd.Flags().Lookup("missed-date")
	require.NotNil(t, missedFlag)
	assert.Equal(t, "", missedFlag.DefValue)

	require.NotNil(t, useCmd.Flags().Lookup("evidence-type"))
	require.NotNil(t, useCmd.Flags().Lookup("description"))
}

func TestRecoveryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	requestCmd, _, err := cmd.Find([]string{"recovery", "request"})
	require.NoError(t, err)
	require.NotNil(t, requestCmd.Flags().Lookup("missed-date"))
	require.NotNil(t, requestCmd.Flags().Lookup("description"))

	approveCmd, _, err := cmd.Find([]string{"recovery", "approve"})
	require.NoError(t, err)
	require.NotNil(t, approveCmd.Flags().Lookup("admin"))
	require.NotNil(t, approveCmd.Flags().Lookup("notes"))

	listCmd, _, err := cmd.Find([]string{"recovery", "list"})
	require.NoError(t, err)
	require.NotNil(t, listCmd.Flags().Lookup("status"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "status"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
