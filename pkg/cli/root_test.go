package cli

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), runErr
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	assert.Equal(t, "collie", root.Name)
	assert.NotNil(t, root.Subcommands)
	assert.NotNil(t, root.Flags)

	expectedCommands := []string{"serve", "key"}
	for _, cmdName := range expectedCommands {
		assert.Contains(t, root.Subcommands, cmdName)
		assert.NotNil(t, root.Subcommands[cmdName])
	}
	assert.Equal(t, len(expectedCommands), len(root.Subcommands))
}

func TestCommandUsage(t *testing.T) {
	root := NewRootCommand()

	output, err := captureStdout(t, root.usage)
	assert.NoError(t, err)
	assert.Contains(t, output, "Usage: collie <command> [args]")
	assert.Contains(t, output, "Commands:")
	assert.Contains(t, output, "serve")
	assert.Contains(t, output, "key")
}

func TestCommandExecute_NoArgs(t *testing.T) {
	root := NewRootCommand()

	oldArgs := os.Args
	os.Args = []string{"collie"}
	defer func() { os.Args = oldArgs }()

	output, err := captureStdout(t, root.Execute)
	assert.NoError(t, err)
	assert.Contains(t, output, "Usage: collie <command> [args]")
}

func TestCommandExecute_HelpFlag(t *testing.T) {
	for _, helpFlag := range []string{"-h", "--help"} {
		t.Run(helpFlag, func(t *testing.T) {
			root := NewRootCommand()

			oldArgs := os.Args
			os.Args = []string{"collie", helpFlag}
			defer func() { os.Args = oldArgs }()

			output, err := captureStdout(t, root.Execute)
			assert.NoError(t, err)
			assert.Contains(t, output, "Usage: collie <command> [args]")
		})
	}
}

func TestCommandExecute_ValidSubcommand(t *testing.T) {
	root := NewRootCommand()

	var receivedArgs []string
	root.Subcommands["test"] = &Command{
		Name:        "test",
		Description: "Test command",
		Run: func(args []string) error {
			receivedArgs = args
			return nil
		},
	}

	oldArgs := os.Args
	os.Args = []string{"collie", "test", "arg1", "-flag"}
	defer func() { os.Args = oldArgs }()

	err := root.Execute()
	assert.NoError(t, err)
	require.Equal(t, []string{"arg1", "-flag"}, receivedArgs)
}

func TestCommandExecute_UnknownCommand(t *testing.T) {
	root := NewRootCommand()

	oldArgs := os.Args
	os.Args = []string{"collie", "nonexistent"}
	defer func() { os.Args = oldArgs }()

	err := root.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command: nonexistent")
}
