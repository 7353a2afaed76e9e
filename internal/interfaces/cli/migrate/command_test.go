package migrate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCommand_GooseOnSQLite(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("database:\n  driver: sqlite\n  path: %s\nlogger:\n  level: error\n", filepath.Join(dir, "inventory.db"))
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o600))

	execute := func(args ...string) string {
		cmd := NewCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(append(args, "--config", configPath, "--strategy", "goose"))
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	execute("up")
	assert.Contains(t, execute("status"), "Current Version: 1")

	execute("down", "--steps", "1")
	assert.Contains(t, execute("status"), "Current Version: 0")
}

func TestMigrateCommand_AutoCannotRollBack(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("database:\n  driver: sqlite\n  path: %s\nlogger:\n  level: error\n", filepath.Join(dir, "inventory.db"))
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o600))

	cmd := NewCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"down", "--config", configPath, "--strategy", "auto"})
	assert.Error(t, cmd.Execute())
}
