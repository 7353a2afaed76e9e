package seed

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invprov/internal/infrastructure/database"
	"invprov/internal/infrastructure/migration"
	sharedConfig "invprov/internal/shared/config"
)

const seedDoc = `devices:
  - type: OLT
    serial: OLT1
  - type: ONT
    serial: ALCL0001
    parent: OLT1
    model: G-240W
`

func writeFixtures(t *testing.T) (configPath, seedPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "inventory.db")

	gdb, err := database.Open(&sharedConfig.DatabaseConfig{Driver: "sqlite", Path: dbPath})
	require.NoError(t, err)
	manager, err := migration.NewManager(migration.StrategyAuto, "sqlite")
	require.NoError(t, err)
	require.NoError(t, manager.Migrate(gdb))
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	configPath = filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("database:\n  driver: sqlite\n  path: %s\nlogger:\n  level: error\n", dbPath)
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o600))

	seedPath = filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(seedDoc), 0o600))
	return configPath, seedPath
}

func TestSeedCommand(t *testing.T) {
	configPath, seedPath := writeFixtures(t)

	runOnce := func() string {
		cmd := NewCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--config", configPath, "--file", seedPath})
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	assert.Contains(t, runOnce(), "created 2, skipped 0")
	assert.Contains(t, runOnce(), "created 0, skipped 2")
}

func TestSeedCommand_MissingFile(t *testing.T) {
	cmd := NewCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--file", filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, cmd.Execute())
}
