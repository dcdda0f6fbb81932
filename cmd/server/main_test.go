// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejzpr/affinity-mcp/internal/affection"
	"github.com/tejzpr/affinity-mcp/internal/config"
	"github.com/tejzpr/affinity-mcp/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["init"])
	assert.True(t, names["version"])
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestVersionCmd(t *testing.T) {
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "dev\n", out.String())
}

func TestInitCmd(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, config.DefaultConfigDir, config.DefaultConfigFile)

	run := func(args ...string) (string, error) {
		cmd := NewRootCmd()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	out, err := run("init")
	require.NoError(t, err)
	assert.Equal(t, "Wrote "+path+"\n", out)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	_, err = run("init")
	assert.Error(t, err)

	_, err = run("init", "--force")
	assert.NoError(t, err)

	custom := filepath.Join(t.TempDir(), "custom.json")
	out, err = run("--config", custom, "init")
	require.NoError(t, err)
	assert.Equal(t, "Wrote "+custom+"\n", out)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{"store": {"type": "memory"}, "affection": {"default_affection": 12}}`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.StoreTypeMemory, cfg.Store.Type)
	assert.Equal(t, 12, cfg.Affection.DefaultAffection)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestMigrateCmd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "affinity.db")
	path := writeConfig(t, fmt.Sprintf(
		`{"store": {"type": "database"}, "database": {"type": "sqlite", "sqlite_path": %q}}`, dbPath))

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--config", path, "migrate", "--drop"})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestRunMigrate_WrongStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Type = config.StoreTypeMemory

	err := runMigrate(cfg, zerolog.Nop(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate requires")
}

func TestRebuildCmd_GitToDatabase(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, fmt.Sprintf(`{
		"store": {"type": "database", "git": {"path": %q}},
		"database": {"type": "sqlite", "sqlite_path": %q}
	}`, filepath.Join(dir, "store"), filepath.Join(dir, "affinity.db")))

	ctx := context.Background()
	gs, err := store.NewGitStore(filepath.Join(dir, "store"))
	require.NoError(t, err)
	data, err := affection.MarshalRecord(affection.NewRecord("alice", "Alice", 42, 1_700_000_000))
	require.NoError(t, err)
	require.NoError(t, gs.Set(ctx, "default", store.StoreKey("alice"), data))

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--config", path, "rebuild", "--from", "git", "--scope", "default"})
	require.NoError(t, cmd.Execute())

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	db, closeDB, err := store.Open(ctx, cfg)
	require.NoError(t, err)
	defer closeDB()

	value, found, err := db.Get(ctx, "default", store.StoreKey("alice"))
	require.NoError(t, err)
	require.True(t, found)
	rec, err := affection.UnmarshalRecord(value)
	require.NoError(t, err)
	assert.Equal(t, 42, rec.AffectionValue)
}

func TestRunRebuild_SameStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Type = config.StoreTypeMemory

	err := runRebuild(context.Background(), cfg, zerolog.Nop(), config.StoreTypeMemory, nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both")
}
