package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rosshadden/emcee/internal/config"
)

// TestInitCommand writes defaults once and refuses to overwrite without --force.
func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emcee.yaml")

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"init", path})
	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)

	rootCmd.SetArgs([]string{"init", path})
	require.ErrorIs(t, rootCmd.Execute(), errConfigExists)

	rootCmd.SetArgs([]string{"init", "--force", path})
	require.NoError(t, rootCmd.Execute())

	initForce = false
}
