package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curves.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
asof: "2025-01-15"
curves:
  - id: EUR-DEP
    currency: EUR
    method: LogLinear
    variable: Discount
    day_count: ACT/365F
    calendar: WeekendsOnly
    deposits:
      - {id: DEP1M, months: 1, rate: 0.020, day_count: ACT/360}
      - {id: DEP3M, months: 3, rate: 0.021, day_count: ACT/360}
      - {id: DEP6M, months: 6, rate: 0.022, day_count: ACT/360}
`), 0o644))

	cmd := buildCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	require.NoError(t, cmd.Flags().Set("file", path))
	require.NoError(t, cmd.RunE(cmd, nil))

	got := out.String()
	assert.Contains(t, got, "EUR-DEP")
	assert.Contains(t, got, "Converged")
	// One row per instrument pillar: 1M rolls off the weekend to Feb 17.
	assert.Contains(t, got, "2025-02-17")
	assert.Contains(t, got, "2025-04-15")
	assert.Contains(t, got, "2025-07-15")
}

func TestBuildCommandBadFile(t *testing.T) {
	cmd := buildCmd()
	require.NoError(t, cmd.Flags().Set("file", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, cmd.RunE(cmd, nil))
}
