package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinPresets(t *testing.T) {
	presets, err := ParsePresets(builtinPresets)
	require.NoError(t, err)
	for _, name := range []string{"small", "demo", "populated"} {
		p, ok := presets[name]
		require.True(t, ok, name)
		assert.Positive(t, p.Users)
	}
}

func TestParsePresets_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "presets: [::"},
		{"missing name", "presets:\n  - users: 3\n"},
		{"negative", "presets:\n  - name: x\n    posts: -1\n"},
		{"probability", "presets:\n  - name: x\n    follow_probability: 1.5\n"},
		{"duplicate", "presets:\n  - name: x\n  - name: X\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePresets([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadPresets_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yml")
	require.NoError(t, os.WriteFile(path, []byte("presets:\n  - name: small\n    users: 2\n  - name: tiny\n    users: 1\n"), 0o600))

	presets, err := LoadPresets(path)
	require.NoError(t, err)
	assert.Equal(t, 2, presets["small"].Users)
	assert.Equal(t, 1, presets["tiny"].Users)
	assert.Contains(t, presets, "demo")

	_, err = LoadPresets(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
