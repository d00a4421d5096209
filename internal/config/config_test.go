// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfig points SMCTL_CFG at a testdata file and resets Config.
func setupTestConfig(t *testing.T, testdataFile string) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	require.NoError(t, err, "failed to get absolute path for test config")

	t.Setenv("SMCTL_CFG", absPath)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple string values",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "text", cfg.Data["output"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				search, ok := cfg.Data["search"].(map[string]interface{})
				require.True(t, ok, "search should be a map")
				assert.Equal(t, "json", search["output"])
			},
		},
		{
			name:     "mixed types",
			testFile: "mixed-types.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.Equal(t, 1, cfg.Data["version"])
				assert.Equal(t, true, cfg.Data["titles"])
				assert.Equal(t, 2.5, cfg.Data["padding"])
				assert.Len(t, cfg.Data["columns"], 2)
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Empty(t, cfg.Data)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			cfg, err := Load()
			require.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("SMCTL_CFG", "/nonexistent/path/smctl.yaml")
	Config = Type{}

	_, err := Load()
	assert.ErrorContains(t, err, "config file not found")
}

func TestLoad_SMCTL_CFG_IsDirectory(t *testing.T) {
	t.Setenv("SMCTL_CFG", "testdata")
	Config = Type{}

	_, err := Load()
	assert.ErrorContains(t, err, "points to a directory")
}

func TestLoad_StandardLocation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SMCTL_CFG", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("APPDATA", "")
	t.Setenv("HOME", "")

	_, err := Load()
	assert.Error(t, err)

	data, err := os.ReadFile(filepath.Join("testdata", "simple.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), data, 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), cfg.Source)
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue []string
		want         string
		wantErr      bool
	}{
		{name: "top level", key: "datasets.output", want: "yaml"},
		{name: "nested", key: "colors.title", want: "#f6be00"},
		{name: "missing with default", key: "missing", defaultValue: []string{"dflt"}, want: "dflt"},
		{name: "missing without default", key: "missing", wantErr: true},
		{name: "non-string", key: "search.max_records", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, "nested.yaml")
			_, _ = Load()

			got, err := GetString(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetInt(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")
	_, _ = Load()

	got, err := GetInt("version")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = GetInt("padding")
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	got, err = GetInt("missing", 60)
	require.NoError(t, err)
	assert.Equal(t, 60, got)

	_, err = GetInt("name")
	assert.Error(t, err)
}

func TestGetStringSlice(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")

	got, err := GetStringSlice("columns")
	require.NoError(t, err)
	assert.Equal(t, []string{"chrom", "start"}, got)

	got, err = GetStringSlice("name")
	require.NoError(t, err)
	assert.Equal(t, []string{"smctl"}, got)

	_, err = GetStringSlice("version")
	assert.Error(t, err)
}

func TestConfig_Namespace(t *testing.T) {
	setupTestConfig(t, "nested.yaml")

	_, err := Load("search")
	require.NoError(t, err)

	got, err := GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "json", got)

	// Falls back to the bare key.
	got, err = GetString("colors.odd")
	require.NoError(t, err)
	assert.Equal(t, "#00c8f0", got)

	Config.Namespace = "datasets"
	got, err = GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "yaml", got)

	Config.Namespace = "taxa"
	_, err = GetString("output")
	assert.Error(t, err)
}

func TestConfig_LazyLoad(t *testing.T) {
	setupTestConfig(t, "simple.yaml")

	val, err := GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "text", val)
	assert.NotEmpty(t, Config.Source)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("SMCTL_API_URL", "http://localhost:5000/api/v0/")
	t.Setenv("SMCTL_CACHE_MAX_AGE", "1h")
	t.Setenv("SMCTL_S3_REGION", "eu-central-1")
	t.Setenv("SMCTL_S3_PATH_STYLE", "true")

	s, err := ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api/v0/", s.APIURL)
	assert.Equal(t, time.Hour, s.CacheMaxAge)
	assert.Equal(t, 2, s.Retries)
	assert.Equal(t, "eu-central-1", s.AWS.Region)
	assert.True(t, s.AWS.PathStyle)
}

func TestParseEnv_Invalid(t *testing.T) {
	t.Setenv("SMCTL_RETRIES", "-1")
	_, err := ParseEnv()
	assert.Error(t, err)

	t.Setenv("SMCTL_RETRIES", "many")
	_, err = ParseEnv()
	assert.Error(t, err)
}
