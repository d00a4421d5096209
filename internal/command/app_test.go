// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/smctl/internal/api"
)

type runResult struct {
	stdout string
	stderr string
	err    error
}

// testEnv points smctl at a fake backend and a scratch config and
// credentials location.
func testEnv(t *testing.T, h http.Handler, cfg string) (credentials string) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "smctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	credentials = filepath.Join(dir, "credentials.json")

	t.Setenv("SMCTL_CFG", cfgPath)
	t.Setenv("SMCTL_API_URL", srv.URL+api.Prefix)
	t.Setenv("SMCTL_CREDENTIALS", credentials)
	t.Setenv("SMCTL_CACHE", "0")
	t.Setenv("SMCTL_RETRIES", "0")
	return credentials
}

func run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	ctx := context.Background()
	args = append([]string{"smctl"}, args...)

	m, err := NewMeta(ctx, args)
	require.NoError(t, err)
	app := InitApp(ctx, m)

	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)

	err = app.Run(ctx, args)
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func rows(t *testing.T, out string) []map[string]any {
	t.Helper()
	var r []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &r), out)
	return r
}

func jwtFor(t *testing.T, email string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return raw
}

const datasetsJSON = `[
  {"dataset_id":"D1","dataset_title":"Liver m6A","project_title":"Mouse atlas","taxa_id":10090},
  {"dataset_id":"D2","dataset_title":"HEK293 m6A","project_title":"Human cells","taxa_id":9606},
  {"dataset_id":"D3","dataset_title":"HeLa pseudouridine","project_title":"Human cells","taxa_id":9606}
]`

func catalogHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v0/dataset/list_all", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(datasetsJSON)) //nolint:errcheck
	})
	return mux
}

func TestDatasets_ByTaxa(t *testing.T) {
	testEnv(t, catalogHandler(), "")

	res := run(t, "", "datasets", "--taxa", "9606", "-o", "json")
	require.NoError(t, res.err)

	got := rows(t, res.stdout)
	require.Len(t, got, 2)
	assert.Equal(t, "D2", got[0]["dataset_id"])
	assert.Equal(t, "D3", got[1]["dataset_id"])
}

func TestDatasets_Match(t *testing.T) {
	testEnv(t, catalogHandler(), "")

	res := run(t, "", "datasets", "--match", "pseudo", "-o", "json")
	require.NoError(t, res.err)

	got := rows(t, res.stdout)
	require.Len(t, got, 1)
	assert.Equal(t, "D3", got[0]["dataset_id"])
}

func TestDatasets_OutputFromConfig(t *testing.T) {
	testEnv(t, catalogHandler(), "datasets:\n  output: json\n  attrs: project_title\n")

	res := run(t, "", "datasets", "--taxa", "10090")
	require.NoError(t, res.err)

	got := rows(t, res.stdout)
	require.Len(t, got, 1)
	assert.Equal(t, "Mouse atlas", got[0]["project_title"])
}

func TestDatasets_Schema(t *testing.T) {
	testEnv(t, catalogHandler(), "")

	res := run(t, "", "datasets", "--schema")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "dataset_title")
}

func TestDatasets_BadFilter(t *testing.T) {
	testEnv(t, catalogHandler(), "")

	res := run(t, "", "datasets", "--filter", "dataset_title", "-o", "json")
	assert.ErrorContains(t, res.err, "invalid filter")
}

func TestDatasets_FilterAndAttrKeys(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v0/dataset/list_all", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte(datasetsJSON)) //nolint:errcheck
	})
	testEnv(t, mux, "")

	tests := []struct {
		name    string
		args    []string
		wantErr string
		wantIDs []any
	}{
		{
			name:    "misspelled filter key",
			args:    []string{"--filter", "taxa_idd=9606"},
			wantErr: `unknown filter key "taxa_idd"`,
		},
		{
			name:    "misspelled attr",
			args:    []string{"--attrs", "project_titel"},
			wantErr: `unknown attribute "project_titel"`,
		},
		{
			name:    "filter on a hidden record path",
			args:    []string{"--filter", "taxa_id=9606"},
			wantIDs: []any{"D2", "D3"},
		},
		{
			name:    "filter on a renamed column",
			args:    []string{"--attrs", "dataset_title:title", "--filter", "title~hela pseudouridine"},
			wantIDs: []any{"D3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := hits.Load()
			res := run(t, "", append([]string{"datasets", "-o", "json"}, tt.args...)...)
			if tt.wantErr != "" {
				assert.ErrorContains(t, res.err, tt.wantErr)
				assert.Equal(t, before, hits.Load(), "no request on a bad key")
				return
			}
			require.NoError(t, res.err)
			var ids []any
			for _, r := range rows(t, res.stdout) {
				ids = append(ids, r["dataset_id"])
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestDatasets_BackendError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v0/dataset/list_all", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`)) //nolint:errcheck
	})
	testEnv(t, mux, "")

	res := run(t, "", "datasets", "-o", "json")
	require.Error(t, res.err)
	assert.Contains(t, api.UserMessage(res.err), "boom")
}

func TestMayChange_NotLoggedIn(t *testing.T) {
	testEnv(t, http.NewServeMux(), "")

	res := run(t, "", "may-change", "D1", "-o", "json")
	assert.ErrorIs(t, res.err, api.ErrNotLoggedIn)
}

func TestMayChange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v0/user/may_change_dataset/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
		w.Write([]byte(`{"write_access":` + boolJSON(r.PathValue("id") == "D1") + `}`)) //nolint:errcheck
	})
	mux.HandleFunc("GET /api/v0/dataset/list_mine", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"dataset_id":"D1","dataset_title":"Liver m6A"}]`)) //nolint:errcheck
	})
	testEnv(t, mux, "")
	t.Setenv("SMCTL_TOKEN", jwtFor(t, "ann@example.org"))

	res := run(t, "", "may-change", "D1", "D2", "-o", "json")
	require.NoError(t, res.err)

	got := rows(t, res.stdout)
	require.Len(t, got, 2)
	assert.Equal(t, true, got[0]["write_access"])
	assert.Equal(t, "Liver m6A", got[0]["dataset_title"])
	assert.Equal(t, false, got[1]["write_access"])
	assert.Nil(t, got[1]["dataset_title"])
}

func boolJSON(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func bamHandler(deletes *atomic.Int32) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/v0/bam_file/{dataset}/{name}", func(w http.ResponseWriter, _ *http.Request) {
		deletes.Add(1)
		w.Write([]byte(`{}`)) //nolint:errcheck
	})
	return mux
}

func TestBamDelete_Yes(t *testing.T) {
	var deletes atomic.Int32
	testEnv(t, bamHandler(&deletes), "")
	t.Setenv("SMCTL_TOKEN", jwtFor(t, "ann@example.org"))

	res := run(t, "", "bam", "delete", "--dataset", "D1", "--name", "a.bam", "--yes")
	require.NoError(t, res.err)
	assert.Equal(t, int32(1), deletes.Load())
}

func TestBamDelete_Prompt(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		deletes int32
		wantErr error
	}{
		{name: "yes", answer: "y\n", deletes: 1},
		{name: "no", answer: "n\n", wantErr: ErrAborted},
		{name: "empty", answer: "", wantErr: ErrAborted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var deletes atomic.Int32
			testEnv(t, bamHandler(&deletes), "")
			t.Setenv("SMCTL_TOKEN", jwtFor(t, "ann@example.org"))

			res := run(t, tt.answer, "bam", "delete", "--dataset", "D1", "--name", "a.bam")
			if tt.wantErr != nil {
				assert.ErrorIs(t, res.err, tt.wantErr)
			} else {
				assert.NoError(t, res.err)
			}
			assert.Equal(t, tt.deletes, deletes.Load())
			assert.Contains(t, res.stderr, "[y/N]")
		})
	}
}

func TestBamURL(t *testing.T) {
	testEnv(t, http.NewServeMux(), "")

	res := run(t, "", "bam", "url", "--dataset", "D1", "--name", "a b.bam")
	require.NoError(t, res.err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(res.stdout), "/api/v0/bam_file/D1/a%20b.bam"), res.stdout)
}

func TestAuth_SetTokenStatusLogout(t *testing.T) {
	credentials := testEnv(t, http.NewServeMux(), "")

	res := run(t, jwtFor(t, "ann@example.org")+"\n", "auth", "set-token")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "ann@example.org")
	assert.FileExists(t, credentials)

	res = run(t, "", "auth", "status", "-o", "json")
	require.NoError(t, res.err)
	got := rows(t, res.stdout)
	require.Len(t, got, 1)
	assert.Equal(t, "ann@example.org", got[0]["email"])
	assert.Equal(t, true, got[0]["logged_in"])

	res = run(t, "", "auth", "logout")
	require.NoError(t, res.err)
	assert.NoFileExists(t, credentials)

	res = run(t, "", "auth", "status", "-o", "json")
	require.NoError(t, res.err)
	assert.Equal(t, false, rows(t, res.stdout)[0]["logged_in"])
}

func TestAuth_SetTokenRejectsGarbage(t *testing.T) {
	credentials := testEnv(t, http.NewServeMux(), "")

	res := run(t, "not-a-jwt\n", "auth", "set-token")
	assert.Error(t, res.err)
	assert.NoFileExists(t, credentials)
}

func TestAuth_Workflow(t *testing.T) {
	testEnv(t, http.NewServeMux(), "")

	res := run(t, "", "auth", "workflow", `{"operation":"user_registration","result":"success","email":"ann@example.org"}`)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "LOGIN")
	assert.Contains(t, res.stdout, "please login")

	res = run(t, "", "auth", "workflow", "garbage")
	assert.Error(t, res.err)
}

func TestProjectPost_DryRun(t *testing.T) {
	testEnv(t, http.NewServeMux(), "")

	form := `
forename: Ann
surname: Smith
contact_institution: Somewhere
contact_email: ann@example.org
title: A project
summary: Things
external_sources:
  - doi: ""
  - doi: 10.1/x
`
	res := run(t, form, "project-post", "--dry-run")
	require.NoError(t, res.err)

	var req api.ProjectPostRequest
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &req))
	assert.Equal(t, "Smith, Ann", req.ContactName)
	assert.Len(t, req.ExternalSources, 1)
}

func TestProjectPost(t *testing.T) {
	var got api.ProjectPostRequest
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v0/management/project", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{}`)) //nolint:errcheck
	})
	testEnv(t, mux, "")
	t.Setenv("SMCTL_TOKEN", jwtFor(t, "ann@example.org"))

	res := run(t, "forename: Ann\nsurname: Smith\ntitle: A project\n", "project-post")
	require.NoError(t, res.err)
	assert.Equal(t, "A project", got.Title)
	assert.Contains(t, res.stderr, "submitted")
}

func TestCompletion(t *testing.T) {
	testEnv(t, http.NewServeMux(), "")

	res := run(t, "", "completion", "bash")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "complete -F _smctl smctl")

	res = run(t, "", "completion", "zsh")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "#compdef smctl")
}

func TestCachePurge(t *testing.T) {
	testEnv(t, http.NewServeMux(), "")
	dir := t.TempDir()
	t.Setenv("SMCTL_CACHE_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entry"), []byte("x"), 0o600))

	res := run(t, "", "cache", "purge")
	require.NoError(t, res.err)
	assert.FileExists(t, filepath.Join(dir, "entry"))

	res = run(t, "", "cache", "purge", "--all")
	require.NoError(t, res.err)
	assert.NoFileExists(t, filepath.Join(dir, "entry"))
	assert.Contains(t, res.stderr, "Removed 1")
}

func TestFlagsSorted(t *testing.T) {
	testEnv(t, http.NewServeMux(), "")
	m, err := NewMeta(context.Background(), []string{"smctl", "search"})
	require.NoError(t, err)
	app := InitApp(context.Background(), m)

	search := app.Command("search")
	require.NotNil(t, search)
	for i := 1; i < len(search.Flags); i++ {
		assert.LessOrEqual(t, search.Flags[i-1].Names()[0], search.Flags[i].Names()[0])
	}
}
