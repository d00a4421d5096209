// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	modomicsJSON = `[
  {"id":"21","reference_id":1,"name":"N6-methyladenosine","short_name":"m6A","moiety":"nucleoside"},
  {"id":"10","reference_id":2,"name":"pseudouridine","short_name":"Y","moiety":"nucleoside"},
  {"id":"35","reference_id":3,"name":"5-methylcytidine","short_name":"m5C","moiety":"nucleoside"}
]`
	projectsJSON = `[
  {"project_id":"P1","project_title":"Mouse atlas","contact_name":"Ann"},
  {"project_id":"P2","project_title":"Human cells","contact_name":"Bob"}
]`
)

func referenceHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v0/selections", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(selectionsJSON)) //nolint:errcheck
	})
	mux.HandleFunc("GET /api/v0/modomics", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(modomicsJSON)) //nolint:errcheck
	})
	mux.HandleFunc("GET /api/v0/project/list_all", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(projectsJSON)) //nolint:errcheck
	})
	mux.HandleFunc("GET /api/v0/project/list_mine", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"project_id":"P1","project_title":"Mouse atlas"}]`)) //nolint:errcheck
	})
	return mux
}

func TestCatalogFilters(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		key     string
		want    []any
		wantErr string
	}{
		{
			name: "selections of an RNA",
			args: []string{"selections", "--rna", "rRNA"},
			key:  "selection_id",
			want: []any{float64(3)},
		},
		{
			name: "selections of an RNA and taxon",
			args: []string{"selections", "--rna", "mRNA", "--taxa", "10090"},
			key:  "selection_id",
			want: []any{float64(4)},
		},
		{
			name:    "selections of an RNA without data",
			args:    []string{"selections", "--rna", "tRNA"},
			wantErr: `no modifications of RNA "tRNA"`,
		},
		{
			name: "modomics of an RNA",
			args: []string{"modomics", "--rna", "mRNA"},
			key:  "short_name",
			want: []any{"m6A"},
		},
		{
			name: "all modomics",
			args: []string{"modomics"},
			key:  "short_name",
			want: []any{"m6A", "Y", "m5C"},
		},
		{
			name: "projects by ID in the order asked",
			args: []string{"projects", "--id", "P2", "--id", "P1"},
			key:  "project_id",
			want: []any{"P2", "P1"},
		},
		{
			name:    "unknown project",
			args:    []string{"projects", "--id", "P9"},
			wantErr: `unknown project "P9"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testEnv(t, referenceHandler(), "")

			res := run(t, "", append(tt.args, "-o", "json")...)
			if tt.wantErr != "" {
				assert.ErrorContains(t, res.err, tt.wantErr)
				return
			}
			require.NoError(t, res.err)

			var got []any
			for _, r := range rows(t, res.stdout) {
				got = append(got, r[tt.key])
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjects_MineByID(t *testing.T) {
	testEnv(t, referenceHandler(), "")
	t.Setenv("SMCTL_TOKEN", jwtFor(t, "ann@example.org"))

	res := run(t, "", "projects", "--mine", "--id", "P1", "-o", "json")
	require.NoError(t, res.err)
	got := rows(t, res.stdout)
	require.Len(t, got, 1)
	assert.Equal(t, "Mouse atlas", got[0]["project_title"])

	// P2 is public but not the user's.
	res = run(t, "", "projects", "--mine", "--id", "P2", "-o", "json")
	assert.ErrorContains(t, res.err, `unknown project "P2"`)
}
