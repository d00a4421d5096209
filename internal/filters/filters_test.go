// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/staranto/smctl/internal/attrs"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		delimiter string
		want      []string
		wantErr   string
	}{
		{name: "empty spec"},
		{name: "exact", spec: "chrom=1", want: []string{"chrom=1"}},
		{name: "prefix", spec: "eufid^abcd", want: []string{"eufid^abcd"}},
		{name: "fold keeps rest of target", spec: "name~^m6", want: []string{"name~^m6"}},
		{name: "negated", spec: "strand!=+", want: []string{"strand!=+"}},
		{name: "numeric", spec: "coverage>10", want: []string{"coverage>10"}},
		{name: "regexp", spec: "chrom/^chr[0-9]+$", want: []string{"chrom/^chr[0-9]+$"}},
		{name: "several", spec: "chrom=1,frequency>50", want: []string{"chrom=1", "frequency>50"}},
		{name: "empty conditions skipped", spec: "chrom=1,,", want: []string{"chrom=1"}},
		{name: "custom delimiter", spec: "chrom=1|name@m6A,m5C", delimiter: "|", want: []string{"chrom=1", "name@m6A,m5C"}},
		{name: "no operator", spec: "chrom=1,nonsense", wantErr: `invalid filter "nonsense"`},
		{name: "no key", spec: "=1", wantErr: `invalid filter "=1"`},
		{name: "bad regexp", spec: "chrom/(", wantErr: `invalid filter "chrom/("`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.delimiter != "" {
				t.Setenv("SMCTL_FILTER_DELIM", tt.delimiter)
			}
			got, err := Parse(tt.spec)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			var specs []string
			for _, f := range got {
				specs = append(specs, f.String())
			}
			assert.Equal(t, tt.want, specs)
		})
	}
}

func TestParse_Fields(t *testing.T) {
	got, err := Parse("strand!=+")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "strand", got[0].Key)
	assert.True(t, got[0].Negate)
	assert.Equal(t, "=", got[0].Operand)
	assert.Equal(t, "+", got[0].Target)
}

func mustParse(t *testing.T, spec string) Filter {
	t.Helper()
	fs, err := Parse(spec)
	require.NoError(t, err)
	require.Len(t, fs, 1)
	return fs[0]
}

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		spec  string
		value interface{}
		want  bool
	}{
		{"k=m6A", "m6A", true},
		{"k!=m6A", "m6A", false},
		{"k~m6a", "M6A", true},
		{"k^ENSG", "ENSG00000123", true},
		{"k^ENSG", "ENST00000123", false},
		{"k>chr1", "chrX", true},
		{"k<chrX", "chr1", true},
		{"k@coding", "protein_coding", true},
		{"k!@coding", "protein_coding", false},
		{`k/^chr\d+$`, "chr12", true},
		{`k!/^chr\d+$`, "chrM", true},
		{"k=true", true, true},
		{"k=42", 42.0, true},
		{"k= 42 ", 42.0, true},
		{"k!=41", 42.0, true},
		{"k>99.5", 100.0, true},
		{"k!>99", 99.0, true},
		{"k<10", 3.0, true},
		{"k^100", 1003.0, true},
		{"k<ten", 3.0, true},
		{"k@WTS", []any{"WTS", "mRNA"}, true},
		{"k@tRNA", []any{"WTS"}, false},
		{"k!@tRNA", []any{"WTS"}, true},
		{"k!@WTS", []any{"WTS"}, false},
		{"k>10", []any{3.0, 25.0}, true},
		{"k@kingdom", map[string]any{"kingdom": "Animalia"}, true},
		{"k!@phylum", map[string]any{"kingdom": "Animalia"}, true},
		{"k=x", map[string]any{"kingdom": "Animalia"}, false},
		{"k=x", nil, false},
		{"k!=x", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, mustParse(t, tt.spec).Match(tt.value), "%v", tt.value)
		})
	}
}

var recordAttrs = attrs.AttrList{
	{Key: "chrom", OutputKey: "chrom", Include: true},
	{Key: "start", OutputKey: "start", Include: true},
	{Key: "name", OutputKey: "name", Include: true},
	{Key: "coverage", OutputKey: "cov", Include: true},
}

func TestValidate(t *testing.T) {
	known := []string{"chrom", "start", "name", "coverage", "frequency", "taxa.kingdom"}

	tests := []struct {
		spec    string
		known   []string
		wantErr string
	}{
		{spec: "chrom=1", known: known},
		{spec: "cov>10", known: known},
		{spec: "frequency>50", known: known},
		{spec: "taxa@kingdom", known: known},
		{spec: "coverge>10", known: known, wantErr: `unknown filter key "coverge"`},
		{spec: "anything=1"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			fs, err := Parse(tt.spec)
			require.NoError(t, err)
			err = Validate(fs, recordAttrs, tt.known)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr+", see --schema")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFilterDataset(t *testing.T) {
	dataset := gjson.Parse(`
	[
		{"chrom": "1", "start": 10, "name": "m6A", "coverage": 30, "frequency": 80},
		{"chrom": "2", "start": 20, "name": "Y", "coverage": 5, "frequency": 10},
		{"chrom": "1", "start": 30, "name": "m5C", "coverage": 12, "frequency": 40}
	]
	`)

	tests := []struct {
		name      string
		spec      string
		wantNames []any
	}{
		{"no filters", "", []any{"m6A", "Y", "m5C"}},
		{"exact", "chrom=1", []any{"m6A", "m5C"}},
		{"column name", "cov>10", []any{"m6A", "m5C"}},
		{"record path not shown", "frequency>50", []any{"m6A"}},
		{"combined", "chrom=1,name@5", []any{"m5C"}},
		{"none", "name=m1A", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, err := Parse(tt.spec)
			require.NoError(t, err)
			var names []any
			for _, row := range FilterDataset(dataset, recordAttrs, fs) {
				names = append(names, row["name"])
				assert.NotContains(t, row, "frequency")
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}
