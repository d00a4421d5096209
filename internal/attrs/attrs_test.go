// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrList_Set(t *testing.T) {
	tests := []struct {
		name      string
		initial   AttrList
		value     string
		wantAttrs AttrList
	}{
		{
			name:  "empty",
			value: "",
		},
		{
			name:  "star only",
			value: "*",
		},
		{
			name:  "plain keys",
			value: "chrom,start",
			wantAttrs: AttrList{
				{Key: "chrom", OutputKey: "chrom", Include: true},
				{Key: "start", OutputKey: "start", Include: true},
			},
		},
		{
			name:  "nested key takes last segment",
			value: "a.eufid",
			wantAttrs: AttrList{
				{Key: "a.eufid", OutputKey: "eufid", Include: true},
			},
		},
		{
			name:  "explicit output key",
			value: "b.chrom:cmp_chrom",
			wantAttrs: AttrList{
				{Key: "b.chrom", OutputKey: "cmp_chrom", Include: true},
			},
		},
		{
			name:  "leading dot ignored",
			value: ".coverage",
			wantAttrs: AttrList{
				{Key: "coverage", OutputKey: "coverage", Include: true},
			},
		},
		{
			name:  "excluded key",
			value: "!frequency",
			wantAttrs: AttrList{
				{Key: "frequency", OutputKey: "frequency", Include: false},
			},
		},
		{
			name:  "global transform",
			value: "*::U",
			wantAttrs: AttrList{
				{Key: "*", OutputKey: "*", Include: false, TransformSpec: "U"},
			},
		},
		{
			name:  "empty output key falls back to key",
			value: "name::l",
			wantAttrs: AttrList{
				{Key: "name", OutputKey: "name", Include: true, TransformSpec: "l"},
			},
		},
		{
			name:    "existing attr updated",
			initial: AttrList{{Key: "chrom", OutputKey: "chrom", Include: true}},
			value:   "chrom:c:8",
			wantAttrs: AttrList{
				{Key: "chrom", OutputKey: "c", Include: true, TransformSpec: "8"},
			},
		},
		{
			name:    "existing attr hidden by output key",
			initial: AttrList{{Key: "a.eufid", OutputKey: "eufid", Include: true}},
			value:   "!eufid",
			wantAttrs: AttrList{
				{Key: "a.eufid", OutputKey: "eufid", Include: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := append(AttrList{}, tt.initial...)
			require.NoError(t, a.Set(tt.value))
			assert.Len(t, a, len(tt.wantAttrs))
			for i, want := range tt.wantAttrs {
				assert.Equal(t, want, a[i], "attr[%d]", i)
			}
		})
	}
}

func TestAttrList_SetGlobalTransformSpec(t *testing.T) {
	a := AttrList{
		{Key: "*", TransformSpec: "U"},
		{Key: "chrom"},
		{Key: "name", TransformSpec: "l"},
	}
	require.NoError(t, a.SetGlobalTransformSpec())
	assert.Equal(t, "U,U", a[0].TransformSpec)
	assert.Equal(t, "U,", a[1].TransformSpec)
	assert.Equal(t, "U,l", a[2].TransformSpec)

	b := AttrList{{Key: "chrom", TransformSpec: "l"}}
	require.NoError(t, b.SetGlobalTransformSpec())
	assert.Equal(t, "l", b[0].TransformSpec)
}

func TestAttr_Transform(t *testing.T) {
	t.Setenv("SMCTL_CFG", "/nonexistent/smctl.yaml")

	tests := []struct {
		name string
		spec string
		in   interface{}
		want interface{}
	}{
		{"no spec", "", "Abc", "Abc"},
		{"lower", "l", "ENSG0001", "ensg0001"},
		{"upper", "U", "chrx", "CHRX"},
		{"later case wins", "U,l", "MiXed", "mixed"},
		{"truncate", "5", "abcdefgh", "abcde"},
		{"short value untouched", "5", "abc", "abc"},
		{"middle ellipsis", "-8", "abcd1234edgh", "abc..dgh"},
		{"later length wins", "3,6", "abcdefgh", "abcdef"},
		{"number passthrough", "U", 5.0, 5.0},
		{"map passthrough", "U", map[string]interface{}{"k": "v"}, map[string]interface{}{"k": "v"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := Attr{TransformSpec: tt.spec}
			assert.Equal(t, tt.want, attr.Transform(tt.in))
		})
	}
}

func TestAttr_Transform_Timezone(t *testing.T) {
	t.Setenv("SMCTL_CFG", "/nonexistent/smctl.yaml")

	tests := []struct {
		name string
		tz   string
		in   string
		want string
	}{
		{name: "TZ env var used", tz: "America/Los_Angeles", in: "2024-01-15T10:00:00Z", want: "2024-01-15T02:00:00PST"},
		{name: "no timezone passthrough", in: "2024-01-15T10:00:00Z", want: "2024-01-15T10:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TZ", tt.tz)
			attr := Attr{TransformSpec: "t"}
			assert.Equal(t, tt.want, attr.Transform(tt.in))
		})
	}
}

func TestAttrList_String(t *testing.T) {
	a := AttrList{
		{Key: "chrom", OutputKey: "c", TransformSpec: "U"},
		{Key: "a.eufid", OutputKey: "eufid"},
	}
	assert.Equal(t, "chrom:c:U,a.eufid:eufid:", a.String())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("chrom:c:U:x")
	assert.ErrorContains(t, err, `invalid attribute "chrom:c:U:x"`)

	_, err = Parse("chrom::Z")
	assert.ErrorContains(t, err, `invalid transform "Z" of attribute "chrom"`)

	var a AttrList
	assert.Error(t, a.Set("chrom,name::q"))
	assert.Empty(t, a)
}

func TestAttrList_Validate(t *testing.T) {
	known := []string{"a.chrom", "a.eufid", "b.chrom", "metadata.rna", "coverage"}

	tests := []struct {
		spec    string
		wantErr string
	}{
		{spec: "coverage"},
		{spec: "a.eufid:eufid:-8"},
		{spec: "!b.chrom"},
		{spec: "a"},
		{spec: "metadata[0].rna"},
		{spec: "*::U"},
		{spec: "coverge", wantErr: `unknown attribute "coverge"`},
		{spec: "a.chr", wantErr: `unknown attribute "a.chr"`},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			a, err := Parse(tt.spec)
			require.NoError(t, err)
			err = a.Validate(known)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	a, err := Parse("anything")
	require.NoError(t, err)
	assert.NoError(t, a.Validate(nil))
}

func TestAttrList_Column(t *testing.T) {
	a := AttrList{
		{Key: "*", OutputKey: "*"},
		{Key: "a.eufid", OutputKey: "eufid"},
	}
	got, ok := a.Column("eufid")
	assert.True(t, ok)
	assert.Equal(t, "a.eufid", got.Key)

	_, ok = a.Column("*")
	assert.False(t, ok)
}
