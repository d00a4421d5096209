// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package filters applies --filter to result rows before they are printed.
//
// A spec is a list of KEY OP TARGET conditions separated by "," (or
// $SMCTL_FILTER_DELIM). Every condition must hold for a row to be kept. KEY
// is a column of the listing or any record path shown by --schema, so
// "coverage>10" works whether or not coverage is displayed. OP is one of
//
//	=  equal           ~  equal ignoring case    ^  prefix
//	<  less than       >  greater than           @  contains
//	/  regexp match
//
// and a leading "!" negates it. Numbers compare numerically for = < and >.
// Lists match when any element does, and "@" on a list or object tests
// membership.
package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/staranto/smctl/internal/attrs"
	"github.com/staranto/smctl/internal/driller"
)

var conditionRe = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is one condition.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string

	re *regexp.Regexp
}

func (f Filter) String() string {
	op := f.Operand
	if f.Negate {
		op = "!" + op
	}
	return f.Key + op + f.Target
}

// Delimiter separates conditions, "," unless $SMCTL_FILTER_DELIM is set.
func Delimiter() string {
	if d, ok := os.LookupEnv("SMCTL_FILTER_DELIM"); ok && d != "" {
		return d
	}
	return ","
}

// Parse reads a --filter spec. Empty conditions are skipped. A condition
// without an operator or with a bad regexp is an error.
func Parse(spec string) ([]Filter, error) {
	var out []Filter
	if spec == "" {
		return out, nil
	}
	for _, cond := range strings.Split(spec, Delimiter()) {
		if strings.TrimSpace(cond) == "" {
			continue
		}
		parts := conditionRe.FindStringSubmatch(cond)
		if parts == nil || parts[1] == "" {
			return nil, fmt.Errorf("invalid filter %q: want KEY OP TARGET", cond)
		}
		f := Filter{
			Key:     strings.TrimSpace(parts[1]),
			Negate:  strings.HasPrefix(parts[2], "!"),
			Operand: strings.TrimPrefix(parts[2], "!"),
			Target:  parts[3],
		}
		if f.Operand == "/" {
			re, err := regexp.Compile(f.Target)
			if err != nil {
				return nil, fmt.Errorf("invalid filter %q: %w", cond, err)
			}
			f.re = re
		}
		out = append(out, f)
	}
	return out, nil
}

// Validate rejects conditions whose key is neither a column of al nor one
// of the known record paths. An empty known accepts any key.
func Validate(fs []Filter, al attrs.AttrList, known []string) error {
	for _, f := range fs {
		if _, ok := al.Column(f.Key); ok {
			continue
		}
		if len(known) == 0 || attrs.IsKnownPath(f.Key, known) {
			continue
		}
		return fmt.Errorf("unknown filter key %q, see --schema", f.Key)
	}
	return nil
}

// path is where the value of f's key lives in a record.
func (f Filter) path(al attrs.AttrList) string {
	if a, ok := al.Column(f.Key); ok {
		return a.Key
	}
	return f.Key
}

// FilterDataset keeps the rows of the JSON array that pass every filter and
// projects each onto the columns of al. Transforms are left to the caller.
func FilterDataset(rows gjson.Result, al attrs.AttrList, fs []Filter) []map[string]interface{} {
	paths := make([]string, len(fs))
	for i, f := range fs {
		paths[i] = f.path(al)
	}

	var out []map[string]interface{}
	for _, row := range rows.Array() {
		if !keep(row, fs, paths) {
			continue
		}
		projected := make(map[string]interface{}, len(al))
		for _, a := range al {
			projected[a.OutputKey] = driller.Driller(row.Raw, a.Key).Value()
		}
		out = append(out, projected)
	}
	return out
}

func keep(row gjson.Result, fs []Filter, paths []string) bool {
	for i, f := range fs {
		if !f.Match(driller.Driller(row.Raw, paths[i]).Value()) {
			return false
		}
	}
	return true
}

// Match reports whether value passes f. A missing value never does.
func (f Filter) Match(value interface{}) bool {
	if value == nil {
		return false
	}
	pos := f
	pos.Negate = false
	return pos.matches(value) != f.Negate
}

func (f Filter) matches(value interface{}) bool {
	switch v := value.(type) {
	case string:
		return f.matchString(v)
	case bool:
		return f.matchString(strconv.FormatBool(v))
	case float64:
		return f.matchNumber(v)
	case []interface{}:
		elem := f
		if f.Operand == "@" {
			elem.Operand = "="
		}
		for _, e := range v {
			if e != nil && elem.matches(e) {
				return true
			}
		}
		return false
	case map[string]interface{}:
		_, ok := v[f.Target]
		return f.Operand == "@" && ok
	}
	return false
}

// matchNumber compares numerically where the target is a number and falls
// back to the decimal form otherwise, so "start^100" is a prefix test.
func (f Filter) matchNumber(v float64) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	if err == nil {
		switch f.Operand {
		case "=":
			return v == tgt
		case "<":
			return v < tgt
		case ">":
			return v > tgt
		}
	}
	return f.matchString(strconv.FormatFloat(v, 'f', -1, 64))
}

func (f Filter) matchString(v string) bool {
	switch f.Operand {
	case "=":
		return v == f.Target
	case "~":
		return strings.EqualFold(v, f.Target)
	case "^":
		return strings.HasPrefix(v, f.Target)
	case "<":
		return v < f.Target
	case ">":
		return v > f.Target
	case "@":
		return strings.Contains(v, f.Target)
	case "/":
		re := f.re
		if re == nil {
			var err error
			if re, err = regexp.Compile(f.Target); err != nil {
				return false
			}
		}
		return re.MatchString(v)
	}
	return false
}
