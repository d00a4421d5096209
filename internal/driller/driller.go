// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var indexRegex = regexp.MustCompile(`\[(\d+)\]`)

type segment struct {
	key   string
	index bool
}

// Driller resolves path against the JSON document raw. Paths are dotted keys
// with optional [n] indexes, e.g. "a.eufid" or "records[0].chrom". A one
// element array is stepped through implicitly, so "a.b" works when a holds a
// single object. A missing path yields a zero Result.
func Driller(raw string, path string) gjson.Result {
	current := gjson.Parse(raw)

	for _, seg := range split(path) {
		if current.IsArray() && !seg.index {
			items := current.Array()
			if len(items) != 1 {
				return gjson.Result{}
			}
			current = items[0]
		}

		key := seg.key
		if !seg.index {
			key = gjson.Escape(key)
		}
		current = current.Get(key)
		if !current.Exists() {
			return current
		}
	}

	if current.IsArray() {
		if items := current.Array(); len(items) == 1 {
			return items[0]
		}
	}
	return current
}

// split turns "a.b[1].c" into a, b, 1 (index), c.
func split(path string) []segment {
	var segs []segment
	for _, part := range strings.Split(path, ".") {
		name := part
		var indexes []string
		if loc := indexRegex.FindStringIndex(part); loc != nil {
			name = part[:loc[0]]
			for _, m := range indexRegex.FindAllStringSubmatch(part[loc[0]:], -1) {
				indexes = append(indexes, m[1])
			}
		}
		if name != "" {
			segs = append(segs, segment{key: name})
		}
		for _, i := range indexes {
			segs = append(segs, segment{key: i, index: true})
		}
	}
	return segs
}
