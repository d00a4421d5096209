// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package attrs parses --attrs, the column selection of every listing.
//
// A spec is a comma separated list of KEY[:COLUMN[:TRANSFORM]] entries. KEY
// is a dotted path into a record as shown by --schema, e.g. "eufid" for a
// modification site or "b.chrom" for the comparison side of an intersection.
// A leading "!" keeps the key for filtering and sorting but hides the column.
// The key "*" carries a transform applied to every column.
package attrs

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/smctl/internal/config"
)

// Attr is one output column.
type Attr struct {
	// Key is the record path the value is read from.
	Key string
	// Include is false for columns used only to filter or sort.
	Include bool
	// OutputKey is the column title and the key in json and yaml output.
	OutputKey string
	// TransformSpec holds the transform letters and widths, see Transform.
	TransformSpec string
}

var (
	transformRe = regexp.MustCompile(`^[tTlLuU0-9,-]*$`)
	widthRe     = regexp.MustCompile(`-?\d+`)
	indexRe     = regexp.MustCompile(`\[\d+\]`)
)

// Transform renders value per TransformSpec. Only strings are changed:
//
//	t, T  RFC3339 UTC time to the configured timezone
//	l, u  lower or upper case, the later letter wins
//	N     keep the first N characters
//	-N    keep N characters with ".." in the middle (long EUFIDs, gene IDs)
//
// A spec may be prefixed by the global "*" spec, so later entries win.
func (a Attr) Transform(value interface{}) interface{} {
	s, ok := value.(string)
	if !ok {
		return value
	}
	if strings.ContainsAny(a.TransformSpec, "tT") {
		s = localTime(s)
	}
	s = applyCase(s, a.TransformSpec)
	return applyWidth(s, a.TransformSpec)
}

// localTime converts an RFC3339 timestamp to the "timezone" config value or
// $TZ. Without either, or for anything not a timestamp, s is returned as is.
func localTime(s string) string {
	tz, _ := config.GetString("timezone", "")
	if tz == "" {
		tz = os.Getenv("TZ")
	}
	if tz == "" {
		return s
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Debugf("unknown timezone %q: %v", tz, err)
		return s
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		log.Debugf("not a timestamp: %s", s)
		return s
	}
	return t.In(loc).Format("2006-01-02T15:04:05MST")
}

func applyCase(s, spec string) string {
	lower := strings.LastIndexAny(spec, "lL")
	upper := strings.LastIndexAny(spec, "uU")
	switch {
	case lower > upper:
		return strings.ToLower(s)
	case upper > lower:
		return strings.ToUpper(s)
	}
	return s
}

func applyWidth(s, spec string) string {
	widths := widthRe.FindAllString(spec, -1)
	if len(widths) == 0 {
		return s
	}
	n, _ := strconv.Atoi(widths[len(widths)-1])
	width := max(n, -n)
	if len(s) <= width {
		return s
	}
	if n >= 0 {
		return s[:width]
	}
	keep := width/2 - 1
	return s[:keep] + ".." + s[len(s)-keep:]
}

// AttrList is the ordered set of output columns.
type AttrList []Attr

// String renders the list back in --attrs form.
func (a AttrList) String() string {
	parts := make([]string, 0, len(a))
	for _, attr := range a {
		parts = append(parts, attr.Key+":"+attr.OutputKey+":"+attr.TransformSpec)
	}
	return strings.Join(parts, ",")
}

// Parse reads an --attrs spec. "" and "*" are empty lists.
func Parse(spec string) (AttrList, error) {
	var out AttrList
	if spec == "" || spec == "*" {
		return out, nil
	}
	for _, entry := range strings.Split(spec, ",") {
		attr, ok, err := parseEntry(entry)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, attr)
		}
	}
	return out, nil
}

func parseEntry(entry string) (Attr, bool, error) {
	fields := strings.Split(entry, ":")
	if len(fields) > 3 {
		return Attr{}, false, fmt.Errorf("invalid attribute %q: want KEY[:COLUMN[:TRANSFORM]]", entry)
	}

	key := strings.TrimSpace(fields[0])
	include := !strings.HasPrefix(key, "!")
	key = strings.TrimPrefix(strings.TrimPrefix(key, "!"), ".")
	if key == "" {
		return Attr{}, false, nil
	}

	attr := Attr{Key: key, Include: include && key != "*"}
	switch {
	case len(fields) == 1:
		attr.OutputKey = key[strings.LastIndex(key, ".")+1:]
	case strings.TrimSpace(fields[1]) == "":
		attr.OutputKey = key
	default:
		attr.OutputKey = strings.TrimSpace(fields[1])
	}
	if len(fields) == 3 {
		attr.TransformSpec = strings.TrimSpace(fields[2])
		if !transformRe.MatchString(attr.TransformSpec) {
			return Attr{}, false, fmt.Errorf("invalid transform %q of attribute %q", attr.TransformSpec, key)
		}
	}
	return attr, true, nil
}

// Set parses value and merges it into the list. An entry naming an existing
// key or column replaces that column's settings in place.
func (a *AttrList) Set(value string) error {
	parsed, err := Parse(value)
	if err != nil {
		return err
	}
	a.Merge(parsed)
	return nil
}

// Merge folds other into the list, see Set.
func (a *AttrList) Merge(other AttrList) {
next:
	for _, attr := range other {
		for i := range *a {
			cur := &(*a)[i]
			if cur.Key == attr.Key || cur.OutputKey == attr.Key {
				cur.Include = attr.Include
				cur.OutputKey = attr.OutputKey
				cur.TransformSpec = attr.TransformSpec
				continue next
			}
		}
		*a = append(*a, attr)
	}
}

// Column returns the attr shown under the column name.
func (a AttrList) Column(name string) (Attr, bool) {
	for _, attr := range a {
		if attr.OutputKey == name && attr.Key != "*" {
			return attr, true
		}
	}
	return Attr{}, false
}

// Validate rejects keys that are not record paths. known lists the paths of
// the record type, see output.SchemaPaths. An empty known accepts anything.
func (a AttrList) Validate(known []string) error {
	if len(known) == 0 {
		return nil
	}
	for _, attr := range a {
		if attr.Key != "*" && !IsKnownPath(attr.Key, known) {
			return fmt.Errorf("unknown attribute %q, see --schema", attr.Key)
		}
	}
	return nil
}

// IsKnownPath reports whether key addresses one of the known paths or an
// object holding some of them. Indexes are skipped, so "metadata[0].rna"
// matches the schema path "metadata.rna".
func IsKnownPath(key string, known []string) bool {
	key = indexRe.ReplaceAllString(key, "")
	for _, p := range known {
		if p == key || strings.HasPrefix(p, key+".") {
			return true
		}
	}
	return false
}

// SetGlobalTransformSpec prefixes every attr's transform with the one of
// the "*" entry, if any.
func (a *AttrList) SetGlobalTransformSpec() error {
	global := ""
	for _, attr := range *a {
		if attr.Key == "*" {
			global = attr.TransformSpec
			break
		}
	}
	if global == "" {
		return nil
	}
	for i := range *a {
		(*a)[i].TransformSpec = global + "," + (*a)[i].TransformSpec
	}
	return nil
}
