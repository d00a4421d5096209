// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"github.com/sahilm/fuzzy"

	"github.com/staranto/smctl/internal/api"
)

// datasetSource exposes dataset titles to fuzzy matching.
type datasetSource []api.Dataset

func (s datasetSource) String(i int) string {
	return s[i].DatasetTitle + " " + s[i].ProjectTitle
}

func (s datasetSource) Len() int {
	return len(s)
}

// matchDatasets keeps the datasets whose dataset or project title fuzzily
// matches pattern, best match first. An empty pattern keeps everything in
// the original order.
func matchDatasets(pattern string, datasets []api.Dataset) []api.Dataset {
	if pattern == "" {
		return datasets
	}
	matches := fuzzy.FindFrom(pattern, datasetSource(datasets))
	out := make([]api.Dataset, 0, len(matches))
	for _, m := range matches {
		out = append(out, datasets[m.Index])
	}
	return out
}
