// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/staranto/smctl/internal/api"
)

func TestMatchDatasets(t *testing.T) {
	datasets := []api.Dataset{
		{DatasetID: "D1", DatasetTitle: "Liver m6A", ProjectTitle: "Mouse atlas"},
		{DatasetID: "D2", DatasetTitle: "HEK293 m6A", ProjectTitle: "Human cells"},
		{DatasetID: "D3", DatasetTitle: "HEK293 GLORI", ProjectTitle: "Human cells"},
	}

	t.Run("empty pattern keeps order", func(t *testing.T) {
		assert.Equal(t, datasets, matchDatasets("", datasets))
	})

	t.Run("project title", func(t *testing.T) {
		got := matchDatasets("atlas", datasets)
		assert.Len(t, got, 1)
		assert.Equal(t, "D1", got[0].DatasetID)
	})

	t.Run("best match first", func(t *testing.T) {
		got := matchDatasets("GLORI", datasets)
		if assert.NotEmpty(t, got) {
			assert.Equal(t, "D3", got[0].DatasetID)
		}
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, matchDatasets("zzz", datasets))
	})
}
