// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf)
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	err := h.HandleLog(&log.Entry{
		Level:   log.WarnLevel,
		Message: "retrying",
		Fields:  log.Fields{"url": "http://x/api/v0/selection", "attempt": 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02 03:04:05 W retrying attempt=2 url=http://x/api/v0/selection\n", buf.String())
}

func TestInitLogger(t *testing.T) {
	t.Setenv("SMCTL_LOG", "debug")
	InitLogger()
	assert.Equal(t, log.DebugLevel, log.Log.(*log.Logger).Level)

	t.Setenv("SMCTL_LOG", "")
	InitLogger()
	assert.Equal(t, log.ErrorLevel, log.Log.(*log.Logger).Level)

	t.Setenv("SMCTL_LOG", "loud")
	InitLogger()
	assert.Equal(t, log.ErrorLevel, log.Log.(*log.Logger).Level)
}
