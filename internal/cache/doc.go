// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides revisioned in-memory caches. A Cache memoizes the
// result of a fetch function; dependent caches derive their value from a
// parent cache and recompute whenever the parent's revision advances.
package cache
