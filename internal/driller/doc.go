// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package driller resolves dotted attribute paths against JSON records so
// that output and filtering can address nested fields.
package driller
