// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package aws reads upload sources from S3. Configuration follows the
// shell's AWS setup unless overridden.
package aws
