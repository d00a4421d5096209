// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package api wraps the Sci-ModoM REST backend.
//
// Every call normalizes failures into a *RequestError carrying a message
// for the user and one for the logs. Most wrappers also report the error to
// the shared dialog state before returning it; callers that have nothing
// more to do can drop such errors with IgnoreRequestError.
package api
