// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apex/log"

	"github.com/staranto/smctl/internal/dialog"
)

// NotLoggedInMessage is shown when an authenticated call is made without a
// valid access token.
const NotLoggedInMessage = "You are not logged in - maybe your session expired."

var ErrNotLoggedIn = errors.New("not logged in")

// RequestError is a failed backend call. UserMessage is meant for the user,
// TechnicalMessage for the logs. Err is the transport error, if any.
type RequestError struct {
	UserMessage      string
	TechnicalMessage string
	StatusCode       int
	Err              error
}

func (e *RequestError) Error() string {
	return e.TechnicalMessage
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// errorResponse is the JSON body the backend sends with failures.
// UserMessage is set for expected problems the user can fix.
type errorResponse struct {
	Message     *string `json:"message"`
	UserMessage string  `json:"user_message"`
}

func prefix(errCtx string) string {
	if errCtx == "" {
		return ""
	}
	return errCtx + ": "
}

// responseError normalizes a non-200 response.
func responseError(errCtx string, status int, body []byte) *RequestError {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Message != nil {
		technical := fmt.Sprintf("%sHTTP status %d - %s", prefix(errCtx), status, *er.Message)
		user := technical
		if er.UserMessage != "" {
			user = er.UserMessage
		}
		return &RequestError{UserMessage: user, TechnicalMessage: technical, StatusCode: status}
	}

	technical := fmt.Sprintf("%sHTTP status %d - please contact the system administrator.", prefix(errCtx), status)
	return &RequestError{UserMessage: technical, TechnicalMessage: technical, StatusCode: status}
}

// transportError normalizes a failure that produced no response.
func transportError(errCtx string, err error) *RequestError {
	msg := prefix(errCtx) + err.Error()
	return &RequestError{UserMessage: msg, TechnicalMessage: msg, Err: err}
}

// UserMessage returns what should be shown to the user for err.
func UserMessage(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.UserMessage
	}
	return err.Error()
}

// Report logs err and shows it as ERROR_ALERT. Patches are applied
// afterwards and may override the kind. err is returned unchanged.
func Report(state *dialog.State, err error, patches ...dialog.Patch) error {
	if err == nil {
		return nil
	}
	log.Info(err.Error())
	msg := UserMessage(err)
	state.Apply(append([]dialog.Patch{{Kind: ptr(dialog.ErrorAlert), Message: &msg}}, patches...)...)
	return err
}

// IgnoreRequestError returns nil for a *RequestError, which has already been
// reported, and err otherwise.
func IgnoreRequestError(err error) error {
	var re *RequestError
	if errors.As(err, &re) {
		return nil
	}
	return err
}

func ptr[T any](v T) *T {
	return &v
}
