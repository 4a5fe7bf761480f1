// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request for the error-handling policy: local
// validation failures never reach the network, auth failures force a
// logout, a missing key is a valid empty state, and server errors are
// surfaced with a friendly message.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindNotFound   Kind = "notfound"
	KindServer     Kind = "server"
	KindUnknown    Kind = "unknown"
)

// Error is the normalized failure shape every consumer branches on.
// Status is the HTTP status, or 0 for transport/parse failures.
type Error struct {
	Status  int
	Message string
	Kind    Kind
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// kindForStatus maps an HTTP status onto the taxonomy.
func kindForStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 404:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// KindOf extracts the Kind from any error. Non-API errors report
// KindUnknown.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// ValidationError builds a local pre-network failure. It never corresponds
// to a request that was actually sent.
func ValidationError(message string) *Error {
	return &Error{Status: 0, Message: message, Kind: KindValidation}
}
