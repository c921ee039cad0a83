// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package xmclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	cnserrors "github.com/NVIDIA/xm-capture/pkg/errors"
	"github.com/NVIDIA/xm-capture/pkg/record"
)

// StatusError describes a response whose status was not accepted.
type StatusError struct {
	StatusCode int
	URL        string
	Body       record.ErrorBody
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d from %s (code: %s, reason: %s, message: %s)",
		e.StatusCode, e.URL, e.Body.CodeString(), e.Body.ReasonString(), e.Body.MessageString())
}

func statusFailure(rawURL string, status int, body []byte) error {
	se := &StatusError{
		StatusCode: status,
		URL:        rawURL,
		Body:       record.ParseErrorBody(body),
	}
	code := cnserrors.ErrCodeUnexpectedStatus
	if status == 404 {
		code = cnserrors.ErrCodeNotFound
	}
	return cnserrors.WrapWithContext(code, "request rejected", se, map[string]any{
		"url":    rawURL,
		"status": status,
	})
}

func transportFailure(rawURL string, cause error) error {
	return cnserrors.WrapWithContext(cnserrors.ErrCodeTransportFailure, "request failed", cause,
		map[string]any{"url": rawURL})
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return cnserrors.IsCode(err, cnserrors.ErrCodeNotFound)
}

// LogError logs a client error with its URL and the server's error payload.
// A 404 is an expected outcome in several places and is logged at WARN;
// everything else is logged at ERROR.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...any) {
	if err == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	args := append([]any{}, attrs...)
	var se *StatusError
	switch {
	case errors.As(err, &se):
		args = append(args,
			"status", se.StatusCode,
			"url", se.URL,
			"code", se.Body.CodeString(),
			"reason", se.Body.ReasonString(),
			"message", se.Body.MessageString(),
		)
	default:
		if u, ok := cnserrors.ContextOf(err)["url"]; ok {
			args = append(args, "url", u)
		}
	}
	args = append(args, "error", err)

	level := slog.LevelError
	if IsNotFound(err) {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, msg, args...)
}
