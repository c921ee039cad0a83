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

package cli

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/xm-capture/pkg/capture"
	"github.com/NVIDIA/xm-capture/pkg/server"
)

// startStatusServer serves /v1/status for c until the returned stop func is
// called or ctx is done. Binding happens before it returns so a bad address
// fails the command before any request is sent.
func startStatusServer(ctx context.Context, addr string, c *capture.Capturer) (stop func() error, err error) {
	srv := server.New(
		server.WithName(name, version),
		server.WithAddress(addr),
		server.WithHandler(map[string]http.HandlerFunc{
			"/v1/status": statusHandler(c),
		}),
	)
	if err := srv.Listen(); err != nil {
		return nil, err
	}
	srv.SetReady(true)

	ctx, cancel := context.WithCancel(ctx)
	var g errgroup.Group
	g.Go(func() error {
		return srv.Start(ctx)
	})

	return func() error {
		cancel()
		return g.Wait()
	}, nil
}

func statusHandler(c *capture.Capturer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			server.WriteError(w, r, http.StatusMethodNotAllowed, server.ErrCodeMethodNotAllowed,
				"method not allowed", false, nil)
			return
		}
		server.RespondJSON(w, http.StatusOK, c.Status())
	}
}
