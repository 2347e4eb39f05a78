// Copyright (c) 2026 John Earle
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

package intake

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bcem/intake/internal/metrics"
)

// NewRouter builds the gateway router: the two submission endpoints plus
// health and metrics.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverMiddleware)

	r.HandleFunc("/api/contact", h.ServeContact).Methods(http.MethodPost)
	r.HandleFunc("/api/waitlist", h.ServeWaitlist).Methods(http.MethodPost)
	r.HandleFunc("/health", h.ServeHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return r
}

// recoverMiddleware maps anything truly unexpected to the generic 500 path.
// Expected conditions never panic; this is the top-level boundary only.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("handler panic", "panic", rec, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
