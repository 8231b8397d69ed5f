/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package server exposes the event index over HTTP.
package server

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/nlnwa/goical/pkg/index"
	log "github.com/sirupsen/logrus"
)

// Store is the part of the index the server reads from.
type Store interface {
	Get(uid string) (*index.Entry, error)
	ListFiles() ([]string, error)
}

type Middleware func(http.Handler) http.Handler

// Handler returns the router for the event API. Requests are logged through logrus.
func Handler(store Store, middleware ...Middleware) http.Handler {
	r := mux.NewRouter()
	for _, mw := range middleware {
		r.Use(mux.MiddlewareFunc(mw))
	}

	r.Handle("/files", &filesHandler{store}).Methods(http.MethodGet)
	r.Handle("/events/{uid}", &eventHandler{store}).Methods(http.MethodGet)

	return handlers.LoggingHandler(log.StandardLogger().Writer(), r)
}
