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

package serve

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nlnwa/goical/internal"
	"github.com/nlnwa/goical/pkg/index"
	"github.com/nlnwa/goical/pkg/server"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [DIR...]",
		Short: "Index directories of iCalendar files and serve events over HTTP",
		Long: `Index every .ics file in the watched directories, keep the index up to date
as files change, and serve the events over HTTP.

Endpoints:
  GET /files               names of the indexed files
  GET /events/{uid}        the event as text/calendar
  GET /events/{uid}?format=json`,
		PreRun: func(cmd *cobra.Command, args []string) {
			// Increase GOMAXPROCS as recommended by badger
			// https://github.com/dgraph-io/badger#are-there-any-go-specific-settings-that-i-should-use
			runtime.GOMAXPROCS(128)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				viper.Set("watch-dir", args)
			}
			return runE()
		},
	}

	cmd.Flags().StringP("listen", "l", ":9999", "Address the server listens on")
	cmd.Flags().StringSlice("watch-dir", []string{"."}, "List of directories containing iCalendar files")
	cmd.Flags().IntP("watch-depth", "d", 4, "The maximum directory depth to index and watch")
	cmd.Flags().String("reindex", "", "Cron schedule for a full reindex, like '@hourly'. Empty disables it")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		log.Fatalf("Failed to bind serve flags: %v", err)
	}

	return cmd
}

func runE() error {
	db, err := index.Open(index.WithDir(viper.GetString("db-dir")))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	log.Infof("Starting autoindexer")
	autoindexer, err := index.NewAutoIndexer(db, viper.GetStringSlice("watch-dir"), viper.GetInt("watch-depth"), viper.GetString("reindex"))
	if err != nil {
		return err
	}
	defer autoindexer.Shutdown()

	httpServer := &http.Server{
		Addr:    viper.GetString("listen"),
		Handler: server.Handler(db),
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctx)
	}()

	log.Infof("Starting web server at %s", internal.ServerURL(httpServer.Addr))
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
