package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"pdf-reader/internal/app"
	"pdf-reader/internal/httputil"
	"pdf-reader/internal/queue"
)

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := deps.Reader.LoadDocuments(ctx); err != nil {
		deps.Log.Warn("failed to load existing documents", "err", err)
	}

	r := newRouter(deps)

	g, ctx := errgroup.WithContext(ctx)

	// Run the ingestion worker beside the server.
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeIngest, deps.Reader.HandleIngestTask)
	})

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", deps.Config.Port)
		deps.Log.Info("reader service listening", "addr", addr)
		return http.ListenAndServe(addr, r)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("reader service stopped", "err", err)
	}
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/documents", uploadHandler(deps))
	r.Get("/api/documents", listDocumentsHandler(deps))
	r.Get("/api/documents/{filename}", serveDocumentHandler(deps))
	r.Delete("/api/documents/{id}", deleteDocumentHandler(deps))
	r.Post("/api/documents/{id}/select", selectDocumentHandler(deps))
	r.Post("/api/documents/{id}/ingest", retryIngestionHandler(deps))

	r.Post("/api/analysis", analyzeHandler(deps))
	r.Get("/api/analysis", sessionHandler(deps))
	r.Post("/api/citations/open", citationHandler(deps))

	r.Post("/api/podcast/toggle", podcastToggleHandler(deps))
	r.Post("/api/podcast/seek", podcastSeekHandler(deps))
	r.Get("/api/audio/{filename}", serveAudioHandler(deps))

	r.Get("/api/viewer/commands", viewerCommandsHandler(deps))
	r.Post("/api/viewer/results", viewerResultsHandler(deps))

	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	return r
}
