package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pdf-reader/internal/app"
	"pdf-reader/internal/docstore"
	"pdf-reader/internal/httputil"
	"pdf-reader/internal/reader"
	"pdf-reader/internal/registry"
	"pdf-reader/internal/viewer"
)

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > maxSize*4 {
			httputil.Fail(deps.Log, w, "upload too large", nil, http.StatusBadRequest)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			httputil.Fail(deps.Log, w, "invalid multipart payload", err, http.StatusBadRequest)
			return
		}
		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			headers = r.MultipartForm.File["file"]
		}
		if len(headers) == 0 {
			httputil.Fail(deps.Log, w, "at least one file is required", nil, http.StatusBadRequest)
			return
		}

		var files []reader.UploadFile
		for _, h := range headers {
			f, err := h.Open()
			if err != nil {
				httputil.Fail(deps.Log, w, "failed to read upload", err, http.StatusBadRequest)
				return
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				httputil.Fail(deps.Log, w, "failed to read upload", err, http.StatusBadRequest)
				return
			}
			files = append(files, reader.UploadFile{
				Name:        filepath.Base(h.Filename),
				ContentType: uploadContentType(h.Header.Get("Content-Type"), h.Filename),
				Data:        content,
			})
		}

		outcome := deps.Reader.Upload(r.Context(), files)
		httputil.WriteJSON(w, http.StatusAccepted, outcome)
	}
}

// uploadContentType falls back to the file extension when the part
// carries no Content-Type.
func uploadContentType(contentType, filename string) string {
	if contentType != "" {
		return contentType
	}
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return "application/pdf"
	}
	return "application/octet-stream"
}

func listDocumentsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var activeID string
		if doc, ok := deps.Reader.ActiveDocument(); ok {
			activeID = doc.ID.String()
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"documents": deps.Reader.Documents(),
			"progress":  deps.Reader.Progress(),
			"active_id": activeID,
		})
	}
}

func serveDocumentHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "filename")
		rc, size, err := deps.Store.Open(r.Context(), name)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, docstore.ErrNotFound):
				status = http.StatusNotFound
			case errors.Is(err, docstore.ErrTraversal), errors.Is(err, docstore.ErrInvalidName):
				status = http.StatusBadRequest
			}
			httputil.Fail(deps.Log, w, "failed to serve document", err, status)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
		if _, err := io.Copy(w, rc); err != nil {
			deps.Log.Warn("document stream interrupted", "name", name, "err", err)
		}
	}
}

func deleteDocumentHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid document id", err, http.StatusBadRequest)
			return
		}
		if err := deps.Reader.Remove(r.Context(), id); err != nil {
			httputil.Fail(deps.Log, w, "failed to delete document", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func selectDocumentHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid document id", err, http.StatusBadRequest)
			return
		}
		if err := deps.Reader.Select(id); err != nil {
			status := http.StatusConflict
			if errors.Is(err, registry.ErrNotFound) {
				status = http.StatusNotFound
			}
			httputil.Fail(deps.Log, w, "cannot select document", err, status)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func retryIngestionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid document id", err, http.StatusBadRequest)
			return
		}
		if err := deps.Reader.RequestIngestion(r.Context(), id); err != nil {
			status := http.StatusConflict
			if errors.Is(err, registry.ErrNotFound) {
				status = http.StatusNotFound
			}
			httputil.Fail(deps.Log, w, "cannot start ingestion", err, status)
			return
		}
		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{"success": true})
	}
}

func analyzeHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := deps.Reader.Analyze(r.Context())
		switch {
		case err == nil:
			httputil.WriteJSON(w, http.StatusAccepted, map[string]any{"started": true})
		case errors.Is(err, viewer.ErrNoSelection):
			// User-facing notice, not a server failure.
			httputil.WriteJSON(w, http.StatusOK, map[string]any{
				"started": false,
				"notice":  "No text selected. Please select some text in the PDF first.",
			})
		case errors.Is(err, reader.ErrNoActiveDocument):
			httputil.Fail(deps.Log, w, "no document selected", err, http.StatusConflict)
		case errors.Is(err, viewer.ErrUnavailable):
			httputil.Fail(deps.Log, w, "viewer unavailable", err, http.StatusServiceUnavailable)
		default:
			httputil.Fail(deps.Log, w, "failed to analyze selection", err, http.StatusInternalServerError)
		}
	}
}

func sessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := deps.Reader.Session()
		if !ok {
			httputil.WriteJSON(w, http.StatusOK, map[string]any{"session": nil})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"session": view})
	}
}

type citationRequest struct {
	File string `json:"file" validate:"required"`
	Page string `json:"page"`
}

func citationHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req citationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		if err := deps.Reader.OpenCitation(r.Context(), req.File, req.Page); err != nil {
			httputil.Fail(deps.Log, w, "failed to open citation", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func podcastToggleHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playing, err := deps.Reader.TogglePlayback(r.Context())
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, reader.ErrNoPodcast) {
				status = http.StatusConflict
			}
			httputil.Fail(deps.Log, w, "playback toggle failed", err, status)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"playing": playing})
	}
}

type seekRequest struct {
	Position float64 `json:"position" validate:"min=0"`
}

func podcastSeekHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req seekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		position, err := deps.Reader.SeekPodcast(r.Context(), req.Position)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, reader.ErrNoPodcast) {
				status = http.StatusConflict
			}
			httputil.Fail(deps.Log, w, "seek failed", err, status)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"position": position})
	}
}

func serveAudioHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "filename")
		rc, size, err := deps.Store.OpenAudio(r.Context(), name)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, docstore.ErrNotFound):
				status = http.StatusNotFound
			case errors.Is(err, docstore.ErrNotWAV),
				errors.Is(err, docstore.ErrTraversal),
				errors.Is(err, docstore.ErrInvalidName):
				status = http.StatusBadRequest
			}
			httputil.Fail(deps.Log, w, "failed to serve audio", err, status)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "audio/wav")
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if _, err := io.Copy(w, rc); err != nil {
			deps.Log.Warn("audio stream interrupted", "name", name, "err", err)
		}
	}
}

// viewerCommandsHandler is the browser side of the viewer bridge: a long
// poll that delivers the next pending capability command.
func viewerCommandsHandler(deps app.Deps) http.HandlerFunc {
	const pollTimeout = 25 * time.Second

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pollTimeout)
		defer cancel()
		cmd, ok := deps.Bridge.NextCommand(ctx)
		if !ok {
			httputil.WriteJSON(w, http.StatusOK, map[string]any{"command": nil})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"command": cmd})
	}
}

func viewerResultsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var res viewer.Result
		if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		accepted := deps.Bridge.Resolve(res)
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"accepted": accepted})
	}
}
