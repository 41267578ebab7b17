package web

import (
	"io"
	"net/http"
	"strconv"

	"fridgetetris.app/internal/imgconv"
)

// historyPageSize bounds how many entries the history page shows.
const historyPageSize = 50

const thumbMaxDim = 320

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.History(r.Context(), historyPageSize)
	if err != nil {
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		s.logger.Error("list history failed", "error", err)
		return
	}

	err = s.renderPage(w,
		map[string]any{"ActiveNav": "history", "Entries": entries},
		"base.html", "pages/history.html",
	)
	if err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	if err := s.service.DeleteHistory(r.Context(), id); err != nil {
		http.Error(w, "failed to delete entry", http.StatusInternalServerError)
		s.logger.Error("delete history failed", "id", id, "error", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleGetPhoto serves a stored photo; ?thumb=1 returns a downscaled JPEG.
func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	reader, mimeType, err := s.photoStore.Get(r.Context(), key)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	if thumb, _ := strconv.ParseBool(r.URL.Query().Get("thumb")); thumb {
		data, err := io.ReadAll(reader)
		if err != nil {
			http.Error(w, "failed to read photo", http.StatusInternalServerError)
			return
		}
		out, err := imgconv.Thumbnail(data, thumbMaxDim)
		if err != nil {
			s.logger.Error("thumbnail failed", "key", key, "error", err)
			// Fall back to the original bytes.
			w.Header().Set("Content-Type", mimeType)
			_, _ = w.Write(data)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(out)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "key", key, "error", err)
	}
}
