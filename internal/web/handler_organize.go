package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"fridgetetris.app/internal/domain"
	"fridgetetris.app/internal/service"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

// adviceView is the data for the advice partial: the model's text (or an
// explanatory error string) and an optional base64 PNG to display.
type adviceView struct {
	Text     string
	ImageB64 string
	IsError  bool
}

// allowedImageTypes is the set of MIME types accepted for uploads.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

func allowedImage(data []byte) bool {
	return isWebP(data) || allowedImageTypes[http.DetectContentType(data)]
}

func (s *Server) handleOrganizePage(w http.ResponseWriter, r *http.Request) {
	err := s.renderPage(w,
		map[string]any{"ActiveNav": "organize", "Advice": (*adviceView)(nil)},
		"base.html", "pages/organize.html", "partials/advice.html",
	)
	if err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// handleOrganize runs one exchange. Every failure collapses to an
// explanatory string rendered in the advice slot; the HTTP status stays 200
// so the partial replaces the result panel either way.
func (s *Server) handleOrganize(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		s.renderAdvice(w, &adviceView{Text: "Error: could not read the uploaded form.", IsError: true})
		return
	}

	fridge, ok := s.formImage(r, "fridge")
	if !ok {
		s.renderAdvice(w, &adviceView{Text: "Please upload an image of your current fridge state.", IsError: true})
		return
	}
	groceries, ok := s.formImage(r, "groceries")
	if !ok {
		s.renderAdvice(w, &adviceView{Text: "Please upload an image of your new groceries.", IsError: true})
		return
	}

	// A file that was uploaded but is not a recognizable image is a
	// processing error, not a missing upload.
	if !allowedImage(fridge) || !allowedImage(groceries) {
		s.renderAdvice(w, &adviceView{Text: "Error: could not process images. Please ensure both images are valid.", IsError: true})
		return
	}

	mode := domain.ParseMode(r.FormValue("mode"))

	advice, err := s.service.Organize(r.Context(), fridge, groceries, mode)
	if err != nil {
		s.logger.Error("organize failed", "mode", mode, "error", err)
		view := &adviceView{Text: friendlyError(err), IsError: true}
		// The service echoes the fridge photo even when the model call
		// fails, so the page keeps showing the current state.
		if advice != nil {
			view.ImageB64 = advice.ImageB64
		}
		s.renderAdvice(w, view)
		return
	}

	s.renderAdvice(w, &adviceView{Text: advice.Text, ImageB64: advice.ImageB64})
}

// formImage reads one uploaded image field, returning ok=false when the
// field is absent or empty. Format checking happens separately so an
// unreadable upload gets a different message than a missing one.
func (s *Server) formImage(r *http.Request, field string) ([]byte, bool) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, false
	}
	defer closeWithLog(file, field, s.logger)

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (s *Server) renderAdvice(w http.ResponseWriter, view *adviceView) {
	if err := s.renderPartial(w, "partials/advice.html", "advice", view); err != nil {
		s.logger.Error("render advice failed", "error", err)
	}
}

// friendlyError maps service errors to the strings shown in the advice slot.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, service.ErrMissingFridge):
		return "Please upload an image of your current fridge state."
	case errors.Is(err, service.ErrMissingGroceries):
		return "Please upload an image of your new groceries."
	case errors.Is(err, service.ErrBadImage):
		return "Error: could not process images. Please ensure both images are valid."
	default:
		return "Error: " + err.Error()
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
