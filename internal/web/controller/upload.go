package controller

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"blockdocs/internal/apperr"
	"blockdocs/internal/models"
	"blockdocs/internal/upload"
)

// multipartMemory is how much of a multipart form is buffered in memory;
// the rest spills to temp files.
const multipartMemory = 8 << 20

type saveFunc func(ctx context.Context, filename, contentType string, r io.Reader) (*upload.Result, error)

// Upload provides the file upload handlers
type Upload struct {
	Store  *upload.Store
	Logger zerolog.Logger
}

// Register registers the upload routes
func (u *Upload) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload", u.handle(upload.MaxImageSize, u.Store.SaveImage))
	mux.HandleFunc("POST /api/upload-pdf", u.handle(upload.MaxPDFSize, u.Store.SavePDF))
	mux.HandleFunc("GET /api/uploads", u.list)
}

// list feeds the editor's image picker, newest first.
func (u *Upload) list(w http.ResponseWriter, r *http.Request) {
	attachments, err := u.Store.Attachments.List(r.Context())
	if err != nil {
		writeError(w, r, u.Logger, err)
		return
	}
	if attachments == nil {
		attachments = []models.Attachment{}
	}
	writeJSON(w, http.StatusOK, attachments)
}

func (u *Upload) handle(limit int64, save saveFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Leave room for the multipart framing around the file itself.
		r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeError(w, r, u.Logger, apperr.Validation("file exceeds the %d MB limit", limit>>20))
				return
			}
			writeError(w, r, u.Logger, apperr.Validation("invalid upload: %v", err))
			return
		}

		file, handler, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, u.Logger, apperr.Validation("no file uploaded"))
			return
		}
		defer file.Close()

		res, err := save(r.Context(), handler.Filename, handler.Header.Get("Content-Type"), file)
		if err != nil {
			writeError(w, r, u.Logger, err)
			return
		}
		u.Logger.Info().Str("file", res.Filename).Int64("size", res.Size).Msg("upload stored")
		writeJSON(w, http.StatusOK, res)
	}
}
