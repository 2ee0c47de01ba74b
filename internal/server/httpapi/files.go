package httpapi

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/server/services"
)

const multipartMemory = 8 << 20

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.Files.List(r.Context())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "File too large"})
			return
		}
		writeError(w, r, s.logger, fmt.Errorf("%w: %v", common.ErrValidation, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, s.logger, fmt.Errorf("%w: no file uploaded", common.ErrValidation))
		return
	}
	defer file.Close()

	f, err := s.Files.Upload(r.Context(), caller(r), services.Upload{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		File    any  `json:"file"`
	}{true, f})
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if err := s.Files.Delete(r.Context(), id); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleDownloadFile serves disk blobs directly and redirects to a
// presigned URL for remote ones.
func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	f, loc, err := s.Files.Open(r.Context(), id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if loc.URL != "" {
		http.Redirect(w, r, loc.URL, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", f.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.OriginalName}))
	http.ServeFile(w, r, loc.Path)
}
