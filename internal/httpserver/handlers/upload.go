package handlers

import (
	"bufio"
	"errors"
	"net/http"
	"strings"

	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/respond"
	"github.com/sekawan-grup/raya/internal/logger"
	"github.com/sekawan-grup/raya/internal/media"
	"github.com/sekawan-grup/raya/internal/utils"
)

// DefaultMaxUploadBytes applies when deps.MaxUploadBytes is unset.
const DefaultMaxUploadBytes = 5 << 20

type uploadResponse struct {
	URL string `json:"url"`
}

// UploadImage stores the multipart "file" field and returns its public URL.
func UploadImage(d deps.Deps) http.HandlerFunc {
	limit := d.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit+1024)
		if err := r.ParseMultipartForm(limit); err != nil {
			respond.Error(w, http.StatusBadRequest, "Gambar tidak valid atau terlalu besar")
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "File gambar wajib diunggah")
			return
		}
		defer utils.MustClose(file, d.Logger)

		br := bufio.NewReaderSize(file, 512)
		head, _ := br.Peek(512)
		if ct := http.DetectContentType(head); !strings.HasPrefix(ct, "image/") {
			respond.Error(w, http.StatusBadRequest, "File harus berupa gambar")
			return
		}

		url, err := d.Uploader.Upload(r.Context(), header.Filename, br)
		if err != nil {
			if errors.Is(err, media.ErrNotConfigured) {
				respond.Error(w, http.StatusServiceUnavailable, "Upload gambar belum dikonfigurasi")
				return
			}
			internalError(w, d.Logger, "Upload gambar gagal", err)
			return
		}

		d.Logger.Info("image stored",
			logger.String("filename", header.Filename),
			logger.String("url", url))
		respond.JSON(w, http.StatusCreated, uploadResponse{URL: url})
	}
}
