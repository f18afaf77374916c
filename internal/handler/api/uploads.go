// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"io"
	"net/http"

	"github.com/olegiv/mms-go/internal/upload"
)

// placeholderImageURL is returned when image storage is unavailable.
// The entity write that triggered the upload still goes through; the
// cover can be re-uploaded later.
const placeholderImageURL = "/static/placeholder-cover.png"

// UploadImage handles POST /api/admin/uploads. Multipart form with a
// single "file" field. A storage failure degrades to a placeholder URL
// instead of failing the request.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "Missing file field", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteBadRequest(w, "Could not read upload", nil)
		return
	}

	result, err := h.uploader.UploadImage(r.Context(), data)
	if err != nil {
		h.logger.Error("image upload failed, serving placeholder",
			"filename", header.Filename, "error", err)
		WriteSuccess(w, upload.UploadResult{URL: placeholderImageURL, ThumbURL: placeholderImageURL}, nil)
		return
	}

	WriteCreated(w, result)
}
