// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/mms-go/internal/imaging"
)

// MaxUploadSize is the largest accepted upload body.
const MaxUploadSize = 10 << 20 // 10 MB

const jpegQuality = 90

// Uploader processes and stores cover images.
type Uploader struct {
	store BlobStore
}

// NewUploader creates an uploader backed by the given blob store.
func NewUploader(store BlobStore) *Uploader {
	return &Uploader{store: store}
}

// UploadResult describes a stored image.
type UploadResult struct {
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MimeType string `json:"mime_type"`
	Size     int    `json:"size"`
}

// UploadImage normalizes an uploaded image and stores it together with
// a thumbnail. Keys are covers/<year>/<month>/<uuid><ext>, so nothing
// the client sends ends up in the storage path.
func (u *Uploader) UploadImage(ctx context.Context, data []byte) (*UploadResult, error) {
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("upload exceeds %d bytes", MaxUploadSize)
	}

	res, err := imaging.Process(data, jpegQuality)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	id := uuid.New().String()
	key := fmt.Sprintf("covers/%d/%02d/%s%s", now.Year(), now.Month(), id, res.Extension)
	thumbKey := fmt.Sprintf("covers/%d/%02d/%s_thumb%s", now.Year(), now.Month(), id, res.Extension)

	url, err := u.store.Put(ctx, key, res.Data, res.MimeType)
	if err != nil {
		return nil, err
	}

	thumbURL, err := u.store.Put(ctx, thumbKey, res.Thumb, res.MimeType)
	if err != nil {
		// Keep the original; a missing thumbnail only degrades list views
		thumbURL = url
	}

	return &UploadResult{
		URL:      url,
		ThumbURL: thumbURL,
		Width:    res.Width,
		Height:   res.Height,
		MimeType: res.MimeType,
		Size:     len(res.Data),
	}, nil
}
