// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/turismo-admin/internal/imaging"
	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/storage"
	"github.com/olegiv/turismo-admin/internal/store"
	"github.com/olegiv/turismo-admin/internal/util"
)

// Upload limits
const (
	MaxImageSize       = 5 * 1024 * 1024 // 5MB
	MaxImagesPerUpload = 5
)

// allowedExtensions lists the accepted image file extensions.
var allowedExtensions = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// allowedDeclaredTypes lists the accepted client-declared content types.
var allowedDeclaredTypes = map[string]bool{
	model.MimeTypeJPEG: true,
	"image/jpg":        true,
	model.MimeTypePNG:  true,
	model.MimeTypeGIF:  true,
	model.MimeTypeWebP: true,
}

// UploadFile is an uploaded image held in memory.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// checkDeclared validates the name, declared type and size of a file before
// its content is looked at.
func checkDeclared(filename, contentType string, size int64) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	if !allowedExtensions[util.Extension(filename)] || !allowedDeclaredTypes[mediaType] {
		return &UploadError{Filename: filename, Reason: MsgImagesOnly}
	}
	if size > MaxImageSize {
		return &UploadError{Filename: filename, Reason: MsgImageTooLarge}
	}
	return nil
}

// ReadMultipartFiles validates the declared metadata of every file and then
// reads them into memory. Nothing is read when any file is rejected.
func ReadMultipartFiles(headers []*multipart.FileHeader) ([]UploadFile, error) {
	if len(headers) > MaxImagesPerUpload {
		return nil, validationError(MsgTooManyImages)
	}
	for _, h := range headers {
		if err := checkDeclared(h.Filename, h.Header.Get("Content-Type"), h.Size); err != nil {
			return nil, err
		}
	}

	files := make([]UploadFile, 0, len(headers))
	for _, h := range headers {
		data, err := readLimited(h)
		if err != nil {
			return nil, err
		}
		files = append(files, UploadFile{
			Filename:    h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

func readLimited(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, &UploadError{Filename: h.Filename, Err: err}
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, &UploadError{Filename: h.Filename, Err: err}
	}
	if len(data) > MaxImageSize {
		return nil, &UploadError{Filename: h.Filename, Reason: MsgImageTooLarge}
	}
	return data, nil
}

// MediaService writes images to object storage and tracks them.
type MediaService struct {
	db        *sql.DB
	queries   *store.Queries
	bucket    storage.Bucket
	processor *imaging.Processor
	logger    *slog.Logger
	now       func() time.Time
}

// NewMediaService creates a new media service.
func NewMediaService(db *sql.DB, bucket storage.Bucket, logger *slog.Logger) *MediaService {
	return &MediaService{
		db:        db,
		queries:   store.New(db),
		bucket:    bucket,
		processor: imaging.NewProcessor(),
		logger:    logger,
		now:       time.Now,
	}
}

// Bucket returns the object storage the service writes to.
func (s *MediaService) Bucket() storage.Bucket {
	return s.bucket
}

type preparedUpload struct {
	filename string
	key      string
	result   *imaging.Result
}

// Upload stores a batch of images under folder and returns the tracked
// objects in input order. Every file is validated before the first write.
// When a write fails, the objects already written by this batch are removed
// and an *UploadError naming the failing file is returned.
func (s *MediaService) Upload(ctx context.Context, files []UploadFile, folder, uploader string) ([]model.MediaObject, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > MaxImagesPerUpload {
		return nil, validationError(MsgTooManyImages)
	}

	prepared := make([]preparedUpload, 0, len(files))
	for _, f := range files {
		if err := checkDeclared(f.Filename, f.ContentType, int64(len(f.Data))); err != nil {
			return nil, err
		}
		res, err := s.processor.Process(f.Data)
		if err != nil {
			if errors.Is(err, imaging.ErrUnsupportedFormat) || errors.Is(err, imaging.ErrTooLarge) {
				return nil, &UploadError{Filename: f.Filename, Reason: MsgImagesOnly, Err: err}
			}
			return nil, &UploadError{Filename: f.Filename, Err: err}
		}
		prepared = append(prepared, preparedUpload{
			filename: f.Filename,
			key:      s.objectKey(folder, f.Filename),
			result:   res,
		})
	}

	written := make([]model.MediaObject, 0, len(prepared))
	for _, p := range prepared {
		obj, err := s.put(ctx, p, uploader)
		if err != nil {
			s.logger.Error("image upload failed, rolling back batch",
				"error", err, "filename", p.filename, "key", p.key, "written", len(written))
			s.Discard(ctx, written)
			return nil, &UploadError{Filename: p.filename, Err: err}
		}
		written = append(written, obj)
	}
	return written, nil
}

// put writes one object, makes it public and records it.
func (s *MediaService) put(ctx context.Context, p preparedUpload, uploader string) (model.MediaObject, error) {
	if err := s.bucket.Put(ctx, p.key, p.result.MimeType, p.result.Data); err != nil {
		return model.MediaObject{}, fmt.Errorf("writing object: %w", err)
	}

	obj := model.MediaObject{
		Key:         p.key,
		URL:         s.bucket.PublicURL(p.key),
		ContentType: p.result.MimeType,
		Size:        int64(len(p.result.Data)),
		UploadedBy:  uploader,
		CreatedAt:   s.now().UTC(),
	}

	err := s.bucket.MakePublic(ctx, p.key)
	if err == nil {
		err = s.queries.CreateMediaObject(ctx, obj)
	}
	if err != nil {
		s.deleteObject(context.WithoutCancel(ctx), p.key)
		return model.MediaObject{}, err
	}
	return obj, nil
}

// objectKey builds <folder>/<unix millis>-<token>-<object name>.
func (s *MediaService) objectKey(folder, filename string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%d-%s-%s", folder, s.now().UnixMilli(), token, util.ObjectName(filename))
}

// Discard removes objects written by a failed operation along with their
// tracking rows. It runs even when ctx has been canceled.
func (s *MediaService) Discard(ctx context.Context, objects []model.MediaObject) {
	ctx = context.WithoutCancel(ctx)
	for _, obj := range objects {
		s.deleteObject(ctx, obj.Key)
		if err := s.queries.DeleteMediaObject(ctx, obj.Key); err != nil {
			s.logger.Warn("failed to remove media object row", "error", err, "key", obj.Key)
		}
	}
}

func (s *MediaService) deleteObject(ctx context.Context, key string) {
	if err := s.bucket.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.logger.Warn("failed to delete object", "error", err, "key", key)
	}
}

// Attach links uploaded objects to the record that now references them.
func Attach(ctx context.Context, q *store.Queries, objects []model.MediaObject, collection, ownerID string) error {
	return q.AttachMediaObjects(ctx, objectKeys(objects), collection, ownerID)
}

func objectKeys(objects []model.MediaObject) []string {
	keys := make([]string, len(objects))
	for i, o := range objects {
		keys[i] = o.Key
	}
	return keys
}

func objectURLs(objects []model.MediaObject) model.StringList {
	urls := make(model.StringList, len(objects))
	for i, o := range objects {
		urls[i] = o.URL
	}
	return urls
}

// resolveKey finds the object key behind a public URL: the tracking table
// first, then the URL path after the bucket, then the last path segment.
func (s *MediaService) resolveKey(ctx context.Context, imageURL string) (string, *model.MediaObject, error) {
	obj, err := s.queries.GetMediaObjectByURL(ctx, imageURL)
	if err == nil {
		return obj.Key, &obj, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("looking up media object: %w", err)
	}

	if key, ok := storage.KeyFromURL(s.bucket, imageURL); ok && util.ValidObjectKey(key) {
		return key, nil, nil
	}
	key := storage.LastSegment(imageURL)
	if !util.ValidObjectKey(key) {
		return "", nil, validationError(MsgImageURLNeeded)
	}
	return key, nil, nil
}

// DeleteByURL deletes the object behind imageURL. When the object is tracked,
// its URL is also removed from the owning record's image list. It returns the
// resolved object key.
func (s *MediaService) DeleteByURL(ctx context.Context, imageURL string) (string, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return "", validationError(MsgImageURLNeeded)
	}

	key, tracked, err := s.resolveKey(ctx, imageURL)
	if err != nil {
		return "", err
	}

	if err := s.bucket.Delete(ctx, key); err != nil {
		switch {
		case !errors.Is(err, storage.ErrObjectNotFound):
			return key, fmt.Errorf("deleting object: %w", err)
		case tracked == nil:
			return key, ErrNotFound
		default:
			s.logger.Warn("tracked object already missing from storage", "key", key)
		}
	}

	if tracked == nil {
		return key, nil
	}

	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.DeleteMediaObject(ctx, key); err != nil {
			return err
		}
		if !tracked.OwnerCollection.Valid || !tracked.OwnerID.Valid {
			return nil
		}
		urls, err := q.GetImageURLs(ctx, tracked.OwnerCollection.String, tracked.OwnerID.String)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if !urls.Contains(imageURL) {
			return nil
		}
		return q.SetImageURLs(ctx, tracked.OwnerCollection.String, tracked.OwnerID.String,
			urls.Without(imageURL), s.now().UTC())
	})
	if err != nil {
		return key, fmt.Errorf("unlinking image: %w", err)
	}
	return key, nil
}

// PurgeOrphans deletes objects that were never attached to a record and are
// older than olderThan. It returns the number of objects removed.
func (s *MediaService) PurgeOrphans(ctx context.Context, olderThan time.Duration, batch int) (int, error) {
	orphans, err := s.queries.ListOrphanMediaObjects(ctx, s.now().UTC().Add(-olderThan), batch)
	if err != nil {
		return 0, fmt.Errorf("listing orphan media: %w", err)
	}

	removed := 0
	for _, obj := range orphans {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := s.bucket.Delete(ctx, obj.Key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			s.logger.Warn("failed to delete orphan object", "error", err, "key", obj.Key)
			continue
		}
		if err := s.queries.DeleteMediaObject(ctx, obj.Key); err != nil {
			return removed, fmt.Errorf("removing media row: %w", err)
		}
		removed++
	}
	return removed, nil
}
