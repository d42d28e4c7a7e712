// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/turismo-admin/internal/middleware"
	"github.com/olegiv/turismo-admin/internal/service"
)

// Request body limits.
const (
	maxJSONBody        = 64 << 10
	maxFormBody        = 1 << 20
	maxMultipartMemory = 8 << 20
	// maxMultipartBody fits a full batch of images plus the text fields.
	maxMultipartBody = service.MaxImagesPerUpload*service.MaxImageSize + 1<<20

	imagesField = "images"
)

// API messages.
const (
	msgTouristPointsFetchFailed = "Erro ao buscar pontos turísticos"
	msgTouristPointFetchFailed  = "Erro ao buscar ponto turístico"
	msgTouristPointNotFound     = "Ponto turístico não encontrado"
	msgTouristPointCreated      = "Ponto turístico criado com sucesso!"
	msgTouristPointCreateFailed = "Erro ao criar ponto turístico"
	msgTouristPointUpdated      = "Ponto turístico atualizado com sucesso!"
	msgTouristPointUpdateFailed = "Erro ao atualizar ponto turístico"
	msgTouristPointDeleted      = "Ponto turístico removido com sucesso!"
	msgTouristPointDeleteFailed = "Erro ao remover ponto turístico"

	msgEventsFetchFailed = "Erro ao buscar eventos"
	msgEventFetchFailed  = "Erro ao buscar evento"
	msgEventNotFound     = "Evento não encontrado"
	msgEventCreated      = "Evento criado com sucesso!"
	msgEventCreateFailed = "Erro ao criar evento"

	msgImageDeleted      = "Imagem removida com sucesso!"
	msgImageDeleteFailed = "Erro ao remover imagem"
	msgImageNotFound     = "Imagem não encontrada"

	msgStatisticsFailed = "Erro ao buscar estatísticas"

	msgUnsupportedMediaType = "Formato de envio não suportado"
)

// APIHandler serves the JSON API used by the dashboard scripts.
type APIHandler struct {
	content    *service.ContentService
	stats      *service.StatisticsService
	audit      *service.AuditService
	showDetail bool
}

// NewAPIHandler creates a new APIHandler. Error details are included in
// responses when showDetail is set.
func NewAPIHandler(content *service.ContentService, stats *service.StatisticsService, audit *service.AuditService, showDetail bool) *APIHandler {
	return &APIHandler{content: content, stats: stats, audit: audit, showDetail: showDetail}
}

// writeServiceError maps a service error to a JSON error response.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg, failMsg string) {
	var (
		uploadErr *service.UploadError
		tooLarge  *http.MaxBytesError
	)

	if ve, ok := service.IsValidation(err); ok {
		writeJSONError(w, http.StatusBadRequest, ve.Message, nil, false)
		return
	}

	switch {
	case errors.As(err, &uploadErr):
		if uploadErr.Reason != "" {
			writeJSONError(w, http.StatusBadRequest, uploadErr.Error(), nil, false)
			return
		}
		slog.ErrorContext(r.Context(), "image upload failed", "error", err, "file", uploadErr.Filename, "path", r.URL.Path)
		writeJSONError(w, http.StatusInternalServerError, uploadErr.Error(), err, h.showDetail)
	case errors.As(err, &tooLarge):
		writeJSONError(w, http.StatusRequestEntityTooLarge, service.MsgImageTooLarge, nil, false)
	case errors.Is(err, service.ErrNotFound) && notFoundMsg != "":
		writeJSONError(w, http.StatusNotFound, notFoundMsg, nil, false)
	case errors.Is(err, service.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, messageForbidden, nil, false)
	default:
		slog.ErrorContext(r.Context(), failMsg, "error", err, "method", r.Method, "path", r.URL.Path)
		writeJSONError(w, http.StatusInternalServerError, failMsg, err, h.showDetail)
	}
}

// errUnsupportedMediaType marks a content body the API cannot read.
var errUnsupportedMediaType = errors.New("unsupported content type")

// parseContentForm reads a multipart, urlencoded or JSON submission. Images
// come from the "images" field of multipart bodies and are read into memory.
func parseContentForm(w http.ResponseWriter, r *http.Request) (url.Values, []service.UploadFile, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get(HeaderContentType))
	switch mediaType {
	case "multipart/form-data":
	case "application/json":
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
		form, err := jsonFormValues(r.Body)
		return form, nil, err
	case "", "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
		if err := r.ParseForm(); err != nil {
			return nil, nil, err
		}
		return r.PostForm, nil, nil
	default:
		return nil, nil, errUnsupportedMediaType
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, nil, err
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files, err := service.ReadMultipartFiles(r.MultipartForm.File[imagesField])
	if err != nil {
		return nil, nil, err
	}
	return url.Values(r.MultipartForm.Value), files, nil
}

// jsonFormValues maps a flat JSON object onto form keys. Strings, numbers and
// booleans become single values, string arrays repeat the key and nulls are
// left out so the field counts as absent.
func jsonFormValues(body io.Reader) (url.Values, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		return nil, err
	}

	form := make(url.Values, len(fields))
	for key, raw := range fields {
		var v any
		dec := json.NewDecoder(strings.NewReader(string(raw)))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		switch val := v.(type) {
		case nil:
		case string:
			form.Set(key, val)
		case json.Number:
			form.Set(key, val.String())
		case bool:
			form.Set(key, strconv.FormatBool(val))
		case []any:
			for _, item := range val {
				str, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("field %q: only string arrays are accepted", key)
				}
				form.Add(key, str)
			}
		default:
			return nil, fmt.Errorf("field %q: nested objects are not accepted", key)
		}
	}
	return form, nil
}

// writeFormError answers a body that could not be parsed. Rejected images
// keep their own messages.
func (h *APIHandler) writeFormError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		uploadErr *service.UploadError
		tooLarge  *http.MaxBytesError
	)
	if errors.Is(err, errUnsupportedMediaType) {
		writeJSONError(w, http.StatusUnsupportedMediaType, msgUnsupportedMediaType, nil, false)
		return
	}
	_, invalid := service.IsValidation(err)
	if invalid || errors.As(err, &uploadErr) || errors.As(err, &tooLarge) {
		h.writeServiceError(w, r, err, "", msgInvalidBody)
		return
	}
	writeJSONError(w, http.StatusBadRequest, msgInvalidBody, err, h.showDetail)
}

// ListTouristPoints handles GET /api/tourist-points.
func (h *APIHandler) ListTouristPoints(w http.ResponseWriter, r *http.Request) {
	items, pg, err := h.content.ListTouristPoints(r.Context(), parseListParams(r))
	if err != nil {
		h.writeServiceError(w, r, err, "", msgTouristPointsFetchFailed)
		return
	}
	writeJSONSuccess(w, apiResponse{Data: nonNil(items), Pagination: &pg})
}

// GetTouristPoint handles GET /api/tourist-points/{id}.
func (h *APIHandler) GetTouristPoint(w http.ResponseWriter, r *http.Request) {
	tp, err := h.content.GetTouristPoint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, msgTouristPointNotFound, msgTouristPointFetchFailed)
		return
	}
	writeJSONSuccess(w, apiResponse{Data: tp})
}

// CreateTouristPoint handles POST /api/tourist-points.
func (h *APIHandler) CreateTouristPoint(w http.ResponseWriter, r *http.Request) {
	form, files, err := parseContentForm(w, r)
	if err != nil {
		h.writeFormError(w, r, err)
		return
	}

	actor := middleware.GetAdminID(r)
	tp, err := h.content.CreateTouristPoint(r.Context(), service.ParseTouristPointForm(form), files, actor)
	if err != nil {
		h.writeServiceError(w, r, err, "", msgTouristPointCreateFailed)
		return
	}

	slog.Info("tourist point created", "id", tp.ID, "admin_id", actor, "images", len(tp.ImageURLs))
	h.audit.Content(r.Context(), "Tourist point created", actor, middleware.RequestInfo(r),
		map[string]any{"id": tp.ID, "name": tp.Name.PT, "images": len(files)})

	writeJSONSuccess(w, apiResponse{Message: msgTouristPointCreated, Data: tp})
}

// UpdateTouristPoint handles PUT /api/tourist-points/{id}.
func (h *APIHandler) UpdateTouristPoint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, files, err := parseContentForm(w, r)
	if err != nil {
		h.writeFormError(w, r, err)
		return
	}

	actor := middleware.GetAdminID(r)
	tp, err := h.content.UpdateTouristPoint(r.Context(), id, service.ParseTouristPointForm(form), files, actor)
	if err != nil {
		h.writeServiceError(w, r, err, msgTouristPointNotFound, msgTouristPointUpdateFailed)
		return
	}

	slog.Info("tourist point updated", "id", tp.ID, "admin_id", actor, "new_images", len(files))
	h.audit.Content(r.Context(), "Tourist point updated", actor, middleware.RequestInfo(r),
		map[string]any{"id": tp.ID, "name": tp.Name.PT, "new_images": len(files)})

	writeJSONSuccess(w, apiResponse{Message: msgTouristPointUpdated, Data: tp})
}

// DeleteTouristPoint handles DELETE /api/tourist-points/{id}.
func (h *APIHandler) DeleteTouristPoint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor := middleware.GetAdminID(r)

	if err := h.content.DeleteTouristPoint(r.Context(), id, actor); err != nil {
		h.writeServiceError(w, r, err, msgTouristPointNotFound, msgTouristPointDeleteFailed)
		return
	}

	slog.Info("tourist point deleted", "id", id, "admin_id", actor)
	h.audit.Content(r.Context(), "Tourist point deleted", actor, middleware.RequestInfo(r), map[string]any{"id": id})

	writeJSONSuccess(w, apiResponse{Message: msgTouristPointDeleted})
}

// ListEvents handles GET /api/events.
func (h *APIHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	items, pg, err := h.content.ListEvents(r.Context(), parseListParams(r))
	if err != nil {
		h.writeServiceError(w, r, err, "", msgEventsFetchFailed)
		return
	}
	writeJSONSuccess(w, apiResponse{Data: nonNil(items), Pagination: &pg})
}

// GetEvent handles GET /api/events/{id}.
func (h *APIHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.content.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, msgEventNotFound, msgEventFetchFailed)
		return
	}
	writeJSONSuccess(w, apiResponse{Data: e})
}

// CreateEvent handles POST /api/events.
func (h *APIHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	form, files, err := parseContentForm(w, r)
	if err != nil {
		h.writeFormError(w, r, err)
		return
	}

	actor := middleware.GetAdminID(r)
	e, err := h.content.CreateEvent(r.Context(), service.ParseEventForm(form), files, actor)
	if err != nil {
		h.writeServiceError(w, r, err, "", msgEventCreateFailed)
		return
	}

	slog.Info("event created", "id", e.ID, "admin_id", actor, "images", len(e.ImageURLs))
	h.audit.Content(r.Context(), "Event created", actor, middleware.RequestInfo(r),
		map[string]any{"id": e.ID, "title": e.Title.PT, "images": len(files)})

	writeJSONSuccess(w, apiResponse{Message: msgEventCreated, Data: e})
}

// deleteImageRequest is the JSON body of DELETE /api/images.
type deleteImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

// imageURLFromRequest reads imageUrl from a JSON or urlencoded body, falling
// back to the query string.
func imageURLFromRequest(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get(HeaderContentType))
	switch mediaType {
	case "application/json":
		var req deleteImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		if req.ImageURL != "" {
			return strings.TrimSpace(req.ImageURL), nil
		}
	case "application/x-www-form-urlencoded":
		// ParseForm ignores DELETE bodies.
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return "", err
		}
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return "", err
		}
		if v := values.Get("imageUrl"); v != "" {
			return strings.TrimSpace(v), nil
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("imageUrl")), nil
}

// DeleteImage handles DELETE /api/images.
func (h *APIHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	imageURL, err := imageURLFromRequest(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, msgInvalidBody, err, h.showDetail)
		return
	}

	key, err := h.content.DeleteImage(r.Context(), imageURL)
	if err != nil {
		h.writeServiceError(w, r, err, msgImageNotFound, msgImageDeleteFailed)
		return
	}

	actor := middleware.GetAdminID(r)
	slog.Info("image deleted", "key", key, "admin_id", actor)
	h.audit.Media(r.Context(), "Image deleted", actor, middleware.RequestInfo(r),
		map[string]any{"key": key, "url": imageURL})

	writeJSONSuccess(w, apiResponse{Message: msgImageDeleted})
}

// Statistics handles GET /api/statistics.
func (h *APIHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.GetStatistics(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "", msgStatisticsFailed)
		return
	}
	writeJSONSuccess(w, apiResponse{Data: stats})
}
