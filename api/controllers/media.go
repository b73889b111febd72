package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/storelane/storelane-backend/api/responses"
	"github.com/storelane/storelane-backend/api/validators"
	mediasvc "github.com/storelane/storelane-backend/internal/media"
	"github.com/storelane/storelane-backend/pkg/enums"
	pkgerrors "github.com/storelane/storelane-backend/pkg/errors"
	"github.com/storelane/storelane-backend/pkg/logger"
)

// UploadMedia accepts a multipart form: the file under "file" plus optional
// alt/description/folder/tags fields. The declared size comes from the "size"
// field when present, otherwise from the multipart header.
func UploadMedia(svc mediasvc.Service, logg *logger.Logger, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart payload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file field is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading upload failed"))
			return
		}

		declaredSize := header.Size
		if raw := strings.TrimSpace(r.FormValue("size")); raw != "" {
			declaredSize, err = strconv.ParseInt(raw, 10, 64)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "size must be an integer"))
				return
			}
		}

		uploadedBy, err := uuid.Parse(strings.TrimSpace(r.FormValue("uploadedBy")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "uploadedBy must be a valid uuid"))
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if override := strings.TrimSpace(r.FormValue("mimeType")); override != "" {
			mimeType = override
		}

		row, err := svc.Upload(r.Context(), mediasvc.UploadInput{
			Bytes:        data,
			DeclaredName: header.Filename,
			DeclaredSize: declaredSize,
			MimeType:     mimeType,
			UploadedBy:   uploadedBy,
			Meta: mediasvc.UploadMeta{
				Alt:         validators.SanitizeString(r.FormValue("alt"), 500),
				Description: validators.SanitizeString(r.FormValue("description"), 2000),
				Folder:      validators.SanitizeString(r.FormValue("folder"), 200),
				Tags:        splitTags(r.FormValue("tags")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

// ListMedia serves the library listing. A "q" parameter switches to the name
// search; otherwise the folder/status/uploadedBy/tag filters apply.
func ListMedia(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		page, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := enums.MediaStatus(strings.TrimSpace(r.URL.Query().Get("status")))

		if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
			rows, meta, err := svc.Search(r.Context(), q, status, page)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WritePage(w, rows, meta)
			return
		}

		uploadedBy, err := validators.ParseQueryUUID(r, "uploadedBy")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, meta, err := svc.List(r.Context(), mediasvc.ListFilter{
			Search:     r.URL.Query().Get("search"),
			Folder:     r.URL.Query().Get("folder"),
			Status:     status,
			UploadedBy: uploadedBy,
			Tag:        r.URL.Query().Get("tag"),
			Page:       page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, rows, meta)
	}
}

func GetMedia(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

type mediaMetadataRequest struct {
	Alt         *string  `json:"alt,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Folder      *string  `json:"folder,omitempty"`
	Featured    *bool    `json:"featured,omitempty"`
}

func UpdateMediaMetadata(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload mediaMetadataRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.UpdateMetadata(r.Context(), id, mediasvc.MetadataPatch{
			Alt:         payload.Alt,
			Description: payload.Description,
			Tags:        payload.Tags,
			Folder:      payload.Folder,
			Featured:    payload.Featured,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

type mediaBulkRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,dive,uuid"`
	Status string   `json:"status" validate:"required"`
}

func BulkUpdateMediaStatus(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		var payload mediaBulkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseMediaStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid media status"))
			return
		}
		ids, err := parseUUIDs(payload.IDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.BulkUpdateStatus(r.Context(), ids, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"updated": len(ids), "status": status})
	}
}

type mediaIDsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

func ArchiveMedia(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return bulkStatusHandler(svc, logg, func(svc mediasvc.Service, r *http.Request, ids []uuid.UUID) error {
		return svc.Archive(r.Context(), ids)
	})
}

func SoftDeleteMedia(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return bulkStatusHandler(svc, logg, func(svc mediasvc.Service, r *http.Request, ids []uuid.UUID) error {
		return svc.SoftDelete(r.Context(), ids)
	})
}

func bulkStatusHandler(svc mediasvc.Service, logg *logger.Logger, apply func(mediasvc.Service, *http.Request, []uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		var payload mediaIDsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ids, err := parseUUIDs(payload.IDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := apply(svc, r, ids); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"updated": len(ids)})
	}
}

// PurgeMedia permanently removes a record and its stored file.
func PurgeMedia(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Purge(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"purged": true})
	}
}

func MediaFolders(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		folders, err := svc.Folders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, folders)
	}
}

func MediaTags(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		tags, err := svc.Tags(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tags)
	}
}

func MediaStats(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		uploadedBy, err := validators.ParseQueryUUID(r, "uploadedBy")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stats, err := svc.Stats(r.Context(), uploadedBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func FeaturedMedia(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 6, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.Featured(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, candidate := range raw {
		id, err := uuid.Parse(candidate)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "ids must be uuids").
				WithDetails(map[string]any{"value": candidate})
		}
		out = append(out, id)
	}
	return out, nil
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
