package controllers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/farmlog-app/farmlog-backend/api/responses"
	"github.com/farmlog-app/farmlog-backend/api/validators"
	"github.com/farmlog-app/farmlog-backend/internal/farms"
	pkgerrors "github.com/farmlog-app/farmlog-backend/pkg/errors"
	"github.com/farmlog-app/farmlog-backend/pkg/logger"
)

const (
	// memory ceiling for buffering multipart fields; files spill to disk
	multipartMemory = 4 << 20
	// slack on top of the file cap for the other form fields
	formOverhead = 1 << 20
)

type assetStore interface {
	Save(ctx context.Context, r io.Reader, originalName string) (string, error)
	Remove(relPath string) error
}

// FarmAdd creates a farm record from a multipart form, storing the attached
// image first so the row never references a file that failed to persist.
func FarmAdd(svc farms.Service, store assetStore, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "farm service unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+formOverhead)
		if err := validators.ParseMultipartForm(r, multipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := validators.RequireFormString(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cropName, err := validators.RequireFormString(r, "crop_name")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plantingDate, err := validators.RequireFormDate(r, "planting_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		harvestDate, err := validators.RequireFormDate(r, "harvest_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		imagePath, err := saveRequiredUpload(r, store, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := farms.CreateFarmInput{
			UserID:       userID,
			CropName:     cropName,
			PlantingDate: plantingDate,
			HarvestDate:  harvestDate,
			ImagePath:    imagePath,
		}
		if _, err := svc.Create(r.Context(), input); err != nil {
			discardUpload(r.Context(), store, imagePath, logg)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, true)
	}
}

// FarmCheck lists every farm belonging to the queried user.
func FarmCheck(svc farms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "farm service unavailable"))
			return
		}

		userID, err := validators.RequireQuery(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// FarmEdit applies a partial update. Absent form fields keep their stored
// values; an attached image replaces the old file.
func FarmEdit(svc farms.Service, store assetStore, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "farm service unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+formOverhead)
		if err := validators.ParseMultipartForm(r, multipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		farmID, err := validators.RequireFormInt64(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plantingDate, err := validators.OptionalFormDate(r, "planting_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		harvestDate, err := validators.OptionalFormDate(r, "harvest_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		imagePath, err := saveUpload(r, store, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := farms.UpdateFarmInput{
			FarmID:       farmID,
			CropName:     validators.OptionalFormString(r, "crop_name"),
			PlantingDate: plantingDate,
			HarvestDate:  harvestDate,
		}
		if imagePath != "" {
			input.ImagePath = &imagePath
		}

		if err := svc.Update(r.Context(), input); err != nil {
			discardUpload(r.Context(), store, imagePath, logg)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, true)
	}
}

type deleteByIDRequest struct {
	ID int64 `json:"id" validate:"required,min=1"`
}

// FarmDelete removes a farm row and its stored image. Deleting an id that is
// already gone still succeeds.
func FarmDelete(svc farms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "farm service unavailable"))
			return
		}

		var body deleteByIDRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), body.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, true)
	}
}

type farmMonthRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Month  string `json:"month" validate:"required"`
}

// FarmMonth lists a user's farms planted within the requested month.
func FarmMonth(svc farms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "farm service unavailable"))
			return
		}

		var body farmMonthRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMonth(r.Context(), body.UserID, body.Month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// saveRequiredUpload persists the "image" part and returns its relative path.
// Create routes always carry a file, so a missing one is a validation error.
func saveRequiredUpload(r *http.Request, store assetStore, logg *logger.Logger) (string, error) {
	file, header, err := validators.RequireFormFile(r, "image")
	if err != nil {
		return "", err
	}
	return storeUpload(r, store, file, header, logg)
}

// saveUpload persists an optional "image" part and returns its relative path,
// or "" when the form carries no file.
func saveUpload(r *http.Request, store assetStore, logg *logger.Logger) (string, error) {
	file, header, err := validators.OptionalFormFile(r, "image")
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", nil
	}
	return storeUpload(r, store, file, header, logg)
}

func storeUpload(r *http.Request, store assetStore, file multipart.File, header *multipart.FileHeader, logg *logger.Logger) (string, error) {
	defer file.Close()

	path, err := store.Save(r.Context(), file, header.Filename)
	if err != nil {
		return "", err
	}
	if logg != nil {
		logg.Info(logg.WithField(r.Context(), "asset", path), "asset.stored")
	}
	return path, nil
}

// discardUpload drops a freshly written file after the row change it was
// stored for failed.
func discardUpload(ctx context.Context, store assetStore, relPath string, logg *logger.Logger) {
	if relPath == "" {
		return
	}
	if err := store.Remove(relPath); err != nil && logg != nil {
		logg.Warn(logg.WithField(ctx, "asset", relPath), "asset.cleanup.failed")
	}
}
