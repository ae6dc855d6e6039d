package controllers

import (
	"net/http"

	"github.com/farmlog-app/farmlog-backend/api/responses"
	"github.com/farmlog-app/farmlog-backend/api/validators"
	"github.com/farmlog-app/farmlog-backend/internal/croplogs"
	pkgerrors "github.com/farmlog-app/farmlog-backend/pkg/errors"
	"github.com/farmlog-app/farmlog-backend/pkg/logger"
)

// CropAdd creates a work record under a farm from a multipart form.
func CropAdd(svc croplogs.Service, store assetStore, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "crop log service unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+formOverhead)
		if err := validators.ParseMultipartForm(r, multipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		farmID, err := validators.RequireFormInt64(r, "farm_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		workDate, err := validators.RequireFormDate(r, "work_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		workRecord, err := validators.RequireFormString(r, "work_record")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := validators.RequireFormString(r, "result")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		imagePath, err := saveRequiredUpload(r, store, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := croplogs.CreateCropLogInput{
			FarmID:     farmID,
			WorkDate:   workDate,
			WorkRecord: workRecord,
			Result:     result,
			ImagePath:  imagePath,
		}
		if _, err := svc.Create(r.Context(), input); err != nil {
			discardUpload(r.Context(), store, imagePath, logg)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, true)
	}
}

// CropCheck lists every work record for the queried farm.
func CropCheck(svc croplogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "crop log service unavailable"))
			return
		}

		farmID, err := validators.RequireQueryInt64(r, "farm_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), farmID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// CropEdit applies a partial update to a work record.
func CropEdit(svc croplogs.Service, store assetStore, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "crop log service unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+formOverhead)
		if err := validators.ParseMultipartForm(r, multipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.RequireFormInt64(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		workDate, err := validators.OptionalFormDate(r, "work_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		imagePath, err := saveUpload(r, store, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := croplogs.UpdateCropLogInput{
			ID:         id,
			WorkDate:   workDate,
			WorkRecord: validators.OptionalFormString(r, "work_record"),
			Result:     validators.OptionalFormString(r, "result"),
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

// CropDelete removes a work record and its stored image.
func CropDelete(svc croplogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "crop log service unavailable"))
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
