package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	pkgerrors "github.com/farmlog-app/farmlog-backend/pkg/errors"
)

const maxFieldLen = 2048

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
}

// ParseMultipartForm buffers the form with the given memory cap. Body size
// enforcement happens upstream via http.MaxBytesReader.
func ParseMultipartForm(r *http.Request, maxMemory int64) error {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form").WithDetails(map[string]any{"error": err.Error()})
	}
	return nil
}

func RequireFormString(r *http.Request, key string) (string, error) {
	value := SanitizeString(r.FormValue(key), maxFieldLen)
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "form field is required").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

func RequireFormInt64(r *http.Request, key string) (int64, error) {
	raw, err := RequireFormString(r, key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "form field must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "form field must be positive").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

func RequireFormDate(r *http.Request, key string) (time.Time, error) {
	raw, err := RequireFormString(r, key)
	if err != nil {
		return time.Time{}, err
	}
	return parseDate(raw, key)
}

// OptionalFormString returns nil when the field is absent or blank.
func OptionalFormString(r *http.Request, key string) *string {
	value := SanitizeString(r.FormValue(key), maxFieldLen)
	if value == "" {
		return nil
	}
	return &value
}

func OptionalFormDate(r *http.Request, key string) (*time.Time, error) {
	raw := SanitizeString(r.FormValue(key), maxFieldLen)
	if raw == "" {
		return nil, nil
	}
	value, err := parseDate(raw, key)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// RequireFormFile rejects requests that carry no file under the given key.
// Callers own closing the returned file.
func RequireFormFile(r *http.Request, key string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := OptionalFormFile(r, key)
	if err != nil {
		return nil, nil, err
	}
	if file == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "file upload is required").WithDetails(map[string]any{"field": key})
	}
	return file, header, nil
}

// OptionalFormFile returns (nil, nil, nil) when no file was attached under
// the given key. Callers own closing the returned file.
func OptionalFormFile(r *http.Request, key string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(key)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file upload").WithDetails(map[string]any{"field": key})
	}
	if header.Filename == "" {
		file.Close()
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "uploaded file needs a name").WithDetails(map[string]any{"field": key})
	}
	return file, header, nil
}

func parseDate(raw, key string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if value, err := time.Parse(layout, raw); err == nil {
			return value, nil
		}
	}
	return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "form field must be a date").WithDetails(map[string]any{"field": key})
}
