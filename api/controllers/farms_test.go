package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farmlog-app/farmlog-backend/internal/farms"
	pkgerrors "github.com/farmlog-app/farmlog-backend/pkg/errors"
)

type stubFarmService struct {
	created   *farms.CreateFarmInput
	createErr error
	list      []farms.FarmDTO
	listErr   error
	updated   *farms.UpdateFarmInput
	updateErr error
	deletedID int64
	deleteErr error
	monthArgs [2]string
}

func (s *stubFarmService) Create(ctx context.Context, input farms.CreateFarmInput) (*farms.FarmDTO, error) {
	s.created = &input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &farms.FarmDTO{FarmID: 1, UserID: input.UserID, CropName: input.CropName}, nil
}

func (s *stubFarmService) List(ctx context.Context, userID string) ([]farms.FarmDTO, error) {
	return s.list, s.listErr
}

func (s *stubFarmService) ListMonth(ctx context.Context, userID, month string) ([]farms.FarmDTO, error) {
	s.monthArgs = [2]string{userID, month}
	return s.list, s.listErr
}

func (s *stubFarmService) Update(ctx context.Context, input farms.UpdateFarmInput) error {
	s.updated = &input
	return s.updateErr
}

func (s *stubFarmService) Delete(ctx context.Context, farmID int64) error {
	s.deletedID = farmID
	return s.deleteErr
}

type stubAssetStore struct {
	saved   []string
	saveErr error
	removed []string
}

func (s *stubAssetStore) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	io.Copy(io.Discard, r)
	path := "uploads/1700000000000-" + originalName
	s.saved = append(s.saved, path)
	return path, nil
}

func (s *stubAssetStore) Remove(relPath string) error {
	s.removed = append(s.removed, relPath)
	return nil
}

func farmAddForm(t *testing.T, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("user_id", "abc")
	mw.WriteField("crop_name", "tomato")
	mw.WriteField("planting_date", "2025-04-01")
	mw.WriteField("harvest_date", "2025-08-15")
	if withImage {
		fw, err := mw.CreateFormFile("image", "tomato.png")
		if err != nil {
			t.Fatalf("build form: %v", err)
		}
		fw.Write([]byte("png-bytes"))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestFarmAddSuccess(t *testing.T) {
	svc := &stubFarmService{}
	store := &stubAssetStore{}
	handler := FarmAdd(svc, store, 1<<20, nil)

	body, contentType := farmAddForm(t, true)
	req := httptest.NewRequest(http.MethodPost, "/farm/add", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !decodeBoolData(t, resp) {
		t.Fatal("expected data true")
	}
	if svc.created == nil {
		t.Fatal("expected service create call")
	}
	if svc.created.UserID != "abc" || svc.created.CropName != "tomato" {
		t.Fatalf("unexpected create input %+v", svc.created)
	}
	want := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !svc.created.PlantingDate.Equal(want) {
		t.Fatalf("unexpected planting date %v", svc.created.PlantingDate)
	}
	if svc.created.ImagePath != "uploads/1700000000000-tomato.png" {
		t.Fatalf("unexpected image path %q", svc.created.ImagePath)
	}
	if len(store.removed) != 0 {
		t.Fatalf("no cleanup expected, removed %v", store.removed)
	}
}

func TestFarmAddRequiresImage(t *testing.T) {
	svc := &stubFarmService{}
	handler := FarmAdd(svc, &stubAssetStore{}, 1<<20, nil)

	body, contentType := farmAddForm(t, false)
	req := httptest.NewRequest(http.MethodPost, "/farm/add", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.created != nil {
		t.Fatalf("service should not be called, got %+v", svc.created)
	}
}

func TestFarmAddCleansUpAssetWhenCreateFails(t *testing.T) {
	svc := &stubFarmService{createErr: pkgerrors.New(pkgerrors.CodeDependency, "db down")}
	store := &stubAssetStore{}
	handler := FarmAdd(svc, store, 1<<20, nil)

	body, contentType := farmAddForm(t, true)
	req := httptest.NewRequest(http.MethodPost, "/farm/add", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if len(store.removed) != 1 || store.removed[0] != store.saved[0] {
		t.Fatalf("expected saved file to be removed, got %v", store.removed)
	}
}

func TestFarmAddMissingField(t *testing.T) {
	handler := FarmAdd(&stubFarmService{}, &stubAssetStore{}, 1<<20, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("user_id", "abc")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/farm/add", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestFarmCheckReturnsList(t *testing.T) {
	svc := &stubFarmService{list: []farms.FarmDTO{{FarmID: 1, UserID: "abc", CropName: "tomato"}}}
	handler := FarmCheck(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/farm/check?user_id=abc", nil)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []farms.FarmDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].CropName != "tomato" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestFarmCheckRequiresUserID(t *testing.T) {
	handler := FarmCheck(&stubFarmService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/farm/check", nil)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestFarmEditOnlySuppliedFields(t *testing.T) {
	svc := &stubFarmService{}
	handler := FarmEdit(svc, &stubAssetStore{}, 1<<20, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("id", "7")
	mw.WriteField("crop_name", "cabbage")
	mw.Close()

	req := httptest.NewRequest(http.MethodPut, "/farm/edit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.updated == nil {
		t.Fatal("expected update call")
	}
	if svc.updated.FarmID != 7 {
		t.Fatalf("unexpected id %d", svc.updated.FarmID)
	}
	if svc.updated.CropName == nil || *svc.updated.CropName != "cabbage" {
		t.Fatalf("expected crop_name set, got %+v", svc.updated.CropName)
	}
	if svc.updated.PlantingDate != nil || svc.updated.HarvestDate != nil || svc.updated.ImagePath != nil {
		t.Fatalf("expected untouched fields to stay nil: %+v", svc.updated)
	}
}

func TestFarmDelete(t *testing.T) {
	svc := &stubFarmService{}
	handler := FarmDelete(svc, nil)

	req := httptest.NewRequest(http.MethodDelete, "/farm/delete", bytes.NewReader([]byte(`{"id":9}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.deletedID != 9 {
		t.Fatalf("expected delete of id 9, got %d", svc.deletedID)
	}
}

func TestFarmMonthPassesThrough(t *testing.T) {
	svc := &stubFarmService{list: []farms.FarmDTO{}}
	handler := FarmMonth(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/farm/month", bytes.NewReader([]byte(`{"user_id":"abc","month":"2025-04"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.monthArgs != [2]string{"abc", "2025-04"} {
		t.Fatalf("unexpected month args %v", svc.monthArgs)
	}
}

func TestFarmMonthRejectsMissingMonth(t *testing.T) {
	handler := FarmMonth(&stubFarmService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/farm/month", bytes.NewReader([]byte(`{"user_id":"abc"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
