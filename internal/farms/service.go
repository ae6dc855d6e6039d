package farms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farmlog-app/farmlog-backend/pkg/config"
	"github.com/farmlog-app/farmlog-backend/pkg/db"
	"github.com/farmlog-app/farmlog-backend/pkg/db/models"
	pkgerrors "github.com/farmlog-app/farmlog-backend/pkg/errors"
	"github.com/farmlog-app/farmlog-backend/pkg/logger"
	"gorm.io/gorm"
)

// Service defines the farm record flows needed by the HTTP layer.
type Service interface {
	Create(ctx context.Context, input CreateFarmInput) (*FarmDTO, error)
	List(ctx context.Context, userID string) ([]FarmDTO, error)
	ListMonth(ctx context.Context, userID, month string) ([]FarmDTO, error)
	Update(ctx context.Context, input UpdateFarmInput) error
	Delete(ctx context.Context, farmID int64) error
}

type repository interface {
	Create(ctx context.Context, farm *models.Farm) (*models.Farm, error)
	FindByID(ctx context.Context, farmID int64) (*models.Farm, error)
	ListByUser(ctx context.Context, userID string) ([]models.Farm, error)
	ListByPlantingRange(ctx context.Context, userID string, from, to time.Time) ([]models.Farm, error)
	UpdateFields(ctx context.Context, farmID int64, fields map[string]any) (int64, error)
	Delete(ctx context.Context, farmID int64) (int64, error)
}

type assetRemover interface {
	Remove(relPath string) error
}

type service struct {
	repo   repository
	assets assetRemover
	logg   *logger.Logger
	retry  config.DBConfig
}

// ServiceParams bundles the dependencies required to build a farm service.
type ServiceParams struct {
	Repo        repository
	Assets      assetRemover
	Logger      *logger.Logger
	RetryConfig config.DBConfig
}

// NewService constructs a farm service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("farm repository is required")
	}
	if params.Assets == nil {
		return nil, fmt.Errorf("asset store is required")
	}
	return &service{
		repo:   params.Repo,
		assets: params.Assets,
		logg:   params.Logger,
		retry:  params.RetryConfig,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateFarmInput) (*FarmDTO, error) {
	farm := &models.Farm{
		UserID:       input.UserID,
		CropName:     input.CropName,
		PlantingDate: input.PlantingDate,
		HarvestDate:  input.HarvestDate,
	}
	if input.ImagePath != "" {
		image := input.ImagePath
		farm.Image = &image
	}

	err := db.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		_, inner := s.repo.Create(ctx, farm)
		return inner
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert farm")
	}
	dto := FromModel(farm)
	return &dto, nil
}

func (s *service) List(ctx context.Context, userID string) ([]FarmDTO, error) {
	var rows []models.Farm
	err := db.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		var inner error
		rows, inner = s.repo.ListByUser(ctx, userID)
		return inner
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list farms")
	}
	return fromModels(rows), nil
}

// ListMonth filters the user's farms to those planted in the year+month of
// the supplied date string. The day component is ignored.
func (s *service) ListMonth(ctx context.Context, userID, month string) ([]FarmDTO, error) {
	from, to, err := parseMonthRange(month)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unparseable month").
			WithDetails(map[string]any{"field": "month"})
	}

	var rows []models.Farm
	err = db.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		var inner error
		rows, inner = s.repo.ListByPlantingRange(ctx, userID, from, to)
		return inner
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list farms by month")
	}
	return fromModels(rows), nil
}

// Update applies the supplied fields in one statement; unsupplied fields keep
// their stored values. An id matching no row still succeeds, mirroring the
// delete contract.
func (s *service) Update(ctx context.Context, input UpdateFarmInput) error {
	fields := map[string]any{}
	if input.CropName != nil {
		fields["crop_name"] = *input.CropName
	}
	if input.PlantingDate != nil {
		fields["planting_date"] = *input.PlantingDate
	}
	if input.HarvestDate != nil {
		fields["harvest_date"] = *input.HarvestDate
	}
	if input.ImagePath != nil {
		fields["image"] = *input.ImagePath
	}

	var priorImage *string
	if input.ImagePath != nil {
		existing, err := s.findExisting(ctx, input.FarmID)
		if err != nil {
			return err
		}
		if existing != nil {
			priorImage = existing.Image
		}
	}

	var matched int64
	err := db.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		var inner error
		matched, inner = s.repo.UpdateFields(ctx, input.FarmID, fields)
		return inner
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update farm")
	}
	if matched == 0 {
		s.warn(ctx, input.FarmID, "farm update matched no rows")
		return nil
	}

	if priorImage != nil && input.ImagePath != nil && *priorImage != *input.ImagePath {
		s.removeAsset(ctx, input.FarmID, *priorImage)
	}
	return nil
}

// Delete removes the row and then its image file, best effort. A missing row
// is a success.
func (s *service) Delete(ctx context.Context, farmID int64) error {
	existing, err := s.findExisting(ctx, farmID)
	if err != nil {
		return err
	}

	var matched int64
	err = db.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		var inner error
		matched, inner = s.repo.Delete(ctx, farmID)
		return inner
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete farm")
	}
	if matched == 0 {
		s.warn(ctx, farmID, "farm delete matched no rows")
		return nil
	}

	if existing != nil && existing.Image != nil {
		s.removeAsset(ctx, farmID, *existing.Image)
	}
	return nil
}

func (s *service) findExisting(ctx context.Context, farmID int64) (*models.Farm, error) {
	var farm *models.Farm
	err := db.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		var inner error
		farm, inner = s.repo.FindByID(ctx, farmID)
		return inner
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup farm")
	}
	return farm, nil
}

func (s *service) removeAsset(ctx context.Context, farmID int64, relPath string) {
	if err := s.assets.Remove(relPath); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithFarmID(ctx, farmID), "failed to remove farm asset", err)
	}
}

func (s *service) warn(ctx context.Context, farmID int64, msg string) {
	if s.logg != nil {
		s.logg.Warn(s.logg.WithFarmID(ctx, farmID), msg)
	}
}

// parseMonthRange accepts any of the supported date layouts and returns the
// half-open range covering that calendar month.
func parseMonthRange(value string) (time.Time, time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02", "2006-01", "2006/01/02"}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		from := time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unsupported date %q", value)
}
