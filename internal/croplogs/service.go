package croplogs

import (
	"context"
	"errors"
	"fmt"

	"github.com/farmlog-app/farmlog-backend/pkg/config"
	"github.com/farmlog-app/farmlog-backend/pkg/db"
	"github.com/farmlog-app/farmlog-backend/pkg/db/models"
	pkgerrors "github.com/farmlog-app/farmlog-backend/pkg/errors"
	"github.com/farmlog-app/farmlog-backend/pkg/logger"
	"gorm.io/gorm"
)

// Service defines the work-record flows needed by the HTTP layer.
type Service interface {
	Create(ctx context.Context, input CreateCropLogInput) (*CropLogDTO, error)
	List(ctx context.Context, farmID int64) ([]CropLogDTO, error)
	Update(ctx context.Context, input UpdateCropLogInput) error
	Delete(ctx context.Context, id int64) error
}

type repository interface {
	Create(ctx context.Context, log *models.CropLog) (*models.CropLog, error)
	FindByID(ctx context.Context, id int64) (*models.CropLog, error)
	ListByFarm(ctx context.Context, farmID int64) ([]models.CropLog, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
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

// ServiceParams bundles the dependencies required to build a crop log service.
type ServiceParams struct {
	Repo        repository
	Assets      assetRemover
	Logger      *logger.Logger
	RetryConfig config.DBConfig
}

// NewService constructs a crop log service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("crop log repository is required")
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

func (s *service) Create(ctx context.Context, input CreateCropLogInput) (*CropLogDTO, error) {
	log := &models.CropLog{
		FarmID:     input.FarmID,
		WorkDate:   input.WorkDate,
		WorkRecord: input.WorkRecord,
		Result:     input.Result,
	}
	if input.ImagePath != "" {
		image := input.ImagePath
		log.Image = &image
	}

	err := db.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		_, inner := s.repo.Create(ctx, log)
		return inner
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert crop log")
	}
	dto := FromModel(log)
	return &dto, nil
}

func (s *service) List(ctx context.Context, farmID int64) ([]CropLogDTO, error) {
	var rows []models.CropLog
	err := db.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		var inner error
		rows, inner = s.repo.ListByFarm(ctx, farmID)
		return inner
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list crop logs")
	}
	return fromModels(rows), nil
}

// Update applies the supplied fields in one statement; unsupplied fields keep
// their stored values.
func (s *service) Update(ctx context.Context, input UpdateCropLogInput) error {
	fields := map[string]any{}
	if input.WorkDate != nil {
		fields["work_date"] = *input.WorkDate
	}
	if input.WorkRecord != nil {
		fields["work_record"] = *input.WorkRecord
	}
	if input.Result != nil {
		fields["result"] = *input.Result
	}
	if input.ImagePath != nil {
		fields["image"] = *input.ImagePath
	}

	var priorImage *string
	if input.ImagePath != nil {
		existing, err := s.findExisting(ctx, input.ID)
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
		matched, inner = s.repo.UpdateFields(ctx, input.ID, fields)
		return inner
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update crop log")
	}
	if matched == 0 {
		s.warn(ctx, input.ID, "crop log update matched no rows")
		return nil
	}

	if priorImage != nil && input.ImagePath != nil && *priorImage != *input.ImagePath {
		s.removeAsset(ctx, input.ID, *priorImage)
	}
	return nil
}

// Delete removes the row and then its image file, best effort.
func (s *service) Delete(ctx context.Context, id int64) error {
	existing, err := s.findExisting(ctx, id)
	if err != nil {
		return err
	}

	var matched int64
	err = db.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		var inner error
		matched, inner = s.repo.Delete(ctx, id)
		return inner
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete crop log")
	}
	if matched == 0 {
		s.warn(ctx, id, "crop log delete matched no rows")
		return nil
	}

	if existing != nil && existing.Image != nil {
		s.removeAsset(ctx, id, *existing.Image)
	}
	return nil
}

func (s *service) findExisting(ctx context.Context, id int64) (*models.CropLog, error) {
	var log *models.CropLog
	err := db.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		var inner error
		log, inner = s.repo.FindByID(ctx, id)
		return inner
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup crop log")
	}
	return log, nil
}

func (s *service) removeAsset(ctx context.Context, id int64, relPath string) {
	if err := s.assets.Remove(relPath); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "crop_log_id", id), "failed to remove crop log asset", err)
	}
}

func (s *service) warn(ctx context.Context, id int64, msg string) {
	if s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "crop_log_id", id), msg)
	}
}
