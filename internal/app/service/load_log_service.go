package service

import (
	"context"
	"time"

	"deals_api/internal/common"
	"deals_api/internal/domain/model"
	"deals_api/internal/domain/repository"
)

type LoadLogService struct {
	loadLogRepo repository.LoadLogRepository
}

func NewLoadLogService(loadLogRepo repository.LoadLogRepository) *LoadLogService {
	return &LoadLogService{loadLogRepo: loadLogRepo}
}

func (s *LoadLogService) ListLoadLogs(ctx context.Context, page common.PageRequest) ([]model.DataLoadLog, common.PageMeta, error) {
	entries, total, err := s.loadLogRepo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, common.PageMeta{}, err
	}
	return entries, common.NewPageMeta(page, len(entries), total), nil
}

// RecordLoad persists one load event as a DataLoadLog row.
func (s *LoadLogService) RecordLoad(ctx context.Context, event model.LoadEvent) (*model.DataLoadLog, error) {
	loadedAt := event.LoadedAt.UTC()
	entry := &model.DataLoadLog{
		CategoryID:   event.CategoryID,
		FileName:     event.FileName,
		RowsInserted: event.RowsInserted,
		LoadedBy:     event.LoadedBy,
		Date:         loadedAt.Truncate(24 * time.Hour),
	}
	if err := s.loadLogRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
