package shopping

import (
	"context"

	"meal-planner/internal/core/grocery"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// 複製文字格式
const (
	FormatPlain       = "plain"
	FormatCategorized = "categorized"
)

// ExportText 產生可複製的文字，format 為空時視為 plain
func (s *Service) ExportText(ctx context.Context, householdID, actorID, listID, format string) (string, error) {
	switch format {
	case "", FormatPlain, FormatCategorized:
	default:
		return "", common.ErrUnsupportedFormat.WithMessage("unsupported export format: " + format)
	}

	list, err := s.GetList(ctx, householdID, actorID, listID)
	if err != nil {
		return "", err
	}

	if format == FormatCategorized {
		return grocery.FormatCategorized(grocery.Categorize(list.Items, s.categories)), nil
	}
	return grocery.FormatPlain(list.Items), nil
}

// ExportDownload 產生下載用的純文字檔
func (s *Service) ExportDownload(ctx context.Context, householdID, actorID, listID string) (*Export, error) {
	list, err := s.GetList(ctx, householdID, actorID, listID)
	if err != nil {
		return nil, err
	}
	return &Export{
		Filename:    grocery.DownloadFilename,
		ContentType: grocery.DownloadContentType,
		Data:        []byte(grocery.FormatDownload(list.Items)),
	}, nil
}

// ExportSpreadsheet 產生 xlsx 試算表
func (s *Service) ExportSpreadsheet(ctx context.Context, householdID, actorID, listID string) (*Export, error) {
	list, err := s.GetList(ctx, householdID, actorID, listID)
	if err != nil {
		return nil, err
	}

	data, err := grocery.FormatSpreadsheet(grocery.Categorize(list.Items, s.categories))
	if err != nil {
		common.LogError("Failed to render spreadsheet",
			zap.String("list_id", listID),
			zap.Error(err),
		)
		return nil, common.ErrInternalError.WithErr(err)
	}
	return &Export{
		Filename:    grocery.SpreadsheetFilename,
		ContentType: grocery.SpreadsheetContentType,
		Data:        data,
	}, nil
}
