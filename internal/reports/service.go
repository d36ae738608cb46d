package reports

import (
	"context"
	"fmt"
	"path"

	"github.com/fdg312/cookbook/internal/blob"
	appcfg "github.com/fdg312/cookbook/internal/config"
	"github.com/fdg312/cookbook/internal/feed"
)

// WeekSource computes weekly nutrition for a date inside the week.
type WeekSource interface {
	WeeklyNutrition(ctx context.Context, anchor string) (feed.WeekNutrition, error)
}

// Service builds weekly nutrition reports and optionally stores them in
// the object store.
type Service struct {
	weeks     WeekSource
	generator *Generator
	uploads   blob.Store
	s3        appcfg.S3Config
	prefix    string
}

func NewService(weeks WeekSource) *Service {
	return &Service{weeks: weeks, generator: NewGenerator()}
}

// WithUploads enables Upload; a nil store keeps it disabled.
func (s *Service) WithUploads(store blob.Store, cfg appcfg.S3Config, prefix string) *Service {
	s.uploads = store
	s.s3 = cfg
	s.prefix = prefix
	return s
}

// Weekly renders the week holding anchor (today when empty).
func (s *Service) Weekly(ctx context.Context, anchor, format string) (Report, error) {
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatCSV {
		return Report{}, ErrInvalidFormat
	}

	week, err := s.weeks.WeeklyNutrition(ctx, anchor)
	if err != nil {
		return Report{}, err
	}

	data, err := s.generator.Render(week, format)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Format:      format,
		From:        week.From,
		To:          week.To,
		Data:        data,
		ContentType: contentType(format),
	}, nil
}

// Upload renders the report and puts it under prefix/reports/.
func (s *Service) Upload(ctx context.Context, anchor, format string) (UploadedReport, error) {
	if s.uploads == nil {
		return UploadedReport{}, ErrUploadsDisabled
	}

	report, err := s.Weekly(ctx, anchor, format)
	if err != nil {
		return UploadedReport{}, err
	}

	key := path.Join(s.prefix, "reports", report.Filename())
	size, err := s.uploads.PutObject(ctx, key, report.Data, report.ContentType)
	if err != nil {
		return UploadedReport{}, fmt.Errorf("failed to upload report: %w", err)
	}

	url, expires, err := blob.DownloadURL(ctx, s.uploads, s.s3, key)
	if err != nil {
		return UploadedReport{}, err
	}

	out := UploadedReport{
		Key:         key,
		Format:      report.Format,
		From:        report.From,
		To:          report.To,
		DownloadURL: url,
		SizeBytes:   size,
	}
	if !expires.IsZero() {
		out.ExpiresAt = &expires
	}
	return out, nil
}
