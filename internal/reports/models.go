package reports

import (
	"errors"
	"time"
)

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

var (
	ErrInvalidFormat   = errors.New("format must be pdf or csv")
	ErrUploadsDisabled = errors.New("object storage is not configured")
)

// Report is a rendered weekly report.
type Report struct {
	Format      string
	From        string
	To          string
	Data        []byte
	ContentType string
}

// Filename is the attachment name offered to the browser.
func (r Report) Filename() string {
	return "nutrition-" + r.From + "." + r.Format
}

// UploadedReport is the response for POST /v1/reports/weekly
type UploadedReport struct {
	Key         string     `json:"key"`
	Format      string     `json:"format"`
	From        string     `json:"from"`
	To          string     `json:"to"`
	DownloadURL string     `json:"download_url"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	SizeBytes   int64      `json:"size_bytes"`
}

func contentType(format string) string {
	if format == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}
