// Package report renders stored analyses as markdown, HTML, PDF or a terminal table.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/models"
)

// Format is a supported report output format
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

// ErrUnknownFormat is returned for formats other than md, html and pdf
var ErrUnknownFormat = errors.New("unknown report format")

// Report is a rendered document ready to be served
type Report struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Service renders analysis reports
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new report service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
	}
}

// ParseFormat accepts md, markdown, html and pdf (case-insensitive). Empty means markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Render produces the report for an analysis in the requested format
func (s *Service) Render(a *models.Analysis, format Format) (*Report, error) {
	md := BuildMarkdown(a)
	title := "Financiële analyse " + a.ID

	s.logger.Debug().
		Str("analysis_id", a.ID).
		Str("format", string(format)).
		Int("markdown_len", len(md)).
		Msg("Rendering report")

	var (
		content     []byte
		contentType string
		err         error
	)
	switch format {
	case FormatMarkdown:
		content, contentType = []byte(md), "text/markdown; charset=utf-8"
	case FormatHTML:
		content, err = RenderHTML(md, title)
		contentType = "text/html; charset=utf-8"
	case FormatPDF:
		content, err = RenderPDF(md, title)
		contentType = "application/pdf"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("analysis_id", a.ID).Str("format", string(format)).Msg("Failed to render report")
		return nil, err
	}

	return &Report{
		Content:     content,
		ContentType: contentType,
		Filename:    fmt.Sprintf("%s.%s", a.ID, format),
	}, nil
}
