package session

import (
	"context"
	"errors"

	"github.com/vampirenirmal/lumina/internal/export"
)

func (s *Session) ExportFormats() []string {
	return s.exporter.Formats()
}

// Export encodes a snapshot of the manuscript in format.
func (s *Session) Export(ctx context.Context, format string) (export.Artifact, error) {
	a, err := s.exporter.Export(ctx, format, s.snapshot())
	if errors.Is(err, export.ErrUnknownFormat) {
		return export.Artifact{}, err
	}
	if err != nil {
		return export.Artifact{}, s.notice("export", "The export failed", err)
	}
	s.logger.Info("Exported book", "format", format, "file", a.Name, "size", len(a.Data))
	return a, nil
}

// ExportAll encodes one snapshot in every available format.
func (s *Session) ExportAll(ctx context.Context) ([]export.Artifact, error) {
	arts, err := s.exporter.ExportAll(ctx, s.snapshot())
	if err != nil {
		return nil, s.notice("export", "The export failed", err)
	}
	return arts, nil
}
