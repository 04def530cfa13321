package service

import (
	"context"

	"garen-bot/internal/constants"
	"garen-bot/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

type PatchNoteSource interface {
	LatestPatchNote(ctx context.Context) (*domain.PatchNote, error)
}

type PatchNoteView struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url,omitempty"`
}

type PatchNoteService struct {
	source PatchNoteSource
	logger zerolog.Logger
}

func NewPatchNoteService(source PatchNoteSource, logger zerolog.Logger) *PatchNoteService {
	return &PatchNoteService{source: source, logger: logger}
}

func (s *PatchNoteService) Latest(ctx context.Context) (*PatchNoteView, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
	defer cancel()

	note, err := s.source.LatestPatchNote(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch latest patch note")
	}
	if note.ImageURL == "" {
		s.logger.Warn().Str("url", note.URL).Msg("patch note has no image")
	}
	return &PatchNoteView{Title: note.Title, URL: note.URL, ImageURL: note.ImageURL}, nil
}
