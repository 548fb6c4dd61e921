package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/domain"
	"github.com/tbourn/campus-mood-backend/internal/repo"
)

// ReactionStore persists reaction batches for the batcher. Each affected
// post costs one read and one write; posts that disappeared cost one read.
type ReactionStore struct {
	DB    *gorm.DB
	Clock clock.Clock
	Meter *UsageMeter
	Feed  Publisher
}

// ApplyReactionBatch writes groups atomically and notifies the live feed.
func (s *ReactionStore) ApplyReactionBatch(ctx context.Context, groups []domain.ReactionGroup) (int, error) {
	tr := otel.Tracer("services/ReactionStore")
	ctx, span := tr.Start(ctx, "ApplyReactionBatch", trace.WithAttributes(attribute.Int("posts", len(groups))))
	defer span.End()

	res, err := repo.ApplyReactionBatch(ctx, s.DB, groups, s.Clock.Now())
	if err != nil {
		return 0, err
	}
	s.Meter.Observe(ctx, res.Written+res.Skipped, res.Written)
	if s.Feed != nil && res.Written > 0 {
		_ = s.Feed.Publish(context.WithoutCancel(ctx))
	}
	return res.Written, nil
}
