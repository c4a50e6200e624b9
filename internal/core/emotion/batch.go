package emotion

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/platform/logger"
)

// Batch classifies many records with bounded concurrency.
type Batch struct {
	classifier  Classifier
	concurrency int
	log         *logger.Logger
}

func NewBatch(classifier Classifier, concurrency int, log *logger.Logger) *Batch {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Batch{classifier: classifier, concurrency: concurrency, log: log}
}

// ClassifyAll returns one distribution per record, at the record's index.
// The first failure cancels the remaining work.
func (b *Batch) ClassifyAll(ctx context.Context, records []model.ActivityRecord) ([]model.EmotionDistribution, error) {
	out := make([]model.EmotionDistribution, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i := range records {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dist, err := b.classifier.Classify(gctx, records[i].Body)
			if err != nil {
				classificationsTotal.WithLabelValues("error").Inc()
				return fmt.Errorf("record %s: %w", records[i].ID, err)
			}
			if err := dist.Validate(); err != nil {
				classificationsTotal.WithLabelValues("error").Inc()
				return fmt.Errorf("record %s: %w", records[i].ID, err)
			}
			classificationsTotal.WithLabelValues("ok").Inc()
			out[i] = dist
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	b.log.Debug("classified records", "records", len(records), "concurrency", b.concurrency)
	return out, nil
}
