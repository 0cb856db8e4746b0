package labeler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/engenium/intentd/internal/model"
)

// Store is the persistence surface the orchestrator needs.
type Store interface {
	GetUnlabeledIntents(ctx context.Context) ([]model.IntentRecord, error)
	UpdateIntentLabel(ctx context.Context, id int64, intent string, source model.LabelSource) error
}

// Classifier is the labeling capability; satisfied by *Client.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, bool)
}

// Labeler walks every record still missing an inferred intent, asks the
// classification service for a label, and commits each result durably before
// moving to the next record. Records the classifier gives up on are skipped
// and stay eligible for a future pass, so re-running is always safe.
type Labeler struct {
	store       Store
	classifier  Classifier
	progressOut io.Writer
}

// Option customizes a Labeler.
type Option func(*Labeler)

// WithProgressWriter redirects the progress bar, mainly for tests.
func WithProgressWriter(w io.Writer) Option {
	return func(l *Labeler) {
		l.progressOut = w
	}
}

// New creates a batch labeler.
func New(store Store, classifier Classifier, opts ...Option) *Labeler {
	l := &Labeler{
		store:       store,
		classifier:  classifier,
		progressOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// buildPrompt phrases a record as the question sent to the classifier.
func buildPrompt(record model.IntentRecord) string {
	return fmt.Sprintf("what is the user's likely intent if they are on %s and click %s?",
		record.Domain, record.ActionText)
}

// LabelAll labels every unlabeled record in store order. Each successful
// label is written together with its provenance tag in a single per-record
// update; there is no cross-record atomicity, so the process may stop
// between any two records without harm.
func (l *Labeler) LabelAll(ctx context.Context) (model.Summary, error) {
	records, err := l.store.GetUnlabeledIntents(ctx)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to load unlabeled records: %w", err)
	}

	var summary model.Summary
	if len(records) == 0 {
		slog.Info("no unlabeled records found")
		return summary, nil
	}

	slog.Info("starting labeling pass", "records", len(records))
	bar := l.newProgressBar(len(records))

	for _, record := range records {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		summary.Attempted++
		intent, ok := l.classifier.Classify(ctx, buildPrompt(record))
		if !ok {
			summary.Skipped++
			slog.Warn("skipping record, classification failed",
				"id", record.ID,
				"domain", record.Domain,
				"action", record.ActionText)
			_ = bar.Add(1)
			continue
		}

		if err := l.store.UpdateIntentLabel(ctx, record.ID, intent, model.LabelSourceMistralAPI); err != nil {
			return summary, fmt.Errorf("failed to persist label for record %d: %w", record.ID, err)
		}

		summary.Labeled++
		_ = bar.Add(1)
	}

	slog.Info("labeling pass complete",
		"attempted", summary.Attempted,
		"labeled", summary.Labeled,
		"skipped", summary.Skipped)

	return summary, nil
}

func (l *Labeler) newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(l.progressOut),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Labeling intents..."),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(l.progressOut)
		}),
	)
}
