// Package annotation persists free-text notes on incidents.
package annotation

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/edvin/alertboard/internal/alerting"
	"github.com/edvin/alertboard/internal/metrics"
	"github.com/edvin/alertboard/internal/notify"
)

// ErrSaveInFlight is returned when a save for the same incident and team is
// already outstanding.
var ErrSaveInFlight = errors.New("annotation save already in progress")

// Saver writes an annotation to the backend. *alerting.Backend implements it.
type Saver interface {
	SaveAnnotation(ctx context.Context, text, incidentID, teamID string) error
}

// Writer saves annotations and reports the outcome as a notification.
// Failures are never retried.
type Writer struct {
	saver    Saver
	notifier notify.Notifier
	logger   zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewWriter(saver Saver, notifier notify.Notifier, logger zerolog.Logger) *Writer {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Writer{
		saver:    saver,
		notifier: notifier,
		logger:   logger.With().Str("component", "annotation-writer").Logger(),
		inFlight: make(map[string]bool),
	}
}

// Save persists text for incidentID. On failure the caller keeps its draft.
func (w *Writer) Save(ctx context.Context, text, incidentID, teamID string) error {
	key := alerting.AnnotationKey(incidentID, teamID)
	if !w.begin(key) {
		return ErrSaveInFlight
	}
	defer w.end(key)
	return w.save(ctx, key, text, incidentID, teamID)
}

func (w *Writer) save(ctx context.Context, key, text, incidentID, teamID string) error {
	if err := w.saver.SaveAnnotation(ctx, text, incidentID, teamID); err != nil {
		metrics.AnnotationSavesTotal.WithLabelValues(metrics.OutcomeTransportError).Inc()
		w.logger.Error().Err(err).Str("annotation_key", key).Msg("failed to save annotation")
		w.notifier.Notify(notify.KindError, notify.TitleAnnotationError, err.Error())
		return err
	}

	metrics.AnnotationSavesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	w.logger.Info().Str("annotation_key", key).Int("length", len(text)).Msg("annotation saved")
	w.notifier.Notify(notify.KindSuccess, notify.TitleAnnotationSaved, "")
	return nil
}

// Saving reports whether a save for incidentID and teamID is outstanding.
func (w *Writer) Saving(incidentID, teamID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight[alerting.AnnotationKey(incidentID, teamID)]
}

// Submit saves the draft's current text. The draft reports Submitting while
// its save runs and keeps its text whatever the outcome. A submit rejected
// with ErrSaveInFlight leaves the draft untouched.
func (w *Writer) Submit(ctx context.Context, d *Draft) error {
	key := alerting.AnnotationKey(d.IncidentID, d.TeamID)
	if !w.begin(key) {
		return ErrSaveInFlight
	}
	defer w.end(key)

	d.setSubmitting(true)
	defer d.setSubmitting(false)
	return w.save(ctx, key, d.Text(), d.IncidentID, d.TeamID)
}

func (w *Writer) begin(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[key] {
		metrics.AnnotationSavesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return false
	}
	w.inFlight[key] = true
	return true
}

func (w *Writer) end(key string) {
	w.mu.Lock()
	delete(w.inFlight, key)
	w.mu.Unlock()
}
