// Package track owns the lifecycle of application attempts:
// pending -> submitted | failed, with failed -> pending on explicit retry.
// Nothing here schedules re-attempts; retry is always a caller action.
package track

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"jobtrack-engine/internal/store"
)

// ErrInvalidTransition is returned when an outcome is reported for an
// application that already has one.
var ErrInvalidTransition = errors.New("invalid status transition")

type Tracker struct {
	store  *store.Store
	logger *zap.Logger
}

func New(st *store.Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: st, logger: logger}
}

// Open creates a new pending attempt against a known job.
func (t *Tracker) Open(ctx context.Context, jobID, method string) (string, error) {
	id, err := t.store.CreateApplication(ctx, jobID, method)
	if err != nil {
		return "", err
	}
	t.logger.Info("application opened",
		zap.String("application_id", id),
		zap.String("job_id", jobID),
		zap.String("method", method))
	return id, nil
}

// Begin marks a pending attempt as in_progress (the bot started filling the
// form). No-op if the attempt is already past pending.
func (t *Tracker) Begin(ctx context.Context, applicationID string) error {
	_, err := t.store.TransitionApplication(ctx, applicationID, store.AppInProgress, "Submission started", store.AppPending)
	return err
}

// SubmitOutcome records the result of an attempt. Valid only before an
// outcome exists (pending or in_progress); submitted and failed are settled
// states and reporting another outcome from them is ErrInvalidTransition.
// The guard rides inside the status update, so of two racing outcomes only
// one lands.
func (t *Tracker) SubmitOutcome(ctx context.Context, applicationID string, success bool, confirmationNumber string) error {
	newStatus, note := store.AppSubmitted, "Application submitted"
	if !success {
		newStatus, note = store.AppFailed, "Submission failed"
	}

	moved, err := t.store.TransitionApplication(ctx, applicationID, newStatus, note, store.AppPending, store.AppInProgress)
	if err != nil {
		return err
	}
	if !moved {
		app, err := t.store.GetApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		return fmt.Errorf("application %s is %s: %w", applicationID, app.Status, ErrInvalidTransition)
	}

	if !success {
		t.logger.Warn("application failed", zap.String("application_id", applicationID))
		return nil
	}

	if confirmationNumber != "" {
		if err := t.store.SetConfirmationNumber(ctx, applicationID, confirmationNumber); err != nil {
			return err
		}
	}
	if app, err := t.store.GetApplication(ctx, applicationID); err != nil {
		// The outcome is recorded; a missing job row only loses the flag.
		t.logger.Warn("mark job applied skipped", zap.String("application_id", applicationID), zap.Error(err))
	} else if err := t.store.MarkJobApplied(ctx, app.JobID, true); err != nil {
		t.logger.Warn("mark job applied failed", zap.String("job_id", app.JobID), zap.Error(err))
	}
	t.logger.Info("application submitted",
		zap.String("application_id", applicationID),
		zap.String("confirmation", confirmationNumber))
	return nil
}

// Retry moves a failed attempt back to pending. Applied to an attempt in
// any other state it is a no-op, so bulk retries can sweep a batch that
// includes already-retried rows.
func (t *Tracker) Retry(ctx context.Context, applicationID string) error {
	moved, err := t.store.TransitionApplication(ctx, applicationID, store.AppPending, "Retry requested", store.AppFailed)
	if err != nil {
		return err
	}
	if moved {
		t.logger.Info("application retry requested", zap.String("application_id", applicationID))
	}
	return nil
}

// RecordAnswer stores one form question/answer pair against an attempt.
func (t *Tracker) RecordAnswer(ctx context.Context, applicationID, questionText, questionType, value, extra string) error {
	return t.store.RecordFormResponse(ctx, applicationID, questionText, questionType, value, extra)
}
