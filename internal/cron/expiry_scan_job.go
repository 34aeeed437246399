package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warrantyvault/backend/internal/reminders"
	"github.com/warrantyvault/backend/pkg/db/models"
	"github.com/warrantyvault/backend/pkg/logger"
)

// Reminder horizons: the scan notifies for warranties expiring tomorrow,
// in one week, and in one calendar month.
const (
	horizonTomorrowDays = 1
	horizonWeekDays     = 7
)

const defaultSuppressionWindow = 12 * time.Hour

// ExpiryScanJobParams configures the daily warranty expiry scan.
type ExpiryScanJobParams struct {
	Logger            *logger.Logger
	Warranties        dueWarrantiesRepository
	Users             ownerResolver
	Dispatcher        reminderDispatcher
	SuppressionWindow time.Duration
	Location          *time.Location
	Now               func() time.Time
}

type dueWarrantiesRepository interface {
	FindDue(ctx context.Context, targetDates []time.Time, notBefore time.Time) ([]models.Warranty, error)
}

type ownerResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type reminderDispatcher interface {
	Send(ctx context.Context, warranty models.Warranty, owner *models.User) (reminders.Outcome, error)
}

type expiryScanJob struct {
	logg       *logger.Logger
	warranties dueWarrantiesRepository
	users      ownerResolver
	dispatcher reminderDispatcher
	window     time.Duration
	location   *time.Location
	now        func() time.Time
}

// NewExpiryScanJob constructs the warranty expiry scan cron job.
func NewExpiryScanJob(params ExpiryScanJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Warranties == nil {
		return nil, fmt.Errorf("warranties repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("reminder dispatcher required")
	}
	window := params.SuppressionWindow
	if window <= 0 {
		window = defaultSuppressionWindow
	}
	location := params.Location
	if location == nil {
		location = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &expiryScanJob{
		logg:       params.Logger,
		warranties: params.Warranties,
		users:      params.Users,
		dispatcher: params.Dispatcher,
		window:     window,
		location:   location,
		now:        now,
	}, nil
}

func (j *expiryScanJob) Name() string { return "warranty-expiry-scan" }

// Run performs one scan. A query failure aborts the run; everything after
// that is per-record, so one bad warranty never starves the rest of the
// batch.
func (j *expiryScanJob) Run(ctx context.Context) error {
	now := j.now()
	targets := reminderTargetDates(now, j.location)
	notBefore := now.UTC().Add(-j.window)

	due, err := j.warranties.FindDue(ctx, targets, notBefore)
	if err != nil {
		return fmt.Errorf("query due warranties: %w", err)
	}

	var sent, skipped, failed int
	for _, warranty := range due {
		recordCtx := j.logg.WithFields(ctx, map[string]any{
			"warranty_id": warranty.ID,
			"expiry_date": warranty.ExpiryDate.UTC().Format("2006-01-02"),
		})

		owner, err := j.resolveOwner(recordCtx, warranty)
		if err != nil {
			failed++
			continue
		}

		outcome, err := j.dispatcher.Send(recordCtx, warranty, owner)
		if err != nil {
			j.logg.Error(recordCtx, "reminder dispatch failed", err)
			failed++
			continue
		}
		switch outcome {
		case reminders.OutcomeSent:
			sent++
		default:
			skipped++
		}
	}

	summaryCtx := j.logg.WithFields(ctx, map[string]any{
		"due":     len(due),
		"sent":    sent,
		"skipped": skipped,
		"failed":  failed,
	})
	j.logg.Info(summaryCtx, "expiry scan complete")
	return nil
}

// resolveOwner loads the warranty's user. A missing row is a data
// integrity problem on the warranty side, logged and skipped.
func (j *expiryScanJob) resolveOwner(ctx context.Context, warranty models.Warranty) (*models.User, error) {
	owner, err := j.users.FindByID(ctx, warranty.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			j.logg.Warn(ctx, "warranty references a missing user")
			return nil, nil
		}
		j.logg.Error(ctx, "resolve warranty owner", err)
		return nil, err
	}
	return owner, nil
}

// reminderTargetDates maps "today" in the reference timezone to the three
// target calendar days, each expressed as a midnight-UTC day start. The
// one-month horizon uses calendar arithmetic, so Go's AddDate
// normalization applies on short months (Jan 31 + 1 month = Mar 2/3).
func reminderTargetDates(now time.Time, location *time.Location) []time.Time {
	local := now.In(location)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return []time.Time{
		today.AddDate(0, 0, horizonTomorrowDays),
		today.AddDate(0, 0, horizonWeekDays),
		today.AddDate(0, 1, 0),
	}
}
