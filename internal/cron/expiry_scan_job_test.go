package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warrantyvault/backend/internal/reminders"
	"github.com/warrantyvault/backend/pkg/db/models"
	"github.com/warrantyvault/backend/pkg/logger"
)

type fakeDueRepo struct {
	targets   []time.Time
	notBefore time.Time
	due       []models.Warranty
	err       error
}

func (f *fakeDueRepo) FindDue(ctx context.Context, targets []time.Time, notBefore time.Time) ([]models.Warranty, error) {
	f.targets = targets
	f.notBefore = notBefore
	return f.due, f.err
}

type fakeOwnerResolver struct {
	users   map[uuid.UUID]*models.User
	errByID map[uuid.UUID]error
}

func (f *fakeOwnerResolver) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err, ok := f.errByID[id]; ok {
		return nil, err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fakeDispatcher struct {
	sent    []uuid.UUID
	owners  []*models.User
	outcome reminders.Outcome
	err     error
}

func (f *fakeDispatcher) Send(ctx context.Context, warranty models.Warranty, owner *models.User) (reminders.Outcome, error) {
	f.sent = append(f.sent, warranty.ID)
	f.owners = append(f.owners, owner)
	if f.err != nil {
		return "", f.err
	}
	outcome := f.outcome
	if outcome == "" {
		outcome = reminders.OutcomeSent
	}
	return outcome, nil
}

func scanTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newScanJob(t *testing.T, params ExpiryScanJobParams) Job {
	t.Helper()
	if params.Logger == nil {
		params.Logger = scanTestLogger()
	}
	job, err := NewExpiryScanJob(params)
	if err != nil {
		t.Fatalf("NewExpiryScanJob: %v", err)
	}
	return job
}

func TestExpiryScanJobTargetsAndSuppressionWindow(t *testing.T) {
	repo := &fakeDueRepo{}
	job := newScanJob(t, ExpiryScanJobParams{
		Warranties: repo,
		Users:      &fakeOwnerResolver{},
		Dispatcher: &fakeDispatcher{},
		Now: func() time.Time {
			return time.Date(2026, 8, 31, 7, 0, 0, 0, time.UTC)
		},
	})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Aug 31 + 1 calendar month is Sep 31, which AddDate rolls to Oct 1.
	want := []time.Time{
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	if len(repo.targets) != len(want) {
		t.Fatalf("expected %d targets, got %d", len(want), len(repo.targets))
	}
	for i, target := range want {
		if !repo.targets[i].Equal(target) {
			t.Fatalf("target %d: expected %v, got %v", i, target, repo.targets[i])
		}
	}

	wantNotBefore := time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)
	if !repo.notBefore.Equal(wantNotBefore) {
		t.Fatalf("expected suppression cutoff %v, got %v", wantNotBefore, repo.notBefore)
	}
}

func TestExpiryScanJobUsesReferenceTimezoneForToday(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	repo := &fakeDueRepo{}
	job := newScanJob(t, ExpiryScanJobParams{
		Warranties: repo,
		Users:      &fakeOwnerResolver{},
		Dispatcher: &fakeDispatcher{},
		Location:   loc,
		// 20:00 UTC on Aug 31 is already Sep 1 in Kolkata.
		Now: func() time.Time {
			return time.Date(2026, 8, 31, 20, 0, 0, 0, time.UTC)
		},
	})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantTomorrow := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	if !repo.targets[0].Equal(wantTomorrow) {
		t.Fatalf("expected tomorrow target %v, got %v", wantTomorrow, repo.targets[0])
	}
}

func TestExpiryScanJobMonthHorizonNormalizesShortMonths(t *testing.T) {
	repo := &fakeDueRepo{}
	job := newScanJob(t, ExpiryScanJobParams{
		Warranties: repo,
		Users:      &fakeOwnerResolver{},
		Dispatcher: &fakeDispatcher{},
		Now: func() time.Time {
			return time.Date(2026, 1, 31, 7, 0, 0, 0, time.UTC)
		},
	})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantMonth := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	if !repo.targets[2].Equal(wantMonth) {
		t.Fatalf("expected month target %v, got %v", wantMonth, repo.targets[2])
	}
}

func TestExpiryScanJobQueryFailureAbortsRun(t *testing.T) {
	repo := &fakeDueRepo{err: errors.New("db down")}
	dispatcher := &fakeDispatcher{}
	job := newScanJob(t, ExpiryScanJobParams{
		Warranties: repo,
		Users:      &fakeOwnerResolver{},
		Dispatcher: dispatcher,
	})

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected query failure to abort the run")
	}
	if len(dispatcher.sent) != 0 {
		t.Fatalf("expected no dispatches after query failure, got %d", len(dispatcher.sent))
	}
}

func TestExpiryScanJobDispatchFailureContinuesBatch(t *testing.T) {
	userID := uuid.New()
	owner := &models.User{ID: userID, NotificationEmail: "owner@example.com"}
	repo := &fakeDueRepo{due: []models.Warranty{
		{ID: uuid.New(), UserID: userID, ProductName: "Fridge"},
		{ID: uuid.New(), UserID: userID, ProductName: "Laptop"},
	}}
	dispatcher := &fakeDispatcher{err: errors.New("smtp down")}
	job := newScanJob(t, ExpiryScanJobParams{
		Warranties: repo,
		Users:      &fakeOwnerResolver{users: map[uuid.UUID]*models.User{userID: owner}},
		Dispatcher: dispatcher,
	})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("per-record failures must not fail the run: %v", err)
	}
	if len(dispatcher.sent) != 2 {
		t.Fatalf("expected both records attempted, got %d", len(dispatcher.sent))
	}
}

func TestExpiryScanJobMissingOwnerDispatchesNil(t *testing.T) {
	repo := &fakeDueRepo{due: []models.Warranty{
		{ID: uuid.New(), UserID: uuid.New(), ProductName: "Fridge"},
	}}
	dispatcher := &fakeDispatcher{outcome: reminders.OutcomeSkipped}
	job := newScanJob(t, ExpiryScanJobParams{
		Warranties: repo,
		Users:      &fakeOwnerResolver{},
		Dispatcher: dispatcher,
	})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(dispatcher.sent) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(dispatcher.sent))
	}
	if dispatcher.owners[0] != nil {
		t.Fatalf("expected nil owner for missing user, got %+v", dispatcher.owners[0])
	}
}

func TestExpiryScanJobOwnerLookupFailureContinuesBatch(t *testing.T) {
	brokenUserID := uuid.New()
	userID := uuid.New()
	owner := &models.User{ID: userID, NotificationEmail: "owner@example.com"}
	healthy := models.Warranty{ID: uuid.New(), UserID: userID, ProductName: "Laptop"}
	repo := &fakeDueRepo{due: []models.Warranty{
		{ID: uuid.New(), UserID: brokenUserID, ProductName: "Fridge"},
		healthy,
	}}
	resolver := &fakeOwnerResolver{
		users:   map[uuid.UUID]*models.User{userID: owner},
		errByID: map[uuid.UUID]error{brokenUserID: errors.New("db timeout")},
	}
	dispatcher := &fakeDispatcher{}
	job := newScanJob(t, ExpiryScanJobParams{
		Warranties: repo,
		Users:      resolver,
		Dispatcher: dispatcher,
	})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(dispatcher.sent) != 1 {
		t.Fatalf("expected only the resolvable record dispatched, got %d", len(dispatcher.sent))
	}
	if dispatcher.sent[0] != healthy.ID {
		t.Fatalf("expected %s dispatched, got %s", healthy.ID, dispatcher.sent[0])
	}
	if dispatcher.owners[0] != owner {
		t.Fatalf("expected resolved owner on the dispatched record")
	}
}
