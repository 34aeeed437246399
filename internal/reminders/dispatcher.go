package reminders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/warrantyvault/backend/internal/mailer"
	"github.com/warrantyvault/backend/pkg/db/models"
	pkgerrors "github.com/warrantyvault/backend/pkg/errors"
	"github.com/warrantyvault/backend/pkg/logger"
)

// Outcome reports what the dispatcher did with one warranty.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
)

const expiryDateFormat = "02 Jan 2006"

type notifiedStore interface {
	SetLastNotified(ctx context.Context, warrantyID uuid.UUID, at time.Time) error
}

// DispatcherParams packages the dependencies for the reminder dispatcher.
type DispatcherParams struct {
	Logger *logger.Logger
	Mail   mailer.Sender
	Store  notifiedStore
	Now    func() time.Time
}

// Dispatcher turns a due warranty into at most one reminder email and
// records successful deliveries on the warranty row.
type Dispatcher struct {
	logg  *logger.Logger
	mail  mailer.Sender
	store notifiedStore
	now   func() time.Time
}

// NewDispatcher validates dependencies and builds a dispatcher.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Mail == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mail sender required")
	}
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "warranty store required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		logg:  params.Logger,
		mail:  params.Mail,
		store: params.Store,
		now:   now,
	}, nil
}

// Send delivers one expiry reminder. A missing owner or blank delivery
// address skips the record without side effects. The mail goes out first;
// last_notified_at is only written after a successful delivery, so a
// transport failure leaves the record eligible for the next scan.
func (d *Dispatcher) Send(ctx context.Context, warranty models.Warranty, owner *models.User) (Outcome, error) {
	ctx = d.logg.WithFields(ctx, map[string]any{
		"warranty_id": warranty.ID,
		"product":     warranty.ProductName,
	})

	if owner == nil {
		d.logg.Warn(ctx, "reminder.skip: warranty has no resolvable owner")
		return OutcomeSkipped, nil
	}
	address := strings.TrimSpace(owner.NotificationEmail)
	if address == "" {
		d.logg.Warn(ctx, "reminder.skip: owner has no notification email")
		return OutcomeSkipped, nil
	}

	msg := mailer.Message{
		To:      address,
		Subject: fmt.Sprintf("Warranty Expiry Reminder: %s", warranty.ProductName),
		Body:    reminderBody(warranty, owner),
	}

	if err := d.mail.Send(ctx, msg); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deliver reminder")
	}

	if err := d.store.SetLastNotified(ctx, warranty.ID, d.now().UTC()); err != nil {
		return OutcomeSent, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record reminder delivery")
	}

	d.logg.Info(ctx, "reminder.sent")
	return OutcomeSent, nil
}

func reminderBody(warranty models.Warranty, owner *models.User) string {
	name := strings.TrimSpace(owner.Name)
	if name == "" {
		name = "there"
	}
	brand := "N/A"
	if warranty.Brand != nil && strings.TrimSpace(*warranty.Brand) != "" {
		brand = *warranty.Brand
	}

	return fmt.Sprintf(
		"Hi %s,\n\nThis is a reminder that the warranty for your product %q (Brand: %s) expires on %s.\n\nRegards,\nWarranty Vault",
		name,
		warranty.ProductName,
		brand,
		warranty.ExpiryDate.UTC().Format(expiryDateFormat),
	)
}
