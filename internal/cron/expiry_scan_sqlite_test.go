package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/warrantyvault/backend/internal/mailer"
	"github.com/warrantyvault/backend/internal/reminders"
	"github.com/warrantyvault/backend/internal/users"
	"github.com/warrantyvault/backend/internal/warranties"
	"github.com/warrantyvault/backend/pkg/db/models"
	"github.com/warrantyvault/backend/pkg/enums"
)

type captureSender struct {
	sent []mailer.Message
}

func (c *captureSender) Send(ctx context.Context, msg mailer.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

func setupScanTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:cronscan?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	usersDDL := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  notification_email TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	warrantiesDDL := `
CREATE TABLE IF NOT EXISTS warranties (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  brand TEXT,
  category TEXT,
  retailer TEXT,
  serial_number TEXT,
  notes TEXT,
  image_url TEXT,
  purchase_date DATETIME NOT NULL,
  expiry_date DATETIME NOT NULL,
  reminder_preference TEXT NOT NULL DEFAULT '7d',
  last_notified_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(usersDDL).Error)
	require.NoError(t, db.Exec(warrantiesDDL).Error)
	require.NoError(t, db.Exec(`DELETE FROM warranties`).Error)
	require.NoError(t, db.Exec(`DELETE FROM users`).Error)
	return db
}

// Runs the scan against real sqlite-backed repositories and the real
// dispatcher. The first run delivers one mail and marks the row; a second
// run inside the suppression window delivers nothing.
func TestExpiryScanJobSendsOnceThenSuppresses(t *testing.T) {
	db := setupScanTestDB(t)
	ctx := context.Background()

	warrantyRepo := warranties.NewRepository(db)
	userRepo := users.NewRepository(db)

	owner := &models.User{
		ID:                uuid.New(),
		Email:             "priya@example.com",
		PasswordHash:      "hash",
		Name:              "Priya",
		NotificationEmail: "alerts@example.com",
		IsActive:          true,
	}
	require.NoError(t, db.Create(owner).Error)

	expiry := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)
	warranty := &models.Warranty{
		ID:                 uuid.New(),
		UserID:             owner.ID,
		ProductName:        "Espresso Machine",
		PurchaseDate:       expiry.AddDate(-1, 0, 0),
		ExpiryDate:         expiry,
		ReminderPreference: enums.ReminderPreferenceOneWeek,
	}
	require.NoError(t, db.Create(warranty).Error)

	current := time.Date(2026, 9, 10, 7, 0, 0, 0, time.UTC)
	nowFn := func() time.Time { return current }

	mail := &captureSender{}
	dispatcher, err := reminders.NewDispatcher(reminders.DispatcherParams{
		Logger: scanTestLogger(),
		Mail:   mail,
		Store:  warrantyRepo,
		Now:    nowFn,
	})
	require.NoError(t, err)

	job := newScanJob(t, ExpiryScanJobParams{
		Warranties: warrantyRepo,
		Users:      userRepo,
		Dispatcher: dispatcher,
		Now:        nowFn,
	})

	require.NoError(t, job.Run(ctx))
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "alerts@example.com", mail.sent[0].To)
	assert.Contains(t, mail.sent[0].Subject, "Espresso Machine")

	fresh, err := warrantyRepo.FindByID(ctx, owner.ID, warranty.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.LastNotifiedAt)
	assert.WithinDuration(t, current, fresh.LastNotifiedAt.UTC(), time.Second)

	current = current.Add(2 * time.Hour)
	require.NoError(t, job.Run(ctx))
	assert.Len(t, mail.sent, 1)
}
