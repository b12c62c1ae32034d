package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"moment-ticketing/internal/client"
	"moment-ticketing/internal/model"
	"moment-ticketing/internal/notify"
	"moment-ticketing/internal/repository"
)

var testDBSeq int64

// newTestDB opens a private in-memory database per test. cache=shared keeps
// the pool's connections on the same database; _txlock=immediate makes
// concurrent write transactions queue instead of deadlocking on lock upgrade.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared&_busy_timeout=5000&_txlock=immediate",
		atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Moment{},
		&model.PaymentSession{},
		&model.MomentParticipant{},
		&model.WebhookEvent{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func newTestService(t *testing.T, db *gorm.DB, gateway client.GatewayClient, notifier notify.Notifier) *ticketingServiceImpl {
	t.Helper()
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	return NewTicketingService(
		db, gateway, notifier, "http://localhost:8080",
		repository.NewMomentRepository(db),
		repository.NewPaymentSessionRepository(db),
		repository.NewParticipantRepository(db),
		repository.NewWebhookEventRepository(db),
	).(*ticketingServiceImpl)
}

func createMoment(t *testing.T, db *gorm.DB, m *model.Moment) *model.Moment {
	t.Helper()
	if m.ID == "" {
		m.ID = "moment-1"
	}
	if m.Title == "" {
		m.Title = "Rooftop supper club"
	}
	if m.HostID == "" {
		m.HostID = "host-1"
	}
	if m.Currency == "" {
		m.Currency = "USD"
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create moment: %v", err)
	}
	return m
}

func createPendingSession(t *testing.T, db *gorm.DB, sessionID, momentID, userID string, amount, platformFee int64) *model.PaymentSession {
	t.Helper()
	sess := &model.PaymentSession{
		GatewaySessionID:  sessionID,
		UserID:            userID,
		MomentID:          momentID,
		AmountCents:       amount,
		Currency:          "USD",
		PlatformFeeCents:  platformFee,
		OrganizerFeeCents: amount - platformFee,
		Status:            model.SessionStatusPending,
	}
	if err := db.Create(sess).Error; err != nil {
		t.Fatalf("create payment session: %v", err)
	}
	return sess
}

func countParticipants(t *testing.T, db *gorm.DB, momentID string) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&model.MomentParticipant{}).Where("moment_id = ?", momentID).Count(&count).Error; err != nil {
		t.Fatalf("count participants: %v", err)
	}
	return count
}

func sessionStatus(t *testing.T, db *gorm.DB, sessionID string) string {
	t.Helper()
	var sess model.PaymentSession
	if err := db.Where("gateway_session_id = ?", sessionID).First(&sess).Error; err != nil {
		t.Fatalf("load payment session: %v", err)
	}
	return sess.Status
}

func background() context.Context { return context.Background() }
