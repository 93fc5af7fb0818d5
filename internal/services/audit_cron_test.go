package services

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourdesk/backoffice-api/internal/models"
)

type fakeAuditStore struct {
	entries []*models.AuditLog
	err     error
}

func (f *fakeAuditStore) CreateAuditLog(entry *models.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestAuditService_LogBookingCancelled(t *testing.T) {
	store := &fakeAuditStore{}
	logger, _ := test.NewNullLogger()
	svc := NewAuditService(store, true, logger)
	actor := uuid.New()
	bookingID := uuid.New()
	reason := "weather"

	svc.LogBookingCancelled(&actor, bookingID, &models.CancelBookingRequest{RefundAmount: 50, Reason: &reason}, "203.0.113.7", chromeUA)

	require.Len(t, store.entries, 1)
	entry := store.entries[0]
	assert.Equal(t, AuditBookingCancel, entry.Action)
	assert.Equal(t, "booking", entry.EntityType)
	assert.Equal(t, bookingID, *entry.EntityID)
	assert.Equal(t, actor, *entry.ActorID)
	assert.Equal(t, "203.0.113.7", *entry.IPAddress)
	require.NotNil(t, entry.Device)
	assert.Contains(t, *entry.Device, "Chrome")
	assert.Equal(t, 50.0, entry.Details["refund_amount"])
	assert.Equal(t, "weather", entry.Details["reason"])
	assert.Contains(t, entry.Details, "device_info")
}

func TestAuditService_FailureIsLoggedNotReturned(t *testing.T) {
	store := &fakeAuditStore{err: errors.New("connection reset")}
	logger, hook := test.NewNullLogger()
	svc := NewAuditService(store, true, logger)

	svc.LogDelete(nil, "client", uuid.New(), "", "")

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestAuditService_Disabled(t *testing.T) {
	store := &fakeAuditStore{}
	logger, _ := test.NewNullLogger()
	svc := NewAuditService(store, false, logger)

	svc.LogDelete(nil, "tour", uuid.New(), "127.0.0.1", chromeUA)

	assert.Empty(t, store.entries)
}

type fakeCompleter struct {
	calls []time.Time
	ids   []uuid.UUID
	err   error
}

func (f *fakeCompleter) CompletePast(now time.Time) ([]uuid.UUID, error) {
	f.calls = append(f.calls, now)
	return f.ids, f.err
}

func TestCronService_RunNow(t *testing.T) {
	completer := &fakeCompleter{ids: []uuid.UUID{uuid.New(), uuid.New()}}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewCronService(completer, "0 5 * * * *", logger)
	fixed := time.Date(2026, 6, 4, 0, 5, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	svc.RunCompleteTourDatesNow()

	require.Len(t, completer.calls, 1)
	assert.Equal(t, fixed, completer.calls[0])
}

func TestCronService_StartStop(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := NewCronService(&fakeCompleter{}, "0 5 * * * *", logger)
	require.NoError(t, svc.Start())
	status := svc.GetJobStatus()
	assert.Equal(t, 1, status["job_count"])
	svc.Stop()

	bad := NewCronService(&fakeCompleter{}, "not a schedule", logger)
	assert.Error(t, bad.Start())
}

func TestCronService_JobErrorDoesNotPanic(t *testing.T) {
	logger, hook := test.NewNullLogger()
	svc := NewCronService(&fakeCompleter{err: errors.New("db down")}, "0 5 * * * *", logger)

	svc.RunCompleteTourDatesNow()

	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
