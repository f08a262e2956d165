package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/checkin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

func TestScanAuditor_RecordScan(t *testing.T) {
	pub := &MockPublisher{}
	ctx := context.Background()
	entry := checkin.AuditEntry{BookingID: "bk-1", Outcome: checkin.OutcomeAlreadyAdmitted, RecordedAt: time.Now()}

	pub.On("Publish", ctx, "gate_audit", "bk-1", entry).Return(nil).Once()

	err := NewScanAuditor(pub, "gate_audit").RecordScan(ctx, entry)
	assert.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestScanAuditor_PropagatesError(t *testing.T) {
	pub := &MockPublisher{}
	pub.On("Publish", mock.Anything, "gate_audit", "bk-1", mock.Anything).Return(errors.New("broker down")).Once()

	err := NewScanAuditor(pub, "gate_audit").RecordScan(context.Background(), checkin.AuditEntry{BookingID: "bk-1"})
	assert.Error(t, err)
}

func TestScanAuditor_NoTopic(t *testing.T) {
	pub := &MockPublisher{}
	err := NewScanAuditor(pub, "").RecordScan(context.Background(), checkin.AuditEntry{BookingID: "bk-1"})
	assert.NoError(t, err)
	pub.AssertNotCalled(t, "Publish")
}
