package audit

import (
	"context"
	"errors"
	"testing"

	"orghub-backend/internal/database/models"
	"orghub-backend/internal/mocks"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func sampleEntry() *models.AuditLog {
	orgID := uuid.New()
	return &models.AuditLog{
		EventType:      EventPermissionCheck,
		Status:         StatusGranted,
		ActorID:        uuid.New(),
		OrganizationID: &orgID,
		Operation:      "capability:view_project",
		Details:        []byte(`{"decision":"granted"}`),
		Timestamp:      "2024-01-01T00:00:00.000Z",
	}
}

func TestRepositorySink(t *testing.T) {
	t.Run("stores entry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockAuditLogRepositoryInterface(ctrl)
		entry := sampleEntry()
		repo.EXPECT().Create(entry).Return(nil).Times(1)

		assert.NoError(t, NewRepositorySink(repo).Write(context.Background(), entry))
	})

	t.Run("wraps repository error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockAuditLogRepositoryInterface(ctrl)
		cause := errors.New("connection refused")
		repo.EXPECT().Create(gomock.Any()).Return(cause).Times(1)

		err := NewRepositorySink(repo).Write(context.Background(), sampleEntry())
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "store audit record")
	})
}

func TestLogSink(t *testing.T) {
	l, hook := test.NewNullLogger()
	entry := sampleEntry()

	require.NoError(t, NewLogSink(l).Write(context.Background(), entry))

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.InfoLevel, last.Level)
	assert.Equal(t, "audit event", last.Message)
	assert.Equal(t, true, last.Data["audit"])
	assert.Equal(t, entry.OrganizationID.String(), last.Data["organization_id"])
	assert.Equal(t, entry.Operation, last.Data["operation"])
	assert.NotContains(t, last.Data, "target_user_id")
}

func TestMultiSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockSink(ctrl)
	second := mocks.NewMockSink(ctrl)
	third := mocks.NewMockSink(ctrl)
	entry := sampleEntry()

	errFirst := errors.New("first failed")
	errThird := errors.New("third failed")
	first.EXPECT().Write(gomock.Any(), entry).Return(errFirst).Times(1)
	second.EXPECT().Write(gomock.Any(), entry).Return(nil).Times(1)
	third.EXPECT().Write(gomock.Any(), entry).Return(errThird).Times(1)

	err := MultiSink{first, second, third}.Write(context.Background(), entry)

	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errThird)
}

func TestMultiSinkAllSucceed(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().Write(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	assert.NoError(t, MultiSink{sink, sink}.Write(context.Background(), sampleEntry()))
	assert.NoError(t, MultiSink{}.Write(context.Background(), sampleEntry()))
}
