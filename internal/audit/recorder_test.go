package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
	"github.com/havenwelfare/haven-backend/internal/worker"
)

func TestRecorder_Record(t *testing.T) {
	repos := repository.NewMemory()
	rec := NewRecorder(repos.AuditLogs, worker.Inline{})
	actor := uuid.New()

	rec.Record(Actor(actor, "admin@x", RehabCenterCreated, "Hope House"))
	rec.Record(Entry{ActorEmail: "anonymous", Action: DonationSubmitted})

	logs, err := repos.AuditLogs.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, DonationSubmitted, logs[0].Action)
	assert.Nil(t, logs[0].UserID)
	assert.Nil(t, logs[0].Details)

	assert.Equal(t, actor, *logs[1].UserID)
	assert.Equal(t, "Hope House", *logs[1].Details)
}

func TestActionNames(t *testing.T) {
	assert.Equal(t, "DONATION_APPROVED", DonationReviewed(models.DonationApproved))
	assert.Equal(t, "DONATION_REJECTED", DonationReviewed(models.DonationRejected))
	assert.Equal(t, "TREATMENT_REQUEST_ACCEPTED", TreatmentResponded(models.TreatmentAccepted))
}
