package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenwelfare/haven-backend/internal/audit"
	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/models"
)

func centerRequest(name string) *dto.RehabCenterRequest {
	return &dto.RehabCenterRequest{
		Name: name, Address: "1 Main St", City: "Pune", State: "MH", Pincode: "411001", Phone: "555",
	}
}

func TestRehabCenters_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)

	center, err := f.registry.CreateRehabCenter(ctx, admin, centerRequest("Serenity"))
	require.NoError(t, err)
	assert.Equal(t, models.CenterApproved, center.Status)
	assert.NotNil(t, center.Facilities)
	assert.Equal(t, audit.RehabCenterCreated, f.audit.last().Action)

	req := centerRequest("Serenity Plus")
	req.Facilities = []string{"gym", "detox"}
	updated, err := f.registry.UpdateRehabCenter(ctx, admin, center.ID.String(), req)
	require.NoError(t, err)
	assert.Equal(t, "Serenity Plus", updated.Name)
	assert.Equal(t, models.CenterApproved, updated.Status)
	assert.Equal(t, []string{"gym", "detox"}, []string(updated.Facilities))

	require.NoError(t, f.registry.DeleteRehabCenter(ctx, admin, center.ID.String()))
	_, err = f.registry.GetRehabCenter(ctx, admin, center.ID.String())
	assert.ErrorIs(t, err, ErrRehabCenterNotFound)
	assert.ErrorIs(t, f.registry.DeleteRehabCenter(ctx, admin, center.ID.String()), ErrRehabCenterNotFound)
	assert.Equal(t, audit.RehabCenterDeleted, f.audit.last().Action)
}

func TestRehabCenters_WritesRequireAdmin(t *testing.T) {
	f := newFixture(t)
	doctor := f.addUser(t, "doc@example.com", models.RoleDoctor, models.UserApproved)

	_, err := f.registry.CreateRehabCenter(context.Background(), doctor, centerRequest("X"))
	assert.ErrorIs(t, err, auth.ErrInsufficientPermissions)
}

func TestListRehabCenters_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	patient := f.addUser(t, "p@example.com", models.RolePatient, models.UserApproved)
	f.addCenter(t, "Approved", models.CenterApproved)
	pending := f.addCenter(t, "Pending", models.CenterPending)

	all, err := f.registry.ListRehabCenters(ctx, admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyPending, err := f.registry.ListRehabCenters(ctx, admin, models.CenterPending)
	require.NoError(t, err)
	assert.Len(t, onlyPending, 1)

	forPatient, err := f.registry.ListRehabCenters(ctx, patient, models.CenterPending)
	require.NoError(t, err)
	require.Len(t, forPatient, 1)
	assert.Equal(t, "Approved", forPatient[0].Name)

	anonymous, err := f.registry.ListRehabCenters(ctx, nil, "")
	require.NoError(t, err)
	assert.Len(t, anonymous, 1)

	_, err = f.registry.GetRehabCenter(ctx, nil, pending.ID.String())
	assert.ErrorIs(t, err, ErrRehabCenterNotFound)
	_, err = f.registry.GetRehabCenter(ctx, admin, pending.ID.String())
	assert.NoError(t, err)
}

func TestAddictionTypes_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)

	at, err := f.registry.CreateAddictionType(ctx, admin, &dto.AddictionTypeRequest{
		Name: "Opioids", SeverityLevels: []string{"mild", "moderate", "severe"},
	})
	require.NoError(t, err)
	assert.Equal(t, audit.AddictionTypeCreated, f.audit.last().Action)

	updated, err := f.registry.UpdateAddictionType(ctx, admin, at.ID.String(), &dto.AddictionTypeRequest{
		Name: "Opioid use", SeverityLevels: []string{"low", "high"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Opioid use", updated.Name)
	assert.Equal(t, []string{"low", "high"}, []string(updated.SeverityLevels))
	assert.Equal(t, audit.AddictionTypeUpdated, f.audit.last().Action)

	list, err := f.registry.ListAddictionTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.registry.DeleteAddictionType(ctx, admin, at.ID.String()))
	assert.Equal(t, audit.AddictionTypeDeleted, f.audit.last().Action)
	assert.ErrorIs(t, f.registry.DeleteAddictionType(ctx, admin, at.ID.String()), ErrAddictionTypeNotFound)

	_, err = f.registry.UpdateAddictionType(ctx, admin, at.ID.String(), &dto.AddictionTypeRequest{Name: "Gone"})
	assert.ErrorIs(t, err, ErrAddictionTypeNotFound)

	empty, err := f.registry.ListAddictionTypes(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
