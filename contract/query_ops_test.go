package contract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllAlertsPagination(t *testing.T) {
	s, ctx, _ := setupAlertRegistry(t)

	for i := 0; i < 7; i++ {
		_, err := s.TriggerAlert(ctx, 0, fmt.Sprintf("checkpoint %d", i), "")
		require.NoError(t, err)
	}

	page, err := s.GetAllAlerts(ctx, "3", "")
	require.NoError(t, err)
	require.Equal(t, int32(3), page.FetchedCount)
	require.Len(t, page.Alerts, 3)
	assert.Equal(t, uint64(0), page.Alerts[0].AlertID)
	assert.Equal(t, uint64(2), page.Alerts[2].AlertID)
	require.NotEmpty(t, page.NextBookmark)

	page, err = s.GetAllAlerts(ctx, "3", page.NextBookmark)
	require.NoError(t, err)
	require.Len(t, page.Alerts, 3)
	assert.Equal(t, uint64(3), page.Alerts[0].AlertID)

	// Garbage page size falls back to the default.
	page, err = s.GetAllAlerts(ctx, "not-a-number", "")
	require.NoError(t, err)
	assert.Equal(t, int32(7), page.FetchedCount)
}

func TestGetActiveAlertsFiltersResolved(t *testing.T) {
	s, ctx, _ := setupAlertRegistry(t)

	first, err := s.TriggerAlert(ctx, 0, "north gate", "")
	require.NoError(t, err)
	second, err := s.TriggerAlert(ctx, 1, "east fence", "")
	require.NoError(t, err)

	_, err = s.ResolveAlert(ctx, first.AlertID)
	require.NoError(t, err)

	active, err := s.GetActiveAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.AlertID, active[0].AlertID)
}

func TestGetAllCredentials(t *testing.T) {
	s, ctx, stub := setupCredentialRegistry(t)

	mintTestCredential(t, s, ctx, stub, "Z1")
	mintTestCredential(t, s, ctx, stub, "Z2")

	page, err := s.GetAllCredentials(ctx, "10", "")
	require.NoError(t, err)
	require.Equal(t, int32(2), page.FetchedCount)
	assert.Equal(t, uint64(0), page.Credentials[0].CredentialID)
	assert.Equal(t, uint64(1), page.Credentials[1].CredentialID)
}

func TestGetCredentialsByZone(t *testing.T) {
	s, ctx, stub := setupCredentialRegistry(t)

	mintTestCredential(t, s, ctx, stub, "Z1")
	mintTestCredential(t, s, ctx, stub, "Z2")
	mintTestCredential(t, s, ctx, stub, "Z1")

	credentials, err := s.GetCredentialsByZone(ctx, "Z1")
	require.NoError(t, err)
	require.Len(t, credentials, 2)
	for _, credential := range credentials {
		assert.Equal(t, "Z1", credential.ZoneID)
	}

	credentials, err = s.GetCredentialsByZone(ctx, "Z9")
	require.NoError(t, err)
	assert.Empty(t, credentials)
}

func TestGetAlertHistory(t *testing.T) {
	s, ctx, _ := setupAlertRegistry(t)

	alert, err := s.TriggerAlert(ctx, 0, "north gate", "")
	require.NoError(t, err)
	_, err = s.ResolveAlert(ctx, alert.AlertID)
	require.NoError(t, err)

	history, err := s.GetAlertHistory(ctx, alert.AlertID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "ACTIVE", history[0].Action)
	assert.Equal(t, "RESOLVED", history[1].Action)
	assert.NotEmpty(t, history[0].Value)
}

func TestGetAlertHistoryNotFound(t *testing.T) {
	s, ctx, _ := setupAlertRegistry(t)

	_, err := s.GetAlertHistory(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAlertNotFound(t *testing.T) {
	s, ctx, _ := setupAlertRegistry(t)

	_, err := s.GetAlert(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetCredential(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
