package contract

import (
	"encoding/json"
	"testing"

	"tourtrace/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterEmergencyContact(t *testing.T) {
	s, ctx, stub := setupAlertRegistry(t)

	ctx.setCaller(authorityID)
	contact, err := s.RegisterEmergencyContact(ctx, "police", "x509::CN=ranger-dispatch::OU=service")
	require.NoError(t, err)
	assert.Equal(t, "police", contact.ContactType)
	assert.Equal(t, authorityID, contact.AddedBy)

	events := stub.eventsNamed(eventEmergencyContactAdded)
	require.Len(t, events, 1)
	var payload model.EmergencyContactAddedEvent
	require.NoError(t, json.Unmarshal(events[0].payload, &payload))
	assert.Equal(t, "police", payload.ContactType)
	assert.Equal(t, "x509::CN=ranger-dispatch::OU=service", payload.ContactAddress)

	fetched, err := s.GetEmergencyContact(ctx, "police")
	require.NoError(t, err)
	assert.Equal(t, contact.ContactAddress, fetched.ContactAddress)
}

func TestRegisterEmergencyContactDuplicateFails(t *testing.T) {
	s, ctx, _ := setupAlertRegistry(t)

	ctx.setCaller(authorityID)
	_, err := s.RegisterEmergencyContact(ctx, "medical", "x509::CN=clinic::OU=service")
	require.NoError(t, err)

	_, err = s.RegisterEmergencyContact(ctx, "medical", "x509::CN=other-clinic::OU=service")
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestRegisterEmergencyContactUnauthorized(t *testing.T) {
	s, ctx, stub := setupAlertRegistry(t)

	_, err := s.RegisterEmergencyContact(ctx, "police", "x509::CN=ranger-dispatch::OU=service")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, stub.events)
}

func TestGetEmergencyContactNotFound(t *testing.T) {
	s, ctx, _ := setupAlertRegistry(t)

	_, err := s.GetEmergencyContact(ctx, "police")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEmergencyContacts(t *testing.T) {
	s, ctx, _ := setupAlertRegistry(t)

	contacts, err := s.ListEmergencyContacts(ctx)
	require.NoError(t, err)
	assert.Empty(t, contacts)

	ctx.setCaller(authorityID)
	_, err = s.RegisterEmergencyContact(ctx, "police", "x509::CN=ranger-dispatch::OU=service")
	require.NoError(t, err)
	_, err = s.RegisterEmergencyContact(ctx, "medical", "x509::CN=clinic::OU=service")
	require.NoError(t, err)

	contacts, err = s.ListEmergencyContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 2)

	types := []string{contacts[0].ContactType, contacts[1].ContactType}
	assert.Contains(t, types, "police")
	assert.Contains(t, types, "medical")
}
