package registry

import (
	"testing"

	"github.com/jagaapp/jaga/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	models.InitializeTestDb()

	return NewRegistry(zap.NewNop().Sugar())
}

func TestAddAndList(t *testing.T) {
	contactRegistry := newTestRegistry(t)

	added, err := contactRegistry.Add(1, ContactInput{Name: "mak", Relationship: "mother"})
	require.Nil(t, err)
	assert.NotEmpty(t, added.ID, "a fresh id should be generated")

	other, err := contactRegistry.Add(1, ContactInput{Name: "abah", Relationship: "father"})
	require.Nil(t, err)
	assert.NotEqual(t, added.ID, other.ID, "generated ids should be unique")

	contacts, err := contactRegistry.List(1)
	require.Nil(t, err)
	assert.Len(t, contacts, 2)

	ids := []string{contacts[0].ID, contacts[1].ID}
	assert.Contains(t, ids, added.ID)
	assert.Contains(t, ids, other.ID)
}

func TestListIsScopedToAccount(t *testing.T) {
	contactRegistry := newTestRegistry(t)

	_, err := contactRegistry.Add(1, ContactInput{Name: "mak"})
	require.Nil(t, err)
	_, err = contactRegistry.Add(2, ContactInput{Name: "kak long"})
	require.Nil(t, err)

	contacts, err := contactRegistry.List(2)
	require.Nil(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "kak long", contacts[0].Name)
}

func TestAddRequiresAccount(t *testing.T) {
	contactRegistry := newTestRegistry(t)

	_, err := contactRegistry.Add(0, ContactInput{Name: "mak"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = contactRegistry.List(0)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestUpdateMergesPartialFields(t *testing.T) {
	contactRegistry := newTestRegistry(t)

	added, err := contactRegistry.Add(1, ContactInput{
		Name:        "mak",
		PhoneNumber: "+60123456789",
		Address:     "Taman Melati",
	})
	require.Nil(t, err)

	updated, err := contactRegistry.Update(1, added.ID, map[string]interface{}{
		"address":              "Kampung Baru",
		"is_emergency_contact": true,
		"bogus_field":          "dropped",
	})
	require.Nil(t, err)

	assert.Equal(t, "Kampung Baru", updated.Address)
	assert.True(t, updated.IsEmergencyContact)

	// untouched fields survive the merge
	assert.Equal(t, "mak", updated.Name)
	assert.Equal(t, "+60123456789", updated.PhoneNumber)
}

func TestUpdateMissingContact(t *testing.T) {
	contactRegistry := newTestRegistry(t)

	_, err := contactRegistry.Update(1, "no-such-id", map[string]interface{}{"name": "x"})
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestRemoveIsIdempotent(t *testing.T) {
	contactRegistry := newTestRegistry(t)

	added, err := contactRegistry.Add(1, ContactInput{Name: "mak"})
	require.Nil(t, err)

	existed, err := contactRegistry.Remove(1, added.ID)
	require.Nil(t, err)
	assert.True(t, existed)

	existed, err = contactRegistry.Remove(1, added.ID)
	require.Nil(t, err)
	assert.False(t, existed, "second removal should report nothing deleted")
}

func TestEmergencyContactsReflectsLatestState(t *testing.T) {
	contactRegistry := newTestRegistry(t)

	_, err := contactRegistry.Add(1, ContactInput{Name: "mak", IsEmergencyContact: true})
	require.Nil(t, err)
	regular, err := contactRegistry.Add(1, ContactInput{Name: "abah"})
	require.Nil(t, err)

	emergency := contactRegistry.EmergencyContacts(1)
	require.Len(t, emergency, 1)
	assert.Equal(t, "mak", emergency[0].Name)

	// toggling a contact must be visible on the very next query
	_, err = contactRegistry.Update(1, regular.ID, map[string]interface{}{"is_emergency_contact": true})
	require.Nil(t, err)

	assert.Len(t, contactRegistry.EmergencyContacts(1), 2)

	// no resolvable account degrades to an empty fan-out set, not an error
	assert.Empty(t, contactRegistry.EmergencyContacts(0))
}

func TestContactsWithToken(t *testing.T) {
	contactRegistry := newTestRegistry(t)

	_, err := contactRegistry.Add(1, ContactInput{Name: "mak", NotificationToken: "token-mak"})
	require.Nil(t, err)
	_, err = contactRegistry.Add(1, ContactInput{Name: "abah"})
	require.Nil(t, err)

	reachable := contactRegistry.ContactsWithToken(1)
	require.Len(t, reachable, 1)
	assert.Equal(t, "token-mak", reachable[0].NotificationToken)
}

func TestLinkedAccountTokenResolution(t *testing.T) {
	contactRegistry := newTestRegistry(t)

	linkedAccount := uint(7)
	require.Nil(t, models.SaveAccountToken(linkedAccount, "fresh-token"))

	_, err := contactRegistry.Add(1, ContactInput{
		Name:               "kak long",
		IsEmergencyContact: true,
		NotificationToken:  "stale-token",
		LinkedAccountID:    &linkedAccount,
	})
	require.Nil(t, err)

	emergency := contactRegistry.EmergencyContacts(1)
	require.Len(t, emergency, 1)
	assert.Equal(t, "fresh-token", emergency[0].NotificationToken,
		"linked contacts should carry the account's freshest token")
}
