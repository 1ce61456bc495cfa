package models

import (
	"testing"
	"time"

	"github.com/jagaapp/jaga/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserHashesPassword(t *testing.T) {
	InitializeTestDb()

	user := &User{
		FirstName:   "aisyah",
		LastName:    "rahman",
		PhoneNumber: "+60123456789",
		Email:       "aisyah@example.com",
		Password:    "very-secure",
	}
	require.Nil(t, CreateUser(user))

	storedHash, err := FindUserPassword("aisyah@example.com")
	require.Nil(t, err)
	assert.NotEqual(t, "very-secure", storedHash)
	assert.True(t, auth.CheckPasswordHash("very-secure", storedHash))

	// reads never expose the password column
	found, err := FindUserBy("email", "aisyah@example.com")
	require.Nil(t, err)
	assert.Empty(t, found.Password)
	assert.Equal(t, "en", found.Language)
}

func TestSaveAccountTokenLastWriteWins(t *testing.T) {
	InitializeTestDb()

	require.Nil(t, SaveAccountToken(1, "first"))
	require.Nil(t, SaveAccountToken(1, "second"))

	record, err := FindAccountToken(1)
	require.Nil(t, err)
	assert.Equal(t, "second", record.Token)

	tokens, err := TokensForAccounts([]uint{1, 2})
	require.Nil(t, err)
	assert.Equal(t, map[uint]string{1: "second"}, tokens)
}

func TestContactIDGeneratedOnCreate(t *testing.T) {
	InitializeTestDb()

	contact := &Contact{Name: "mak", AccountID: 1}
	require.Nil(t, CreateContact(contact))
	assert.NotEmpty(t, contact.ID)

	other := &Contact{Name: "abah", AccountID: 1}
	require.Nil(t, CreateContact(other))
	assert.NotEqual(t, contact.ID, other.ID)
}

func TestIncidentLogsNewestFirst(t *testing.T) {
	InitializeTestDb()

	now := time.Now()
	require.Nil(t, CreateIncidentLog(&IncidentLog{
		AccountID: 1, Category: "fire", Outcome: "safe", ResolvedAt: now.Add(-time.Hour),
	}))
	require.Nil(t, CreateIncidentLog(&IncidentLog{
		AccountID: 1, Category: "snatch", Outcome: "still_alerting", ResolvedAt: now,
	}))
	require.Nil(t, CreateIncidentLog(&IncidentLog{
		AccountID: 2, Category: "illness", Outcome: "safe", ResolvedAt: now,
	}))

	logs, err := IncidentLogsFor(1)
	require.Nil(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "snatch", logs[0].Category)
	assert.Equal(t, "fire", logs[1].Category)
}
