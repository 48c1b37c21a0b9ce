package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrganization(t *testing.T) {
	t.Run("valid organization", func(t *testing.T) {
		org, err := NewOrganization("acme-props", "Acme Properties Ltd")
		require.NoError(t, err)

		assert.Equal(t, "ACME-PROPS", org.Code)
		assert.Equal(t, "Acme Properties Ltd", org.Name)
		assert.Equal(t, OrganizationStatusActive, org.Status)
		assert.True(t, org.IsActive())
		assert.Equal(t, "KES", org.Currency)
		assert.Equal(t, "Africa/Nairobi", org.Timezone)
		assert.NotEqual(t, org.ID.String(), "00000000-0000-0000-0000-000000000000")
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := NewOrganization("", "Acme")
		assert.Error(t, err)
	})

	t.Run("code with invalid characters", func(t *testing.T) {
		_, err := NewOrganization("acme props!", "Acme")
		assert.Error(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewOrganization("ACME", "")
		assert.Error(t, err)
	})
}

func TestOrganization_StatusTransitions(t *testing.T) {
	org, err := NewOrganization("ACME", "Acme Properties")
	require.NoError(t, err)

	t.Run("activate while active fails", func(t *testing.T) {
		assert.Error(t, org.Activate())
	})

	t.Run("suspend", func(t *testing.T) {
		require.NoError(t, org.Suspend())
		assert.Equal(t, OrganizationStatusSuspended, org.Status)
		assert.False(t, org.IsActive())
		assert.Error(t, org.Suspend())
	})

	t.Run("reactivate", func(t *testing.T) {
		require.NoError(t, org.Activate())
		assert.True(t, org.IsActive())
	})

	t.Run("deactivate", func(t *testing.T) {
		require.NoError(t, org.Deactivate())
		assert.Equal(t, OrganizationStatusInactive, org.Status)
		assert.Error(t, org.Deactivate())
	})
}

func TestOrganization_SetContact(t *testing.T) {
	org, err := NewOrganization("ACME", "Acme Properties")
	require.NoError(t, err)

	require.NoError(t, org.SetContact("Grace Njeri", "+254712345678", "grace@acme.example"))
	assert.Equal(t, "Grace Njeri", org.ContactName)
	assert.Equal(t, "+254712345678", org.ContactPhone)
	assert.Equal(t, "grace@acme.example", org.ContactEmail)

	longName := make([]byte, 101)
	for i := range longName {
		longName[i] = 'a'
	}
	assert.Error(t, org.SetContact(string(longName), "", ""))
}

func TestOrganization_Update(t *testing.T) {
	org, err := NewOrganization("ACME", "Acme Properties")
	require.NoError(t, err)
	v := org.Version

	require.NoError(t, org.Update("Acme Property Management"))
	assert.Equal(t, "Acme Property Management", org.Name)
	assert.Equal(t, v+1, org.Version)

	assert.Error(t, org.Update(""))
}
