package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSiteIntegration(t *testing.T) {
	integration, err := NewSiteIntegration(7, []string{"shop.example.com", "store.other.io"})
	require.NoError(t, err)

	assert.Equal(t, uint(7), integration.OwnerUserID)
	assert.Equal(t, []string{"shop.example.com", "store.other.io"}, integration.DomainList())

	_, err = uuid.Parse(integration.SiteID)
	assert.NoError(t, err, "site id must be a uuid")

	require.True(t, strings.HasPrefix(integration.SiteToken, "glamar_"))
	parts := strings.SplitN(integration.SiteToken, "_", 3)
	require.Len(t, parts, 3)
	assert.Len(t, parts[2], 32, "token suffix is 16 random bytes hex-encoded")
}

func TestNewSiteIntegrationTokensAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		integration, err := NewSiteIntegration(1, nil)
		require.NoError(t, err)
		if _, dup := seen[integration.SiteToken]; dup {
			t.Fatalf("duplicate site token generated: %s", integration.SiteToken)
		}
		seen[integration.SiteToken] = struct{}{}
	}
}

func TestDomainListRoundTrip(t *testing.T) {
	s := &SiteIntegration{}

	require.NoError(t, s.SetDomainList([]string{"shop.example.com"}))
	assert.Equal(t, []string{"shop.example.com"}, s.DomainList())

	require.NoError(t, s.SetDomainList(nil))
	assert.Empty(t, s.AllowedDomains)
	assert.Nil(t, s.DomainList(), "empty list means unrestricted")
}

func TestDomainListToleratesCorruptStorage(t *testing.T) {
	s := &SiteIntegration{AllowedDomains: "not-json"}
	assert.Nil(t, s.DomainList())
}
