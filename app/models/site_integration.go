package models

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SiteIntegration is a third-party embedding credential. All jobs created
// through it are billed against the owning account. An empty domain list
// means the token is not restricted to any host.
type SiteIntegration struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SiteID         string    `gorm:"type:varchar(36);uniqueIndex" json:"site_id"`
	OwnerUserID    uint      `gorm:"not null;index" json:"owner_user_id"`
	SiteToken      string    `gorm:"type:varchar(100);uniqueIndex" json:"site_token"`
	AllowedDomains string    `gorm:"type:text" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewSiteIntegration creates an integration for the given owner with a fresh
// site id and opaque token.
func NewSiteIntegration(ownerUserID uint, allowedDomains []string) (*SiteIntegration, error) {
	token, err := generateSiteToken()
	if err != nil {
		return nil, err
	}
	integration := &SiteIntegration{
		SiteID:      uuid.New().String(),
		OwnerUserID: ownerUserID,
		SiteToken:   token,
	}
	if err := integration.SetDomainList(allowedDomains); err != nil {
		return nil, err
	}
	return integration, nil
}

func generateSiteToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("glamar_%d_%s", time.Now().Unix(), hex.EncodeToString(b)), nil
}

// DomainList returns the allow-listed hostnames. An empty slice means the
// integration accepts requests from any origin.
func (s *SiteIntegration) DomainList() []string {
	if s.AllowedDomains == "" {
		return nil
	}
	var domains []string
	if err := json.Unmarshal([]byte(s.AllowedDomains), &domains); err != nil {
		return nil
	}
	return domains
}

// SetDomainList serializes the allow-listed hostnames for storage.
func (s *SiteIntegration) SetDomainList(domains []string) error {
	if len(domains) == 0 {
		s.AllowedDomains = ""
		return nil
	}
	data, err := json.Marshal(domains)
	if err != nil {
		return err
	}
	s.AllowedDomains = string(data)
	return nil
}
