package entities

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionEntity is the persisted trust relationship with a customer AWS
// account. The short-lived credential obtained through it is never persisted.
type ConnectionEntity struct {
	ID         uuid.UUID        `json:"id"`
	UserID     string           `json:"userId"`
	AccountID  string           `json:"accountId"`
	RoleArn    string           `json:"roleArn"`
	ExternalID string           `json:"externalId"`
	Status     ConnectionStatus `json:"status"`
	VerifiedAt time.Time        `json:"verifiedAt"`
}

// Credential is a short-lived set of AWS keys obtained by assuming the
// connection's role. Owned by the credential broker; shared read-only with the
// provisioners for the duration of one run.
type Credential struct {
	AccessKeyID     string    `json:"accessKeyId"`
	SecretAccessKey string    `json:"secretAccessKey"`
	SessionToken    string    `json:"sessionToken"`
	ExpiresAt       time.Time `json:"expiration"`
}

// Expired reports whether the credential is unusable at the given instant.
// Exact equality with ExpiresAt counts as expired.
func (c Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
