package dtos

import (
	"strings"

	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
)

type ConnectAccountRequest struct {
	UserID     string `json:"userId"     binding:"required"`
	RoleArn    string `json:"roleArn"    binding:"required"`
	ExternalID string `json:"externalId" binding:"required"`
	AccountID  string `json:"accountId"`
}

func (r *ConnectAccountRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return entities.NewValidationError("userId is required")
	}
	if strings.TrimSpace(r.RoleArn) == "" {
		return entities.NewValidationError("roleArn is required")
	}
	if strings.TrimSpace(r.ExternalID) == "" {
		return entities.NewValidationError("externalId is required")
	}
	return nil
}

type AssumeRoleRequest struct {
	UserID      string `json:"userId"      binding:"required"`
	RoleArn     string `json:"roleArn"     binding:"required"`
	ExternalID  string `json:"externalId"  binding:"required"`
	SessionName string `json:"sessionName"`
}

func (r *AssumeRoleRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return entities.NewValidationError("userId is required")
	}
	if strings.TrimSpace(r.RoleArn) == "" {
		return entities.NewValidationError("roleArn is required")
	}
	if strings.TrimSpace(r.ExternalID) == "" {
		return entities.NewValidationError("externalId is required")
	}
	return nil
}

type VerificationDTO struct {
	AccountID  string `json:"accountId"`
	RoleArn    string `json:"roleArn"`
	VerifiedAt string `json:"verifiedAt"`
}

type ConnectAccountResponse struct {
	Success      bool             `json:"success"`
	Verification *VerificationDTO `json:"verification,omitempty"`
	Error        string           `json:"error,omitempty"`
	Hint         string           `json:"hint,omitempty"`
}

type CredentialResponse struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken"`
	Expiration      string `json:"expiration"`
}

type AssumeRoleResponse struct {
	Success     bool                `json:"success"`
	Credentials *CredentialResponse `json:"credentials,omitempty"`
	Error       string              `json:"error,omitempty"`
	Hint        string              `json:"hint,omitempty"`
}

type ConnectionStateResponse struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
	Hint      string `json:"hint,omitempty"`
}
