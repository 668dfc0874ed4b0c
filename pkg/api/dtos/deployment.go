package dtos

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/deployhub/deployhub-backend/internal/utils"
	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
)

const defaultRegion = "us-east-1"

type CredentialsDTO struct {
	AccessKeyID     string `json:"accessKeyId"     binding:"required"`
	SecretAccessKey string `json:"secretAccessKey" binding:"required"`
	SessionToken    string `json:"sessionToken"`
	Expiration      string `json:"expiration"`
}

// ToCredential converts the wire shape into the domain credential. A missing
// expiration leaves the zero time; the orchestrator only rejects credentials
// whose stated expiry has passed.
func (c *CredentialsDTO) ToCredential() (entities.Credential, error) {
	cred := entities.Credential{
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.SessionToken,
	}
	if c.Expiration != "" {
		expires, err := time.Parse(time.RFC3339, c.Expiration)
		if err != nil {
			return entities.Credential{}, entities.NewValidationError("invalid credential expiration: %s", c.Expiration)
		}
		cred.ExpiresAt = expires
	}
	return cred, nil
}

type DeployFile struct {
	Name    string `json:"name"    binding:"required"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

type DeployRequest struct {
	ProjectName string         `json:"projectName" binding:"required"`
	Files       []DeployFile   `json:"files"       binding:"required"`
	Credentials CredentialsDTO `json:"credentials" binding:"required"`
	Region      string         `json:"region"`
	Domain      string         `json:"domain"`
}

func (r *DeployRequest) Validate() error {
	if strings.TrimSpace(r.ProjectName) == "" {
		return entities.NewValidationError("projectName is required")
	}
	if len(r.Files) == 0 {
		return entities.NewValidationError("files must not be empty")
	}
	for _, f := range r.Files {
		if f.Name == "" {
			return entities.NewValidationError("every file needs a name")
		}
	}
	if r.Credentials.AccessKeyID == "" || r.Credentials.SecretAccessKey == "" {
		return entities.NewValidationError("credentials are required")
	}
	if r.Region == "" {
		r.Region = defaultRegion
	}
	return nil
}

// IsArchiveUpload reports whether the request is the ZIP-aware path: a single
// archive whose content travels base64-encoded.
func (r *DeployRequest) IsArchiveUpload() bool {
	return len(r.Files) == 1 && strings.HasSuffix(strings.ToLower(r.Files[0].Name), ".zip")
}

// UploadedFiles converts the request's file list into the domain file set.
// Archive content is base64-decoded; plain files are taken as-is.
func (r *DeployRequest) UploadedFiles() ([]entities.UploadedFile, error) {
	files := make([]entities.UploadedFile, 0, len(r.Files))
	for _, f := range r.Files {
		var content []byte
		if r.IsArchiveUpload() {
			decoded, err := base64.StdEncoding.DecodeString(f.Content)
			if err != nil {
				return nil, entities.NewValidationError("file %s is not valid base64", f.Name)
			}
			content = decoded
		} else {
			content = []byte(f.Content)
		}

		contentType := f.Type
		if contentType == "" {
			contentType = utils.ContentTypeForName(f.Name)
		}
		files = append(files, entities.UploadedFile{
			Path:        f.Name,
			Content:     content,
			ContentType: contentType,
			Size:        int64(len(content)),
		})
	}
	return files, nil
}

type DeployResponse struct {
	Success        bool     `json:"success"`
	DeploymentID   string   `json:"deploymentId,omitempty"`
	BucketName     string   `json:"bucketName,omitempty"`
	DistributionID string   `json:"distributionId,omitempty"`
	WebsiteURL     string   `json:"websiteUrl,omitempty"`
	Logs           []string `json:"logs,omitempty"`
	Error          string   `json:"error,omitempty"`
	Hint           string   `json:"hint,omitempty"`
}

type CleanupRequest struct {
	ProjectName    string         `json:"projectName" binding:"required"`
	BucketName     string         `json:"bucketName"`
	DistributionID string         `json:"distributionId"`
	Credentials    CredentialsDTO `json:"credentials" binding:"required"`
	Region         string         `json:"region"`
}

func (r *CleanupRequest) Validate() error {
	if strings.TrimSpace(r.ProjectName) == "" {
		return entities.NewValidationError("projectName is required")
	}
	if r.Credentials.AccessKeyID == "" || r.Credentials.SecretAccessKey == "" {
		return entities.NewValidationError("credentials are required")
	}
	if r.Region == "" {
		r.Region = defaultRegion
	}
	return nil
}

// StatusRequest travels as query parameters on the status check, so the
// credentials are flattened rather than nested.
type StatusRequest struct {
	AccessKeyID     string `form:"accessKeyId"`
	SecretAccessKey string `form:"secretAccessKey"`
	SessionToken    string `form:"sessionToken"`
	Region          string `form:"region"`
}

func (r *StatusRequest) Validate() error {
	if r.AccessKeyID == "" || r.SecretAccessKey == "" {
		return entities.NewValidationError("credentials are required")
	}
	if r.Region == "" {
		r.Region = defaultRegion
	}
	return nil
}

func (r *StatusRequest) ToCredential() entities.Credential {
	return entities.Credential{
		AccessKeyID:     r.AccessKeyID,
		SecretAccessKey: r.SecretAccessKey,
		SessionToken:    r.SessionToken,
	}
}

type CleanupResponse struct {
	Success bool                   `json:"success"`
	Results entities.CleanupResult `json:"results"`
	Message string                 `json:"message,omitempty"`
}
