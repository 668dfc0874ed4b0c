package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DeploymentEntity struct {
	ID             uuid.UUID        `json:"id"`
	ProjectName    string           `json:"projectName"`
	Status         DeploymentStatus `json:"status"`
	Region         string           `json:"region"`
	BucketName     string           `json:"bucketName"`
	DistributionID string           `json:"distributionId"`
	WebsiteURL     string           `json:"websiteUrl"`
	Log            datatypes.JSON   `json:"log"`
	Error          string           `json:"error,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Task is one unit of background work handed to the task manager.
type Task func()
