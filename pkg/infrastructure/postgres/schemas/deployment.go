package schemas

import (
	"time"

	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Deployment struct {
	ID             uuid.UUID                 `gorm:"type:uuid;primaryKey;column:id"`
	ProjectName    string                    `gorm:"column:project_name;not null"`
	Status         entities.DeploymentStatus `gorm:"column:status;not null"`
	Region         string                    `gorm:"column:region;not null"`
	BucketName     string                    `gorm:"column:bucket_name"`
	DistributionID string                    `gorm:"column:distribution_id"`
	WebsiteURL     string                    `gorm:"column:website_url"`
	Log            datatypes.JSON            `gorm:"type:jsonb;column:log"`
	Error          string                    `gorm:"column:error"`
	CreatedAt      time.Time                 `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt      time.Time                 `gorm:"autoUpdateTime;column:updated_at"`
	DeletedAt      gorm.DeletedAt            `gorm:"index;column:deleted_at"`
}

func (Deployment) TableName() string {
	return "deployments"
}
