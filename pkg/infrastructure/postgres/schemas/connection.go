package schemas

import (
	"time"

	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Connection records the trust relationship with a customer AWS account.
// Only metadata is stored; temporary credentials never touch the database.
type Connection struct {
	ID         uuid.UUID                 `gorm:"type:uuid;primaryKey;column:id"`
	UserID     string                    `gorm:"column:user_id;not null;index"`
	AccountID  string                    `gorm:"column:account_id;not null"`
	RoleArn    string                    `gorm:"column:role_arn;not null"`
	ExternalID string                    `gorm:"column:external_id;not null"`
	Status     entities.ConnectionStatus `gorm:"column:status;not null"`
	VerifiedAt time.Time                 `gorm:"column:verified_at"`
	CreatedAt  time.Time                 `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt  time.Time                 `gorm:"autoUpdateTime;column:updated_at"`
	DeletedAt  gorm.DeletedAt            `gorm:"index;column:deleted_at"`
}

func (Connection) TableName() string {
	return "aws_connections"
}
