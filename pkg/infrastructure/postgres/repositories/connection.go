package repositories

import (
	"errors"

	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
	"github.com/deployhub/deployhub-backend/pkg/infrastructure/postgres/schemas"
	"gorm.io/gorm"
)

type ConnectionPostgresRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *ConnectionPostgresRepository {
	return &ConnectionPostgresRepository{db: db}
}

func (r *ConnectionPostgresRepository) SaveConnection(conn *entities.ConnectionEntity) error {
	row := schemas.Connection{
		ID:         conn.ID,
		UserID:     conn.UserID,
		AccountID:  conn.AccountID,
		RoleArn:    conn.RoleArn,
		ExternalID: conn.ExternalID,
		Status:     conn.Status,
		VerifiedAt: conn.VerifiedAt,
	}
	return r.db.Save(&row).Error
}

func (r *ConnectionPostgresRepository) GetConnectionByUserID(userID string) (*entities.ConnectionEntity, error) {
	var row schemas.Connection
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entities.ConnectionEntity{
		ID:         row.ID,
		UserID:     row.UserID,
		AccountID:  row.AccountID,
		RoleArn:    row.RoleArn,
		ExternalID: row.ExternalID,
		Status:     row.Status,
		VerifiedAt: row.VerifiedAt,
	}, nil
}

func (r *ConnectionPostgresRepository) UpdateConnectionStatus(id string, status entities.ConnectionStatus) error {
	return r.db.Model(&schemas.Connection{}).Where("id = ?", id).Update("status", status).Error
}
