package repositories

import (
	"encoding/json"

	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
	"github.com/deployhub/deployhub-backend/pkg/infrastructure/postgres/schemas"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DeploymentPostgresRepository struct {
	db *gorm.DB
}

func NewDeploymentRepository(db *gorm.DB) *DeploymentPostgresRepository {
	return &DeploymentPostgresRepository{db: db}
}

func (r *DeploymentPostgresRepository) CreateDeployment(deployment *entities.DeploymentEntity) error {
	row := schemas.Deployment{
		ID:             deployment.ID,
		ProjectName:    deployment.ProjectName,
		Status:         deployment.Status,
		Region:         deployment.Region,
		BucketName:     deployment.BucketName,
		DistributionID: deployment.DistributionID,
		WebsiteURL:     deployment.WebsiteURL,
		Log:            datatypes.JSON(deployment.Log),
		Error:          deployment.Error,
	}
	return r.db.Create(&row).Error
}

func (r *DeploymentPostgresRepository) UpdateStatus(id string, status entities.DeploymentStatus, reason string) error {
	return r.db.Model(&schemas.Deployment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "error": reason}).Error
}

// UpdateResult records the artifacts of a finished provisioning run together
// with the accumulated log.
func (r *DeploymentPostgresRepository) UpdateResult(
	id string,
	status entities.DeploymentStatus,
	bucketName string,
	distributionID string,
	websiteURL string,
	log []string,
	reason string,
) error {
	encoded, err := json.Marshal(log)
	if err != nil {
		return err
	}
	return r.db.Model(&schemas.Deployment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"bucket_name":     bucketName,
			"distribution_id": distributionID,
			"website_url":     websiteURL,
			"log":             datatypes.JSON(encoded),
			"error":           reason,
		}).Error
}

func (r *DeploymentPostgresRepository) GetDeploymentByID(id string) (*entities.DeploymentEntity, error) {
	var row schemas.Deployment
	if err := r.db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return toDeploymentEntity(&row), nil
}

func (r *DeploymentPostgresRepository) GetDeploymentStatus(id string) (entities.DeploymentStatus, error) {
	var row schemas.Deployment
	err := r.db.Select("status").Where("id = ?", id).First(&row).Error
	if err != nil {
		return entities.DeploymentStatusUnknown, err
	}
	return row.Status, nil
}

// GetDeployments lists records newest first, optionally filtered by project
// name and status.
func (r *DeploymentPostgresRepository) GetDeployments(projectName string, status entities.DeploymentStatus) ([]*entities.DeploymentEntity, error) {
	query := r.db.Order("created_at DESC")
	if projectName != "" {
		query = query.Where("project_name = ?", projectName)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []schemas.Deployment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	deployments := make([]*entities.DeploymentEntity, 0, len(rows))
	for i := range rows {
		deployments = append(deployments, toDeploymentEntity(&rows[i]))
	}
	return deployments, nil
}

func (r *DeploymentPostgresRepository) DeleteDeployment(id string) error {
	return r.db.Where("id = ?", id).Delete(&schemas.Deployment{}).Error
}

func toDeploymentEntity(row *schemas.Deployment) *entities.DeploymentEntity {
	return &entities.DeploymentEntity{
		ID:             row.ID,
		ProjectName:    row.ProjectName,
		Status:         row.Status,
		Region:         row.Region,
		BucketName:     row.BucketName,
		DistributionID: row.DistributionID,
		WebsiteURL:     row.WebsiteURL,
		Log:            datatypes.JSON(row.Log),
		Error:          row.Error,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
