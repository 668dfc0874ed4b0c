package connection

import (
	"fmt"

	"github.com/deployhub/deployhub-backend/internal/logger"
	"github.com/deployhub/deployhub-backend/pkg/infrastructure/postgres/schemas"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func Init(
	postgresUser string,
	postgresHost string,
	postgresPassword string,
	postgresDatabase string,
	postgresPort string,
) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s TimeZone=UTC",
		postgresHost,
		postgresUser,
		postgresPassword,
		postgresDatabase,
		postgresPort)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		logger.Errorf("Failed to connect to postgres database: %s", err)
		return nil, err
	}

	err = db.AutoMigrate(&schemas.Deployment{}, &schemas.Connection{})
	if err != nil {
		logger.Errorf("Failed to auto migrate DB schemas: %s", err)
		return nil, err
	}

	return db, nil
}
