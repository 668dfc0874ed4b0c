package servers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/deployhub/deployhub-backend/pkg/services"
)

type Server struct {
	Router         *gin.Engine
	PostgresDB     *gorm.DB
	Broker         *services.CredentialBroker
	AllowedOrigins []string
}

func (s *Server) Start(port string) error {
	return s.Router.Run(":" + port)
}

func (s *Server) Use(middleware gin.HandlerFunc) {
	s.Router.Use(middleware)
}

func NewServer(db *gorm.DB, broker *services.CredentialBroker, allowedOrigins []string) *Server {
	app := gin.Default()

	return &Server{
		Router:         app,
		PostgresDB:     db,
		Broker:         broker,
		AllowedOrigins: allowedOrigins,
	}
}
