package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/deployhub/deployhub-backend/pkg/api/handlers"
	"github.com/deployhub/deployhub-backend/pkg/api/servers"
)

func SetupRoutes(server *servers.Server) {
	apiV1 := server.Router.Group("/api/v1")
	setupV1Routes(apiV1, server)
}

func setupV1Routes(router *gin.RouterGroup, server *servers.Server) {
	// Health routes
	setupHealthRoutes(router.Group("/health"))

	// AWS account routes
	setupAccountRoutes(router, server)

	// Deployment routes
	setupDeploymentRoutes(router, server)
}

func setupHealthRoutes(router *gin.RouterGroup) {
	handler := handlers.NewHealthHandler()
	router.GET("", handler.GetHealth)
}

func setupAccountRoutes(router *gin.RouterGroup, server *servers.Server) {
	handler := handlers.NewAccountHandler(server)
	router.POST("/connect-aws-account", handler.ConnectAccount)
	router.POST("/assume-role", handler.AssumeRole)
	router.GET("/connections/:userId", handler.GetConnection)
	router.DELETE("/connections/:userId", handler.Disconnect)
}

func setupDeploymentRoutes(router *gin.RouterGroup, server *servers.Server) {
	handler := handlers.NewDeploymentHandler(server)
	router.POST("/deploy", handler.Deploy)
	router.POST("/cleanup-project", handler.Cleanup)
	router.GET("/check-status/:distributionId", handler.CheckStatus)
	router.GET("/deployments", handler.GetDeployments)
	router.GET("/deployments/:id", handler.GetDeploymentByID)
	router.GET("/deployments/:id/status", handler.GetDeploymentStatus)
	router.DELETE("/deployments/:id", handler.DeleteDeployment)
}
