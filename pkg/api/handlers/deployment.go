package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deployhub/deployhub-backend/pkg/api/dtos"
	"github.com/deployhub/deployhub-backend/pkg/api/servers"
	"github.com/deployhub/deployhub-backend/pkg/cloud/aws"
	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
	postgresRepositories "github.com/deployhub/deployhub-backend/pkg/infrastructure/postgres/repositories"
	"github.com/deployhub/deployhub-backend/pkg/services"
	"github.com/deployhub/deployhub-backend/pkg/taskmanager"
)

type DeploymentHandler struct {
	DeploymentService *services.DeploymentService
}

func NewDeploymentHandler(server *servers.Server) *DeploymentHandler {
	deploymentRepo := postgresRepositories.NewDeploymentRepository(server.PostgresDB)
	taskManager := taskmanager.NewTaskManager(5, 20)
	taskManager.Start()

	factory := func(cred entities.Credential, region string) services.CloudSession {
		return aws.NewSession(cred, region)
	}

	return &DeploymentHandler{
		DeploymentService: services.NewDeploymentService(deploymentRepo, factory, taskManager, server.AllowedOrigins),
	}
}

func (h *DeploymentHandler) Deploy(c *gin.Context) {
	var request dtos.DeployRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := request.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cred, err := request.Credentials.ToCredential()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, err := request.UploadedFiles()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DeploymentService.Deploy(c.Request.Context(), request.ProjectName, files, cred, request.Region)
	if err != nil {
		response := dtos.DeployResponse{Success: false, Error: err.Error()}
		if result != nil {
			response.DeploymentID = result.DeploymentID.String()
			response.Logs = result.Logs
		}
		var authErr *entities.AuthError
		if errors.As(err, &authErr) {
			response.Hint = authErr.Hint
		}
		c.JSON(statusForError(err), response)
		return
	}

	c.JSON(http.StatusOK, dtos.DeployResponse{
		Success:        true,
		DeploymentID:   result.DeploymentID.String(),
		BucketName:     result.BucketName,
		DistributionID: result.DistributionID,
		WebsiteURL:     result.WebsiteURL,
		Logs:           result.Logs,
	})
}

func (h *DeploymentHandler) Cleanup(c *gin.Context) {
	var request dtos.CleanupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := request.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cred, err := request.Credentials.ToCredential()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := h.DeploymentService.CleanupProject(
		c.Request.Context(),
		request.ProjectName,
		request.BucketName,
		request.DistributionID,
		cred,
		request.Region,
	)

	// Cleanup is best-effort: the call succeeds when the sweep ran, and
	// per-resource failures are reported in results.errors only.
	c.JSON(http.StatusOK, dtos.CleanupResponse{
		Success: true,
		Results: results,
	})
}

func (h *DeploymentHandler) CheckStatus(c *gin.Context) {
	distributionID := c.Param("distributionId")
	if distributionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "distributionId is required"})
		return
	}

	var request dtos.StatusRequest
	if err := c.ShouldBindQuery(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := request.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, err := h.DeploymentService.CheckStatus(c.Request.Context(), distributionID, request.ToCredential(), request.Region)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *DeploymentHandler) GetDeployments(c *gin.Context) {
	projectName := c.Query("projectName")
	status := entities.DeploymentStatus(c.Query("status"))

	deployments, err := h.DeploymentService.GetDeployments(projectName, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deployments": deployments})
}

func (h *DeploymentHandler) GetDeploymentByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deployment id"})
		return
	}

	deployment, err := h.DeploymentService.GetDeploymentByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "deployment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deployment": deployment})
}

func (h *DeploymentHandler) GetDeploymentStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deployment id"})
		return
	}

	status, err := h.DeploymentService.GetDeploymentStatus(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *DeploymentHandler) DeleteDeployment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deployment id"})
		return
	}

	if err := h.DeploymentService.DeleteDeployment(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

func statusForError(err error) int {
	var validationErr *entities.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	var authErr *entities.AuthError
	if errors.As(err, &authErr) {
		switch authErr.Reason {
		case entities.AuthReasonInvalidRole, entities.AuthReasonAccountMismatch:
			return http.StatusBadRequest
		case entities.AuthReasonTrustDenied:
			return http.StatusForbidden
		case entities.AuthReasonNotConnected:
			return http.StatusNotFound
		default:
			return http.StatusUnauthorized
		}
	}
	if errors.Is(err, entities.ErrNoRecognizableProject) || errors.Is(err, entities.ErrNoEntryDocument) || errors.Is(err, entities.ErrCorruptArchive) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
