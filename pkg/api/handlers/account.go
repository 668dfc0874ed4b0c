package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deployhub/deployhub-backend/pkg/api/dtos"
	"github.com/deployhub/deployhub-backend/pkg/api/servers"
	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
	"github.com/deployhub/deployhub-backend/pkg/services"
)

type AccountHandler struct {
	Broker *services.CredentialBroker
}

func NewAccountHandler(server *servers.Server) *AccountHandler {
	return &AccountHandler{Broker: server.Broker}
}

func (h *AccountHandler) ConnectAccount(c *gin.Context) {
	var request dtos.ConnectAccountRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := request.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	connection, err := h.Broker.Connect(c.Request.Context(), request.UserID, request.RoleArn, request.ExternalID, request.AccountID)
	if err != nil {
		response := dtos.ConnectAccountResponse{Success: false, Error: err.Error()}
		response.Hint = authHint(err)
		c.JSON(statusForError(err), response)
		return
	}

	c.JSON(http.StatusOK, dtos.ConnectAccountResponse{
		Success: true,
		Verification: &dtos.VerificationDTO{
			AccountID:  connection.AccountID,
			RoleArn:    connection.RoleArn,
			VerifiedAt: connection.VerifiedAt.UTC().Format(time.RFC3339),
		},
	})
}

func (h *AccountHandler) AssumeRole(c *gin.Context) {
	var request dtos.AssumeRoleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := request.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	credential, err := h.Broker.AssumeOperational(c.Request.Context(), request.UserID, request.RoleArn, request.ExternalID, request.SessionName)
	if err != nil {
		response := dtos.AssumeRoleResponse{Success: false, Error: err.Error()}
		response.Hint = authHint(err)
		c.JSON(statusForError(err), response)
		return
	}

	c.JSON(http.StatusOK, dtos.AssumeRoleResponse{
		Success: true,
		Credentials: &dtos.CredentialResponse{
			AccessKeyID:     credential.AccessKeyID,
			SecretAccessKey: credential.SecretAccessKey,
			SessionToken:    credential.SessionToken,
			Expiration:      credential.ExpiresAt.UTC().Format(time.RFC3339),
		},
	})
}

func (h *AccountHandler) GetConnection(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	if _, err := h.Broker.EnsureValid(userID); err != nil {
		c.JSON(http.StatusOK, dtos.ConnectionStateResponse{Connected: false, Error: err.Error(), Hint: authHint(err)})
		return
	}

	c.JSON(http.StatusOK, dtos.ConnectionStateResponse{Connected: true})
}

func (h *AccountHandler) Disconnect(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	h.Broker.Disconnect(userID)
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

func authHint(err error) string {
	var authErr *entities.AuthError
	if errors.As(err, &authErr) {
		return authErr.Hint
	}
	return ""
}
