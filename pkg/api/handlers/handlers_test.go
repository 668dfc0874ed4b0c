package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
	"github.com/deployhub/deployhub-backend/pkg/services"
)

// stubDeploymentRepository satisfies services.DeploymentRepository for
// handler tests that never touch the database.
type stubDeploymentRepository struct{}

func (stubDeploymentRepository) CreateDeployment(*entities.DeploymentEntity) error { return nil }
func (stubDeploymentRepository) UpdateStatus(string, entities.DeploymentStatus, string) error {
	return nil
}
func (stubDeploymentRepository) UpdateResult(string, entities.DeploymentStatus, string, string, string, []string, string) error {
	return nil
}
func (stubDeploymentRepository) GetDeploymentByID(string) (*entities.DeploymentEntity, error) {
	return nil, nil
}
func (stubDeploymentRepository) GetDeploymentStatus(string) (entities.DeploymentStatus, error) {
	return entities.DeploymentStatusUnknown, nil
}
func (stubDeploymentRepository) GetDeployments(string, entities.DeploymentStatus) ([]*entities.DeploymentEntity, error) {
	return nil, nil
}
func (stubDeploymentRepository) DeleteDeployment(string) error { return nil }

// stubCloudSession fails distribution teardown while storage teardown
// succeeds.
type stubCloudSession struct{}

func (stubCloudSession) WebsiteEndpoint(bucket string) string { return bucket }
func (stubCloudSession) ProvisionStorage(context.Context, string, []string) error {
	return nil
}
func (stubCloudSession) UploadFiles(context.Context, string, []entities.UploadedFile, string) error {
	return nil
}
func (stubCloudSession) TeardownStorage(context.Context, string) error { return nil }
func (stubCloudSession) ProvisionDistribution(context.Context, string, string) (*entities.DistributionRef, error) {
	return nil, nil
}
func (stubCloudSession) AwaitDistributionReady(context.Context, string, int, time.Duration) error {
	return nil
}
func (stubCloudSession) InvalidateDistribution(context.Context, string, []string) error {
	return nil
}
func (stubCloudSession) DistributionStatus(context.Context, string) (*entities.DistributionInfo, error) {
	return nil, nil
}
func (stubCloudSession) TeardownDistribution(context.Context, string) error {
	return errors.New("distribution still enabled")
}

type stubTaskManager struct{}

func (stubTaskManager) AddTask(task entities.Task) { task() }

func TestGetHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", NewHealthHandler().GetHealth)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "healthy")
}

func TestCleanupPartialFailureStillSucceeds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	factory := func(cred entities.Credential, region string) services.CloudSession {
		return stubCloudSession{}
	}
	handler := &DeploymentHandler{
		DeploymentService: services.NewDeploymentService(stubDeploymentRepository{}, factory, stubTaskManager{}, nil),
	}

	router := gin.New()
	router.POST("/cleanup-project", handler.Cleanup)

	body := `{
		"projectName": "demo",
		"bucketName": "deployhub-demo-abc12345",
		"distributionId": "E123MOCK",
		"credentials": {"accessKeyId": "AKIATEST", "secretAccessKey": "secret"}
	}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/cleanup-project", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	// The sweep ran, so the call succeeds; the failed distribution shows up
	// only in results.errors.
	assert.Contains(t, recorder.Body.String(), `"success":true`)
	assert.Contains(t, recorder.Body.String(), "distribution still enabled")
	assert.Contains(t, recorder.Body.String(), "bucket deployhub-demo-abc12345")
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", entities.NewValidationError("bad input"), http.StatusBadRequest},
		{"expired credentials", &entities.AuthError{Reason: entities.AuthReasonExpired, Msg: "expired"}, http.StatusUnauthorized},
		{"invalid role", &entities.AuthError{Reason: entities.AuthReasonInvalidRole, Msg: "bad arn"}, http.StatusBadRequest},
		{"account mismatch", &entities.AuthError{Reason: entities.AuthReasonAccountMismatch, Msg: "wrong account"}, http.StatusBadRequest},
		{"trust denied", &entities.AuthError{Reason: entities.AuthReasonTrustDenied, Msg: "denied"}, http.StatusForbidden},
		{"not connected", &entities.AuthError{Reason: entities.AuthReasonNotConnected, Msg: "none"}, http.StatusNotFound},
		{"unrecognized project", entities.ErrNoRecognizableProject, http.StatusBadRequest},
		{"no entry document", entities.ErrNoEntryDocument, http.StatusBadRequest},
		{"corrupt archive", entities.ErrCorruptArchive, http.StatusBadRequest},
		{"provider", &entities.ProviderError{Step: "create bucket", Err: errors.New("denied")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
