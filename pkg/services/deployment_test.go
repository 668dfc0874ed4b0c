package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
)

func newTestService(repo *MockDeploymentRepository, session *MockCloudSession) *DeploymentService {
	factory := func(cred entities.Credential, region string) CloudSession { return session }
	service := NewDeploymentService(repo, factory, syncTaskManager{}, []string{"http://localhost:3000"})
	service.now = func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }
	return service
}

func staticFiles() []entities.UploadedFile {
	return []entities.UploadedFile{
		{Path: "index.html", Content: []byte("<html></html>"), ContentType: "text/html; charset=utf-8", Size: 13},
		{Path: "style.css", Content: []byte("body{}"), ContentType: "text/css; charset=utf-8", Size: 6},
	}
}

func validCredential() entities.Credential {
	return entities.Credential{
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
		SessionToken:    "token",
		ExpiresAt:       time.Date(2026, 1, 15, 13, 0, 0, 0, time.UTC),
	}
}

func TestDeploySucceeds(t *testing.T) {
	repo := NewMockDeploymentRepository()
	session := &MockCloudSession{}
	service := newTestService(repo, session)

	result, err := service.Deploy(context.Background(), "My Portfolio", staticFiles(), validCredential(), "us-east-1")
	require.NoError(t, err)

	assert.Contains(t, result.BucketName, "deployhub-my-portfolio-")
	assert.Equal(t, "E123MOCK", result.DistributionID)
	assert.Equal(t, "https://d123mock.cloudfront.net", result.WebsiteURL)
	assert.NotEmpty(t, result.Logs)

	require.Len(t, session.ProvisionedBuckets, 1)
	assert.Equal(t, result.BucketName, session.ProvisionedBuckets[0])
	assert.Equal(t, "index.html", session.UploadedEntryPath)

	// Propagation watcher ran inline and marked the record deployed.
	assert.Equal(t, entities.DeploymentStatusDeployed, repo.StatusUpdates[result.DeploymentID.String()])
	assert.Contains(t, session.InvalidatedPaths, "/*")

	// The run walks the full state machine.
	joined := strings.Join(result.Logs, "\n")
	for _, state := range []entities.RunState{
		entities.RunStateValidating,
		entities.RunStateClassifying,
		entities.RunStateProvisioning,
		entities.RunStateAwaitingPropagation,
		entities.RunStateSucceeded,
	} {
		assert.Contains(t, joined, "entering "+string(state))
	}
}

func TestDeployExtractsArchiveUpload(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("site/index.html")
	require.NoError(t, err)
	_, err = f.Write([]byte("<html></html>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	repo := NewMockDeploymentRepository()
	session := &MockCloudSession{}
	service := newTestService(repo, session)

	upload := []entities.UploadedFile{{Path: "site.zip", Content: buf.Bytes(), Size: int64(buf.Len())}}
	_, err = service.Deploy(context.Background(), "archived", upload, validCredential(), "us-east-1")
	require.NoError(t, err)

	require.Len(t, session.UploadedFiles, 1)
	assert.Equal(t, "site/index.html", session.UploadedFiles[0].Path)
	assert.Equal(t, "site/index.html", session.UploadedEntryPath)
}

func TestDeployRejectsExpiredCredentials(t *testing.T) {
	repo := NewMockDeploymentRepository()
	session := &MockCloudSession{}
	service := newTestService(repo, session)

	cred := validCredential()
	// Exactly at the expiry instant counts as expired.
	cred.ExpiresAt = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	_, err := service.Deploy(context.Background(), "expired", staticFiles(), cred, "us-east-1")
	var authErr *entities.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, entities.AuthReasonExpired, authErr.Reason)
	assert.Empty(t, session.ProvisionedBuckets)
}

func TestDeployUnrecognizedProjectSkipsProvisioning(t *testing.T) {
	repo := NewMockDeploymentRepository()
	session := &MockCloudSession{}
	service := newTestService(repo, session)

	files := []entities.UploadedFile{{Path: "data.csv", Content: []byte("a,b"), Size: 3}}
	_, err := service.Deploy(context.Background(), "not-a-site", files, validCredential(), "us-east-1")
	require.ErrorIs(t, err, entities.ErrNoRecognizableProject)

	assert.Empty(t, session.ProvisionedBuckets)

	// Failure is recorded with the run log.
	require.Len(t, repo.Created, 1)
	result := repo.Results[repo.Created[0].ID.String()]
	assert.Equal(t, entities.DeploymentStatusFailed, result.Status)
	assert.NotEmpty(t, result.Log)
	assert.NotEmpty(t, result.Reason)
	assert.Contains(t, strings.Join(result.Log, "\n"), "entering Failed")
}

func TestDeployStorageFailureRecordsFailed(t *testing.T) {
	repo := NewMockDeploymentRepository()
	session := &MockCloudSession{
		ProvisionStorageFunc: func(ctx context.Context, bucketName string, corsOrigins []string) error {
			return &entities.ProviderError{Step: "create bucket", Err: errors.New("denied")}
		},
	}
	service := newTestService(repo, session)

	_, err := service.Deploy(context.Background(), "broken", staticFiles(), validCredential(), "us-east-1")
	var providerErr *entities.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "create bucket", providerErr.Step)

	require.Len(t, repo.Created, 1)
	assert.Equal(t, entities.DeploymentStatusFailed, repo.Results[repo.Created[0].ID.String()].Status)
}

func TestDeployPropagationTimeoutStillDeploys(t *testing.T) {
	repo := NewMockDeploymentRepository()
	session := &MockCloudSession{
		AwaitDistributionReadyFunc: func(ctx context.Context, distributionID string, maxAttempts int, interval time.Duration) error {
			return entities.ErrPropagationTimeout
		},
	}
	service := newTestService(repo, session)

	result, err := service.Deploy(context.Background(), "slow", staticFiles(), validCredential(), "us-east-1")
	require.NoError(t, err)

	// Timeout is a warning only; the record still ends deployed.
	assert.Equal(t, entities.DeploymentStatusDeployed, repo.StatusUpdates[result.DeploymentID.String()])
}

func TestCleanupProjectBestEffort(t *testing.T) {
	repo := NewMockDeploymentRepository()
	session := &MockCloudSession{
		TeardownDistributionFunc: func(ctx context.Context, distributionID string) error {
			return errors.New("distribution busy")
		},
	}
	service := newTestService(repo, session)

	result := service.CleanupProject(context.Background(), "mixed", "deployhub-mixed-abc12345", "E123MOCK", validCredential(), "us-east-1")

	// The failed distribution does not stop the bucket teardown.
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "E123MOCK")
	require.Len(t, result.Deleted, 1)
	assert.Equal(t, "bucket deployhub-mixed-abc12345", result.Deleted[0])
}

func TestCleanupProjectMarksDeploymentsTerminated(t *testing.T) {
	repo := NewMockDeploymentRepository()
	session := &MockCloudSession{}
	service := newTestService(repo, session)

	result, err := service.Deploy(context.Background(), "doomed", staticFiles(), validCredential(), "us-east-1")
	require.NoError(t, err)

	service.CleanupProject(context.Background(), "doomed", result.BucketName, result.DistributionID, validCredential(), "us-east-1")
	assert.Equal(t, entities.DeploymentStatusTerminated, repo.StatusUpdates[result.DeploymentID.String()])
}
