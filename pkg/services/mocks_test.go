package services

import (
	"context"
	"time"

	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
)

// MockDeploymentRepository for testing
type MockDeploymentRepository struct {
	Created       []*entities.DeploymentEntity
	StatusUpdates map[string]entities.DeploymentStatus
	Results       map[string]MockResultUpdate

	CreateDeploymentFunc func(deployment *entities.DeploymentEntity) error
	GetDeploymentsFunc   func(projectName string, status entities.DeploymentStatus) ([]*entities.DeploymentEntity, error)
}

type MockResultUpdate struct {
	Status         entities.DeploymentStatus
	BucketName     string
	DistributionID string
	WebsiteURL     string
	Log            []string
	Reason         string
}

func NewMockDeploymentRepository() *MockDeploymentRepository {
	return &MockDeploymentRepository{
		StatusUpdates: make(map[string]entities.DeploymentStatus),
		Results:       make(map[string]MockResultUpdate),
	}
}

func (m *MockDeploymentRepository) CreateDeployment(deployment *entities.DeploymentEntity) error {
	if m.CreateDeploymentFunc != nil {
		return m.CreateDeploymentFunc(deployment)
	}
	m.Created = append(m.Created, deployment)
	return nil
}

func (m *MockDeploymentRepository) UpdateStatus(id string, status entities.DeploymentStatus, reason string) error {
	m.StatusUpdates[id] = status
	return nil
}

func (m *MockDeploymentRepository) UpdateResult(id string, status entities.DeploymentStatus, bucketName string, distributionID string, websiteURL string, log []string, reason string) error {
	m.Results[id] = MockResultUpdate{
		Status:         status,
		BucketName:     bucketName,
		DistributionID: distributionID,
		WebsiteURL:     websiteURL,
		Log:            log,
		Reason:         reason,
	}
	for _, d := range m.Created {
		if d.ID.String() == id {
			d.Status = status
			d.BucketName = bucketName
			d.DistributionID = distributionID
			d.WebsiteURL = websiteURL
		}
	}
	return nil
}

func (m *MockDeploymentRepository) GetDeploymentByID(id string) (*entities.DeploymentEntity, error) {
	for _, d := range m.Created {
		if d.ID.String() == id {
			return d, nil
		}
	}
	return nil, nil
}

func (m *MockDeploymentRepository) GetDeploymentStatus(id string) (entities.DeploymentStatus, error) {
	if status, ok := m.StatusUpdates[id]; ok {
		return status, nil
	}
	return entities.DeploymentStatusUnknown, nil
}

func (m *MockDeploymentRepository) GetDeployments(projectName string, status entities.DeploymentStatus) ([]*entities.DeploymentEntity, error) {
	if m.GetDeploymentsFunc != nil {
		return m.GetDeploymentsFunc(projectName, status)
	}
	return m.Created, nil
}

func (m *MockDeploymentRepository) DeleteDeployment(id string) error {
	return nil
}

// MockCloudSession for testing
type MockCloudSession struct {
	ProvisionStorageFunc       func(ctx context.Context, bucketName string, corsOrigins []string) error
	UploadFilesFunc            func(ctx context.Context, bucketName string, files []entities.UploadedFile, entryPath string) error
	TeardownStorageFunc        func(ctx context.Context, bucketName string) error
	ProvisionDistributionFunc  func(ctx context.Context, bucketName string, comment string) (*entities.DistributionRef, error)
	AwaitDistributionReadyFunc func(ctx context.Context, distributionID string, maxAttempts int, interval time.Duration) error
	InvalidateFunc             func(ctx context.Context, distributionID string, paths []string) error
	TeardownDistributionFunc   func(ctx context.Context, distributionID string) error

	ProvisionedBuckets []string
	UploadedEntryPath  string
	UploadedFiles      []entities.UploadedFile
	InvalidatedPaths   []string
}

func (m *MockCloudSession) WebsiteEndpoint(bucketName string) string {
	return bucketName + ".s3-website-us-east-1.amazonaws.com"
}

func (m *MockCloudSession) ProvisionStorage(ctx context.Context, bucketName string, corsOrigins []string) error {
	m.ProvisionedBuckets = append(m.ProvisionedBuckets, bucketName)
	if m.ProvisionStorageFunc != nil {
		return m.ProvisionStorageFunc(ctx, bucketName, corsOrigins)
	}
	return nil
}

func (m *MockCloudSession) UploadFiles(ctx context.Context, bucketName string, files []entities.UploadedFile, entryPath string) error {
	m.UploadedFiles = files
	m.UploadedEntryPath = entryPath
	if m.UploadFilesFunc != nil {
		return m.UploadFilesFunc(ctx, bucketName, files, entryPath)
	}
	return nil
}

func (m *MockCloudSession) TeardownStorage(ctx context.Context, bucketName string) error {
	if m.TeardownStorageFunc != nil {
		return m.TeardownStorageFunc(ctx, bucketName)
	}
	return nil
}

func (m *MockCloudSession) ProvisionDistribution(ctx context.Context, bucketName string, comment string) (*entities.DistributionRef, error) {
	if m.ProvisionDistributionFunc != nil {
		return m.ProvisionDistributionFunc(ctx, bucketName, comment)
	}
	return &entities.DistributionRef{ID: "E123MOCK", DomainName: "d123mock.cloudfront.net"}, nil
}

func (m *MockCloudSession) AwaitDistributionReady(ctx context.Context, distributionID string, maxAttempts int, interval time.Duration) error {
	if m.AwaitDistributionReadyFunc != nil {
		return m.AwaitDistributionReadyFunc(ctx, distributionID, maxAttempts, interval)
	}
	return nil
}

func (m *MockCloudSession) InvalidateDistribution(ctx context.Context, distributionID string, paths []string) error {
	m.InvalidatedPaths = append(m.InvalidatedPaths, paths...)
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, distributionID, paths)
	}
	return nil
}

func (m *MockCloudSession) DistributionStatus(ctx context.Context, distributionID string) (*entities.DistributionInfo, error) {
	return &entities.DistributionInfo{ID: distributionID, Status: "Deployed", DomainName: "d123mock.cloudfront.net", Enabled: true}, nil
}

func (m *MockCloudSession) TeardownDistribution(ctx context.Context, distributionID string) error {
	if m.TeardownDistributionFunc != nil {
		return m.TeardownDistributionFunc(ctx, distributionID)
	}
	return nil
}

// MockIdentityExchanger for testing
type MockIdentityExchanger struct {
	AssumeRoleFunc func(ctx context.Context, roleArn string, externalID string, sessionName string, duration time.Duration) (*entities.Credential, error)
	Calls          []string
}

func (m *MockIdentityExchanger) AssumeRole(ctx context.Context, roleArn string, externalID string, sessionName string, duration time.Duration) (*entities.Credential, error) {
	m.Calls = append(m.Calls, sessionName)
	if m.AssumeRoleFunc != nil {
		return m.AssumeRoleFunc(ctx, roleArn, externalID, sessionName, duration)
	}
	return &entities.Credential{
		AccessKeyID:     "AKIAMOCK",
		SecretAccessKey: "secret",
		SessionToken:    "token",
		ExpiresAt:       time.Now().Add(duration),
	}, nil
}

// MockConnectionRepository for testing
type MockConnectionRepository struct {
	Saved         []*entities.ConnectionEntity
	StatusUpdates map[string]entities.ConnectionStatus
}

func NewMockConnectionRepository() *MockConnectionRepository {
	return &MockConnectionRepository{StatusUpdates: make(map[string]entities.ConnectionStatus)}
}

func (m *MockConnectionRepository) SaveConnection(conn *entities.ConnectionEntity) error {
	m.Saved = append(m.Saved, conn)
	return nil
}

func (m *MockConnectionRepository) GetConnectionByUserID(userID string) (*entities.ConnectionEntity, error) {
	for _, c := range m.Saved {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockConnectionRepository) UpdateConnectionStatus(id string, status entities.ConnectionStatus) error {
	m.StatusUpdates[id] = status
	return nil
}

// syncTaskManager runs tasks inline so tests observe async effects directly.
type syncTaskManager struct{}

func (syncTaskManager) AddTask(task entities.Task) { task() }
