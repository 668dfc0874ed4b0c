package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deployhub/deployhub-backend/internal/logger"
	"github.com/deployhub/deployhub-backend/internal/utils"
	"github.com/deployhub/deployhub-backend/pkg/archive"
	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
	"github.com/deployhub/deployhub-backend/pkg/inspector"
)

const (
	propagationAttempts = 40
	propagationInterval = 15 * time.Second
)

type DeploymentRepository interface {
	CreateDeployment(deployment *entities.DeploymentEntity) error
	UpdateStatus(id string, status entities.DeploymentStatus, reason string) error
	UpdateResult(id string, status entities.DeploymentStatus, bucketName string, distributionID string, websiteURL string, log []string, reason string) error
	GetDeploymentByID(id string) (*entities.DeploymentEntity, error)
	GetDeploymentStatus(id string) (entities.DeploymentStatus, error)
	GetDeployments(projectName string, status entities.DeploymentStatus) ([]*entities.DeploymentEntity, error)
	DeleteDeployment(id string) error
}

// CloudSession is the per-run view of the provider. A session is constructed
// from one set of credentials and one region and never outlives the run.
type CloudSession interface {
	WebsiteEndpoint(bucketName string) string
	ProvisionStorage(ctx context.Context, bucketName string, corsOrigins []string) error
	UploadFiles(ctx context.Context, bucketName string, files []entities.UploadedFile, entryPath string) error
	TeardownStorage(ctx context.Context, bucketName string) error
	ProvisionDistribution(ctx context.Context, bucketName string, comment string) (*entities.DistributionRef, error)
	AwaitDistributionReady(ctx context.Context, distributionID string, maxAttempts int, interval time.Duration) error
	InvalidateDistribution(ctx context.Context, distributionID string, paths []string) error
	DistributionStatus(ctx context.Context, distributionID string) (*entities.DistributionInfo, error)
	TeardownDistribution(ctx context.Context, distributionID string) error
}

type CloudSessionFactory func(cred entities.Credential, region string) CloudSession

type TaskManager interface {
	AddTask(task entities.Task)
}

type DeploymentService struct {
	repo        DeploymentRepository
	newSession  CloudSessionFactory
	taskManager TaskManager
	corsOrigins []string
	now         func() time.Time
}

func NewDeploymentService(repo DeploymentRepository, factory CloudSessionFactory, taskManager TaskManager, corsOrigins []string) *DeploymentService {
	return &DeploymentService{
		repo:        repo,
		newSession:  factory,
		taskManager: taskManager,
		corsOrigins: corsOrigins,
		now:         time.Now,
	}
}

type DeployResult struct {
	DeploymentID   uuid.UUID
	BucketName     string
	DistributionID string
	WebsiteURL     string
	Logs           []string
}

// Deploy runs the full pipeline for one upload: validation, extraction,
// classification, then storage and distribution provisioning. The deployment
// record is created up front in the deploying state and updated with the
// outcome before Deploy returns. Propagation is watched asynchronously.
func (s *DeploymentService) Deploy(ctx context.Context, projectName string, files []entities.UploadedFile, cred entities.Credential, region string) (*DeployResult, error) {
	run := newRunLog(s.now)

	record := &entities.DeploymentEntity{
		ID:          uuid.New(),
		ProjectName: projectName,
		Status:      entities.DeploymentStatusDeploying,
		Region:      region,
	}
	if err := s.repo.CreateDeployment(record); err != nil {
		return nil, fmt.Errorf("failed to create deployment record: %w", err)
	}

	result, err := s.deploy(ctx, record, projectName, files, cred, region, run)
	if err != nil {
		run.Transition(entities.RunStateFailed)
		if repoErr := s.repo.UpdateResult(record.ID.String(), entities.DeploymentStatusFailed, "", "", "", run.Lines(), err.Error()); repoErr != nil {
			logger.Error("failed to record deployment failure", zap.String("deploymentId", record.ID.String()), zap.Error(repoErr))
		}
		return &DeployResult{DeploymentID: record.ID, Logs: run.Lines()}, err
	}
	return result, nil
}

func (s *DeploymentService) deploy(ctx context.Context, record *entities.DeploymentEntity, projectName string, files []entities.UploadedFile, cred entities.Credential, region string, run *runLog) (*DeployResult, error) {
	run.Transition(entities.RunStateValidating)
	run.Append("validating upload for project %s", projectName)
	if len(files) == 0 {
		return nil, entities.NewValidationError("no files in upload")
	}
	if !cred.ExpiresAt.IsZero() && cred.Expired(s.now()) {
		return nil, &entities.AuthError{
			Reason: entities.AuthReasonExpired,
			Msg:    "credentials have expired",
			Hint:   "reconnect your aws account to obtain a fresh session",
		}
	}

	if len(files) == 1 && utils.IsZipArchive(files[0].Path) {
		run.Transition(entities.RunStateExtracting)
		run.Append("extracting archive %s (%d bytes)", files[0].Path, files[0].Size)
		extracted, err := archive.Extract(files[0].Content)
		if err != nil {
			return nil, err
		}
		run.Append("extracted %d files", len(extracted))
		files = extracted
	}

	run.Transition(entities.RunStateClassifying)
	classification, err := inspector.Classify(files)
	if err != nil {
		return nil, err
	}
	run.Append("classified as %s project, entry %s", classification.Kind, classification.EntryPath)

	run.Transition(entities.RunStateProvisioning)
	bucketName := utils.BucketName(projectName)
	run.Append("provisioning bucket %s in %s", bucketName, region)

	session := s.newSession(cred, region)
	if err := session.ProvisionStorage(ctx, bucketName, s.corsOrigins); err != nil {
		return nil, err
	}

	run.Append("uploading %d files", len(files))
	if err := session.UploadFiles(ctx, bucketName, files, classification.EntryPath); err != nil {
		return nil, err
	}

	run.Append("creating cloudfront distribution")
	ref, err := session.ProvisionDistribution(ctx, bucketName, fmt.Sprintf("deployhub distribution for %s", projectName))
	if err != nil {
		return nil, err
	}
	run.Append("distribution %s created, domain %s", ref.ID, ref.DomainName)

	websiteURL := "https://" + ref.DomainName

	run.Transition(entities.RunStateAwaitingPropagation)
	if err := s.repo.UpdateResult(record.ID.String(), entities.DeploymentStatusDeploying, bucketName, ref.ID, websiteURL, run.Lines(), ""); err != nil {
		logger.Error("failed to update deployment record", zap.String("deploymentId", record.ID.String()), zap.Error(err))
	}

	s.watchPropagation(record.ID.String(), session, ref.ID)

	run.Transition(entities.RunStateSucceeded)
	return &DeployResult{
		DeploymentID:   record.ID,
		BucketName:     bucketName,
		DistributionID: ref.ID,
		WebsiteURL:     websiteURL,
		Logs:           run.Lines(),
	}, nil
}

// watchPropagation waits for the distribution to finish propagating in the
// background and flips the record to deployed. The watcher uses its own
// context so a finished HTTP request does not cancel it. A propagation
// timeout is a warning only, the site still comes up when cloudfront
// finishes on its own.
func (s *DeploymentService) watchPropagation(deploymentID string, session CloudSession, distributionID string) {
	s.taskManager.AddTask(func() {
		ctx := context.Background()
		err := session.AwaitDistributionReady(ctx, distributionID, propagationAttempts, propagationInterval)
		if err != nil {
			if errors.Is(err, entities.ErrPropagationTimeout) {
				logger.Warn("distribution still propagating after poll budget",
					zap.String("deploymentId", deploymentID),
					zap.String("distributionId", distributionID))
			} else {
				logger.Error("distribution readiness poll failed",
					zap.String("deploymentId", deploymentID),
					zap.String("distributionId", distributionID),
					zap.Error(err))
			}
		}

		if err := s.repo.UpdateStatus(deploymentID, entities.DeploymentStatusDeployed, ""); err != nil {
			logger.Error("failed to mark deployment deployed", zap.String("deploymentId", deploymentID), zap.Error(err))
			return
		}

		if err := session.InvalidateDistribution(ctx, distributionID, []string{"/*"}); err != nil {
			logger.Warn("cache invalidation failed",
				zap.String("distributionId", distributionID),
				zap.Error(err))
		}
	})
}

// CheckStatus reports live distribution state from the provider.
func (s *DeploymentService) CheckStatus(ctx context.Context, distributionID string, cred entities.Credential, region string) (*entities.DistributionInfo, error) {
	session := s.newSession(cred, region)
	return session.DistributionStatus(ctx, distributionID)
}

// CleanupProject tears down a project's resources best-effort: every target
// is attempted and per-target failures are collected rather than aborting
// the sweep. Matching terminated records are updated afterwards.
func (s *DeploymentService) CleanupProject(ctx context.Context, projectName string, bucketName string, distributionID string, cred entities.Credential, region string) entities.CleanupResult {
	result := entities.CleanupResult{}
	session := s.newSession(cred, region)

	if distributionID != "" {
		if err := session.TeardownDistribution(ctx, distributionID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("distribution %s: %v", distributionID, err))
		} else {
			result.Deleted = append(result.Deleted, "distribution "+distributionID)
		}
	}

	if bucketName != "" {
		if err := session.TeardownStorage(ctx, bucketName); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("bucket %s: %v", bucketName, err))
		} else {
			result.Deleted = append(result.Deleted, "bucket "+bucketName)
		}
	}

	deployments, err := s.repo.GetDeployments(projectName, "")
	if err != nil {
		logger.Error("failed to load deployments for cleanup", zap.String("projectName", projectName), zap.Error(err))
		return result
	}
	for _, d := range deployments {
		if bucketName != "" && d.BucketName != bucketName {
			continue
		}
		if err := s.repo.UpdateStatus(d.ID.String(), entities.DeploymentStatusTerminated, ""); err != nil {
			logger.Error("failed to mark deployment terminated", zap.String("deploymentId", d.ID.String()), zap.Error(err))
		}
	}
	return result
}

func (s *DeploymentService) GetDeployments(projectName string, status entities.DeploymentStatus) ([]*entities.DeploymentEntity, error) {
	return s.repo.GetDeployments(projectName, status)
}

func (s *DeploymentService) GetDeploymentByID(id uuid.UUID) (*entities.DeploymentEntity, error) {
	return s.repo.GetDeploymentByID(id.String())
}

func (s *DeploymentService) GetDeploymentStatus(id uuid.UUID) (entities.DeploymentStatus, error) {
	return s.repo.GetDeploymentStatus(id.String())
}

func (s *DeploymentService) DeleteDeployment(id uuid.UUID) error {
	return s.repo.DeleteDeployment(id.String())
}
