package services

import (
	"context"
	"sync"
	"time"

	"github.com/deployhub/deployhub-backend/internal/logger"
	"github.com/deployhub/deployhub-backend/internal/utils"
	awscloud "github.com/deployhub/deployhub-backend/pkg/cloud/aws"
	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type IdentityExchanger interface {
	AssumeRole(
		ctx context.Context,
		roleArn string,
		externalID string,
		sessionName string,
		duration time.Duration,
	) (*entities.Credential, error)
}

type ConnectionRepository interface {
	SaveConnection(conn *entities.ConnectionEntity) error
	GetConnectionByUserID(userID string) (*entities.ConnectionEntity, error)
	UpdateConnectionStatus(id string, status entities.ConnectionStatus) error
}

// brokerSession is the in-memory state for one connected account: the
// persisted connection plus the single live credential.
type brokerSession struct {
	connection *entities.ConnectionEntity
	credential *entities.Credential
}

// CredentialBroker owns the temporary-credential lifecycle: the verification
// and operational role-assumption exchanges, the expiry watch, and the
// explicit disconnect. Nothing outside the broker may mutate a credential.
type CredentialBroker struct {
	identity IdentityExchanger
	connRepo ConnectionRepository
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*brokerSession

	stop chan struct{}
	once sync.Once
}

func NewCredentialBroker(identity IdentityExchanger, connRepo ConnectionRepository) *CredentialBroker {
	return &CredentialBroker{
		identity: identity,
		connRepo: connRepo,
		now:      time.Now,
		sessions: make(map[string]*brokerSession),
		stop:     make(chan struct{}),
	}
}

// Connect establishes the trust relationship for a user. The role identifier
// is validated against the strict ARN shape before any network exchange; the
// verification exchange uses a short grant distinct from the hour-scale
// operational grant stored for provisioning work.
func (b *CredentialBroker) Connect(
	ctx context.Context,
	userID string,
	roleArn string,
	externalID string,
	expectedAccountID string,
) (*entities.ConnectionEntity, error) {
	if !utils.IsValidRoleArn(roleArn) {
		return nil, &entities.AuthError{
			Reason: entities.AuthReasonInvalidRole,
			Msg:    "role identifier is not a valid IAM role ARN",
			Hint:   "expected arn:aws:iam::<account-id>:role/<name>",
		}
	}

	accountID := utils.AccountIDFromRoleArn(roleArn)
	if expectedAccountID != "" && expectedAccountID != accountID {
		return nil, &entities.AuthError{
			Reason: entities.AuthReasonAccountMismatch,
			Msg:    "role ARN does not belong to the expected account",
			Hint:   "verify the account id entered matches the role's account",
		}
	}

	// Verification exchange: proves the trust policy works.
	_, err := b.identity.AssumeRole(ctx, roleArn, externalID, awscloud.VerificationSessionName, awscloud.VerificationDuration)
	if err != nil {
		return nil, err
	}

	// Operational exchange: the credential the provisioners will use.
	credential, err := b.identity.AssumeRole(ctx, roleArn, externalID, awscloud.OperationalSessionName, awscloud.OperationalDuration)
	if err != nil {
		return nil, err
	}

	connection := &entities.ConnectionEntity{
		ID:         uuid.New(),
		UserID:     userID,
		AccountID:  accountID,
		RoleArn:    roleArn,
		ExternalID: externalID,
		Status:     entities.ConnectionStatusConnected,
		VerifiedAt: b.now(),
	}
	if err := b.connRepo.SaveConnection(connection); err != nil {
		logger.Error("failed to persist connection",
			zap.String("userId", userID),
			zap.Error(err))
		return nil, err
	}

	b.mu.Lock()
	b.sessions[userID] = &brokerSession{connection: connection, credential: credential}
	b.mu.Unlock()

	logger.Info("AWS account connected",
		zap.String("userId", userID),
		zap.String("accountId", accountID))

	return connection, nil
}

// AssumeOperational performs a fresh operational exchange for an existing
// trust relationship and returns the credential to the caller.
func (b *CredentialBroker) AssumeOperational(
	ctx context.Context,
	userID string,
	roleArn string,
	externalID string,
	sessionName string,
) (*entities.Credential, error) {
	if !utils.IsValidRoleArn(roleArn) {
		return nil, &entities.AuthError{
			Reason: entities.AuthReasonInvalidRole,
			Msg:    "role identifier is not a valid IAM role ARN",
			Hint:   "expected arn:aws:iam::<account-id>:role/<name>",
		}
	}
	if sessionName == "" {
		sessionName = awscloud.OperationalSessionName
	}

	credential, err := b.identity.AssumeRole(ctx, roleArn, externalID, sessionName, awscloud.OperationalDuration)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if session, ok := b.sessions[userID]; ok {
		session.credential = credential
	}
	b.mu.Unlock()

	return credential, nil
}

// EnsureValid returns the live credential for the user while it has not
// expired. At or past the expiry instant the connection flips to
// disconnected, the credential is discarded, and the caller must reconnect.
func (b *CredentialBroker) EnsureValid(userID string) (*entities.Credential, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	session, ok := b.sessions[userID]
	if !ok || session.credential == nil {
		return nil, &entities.AuthError{
			Reason: entities.AuthReasonNotConnected,
			Msg:    "no AWS account connected",
			Hint:   "connect an AWS account before deploying",
		}
	}

	if session.credential.Expired(b.now()) {
		b.expireLocked(userID, session)
		return nil, &entities.AuthError{
			Reason: entities.AuthReasonExpired,
			Msg:    "temporary credentials expired",
			Hint:   "reconnect the AWS account to obtain fresh credentials",
		}
	}

	credential := *session.credential
	return &credential, nil
}

// Disconnect clears the user's credential and connection unconditionally.
// Idempotent: disconnecting twice leaves the same observable state.
func (b *CredentialBroker) Disconnect(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	session, ok := b.sessions[userID]
	if !ok {
		return
	}
	b.expireLocked(userID, session)
}

// StartExpiryWatch sweeps all sessions on the given interval and proactively
// expires credentials whose deadline has passed.
func (b *CredentialBroker) StartExpiryWatch(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-b.stop:
				return
			case <-ticker.C:
				b.sweep()
			}
		}
	}()
}

func (b *CredentialBroker) Stop() {
	b.once.Do(func() { close(b.stop) })
}

func (b *CredentialBroker) sweep() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for userID, session := range b.sessions {
		if session.credential != nil && session.credential.Expired(now) {
			logger.Info("credential expired", zap.String("userId", userID))
			b.expireLocked(userID, session)
		}
	}
}

// expireLocked drops the session and marks the persisted connection
// disconnected. Callers hold b.mu.
func (b *CredentialBroker) expireLocked(userID string, session *brokerSession) {
	delete(b.sessions, userID)
	if session.connection == nil {
		return
	}
	err := b.connRepo.UpdateConnectionStatus(session.connection.ID.String(), entities.ConnectionStatusDisconnected)
	if err != nil {
		logger.Error("failed to update connection status",
			zap.String("connectionId", session.connection.ID.String()),
			zap.Error(err))
	}
}
