package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
)

// Session names and grant durations for the two distinct role-assumption
// exchanges. The verification exchange proves the trust relationship works
// and is deliberately short; the operational grant backs a whole deployment.
const (
	VerificationSessionName = "DeployHubConnectionTest"
	OperationalSessionName  = "DeployHubSession"

	VerificationDuration = 15 * time.Minute
	OperationalDuration  = time.Hour
)

// IdentityBroker performs role-assumption exchanges using the service's own
// AWS identity.
type IdentityBroker struct {
	sts *sts.Client
}

// NewIdentityBroker builds the broker from the ambient environment
// configuration (the dashboard's own credentials, not a customer's).
func NewIdentityBroker(ctx context.Context, region string) (*IdentityBroker, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &IdentityBroker{sts: sts.NewFromConfig(cfg)}, nil
}

// AssumeRole exchanges the role and external id for a short-lived credential.
func (b *IdentityBroker) AssumeRole(
	ctx context.Context,
	roleArn string,
	externalID string,
	sessionName string,
	duration time.Duration,
) (*entities.Credential, error) {
	input := &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleArn),
		RoleSessionName: aws.String(sessionName),
		DurationSeconds: aws.Int32(int32(duration.Seconds())),
	}
	if externalID != "" {
		input.ExternalId = aws.String(externalID)
	}

	out, err := b.sts.AssumeRole(ctx, input)
	if err != nil {
		return nil, &entities.AuthError{
			Reason: entities.AuthReasonTrustDenied,
			Msg:    "role assumption rejected by the identity provider",
			Hint:   "check your role trust policy and external id",
			Err:    err,
		}
	}

	creds := out.Credentials
	return &entities.Credential{
		AccessKeyID:     aws.ToString(creds.AccessKeyId),
		SecretAccessKey: aws.ToString(creds.SecretAccessKey),
		SessionToken:    aws.ToString(creds.SessionToken),
		ExpiresAt:       aws.ToTime(creds.Expiration),
	}, nil
}
