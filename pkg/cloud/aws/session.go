// Package aws drives the customer's AWS account for one orchestration run:
// bucket provisioning, uploads, CloudFront distributions and role assumption.
package aws

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
)

// Session bundles the service clients built from one short-lived credential.
// It is constructed per orchestration run and passed explicitly; there is no
// ambient client state.
type Session struct {
	region     string
	s3         *s3.Client
	cloudfront *cloudfront.Client

	// sleep is swapped out in tests of the polling loops.
	sleep func(time.Duration)
}

// NewSession builds the service clients for the given credential and region.
func NewSession(cred entities.Credential, region string) *Session {
	cfg := aws.Config{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cred.AccessKeyID,
			cred.SecretAccessKey,
			cred.SessionToken,
		),
	}

	return &Session{
		region:     region,
		s3:         s3.NewFromConfig(cfg),
		cloudfront: cloudfront.NewFromConfig(cfg),
		sleep:      time.Sleep,
	}
}

// WebsiteEndpoint returns the S3 website hostname for a bucket in this
// session's region. CloudFront fronts this endpoint, not the REST endpoint,
// so that index documents resolve.
func (s *Session) WebsiteEndpoint(bucket string) string {
	return bucket + ".s3-website-" + s.region + ".amazonaws.com"
}
