package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/deployhub/deployhub-backend/internal/logger"
	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const distributionReadyStatus = "Deployed"

// ProvisionDistribution creates a CDN distribution whose single origin is the
// bucket's website endpoint. Viewers are redirected to HTTPS and responses
// are compressed.
func (s *Session) ProvisionDistribution(ctx context.Context, bucket, comment string) (*entities.DistributionRef, error) {
	originID := bucket + "-origin"

	config := &cftypes.DistributionConfig{
		CallerReference:   aws.String(uuid.New().String()),
		Comment:           aws.String(comment),
		DefaultRootObject: aws.String(entities.IndexDocument),
		Enabled:           aws.Bool(true),
		PriceClass:        cftypes.PriceClassPriceClass100,
		Origins: &cftypes.Origins{
			Quantity: aws.Int32(1),
			Items: []cftypes.Origin{
				{
					Id:         aws.String(originID),
					DomainName: aws.String(s.WebsiteEndpoint(bucket)),
					// The website endpoint only speaks plain HTTP; TLS
					// terminates at the edge.
					CustomOriginConfig: &cftypes.CustomOriginConfig{
						HTTPPort:             aws.Int32(80),
						HTTPSPort:            aws.Int32(443),
						OriginProtocolPolicy: cftypes.OriginProtocolPolicyHttpOnly,
						OriginSslProtocols: &cftypes.OriginSslProtocols{
							Quantity: aws.Int32(1),
							Items:    []cftypes.SslProtocol{cftypes.SslProtocolTLSv12},
						},
					},
				},
			},
		},
		DefaultCacheBehavior: &cftypes.DefaultCacheBehavior{
			TargetOriginId:       aws.String(originID),
			ViewerProtocolPolicy: cftypes.ViewerProtocolPolicyRedirectToHttps,
			Compress:             aws.Bool(true),
			MinTTL:               aws.Int64(0),
			DefaultTTL:           aws.Int64(86400),
			MaxTTL:               aws.Int64(31536000),
			ForwardedValues: &cftypes.ForwardedValues{
				QueryString: aws.Bool(false),
				Cookies:     &cftypes.CookiePreference{Forward: cftypes.ItemSelectionNone},
			},
			TrustedSigners: &cftypes.TrustedSigners{
				Enabled:  aws.Bool(false),
				Quantity: aws.Int32(0),
			},
		},
	}

	out, err := s.cloudfront.CreateDistribution(ctx, &cloudfront.CreateDistributionInput{
		DistributionConfig: config,
	})
	if err != nil {
		return nil, &entities.ProviderError{Step: "create distribution", Err: err}
	}

	return &entities.DistributionRef{
		ID:         aws.ToString(out.Distribution.Id),
		DomainName: aws.ToString(out.Distribution.DomainName),
	}, nil
}

// AwaitDistributionReady polls the distribution status until it reports
// deployed, up to maxAttempts spaced by interval. Running out of attempts
// returns entities.ErrPropagationTimeout, which callers treat as a warning:
// the distribution keeps propagating after we stop watching.
func (s *Session) AwaitDistributionReady(ctx context.Context, id string, maxAttempts int, interval time.Duration) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		info, err := s.DistributionStatus(ctx, id)
		if err != nil {
			return err
		}
		if info.Status == distributionReadyStatus {
			return nil
		}
		logger.Debug("distribution not ready yet",
			zap.String("distributionId", id),
			zap.String("status", info.Status),
			zap.Int("attempt", attempt))
		if attempt < maxAttempts {
			s.sleep(interval)
		}
	}
	return entities.ErrPropagationTimeout
}

// InvalidateDistribution issues a cache invalidation for the given paths.
func (s *Session) InvalidateDistribution(ctx context.Context, id string, paths []string) error {
	items := make([]string, len(paths))
	copy(items, paths)

	_, err := s.cloudfront.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(id),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(uuid.New().String()),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(int32(len(items))),
				Items:    items,
			},
		},
	})
	if err != nil {
		return &entities.ProviderError{Step: "invalidate cache", Err: err}
	}
	return nil
}

// DistributionStatus reads the distribution's current state.
func (s *Session) DistributionStatus(ctx context.Context, id string) (*entities.DistributionInfo, error) {
	out, err := s.cloudfront.GetDistribution(ctx, &cloudfront.GetDistributionInput{
		Id: aws.String(id),
	})
	if err != nil {
		return nil, &entities.ProviderError{Step: "get distribution", Err: err}
	}
	return &entities.DistributionInfo{
		ID:         id,
		Status:     aws.ToString(out.Distribution.Status),
		DomainName: aws.ToString(out.Distribution.DomainName),
		Enabled:    aws.ToBool(out.Distribution.DistributionConfig.Enabled),
	}, nil
}

// TeardownDistribution disables the distribution, waits for the disable to
// finish deploying, then deletes it. CloudFront refuses to delete an enabled
// distribution, so the sequence is mandatory.
func (s *Session) TeardownDistribution(ctx context.Context, id string) error {
	confOut, err := s.cloudfront.GetDistributionConfig(ctx, &cloudfront.GetDistributionConfigInput{
		Id: aws.String(id),
	})
	if err != nil {
		return &entities.ProviderError{Step: "get distribution config", Err: err}
	}

	etag := confOut.ETag
	if aws.ToBool(confOut.DistributionConfig.Enabled) {
		confOut.DistributionConfig.Enabled = aws.Bool(false)
		updateOut, err := s.cloudfront.UpdateDistribution(ctx, &cloudfront.UpdateDistributionInput{
			Id:                 aws.String(id),
			IfMatch:            etag,
			DistributionConfig: confOut.DistributionConfig,
		})
		if err != nil {
			return &entities.ProviderError{Step: "disable distribution", Err: err}
		}
		etag = updateOut.ETag

		if err := s.awaitDisabled(ctx, id); err != nil {
			return err
		}

		// The deploy of the disable bumps the config ETag; delete needs the
		// current one.
		refreshed, err := s.cloudfront.GetDistributionConfig(ctx, &cloudfront.GetDistributionConfigInput{
			Id: aws.String(id),
		})
		if err != nil {
			return &entities.ProviderError{Step: "get distribution config", Err: err}
		}
		etag = refreshed.ETag
	}

	_, err = s.cloudfront.DeleteDistribution(ctx, &cloudfront.DeleteDistributionInput{
		Id:      aws.String(id),
		IfMatch: etag,
	})
	if err != nil {
		return &entities.ProviderError{Step: "delete distribution", Err: err}
	}

	logger.Info("distribution removed", zap.String("distributionId", id))
	return nil
}

// awaitDisabled waits for the disable update to finish propagating. Disabling
// takes minutes; the attempt budget is sized accordingly.
func (s *Session) awaitDisabled(ctx context.Context, id string) error {
	const maxAttempts = 60
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		info, err := s.DistributionStatus(ctx, id)
		if err != nil {
			return err
		}
		if !info.Enabled && info.Status == distributionReadyStatus {
			return nil
		}
		if attempt < maxAttempts {
			s.sleep(30 * time.Second)
		}
	}
	return &entities.ProviderError{
		Step: "disable distribution",
		Err:  fmt.Errorf("distribution %s still not disabled after polling", id),
	}
}
