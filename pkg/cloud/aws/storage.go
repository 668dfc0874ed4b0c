package aws

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/deployhub/deployhub-backend/internal/logger"
	"github.com/deployhub/deployhub-backend/internal/utils"
	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
	"go.uber.org/zap"
)

// deleteBatchSize is the S3 limit on objects per DeleteObjects call.
const deleteBatchSize = 1000

// ProvisionStorage creates the bucket and walks it through the configuration
// steps required for public static hosting. Each step's failure aborts the
// provision and surfaces the provider error tagged with the step name. All
// steps must complete before any object is uploaded: the public policy has to
// exist first or object-level ACL errors are possible depending on account
// settings.
func (s *Session) ProvisionStorage(ctx context.Context, bucket string, corsOrigins []string) error {
	createInput := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 rejects an explicit location constraint.
	if s.region != "us-east-1" {
		createInput.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(s.region),
		}
	}
	if _, err := s.s3.CreateBucket(ctx, createInput); err != nil {
		return &entities.ProviderError{Step: "create bucket", Err: err}
	}

	_, err := s.s3.PutBucketWebsite(ctx, &s3.PutBucketWebsiteInput{
		Bucket: aws.String(bucket),
		WebsiteConfiguration: &s3types.WebsiteConfiguration{
			IndexDocument: &s3types.IndexDocument{Suffix: aws.String(entities.IndexDocument)},
			ErrorDocument: &s3types.ErrorDocument{Key: aws.String(entities.ErrorDocument)},
		},
	})
	if err != nil {
		return &entities.ProviderError{Step: "configure website hosting", Err: err}
	}

	_, err = s.s3.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(bucket),
		PublicAccessBlockConfiguration: &s3types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(false),
			IgnorePublicAcls:      aws.Bool(false),
			BlockPublicPolicy:     aws.Bool(false),
			RestrictPublicBuckets: aws.Bool(false),
		},
	})
	if err != nil {
		return &entities.ProviderError{Step: "disable public access block", Err: err}
	}

	_, err = s.s3.PutBucketCors(ctx, &s3.PutBucketCorsInput{
		Bucket: aws.String(bucket),
		CORSConfiguration: &s3types.CORSConfiguration{
			CORSRules: []s3types.CORSRule{
				{
					AllowedMethods: []string{"GET", "HEAD"},
					AllowedOrigins: corsOrigins,
					AllowedHeaders: []string{"*"},
					MaxAgeSeconds:  aws.Int32(3000),
				},
			},
		},
	})
	if err != nil {
		return &entities.ProviderError{Step: "attach cors rules", Err: err}
	}

	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Sid": "PublicReadGetObject",
				"Effect": "Allow",
				"Principal": "*",
				"Action": "s3:GetObject",
				"Resource": "arn:aws:s3:::%s/*"
			}
		]
	}`, bucket)
	_, err = s.s3.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(bucket),
		Policy: aws.String(policy),
	})
	if err != nil {
		return &entities.ProviderError{Step: "attach public read policy", Err: err}
	}

	return nil
}

// UploadFiles writes the classified file set into the bucket. The entry
// document is written at the canonical index path regardless of its original
// name. Uploads run concurrently; completion of all of them is the barrier
// before distribution provisioning.
func (s *Session) UploadFiles(
	ctx context.Context,
	bucket string,
	files []entities.UploadedFile,
	entryPath string,
) error {
	var wg sync.WaitGroup
	errChan := make(chan error, len(files))

	for _, file := range files {
		wg.Add(1)
		go func(f entities.UploadedFile) {
			defer wg.Done()

			key := objectKey(f.Path, entryPath)

			contentType := f.ContentType
			if contentType == "" || contentType == "application/octet-stream" {
				contentType = utils.ContentTypeForName(f.Path)
			}

			_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
				Bucket:             aws.String(bucket),
				Key:                aws.String(key),
				Body:               bytes.NewReader(f.Content),
				ContentType:        aws.String(contentType),
				CacheControl:       aws.String(utils.CacheControlForName(key)),
				ContentDisposition: aws.String("inline"),
			})
			if err != nil {
				errChan <- fmt.Errorf("upload %s: %w", f.Path, err)
				return
			}
			logger.Debug("uploaded object",
				zap.String("bucket", bucket),
				zap.String("key", key),
				zap.String("contentType", contentType))
		}(file)
	}

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return &entities.ProviderError{Step: "upload files", Err: err}
	}
	return nil
}

// objectKey returns the key a file is published under. The entry document is
// written at the canonical index path; everything else keeps its own path.
func objectKey(path string, entryPath string) string {
	if entryPath != "" && path == entryPath {
		return entities.IndexDocument
	}
	return path
}

// TeardownStorage empties and removes the bucket. Deletions are batched for
// buckets with many objects.
func (s *Session) TeardownStorage(ctx context.Context, bucket string) error {
	paginator := s3.NewListObjectsV2Paginator(s.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})

	var objects []s3types.ObjectIdentifier
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return &entities.ProviderError{Step: "list objects", Err: err}
		}
		for _, obj := range page.Contents {
			objects = append(objects, s3types.ObjectIdentifier{Key: obj.Key})
		}
	}

	for start := 0; start < len(objects); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(objects) {
			end = len(objects)
		}
		_, err := s.s3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &s3types.Delete{
				Objects: objects[start:end],
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return &entities.ProviderError{Step: "delete objects", Err: err}
		}
	}

	if _, err := s.s3.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return &entities.ProviderError{Step: "delete bucket", Err: err}
	}

	logger.Info("bucket removed", zap.String("bucket", bucket), zap.Int("objects", len(objects)))
	return nil
}
