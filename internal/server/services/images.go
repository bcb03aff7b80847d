package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/server/config"
	"github.com/dmitrijs2005/onboarding/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/onboarding/internal/steps"
	"github.com/google/uuid"
)

const PresignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// UploadTicket tells the client where to PUT a profile image and which key
// to store in the career step afterwards.
type UploadTicket struct {
	Key       string
	URL       string
	ExpiresIn time.Duration
}

// ImageService hands out presigned S3 URLs for profile images.
type ImageService struct {
	repomanager repomanager.RepositoryManager
	config      *config.Config
	now         func() time.Time
}

func NewImageService(m repomanager.RepositoryManager, cfg *config.Config) *ImageService {
	return &ImageService{repomanager: m, config: cfg, now: time.Now}
}

func imageKeyPrefix(userID string) string {
	return steps.ImageKeyPrefix + userID + "/profile/"
}

// NewImageKey returns users/<userID>/profile/<yyyy>/<mm>/<dd>/<uuid>.
func NewImageKey(userID string, at time.Time) string {
	return fmt.Sprintf("%s%04d/%02d/%02d/%s", imageKeyPrefix(userID), at.Year(), at.Month(), at.Day(), uuid.New())
}

func (s *ImageService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignUpload issues a fresh key under the user's prefix and a PUT URL for it.
func (s *ImageService) PresignUpload(ctx context.Context, userID string) (*UploadTicket, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := NewImageKey(userID, s.now().UTC())

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	return &UploadTicket{Key: key, URL: req.URL, ExpiresIn: PresignExpiry}, nil
}

// PresignDownload returns a GET URL for the image key stored in the career
// step. Inline data URLs and missing images are common.ErrorNotFound.
func (s *ImageService) PresignDownload(ctx context.Context, userID string) (string, error) {
	entry, err := s.repomanager.Forms().Find(ctx, userID)
	if err != nil {
		return "", err
	}
	key, _ := entry.Step(steps.Career.Key())["profileImage"].(string)
	if !steps.IsObjectKey(key) {
		return "", common.ErrorNotFound
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("error creating presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("error presigning download: %w", err)
	}

	return req.URL, nil
}
