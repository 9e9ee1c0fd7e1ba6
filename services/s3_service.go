package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

const defaultURLValidity = 60 * time.Minute

// S3Service signs read URLs for photos and removes photo objects
type S3Service struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
	Bucket    string
	Validity  time.Duration
	Logger    *zap.Logger
}

var _ URLSigner = (*S3Service)(nil)

// NewS3Service creates an S3Service for one bucket
func NewS3Service(cfg aws.Config, bucket string, validity time.Duration, logger *zap.Logger) *S3Service {
	if validity <= 0 {
		validity = defaultURLValidity
	}
	client := s3.NewFromConfig(cfg)
	return &S3Service{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
		Validity:  validity,
		Logger:    logger,
	}
}

// Sign generates a presigned GET URL for key
func (s *S3Service) Sign(ctx context.Context, key string) (string, time.Duration, error) {
	if key == "" {
		return "", 0, errors.New("empty storage key")
	}
	params := &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}
	presigned, err := s.Presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(s.Validity))
	if err != nil {
		return "", 0, fmt.Errorf("failed to presign read url: %w", err)
	}
	return presigned.URL, s.Validity, nil
}

// DeleteObjects removes every key, logging and skipping failures
func (s *S3Service) DeleteObjects(ctx context.Context, keys ...string) {
	for _, key := range keys {
		_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			s.Logger.Warn("⚠️ Failed to delete photo object", zap.String("key", key), zap.Error(err))
		}
	}
}
