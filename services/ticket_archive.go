package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/kendall-kelly/canteen-meals-api/config"
)

// TicketArchive stores a copy of every printed ticket
type TicketArchive interface {
	// Archive stores the ticket and returns its storage key
	Archive(ctx context.Context, ticket Ticket) (string, error)

	// GetPresignedURL returns a temporary download URL for an archived ticket
	GetPresignedURL(ctx context.Context, key string) (string, error)
}

// S3TicketArchive archives tickets as JSON objects in an S3 bucket
type S3TicketArchive struct {
	client *s3.Client
	bucket string
}

// NewS3TicketArchive creates an S3 backed archive from the application config
func NewS3TicketArchive(ctx context.Context, cfg *appConfig.Config) (*S3TicketArchive, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3TicketArchive{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.AWSS3Bucket,
	}, nil
}

// TicketKey is the object key a ticket is archived under
func TicketKey(t Ticket) string {
	return fmt.Sprintf("tickets/%s/%s.json", t.Timestamp.Format("2006-01-02"), t.OrderReference)
}

// Archive uploads the ticket as JSON
func (a *S3TicketArchive) Archive(ctx context.Context, ticket Ticket) (string, error) {
	body, err := json.Marshal(ticket)
	if err != nil {
		return "", fmt.Errorf("failed to encode ticket: %w", err)
	}

	key := TicketKey(ticket)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload ticket to S3: %w", err)
	}
	return key, nil
}

// GetPresignedURL generates a presigned URL valid for 15 minutes
func (a *S3TicketArchive) GetPresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	presignClient := s3.NewPresignClient(a.client)
	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = 15 * time.Minute
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	log.Printf("Generated presigned URL for ticket %s", key)
	return request.URL, nil
}
