package utils

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var photoClient *s3.Client
var photoBucket string
var cdnBaseURL string

// InitPhotoStorage connects the R2 bucket that holds submission evidence.
func InitPhotoStorage() error {
	accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("R2_ACCESS_KEY_SECRET")
	photoBucket = os.Getenv("R2_BUCKET_NAME")
	cdnBaseURL = os.Getenv("CDN_BASE_URL")
	if cdnBaseURL == "" {
		cdnBaseURL = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
		config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
				}, nil
			}),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to load photo storage config: %w", err)
	}

	photoClient = s3.NewFromConfig(cfg)
	return nil
}

// PhotoStorageReady reports whether InitPhotoStorage has run. The health
// endpoint uses this; uploads fail loudly either way.
func PhotoStorageReady() bool {
	return photoClient != nil
}

// UploadPhoto stores evidence bytes under category/year/month/filename and
// returns the public URL. Categories mirror the record types ("meetups",
// "sales") so evidence stays browsable by activity and period.
func UploadPhoto(ctx context.Context, data []byte, filename, category string, year, month int, contentType string) (string, error) {
	if photoClient == nil {
		return "", fmt.Errorf("photo storage not initialized")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := fmt.Sprintf("%s/%04d/%02d/%s", category, year, month, filename)

	_, err := photoClient.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(photoBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	return fmt.Sprintf("%s/%s", cdnBaseURL, key), nil
}
