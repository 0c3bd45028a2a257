package storage

import (
	"context"
	"fmt"
	"io"

	"newsdesk/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Client erstellt einen S3-Client für den Medienspeicher.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.MediaS3URL,
				SigningRegion:     cfg.MediaS3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.MediaS3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.MediaS3Key, cfg.MediaS3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// PutImage lädt ein Bild unter dem gegebenen Schlüssel in den Medienspeicher
// hoch und gibt die öffentliche URL zurück. Der Schlüssel ist zugleich das
// opake Handle, das Clients als public_id zurückbekommen.
func PutImage(ctx context.Context, client *s3.Client, cfg *config.Config, key, contentType string, body io.Reader) (string, error) {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &cfg.MediaS3Bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", cfg.MediaS3URL, cfg.MediaS3Bucket, key), nil
}
