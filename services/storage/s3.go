package storagesvc

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/visado/backend/core"
)

// s3Service issues presigned PUT/GET URLs so document bytes never transit
// through the API.
type s3Service struct {
	bucket    string
	ttl       time.Duration
	client    *s3.Client
	presigner *s3.PresignClient
}

var _ core.FileStorage = (*s3Service)(nil)

func NewS3Service(ctx context.Context, conf *core.Config) (core.FileStorage, error) {
	awsConf, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(conf.Storage.Region))
	if err != nil {
		return nil, errors.Wrap(err, "loading aws config")
	}

	client := s3.NewFromConfig(awsConf)
	return &s3Service{
		bucket:    conf.Storage.Bucket,
		ttl:       conf.Storage.SignedURLTTL,
		client:    client,
		presigner: s3.NewPresignClient(client),
	}, nil
}

func (svc *s3Service) PresignUpload(ctx context.Context, key, contentType string) (core.PresignedURL, error) {
	req, err := svc.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(svc.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(svc.ttl))
	if err != nil {
		return core.PresignedURL{}, errors.Wrap(err, "presigning upload")
	}
	return core.PresignedURL{
		URL:       req.URL,
		Method:    req.Method,
		ExpiresAt: time.Now().UTC().Add(svc.ttl),
	}, nil
}

func (svc *s3Service) PresignDownload(ctx context.Context, key string) (core.PresignedURL, error) {
	req, err := svc.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(svc.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(svc.ttl))
	if err != nil {
		return core.PresignedURL{}, errors.Wrap(err, "presigning download")
	}
	return core.PresignedURL{
		URL:       req.URL,
		Method:    req.Method,
		ExpiresAt: time.Now().UTC().Add(svc.ttl),
	}, nil
}

func (svc *s3Service) Delete(ctx context.Context, key string) error {
	_, err := svc.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(svc.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrap(err, "deleting object")
}
