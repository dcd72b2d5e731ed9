package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/seqsubmit/internal/common"
	"github.com/dmitrijs2005/seqsubmit/internal/server/auth"
	sc "github.com/dmitrijs2005/seqsubmit/internal/server/config"
	"github.com/google/uuid"
)

// presignExpiry bounds how long an upload URL stays usable.
const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in, optFns...)
	}
)

// UploadService hands out presigned upload URLs for submission archives and
// streams the uploaded objects back for ingest.
type UploadService struct {
	config *sc.Config
}

func NewUploadService(config *sc.Config) *UploadService {
	return &UploadService{config: config}
}

// GetRandomStorageKey returns a fresh object key scoped to userID.
func GetRandomStorageKey(userID string) string {
	d := time.Now()
	return fmt.Sprintf("%s%d/%d/%d/%v", StorageKeyPrefix(userID), d.Year(), d.Month(), d.Day(), uuid.New())
}

// StorageKeyPrefix is the key prefix every object owned by userID starts with.
func StorageKeyPrefix(userID string) string {
	return "uploads/" + userID + "/"
}

// ownsStorageKey reports whether key lies in userID's own upload area. The
// owner is compared as a whole path segment.
func ownsStorageKey(userID, key string) bool {
	if !auth.ValidUserID(userID) {
		return false
	}
	parts := strings.Split(key, "/")
	return len(parts) > 2 && parts[0] == "uploads" && parts[1] == userID && parts[len(parts)-1] != ""
}

func (s *UploadService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// PresignUpload returns a new storage key and a presigned PUT URL for it.
func (s *UploadService) PresignUpload(ctx context.Context, userID string) (string, string, error) {
	if !auth.ValidUserID(userID) {
		return "", "", common.ErrInvalidUserID
	}
	client, err := s.getClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey(userID)

	req, err := presignPutObject(newS3PresignClient(client), ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// OpenObject streams the object stored under key. A missing object yields
// common.ErrorNotFound. The caller closes the returned reader.
func (s *UploadService) OpenObject(ctx context.Context, key string) (io.ReadCloser, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	out, err := getObject(client, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("object %q: %w", key, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}
	return out.Body, nil
}
