// internal/services/storage_service.go
package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/javajoker/ipregistry-backend/internal/config"
)

// StorageService is the content-addressed storage collaborator. It pins a
// blob and hands back an opaque reference plus the content hash; the ledger
// never parses either.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

type PinResult struct {
	Ref         string `json:"ref"`
	ContentHash string `json:"content_hash"`
	Size        int64  `json:"size"`
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// No credentials: hashing still works, pinning is refused.
		return &StorageService{config: config}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// PinFile uploads a blob keyed by its sha256, so identical content always
// maps to the same reference.
func (s *StorageService) PinFile(file multipart.File, header *multipart.FileHeader) (*PinResult, error) {
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	sum := sha256.Sum256(fileBytes)
	contentHash := "0x" + hex.EncodeToString(sum[:])
	key := "content/" + hex.EncodeToString(sum[:])

	if s.s3Client == nil {
		return nil, fmt.Errorf("storage backend not configured")
	}

	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.AWS.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(fileBytes),
		ContentType: aws.String(header.Header.Get("Content-Type")),
	}
	if _, err := s.s3Client.PutObject(params); err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &PinResult{
		Ref:         fmt.Sprintf("s3://%s/%s", s.config.AWS.S3Bucket, key),
		ContentHash: contentHash,
		Size:        header.Size,
	}, nil
}

// HashContent computes the content hash for a blob without pinning it.
func (s *StorageService) HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return "0x" + hex.EncodeToString(sum[:])
}
