package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// AvatarStorage saves profile pictures to S3 when configured and to a local
// directory served under /uploads otherwise.
type AvatarStorage struct {
	uploader *s3manager.Uploader
	bucket   string
	region   string

	localDir string
	baseURL  string
	now      func() time.Time
}

func NewS3AvatarStorage(region, accessKey, secretKey, bucket string) (*AvatarStorage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return &AvatarStorage{
		uploader: s3manager.NewUploader(sess),
		bucket:   bucket,
		region:   region,
		now:      time.Now,
	}, nil
}

func NewLocalAvatarStorage(dir, baseURL string) (*AvatarStorage, error) {
	if err := os.MkdirAll(filepath.Join(dir, "avatars"), 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &AvatarStorage{
		localDir: dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
	}, nil
}

func (s *AvatarStorage) UsingS3() bool { return s.uploader != nil }

// Save stores body under avatars/<userID>-<nanos><ext> and returns its public URL.
func (s *AvatarStorage) Save(ctx context.Context, userID, filename string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	key := path.Join("avatars", fmt.Sprintf("%s-%d%s", userID, s.now().UnixNano(), strings.ToLower(filepath.Ext(filename))))

	if s.UsingS3() {
		_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(http.DetectContentType(data)),
		})
		if err != nil {
			return "", fmt.Errorf("upload to s3: %w", err)
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
	}

	if err := os.WriteFile(filepath.Join(s.localDir, filepath.FromSlash(key)), data, 0o644); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return s.baseURL + "/uploads/" + key, nil
}
