package filestore

import (
	"io"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// S3FileStore uploads media to a public-read S3 bucket and references it
// through urlPrefix (typically a CDN distribution in front of the bucket).
type S3FileStore struct {
	bucket    string
	urlPrefix string
	uploader  *s3manager.Uploader
}

func NewS3FileStore(region, bucket, urlPrefix string) (*S3FileStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, errors.Wrap(err, "fail to create AWS session for region "+region)
	}
	return &S3FileStore{
		bucket:    bucket,
		urlPrefix: urlPrefix,
		uploader:  s3manager.NewUploader(sess),
	}, nil
}

// Store uploads under a random key, keeping the original extension so content
// type sniffing downstream still works. Uploads never collide and existing
// references stay stable.
func (s *S3FileStore) Store(r io.Reader, fileName string) (string, error) {
	key := uuid.New().String() + filepath.Ext(fileName)
	_, err := s.uploader.Upload(&s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return "", errors.Wrap(err, "fail to upload "+key+" to bucket "+s.bucket)
	}
	return s.urlPrefix + key, nil
}
