package minio

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gfdmit/blogicum/config"
)

type minioStore struct {
	cli    *minio.Client
	bucket string
}

func New(conf config.MinIO) (*minioStore, error) {
	client, err := minio.New(fmt.Sprintf("%s:%s", conf.Host, conf.Port), &minio.Options{
		Creds:  credentials.NewStaticV4(conf.User, conf.Pass, ""),
		Secure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("minio.New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil || !exists {
		err = client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("minio.MakeBucket: %v", err)
		}
	}

	return &minioStore{
		cli:    client,
		bucket: conf.Bucket,
	}, nil
}

// PutImage stores the uploaded file under a fresh uuid name and
// returns a presigned URL suitable for persisting on the post row.
func (ms minioStore) PutImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(header.Filename)
	objectName := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	_, err := ms.cli.PutObject(
		ctx,
		ms.bucket,
		objectName,
		file,
		header.Size,
		minio.PutObjectOptions{ContentType: header.Header.Get("Content-Type")},
	)
	if err != nil {
		return "", err
	}

	url, err := ms.cli.PresignedGetObject(ctx, ms.bucket, objectName, 7*24*time.Hour, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}
