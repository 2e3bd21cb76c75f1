// Package oss uploads run artifacts to Alibaba Cloud OSS.
package oss

import (
	"context"
	"fmt"
	"path"

	"clipforge/log"
	apperrors "clipforge/pkg/errors"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"go.uber.org/zap"
)

type Client struct {
	client *oss.Client
	bucket string
	prefix string
}

func NewClient(region, accessKeyId, accessKeySecret, bucket, prefix string) *Client {
	cfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyId, accessKeySecret)).
		WithRegion(region)

	return &Client{
		client: oss.NewClient(cfg),
		bucket: bucket,
		prefix: prefix,
	}
}

// UploadFile puts localPath under <prefix>/<taskId>/<name> and returns the
// object key.
func (c *Client) UploadFile(ctx context.Context, taskId, name, localPath string) (string, error) {
	key := path.Join(c.prefix, taskId, name)

	_, err := c.client.PutObjectFromFile(ctx, &oss.PutObjectRequest{
		Bucket: oss.Ptr(c.bucket),
		Key:    oss.Ptr(key),
	}, localPath)
	if err != nil {
		log.GetLogger().Error("oss upload failed",
			zap.String("bucket", c.bucket),
			zap.String("key", key),
			zap.Error(err))
		return "", apperrors.WrapWithDetail(apperrors.CodeUploadFailed, "Object storage upload failed", key, err)
	}

	log.GetLogger().Info("oss upload done", zap.String("key", key))
	return fmt.Sprintf("oss://%s/%s", c.bucket, key), nil
}
