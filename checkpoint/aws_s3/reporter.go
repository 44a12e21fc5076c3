package aws_s3

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/RiemaLabs/dividend-ledger/checkpoint"
)

func UploadCheckpointByS3(c *checkpoint.Checkpoint, accessKey, secretKey, region, bucket string, timeout time.Duration) error {
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create aws config")
	}

	awsS3Client := s3.NewFromConfig(cfg)
	uploader := manager.NewUploader(awsS3Client)

	objectKey := c.ObjectKey()
	checkpointJSON, err := json.Marshal(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(objectKey),
			Body:        bytes.NewReader(checkpointJSON),
			ContentType: aws.String("application/json"),
		})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.Wrapf(err, "upload %s", objectKey)
		}
		log.WithField("key", objectKey).Info("Checkpoint uploaded to S3")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
