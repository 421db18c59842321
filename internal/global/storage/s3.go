package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"project-portal/config"
	"project-portal/tools"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// downloadURLExpire 预签名下载链接有效期
const downloadURLExpire = 15 * time.Minute

// S3 保存到 S3 兼容的对象存储，下载时重定向到预签名地址
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
	bucket   string
	prefix   string
}

func NewS3(ctx context.Context, cfg config.S3) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("S3 bucket 未配置")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "加载 AWS 配置失败")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3{
		client:   client,
		uploader: manager.NewUploader(client),
		presign:  s3.NewPresignClient(client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
	}, nil
}

func (s *S3) Save(ctx context.Context, fh *multipart.FileHeader) (*Object, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer src.Close()

	name := tools.CleanDisplayName(fh.Filename)
	key := newKey(s.prefix, fh.Filename, time.Now())
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(contentType(name)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "上传到 S3 失败")
	}
	return &Object{Key: key, Name: name, Size: fh.Size}, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.WithStack(err)
}

func (s *S3) Serve(c *gin.Context, key, displayName string) error {
	escaped := url.QueryEscape(displayName)
	req, err := s.presign.PresignGetObject(c.Request.Context(), &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, escaped, escaped)),
	}, func(o *s3.PresignOptions) {
		o.Expires = downloadURLExpire
	})
	if err != nil {
		return errors.Wrap(err, "生成预签名下载 URL 失败")
	}
	c.Redirect(http.StatusFound, req.URL)
	return nil
}
