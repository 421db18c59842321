// Package storage 保存项目附件，支持本地目录和 S3 兼容对象存储
package storage

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"path"
	"slices"
	"strings"
	"time"

	"project-portal/config"
	"project-portal/tools"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// AllowedExtensions 允许上传的附件类型
var AllowedExtensions = []string{"pdf", "doc", "docx", "zip", "rar", "7z"}

var (
	ErrExtension = errors.New("file extension not allowed")
	ErrTooLarge  = errors.New("file too large")
	ErrNoFile    = errors.New("file not found")
)

// Object 已保存的文件
type Object struct {
	Key  string // 存储中的 key，写入 project.file_key
	Name string // 原始文件名，下载时使用
	Size int64
}

type Storage interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (*Object, error)
	Delete(ctx context.Context, key string) error
	// Serve 把文件写给客户端，或重定向到可下载的地址
	Serve(c *gin.Context, key, displayName string) error
}

// Default 全局存储，由 Init 按配置创建
var Default Storage

func Init() {
	s, err := New(context.Background(), config.Get().Storage)
	tools.PanicOnErr(err)
	Default = s
}

func New(ctx context.Context, cfg config.Storage) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.Root), nil
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("未知的存储驱动: %s", cfg.Driver)
	}
}

// Validate 检查扩展名和大小，maxBytes <= 0 表示不限制
func Validate(fh *multipart.FileHeader, maxBytes int64) error {
	if !slices.Contains(AllowedExtensions, tools.FileExt(fh.Filename)) {
		return ErrExtension
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return ErrTooLarge
	}
	return nil
}

// MaxBytes 配置中的上传上限
func MaxBytes() int64 {
	return config.Get().Storage.MaxUploadMB << 20
}

// newKey 按日期分目录，文件名用 uuid，与原始文件名无关
func newKey(prefix, filename string, now time.Time) string {
	name := uuid.NewString() + "." + tools.FileExt(filename)
	key := path.Join(strings.Trim(prefix, "/"), "projects", now.Format("2006/01/02"), name)
	return strings.TrimLeft(key, "/")
}

func contentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return tools.OctetContentType
}
