package storage

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"project-portal/tools"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Local 保存到本地目录
type Local struct {
	Root string
}

func NewLocal(root string) *Local {
	return &Local{Root: root}
}

func (l *Local) path(key string) string {
	return filepath.Join(l.Root, filepath.FromSlash(key))
}

func (l *Local) Save(_ context.Context, fh *multipart.FileHeader) (*Object, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer src.Close()

	key := newKey("", fh.Filename, time.Now())
	dstPath := l.path(key)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return nil, errors.WithStack(err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dstPath)
		return nil, errors.WithStack(err)
	}

	return &Object{Key: key, Name: tools.CleanDisplayName(fh.Filename), Size: n}, nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := os.Remove(l.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	return nil
}

func (l *Local) Serve(c *gin.Context, key, displayName string) error {
	if err := tools.SendStoredFile(c, l.path(key), displayName, contentType(displayName)); err != nil {
		if os.IsNotExist(err) {
			return ErrNoFile
		}
		return errors.WithStack(err)
	}
	return nil
}
