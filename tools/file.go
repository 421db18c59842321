package tools

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ExcelContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	OctetContentType  = "application/octet-stream"
	maxDisplayNameLen = 200
)

func FileExist(path string) bool {
	_, err := os.Stat(path)
	if err == nil {
		return true // 文件存在
	}
	// 其他错误，如权限问题等，也视为不存在
	return false
}

// FileExt 返回小写且不带点的扩展名
func FileExt(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// CleanDisplayName 去掉路径部分，防止下载文件名里带目录
func CleanDisplayName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	if r := []rune(name); len(r) > maxDisplayNameLen {
		name = string(r[len(r)-maxDisplayNameLen:])
	}
	return name
}

func setAttachmentHeader(c *gin.Context, displayName, contentType string) {
	escaped := url.QueryEscape(displayName)

	c.Header("Content-Type", contentType)
	c.Header(
		"Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, escaped, escaped),
	)
}

// SendStoredFile 以附件形式发送本地文件
func SendStoredFile(c *gin.Context, path, displayName, contentType string) error {
	if !FileExist(path) {
		return os.ErrNotExist
	}
	setAttachmentHeader(c, displayName, contentType)
	c.File(path)
	return nil
}

// SendBytes 以附件形式发送内存中的内容，用于导出
func SendBytes(c *gin.Context, data []byte, displayName, contentType string) {
	setAttachmentHeader(c, displayName, contentType)
	c.Data(200, contentType, data)
}
