// Package storage 本地磁盘上传存储。数据库是路径的唯一权威，
// 文件删除一律尽力而为：失败写日志，绝不回传给客户端。
package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"roomrent/internal/apperr"
)

// Kind 资产分类，决定子目录
type Kind string

const (
	KindLicense  Kind = "licenses"
	KindProperty Kind = "properties"
)

type Local struct {
	root string // 磁盘根目录
	log  *zap.Logger
}

func NewLocal(root string, log *zap.Logger) (*Local, error) {
	for _, k := range []Kind{KindLicense, KindProperty} {
		if err := os.MkdirAll(filepath.Join(root, string(k)), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir upload dir: %w", err)
		}
	}
	return &Local{root: root, log: log}, nil
}

// Save 落盘一个上传文件，返回 URL 相对路径（/uploads/<kind>/<name>）
func (s *Local) Save(c *gin.Context, fh *multipart.FileHeader, kind Kind, maxBytes int64) (string, error) {
	if fh.Size > maxBytes {
		return "", apperr.Validation("file too large")
	}
	ct := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		return "", apperr.Validation("only image files are allowed")
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst := filepath.Join(s.root, string(kind), name)
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", apperr.Internal("save upload failed", err)
	}
	return path.Join("/uploads", string(kind), name), nil
}

// SaveAll 批量落盘；任一失败则回收已写文件后返回错误
func (s *Local) SaveAll(c *gin.Context, fhs []*multipart.FileHeader, kind Kind, maxBytes int64) ([]string, error) {
	paths := make([]string, 0, len(fhs))
	for _, fh := range fhs {
		p, err := s.Save(c, fh, kind, maxBytes)
		if err != nil {
			s.Remove(paths...)
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Remove 按 URL 相对路径删除，事务提交后调用
func (s *Local) Remove(urlPaths ...string) {
	for _, p := range urlPaths {
		rel := strings.TrimPrefix(p, "/uploads/")
		if rel == p || strings.Contains(rel, "..") {
			s.log.Warn("refusing to remove suspicious path", zap.String("path", p))
			continue
		}
		full := filepath.Join(s.root, filepath.FromSlash(rel))
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			s.log.Warn("file cleanup failed", zap.String("path", full), zap.Error(err))
		}
	}
}

// Root 静态文件挂载用
func (s *Local) Root() string { return s.root }
