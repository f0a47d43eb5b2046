package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"booking-users/internal/domain"
	"booking-users/pkg/utils"
)

// LocalImageStore 把头像写到 baseDir 下，引用即文件名。
// 命名：<原文件名主体>_<毫秒时间戳>_<8 位随机串><扩展名>
type LocalImageStore struct {
	fs      afero.Fs
	baseDir string
	now     func() time.Time
	token   func() string
}

func NewLocalImageStore(fsys afero.Fs, baseDir string) *LocalImageStore {
	return &LocalImageStore{fs: fsys, baseDir: baseDir, now: time.Now, token: utils.ShortToken}
}

// Init 确保目录存在
func (s *LocalImageStore) Init() error {
	if err := s.fs.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("%w: create upload dir: %w", domain.ErrStorage, err)
	}
	return nil
}

func (s *LocalImageStore) Save(ctx context.Context, data []byte, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := s.reference(originalName)
	if err := afero.WriteFile(s.fs, filepath.Join(s.baseDir, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write image %s: %w", domain.ErrStorage, ref, err)
	}
	return ref, nil
}

func (s *LocalImageStore) Open(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validRef(ref) {
		return nil, domain.ErrNotFound
	}
	b, err := afero.ReadFile(s.fs, filepath.Join(s.baseDir, ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read image %s: %w", domain.ErrStorage, ref, err)
	}
	return b, nil
}

func (s *LocalImageStore) reference(originalName string) string {
	name := path.Base(strings.ReplaceAll(originalName, `\`, "/"))
	if name == "." || name == "/" {
		name = ""
	}
	base, ext := name, ""
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		base, ext = name[:i], name[i:]
	}
	base = sanitize(base)
	if base == "" {
		base = "image"
	}
	return base + "_" + strconv.FormatInt(s.now().UnixMilli(), 10) + "_" + s.token() + sanitize(ext)
}

// sanitize 只保留安全字符
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, s)
}

func validRef(ref string) bool {
	return ref != "" && ref != "." && ref != ".." &&
		!strings.ContainsAny(ref, `/\`) && sanitize(ref) == ref
}
