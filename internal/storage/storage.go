package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

type File struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Store keeps uploaded images and payment proofs. Files are never overwritten.
type Store interface {
	Save(ctx context.Context, originalName string, r io.Reader, contentType string) (File, error)
	List(ctx context.Context) ([]File, error)
}

type Options struct {
	Kind      string     `toml:"kind"`
	Dir       string     `toml:"dir"`
	URLPrefix string     `toml:"url-prefix"`
	S3        *S3Options `toml:"s3"`
}

func (o *Options) FillDefaults() {
	if o.Kind == "" {
		o.Kind = "local"
	}
	if o.Dir == "" {
		o.Dir = "uploads/images"
	}
	if o.URLPrefix == "" {
		o.URLPrefix = "/uploads/images"
	}
	o.URLPrefix = strings.TrimSuffix(o.URLPrefix, "/")
}

func New(ctx context.Context, o Options) (Store, error) {
	o.FillDefaults()
	switch o.Kind {
	case "local":
		return NewLocal(o.Dir, o.URLPrefix)
	case "s3":
		if o.S3 == nil {
			return nil, fmt.Errorf("s3 storage selected, but not configured")
		}
		return NewS3(ctx, *o.S3)
	default:
		return nil, fmt.Errorf("unknown storage kind %q", o.Kind)
	}
}

// StoredName prefixes the sanitized original name with a millisecond timestamp.
func StoredName(now time.Time, originalName string) string {
	base := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	ext := path.Ext(base)
	stem := slug.Make(strings.TrimSuffix(base, ext))
	if stem == "" {
		stem = "file"
	}
	ext = strings.ToLower(ext)
	if len(ext) <= 1 || slug.Make(ext[1:]) != ext[1:] {
		ext = ""
	}
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), stem, ext)
}
