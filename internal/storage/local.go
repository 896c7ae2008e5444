package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Local stores files in a directory that is served back under URLPrefix.
type Local struct {
	dir    string
	prefix string
}

func NewLocal(dir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, prefix: urlPrefix}, nil
}

func (l *Local) URLPrefix() string { return l.prefix }

// Handler serves stored files. Directories are reported as missing, so nothing can be listed.
func (l *Local) Handler() http.Handler {
	return http.StripPrefix(l.prefix, http.FileServer(filesOnly{http.Dir(l.dir)}))
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

func (l *Local) file(name string) File {
	return File{Name: name, Path: l.prefix + "/" + name}
}

func (l *Local) Save(_ context.Context, originalName string, r io.Reader, _ string) (File, error) {
	name := StoredName(time.Now(), originalName)
	dst, err := os.OpenFile(filepath.Join(l.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return File{}, fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return File{}, fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return File{}, fmt.Errorf("close file: %w", err)
	}
	return l.file(name), nil
}

func (l *Local) List(_ context.Context) ([]File, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read upload dir: %w", err)
	}
	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, l.file(e.Name()))
	}
	slices.SortFunc(files, func(a, b File) int { return strings.Compare(a.Name, b.Name) })
	return files, nil
}
