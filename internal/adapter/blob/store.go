// Package blob stores PDF files on the local filesystem and hands out
// short-lived signed URLs for them.
package blob

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/pdfshop/internal/domain/errors"
)

var refPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,199}$`)

// Store is the blob storage used by the shop.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader) (string, error)
	SignedURL(ctx context.Context, ref string, ttl time.Duration) (string, error)
	Verify(ref, expires, sig string) error
	Open(ref string) (*os.File, error)
}

// FileStore keeps blobs as files in a single directory.
type FileStore struct {
	dir     string
	baseURL string
	secret  []byte
	now     func() time.Time
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the directory when missing.
func NewFileStore(dir, baseURL, secret string) (*FileStore, error) {
	if secret == "" {
		return nil, errors.New("blob store: empty signing secret")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("blob store: %w", err)
	}
	return &FileStore{dir: dir, baseURL: baseURL, secret: []byte(secret), now: time.Now}, nil
}

// Put writes the content under a fresh ref derived from name and returns the ref.
func (s *FileStore) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	ext := filepath.Ext(filepath.Base(name))
	if ext == "" || !refPattern.MatchString("x"+ext) {
		ext = ".pdf"
	}
	ref := uuid.NewString() + ext

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("blob put: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r}); err != nil {
		tmp.Close()
		return "", fmt.Errorf("blob put: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("blob put: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(ref)); err != nil {
		return "", fmt.Errorf("blob put: %w", err)
	}
	return ref, nil
}

// SignedURL returns a URL valid for ttl. A ref without a file is ErrAssetMissing.
func (s *FileStore) SignedURL(_ context.Context, ref string, ttl time.Duration) (string, error) {
	if !refPattern.MatchString(ref) {
		return "", domainErrors.ErrAssetMissing
	}
	if _, err := os.Stat(s.path(ref)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domainErrors.ErrAssetMissing
		}
		return "", fmt.Errorf("blob stat: %w", err)
	}

	expires := strconv.FormatInt(s.now().Add(ttl).Unix(), 10)
	query := url.Values{}
	query.Set("expires", expires)
	query.Set("sig", s.sign(ref, expires))
	return fmt.Sprintf("%s/files/%s?%s", s.baseURL, url.PathEscape(ref), query.Encode()), nil
}

// Verify checks a signed URL's parameters.
func (s *FileStore) Verify(ref, expires, sig string) error {
	if !refPattern.MatchString(ref) {
		return domainErrors.ErrForbidden
	}
	if !hmac.Equal([]byte(s.sign(ref, expires)), []byte(sig)) {
		return domainErrors.ErrForbidden
	}
	unix, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return domainErrors.ErrForbidden
	}
	if !s.now().Before(time.Unix(unix, 0)) {
		return domainErrors.ErrExpired
	}
	return nil
}

// Open returns the stored file for streaming.
func (s *FileStore) Open(ref string) (*os.File, error) {
	if !refPattern.MatchString(ref) {
		return nil, domainErrors.ErrNotFound
	}
	f, err := os.Open(s.path(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *FileStore) path(ref string) string {
	return filepath.Join(s.dir, ref)
}

func (s *FileStore) sign(ref, expires string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(ref + ":" + expires))
	return hex.EncodeToString(mac.Sum(nil))
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
