package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"passport-apply/apperror"
)

// Local stores blobs as files under a base directory and issues HMAC-signed
// expiring URLs served by the files controller. Content types are kept in a
// sidecar file next to each blob.
type Local struct {
	baseDir    string
	baseURL    string
	signingKey []byte
}

// NewLocal creates a disk-backed store rooted at baseDir. Signed URLs are
// relative to baseURL (e.g. "/files").
func NewLocal(baseDir, baseURL string, signingKey []byte) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, apperror.Wrap(apperror.KindStorage, "failed to create storage directory", err)
	}
	return &Local{
		baseDir:    baseDir,
		baseURL:    strings.TrimRight(baseURL, "/"),
		signingKey: signingKey,
	}, nil
}

func (l *Local) blobPath(key string) string {
	// Keys contain slashes; keep them as subdirectories under the base dir.
	return filepath.Join(l.baseDir, filepath.FromSlash(key))
}

// Put writes the blob and its content type. Re-putting the same key replaces
// the previous content, which keeps retries safe.
func (l *Local) Put(ctx context.Context, key string, data []byte, contentType string) error {
	path := l.blobPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperror.Wrap(apperror.KindStorage, "failed to create blob directory", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperror.Wrap(apperror.KindStorage, "failed to write blob", err)
	}
	if err := os.WriteFile(path+".ctype", []byte(contentType), 0644); err != nil {
		os.Remove(path)
		return apperror.Wrap(apperror.KindStorage, "failed to write blob metadata", err)
	}
	return nil
}

// Delete removes the blob. Deleting a missing key is not an error.
func (l *Local) Delete(ctx context.Context, key string) error {
	path := l.blobPath(key)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apperror.Wrap(apperror.KindStorage, "failed to delete blob", err)
	}
	if err := os.Remove(path + ".ctype"); err != nil && !os.IsNotExist(err) {
		return apperror.Wrap(apperror.KindStorage, "failed to delete blob metadata", err)
	}
	return nil
}

// Get reads a blob and its content type. Used by the files controller when
// serving signed URLs.
func (l *Local) Get(ctx context.Context, key string) ([]byte, string, error) {
	path := l.blobPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrBlobNotFound(key)
		}
		return nil, "", apperror.Wrap(apperror.KindStorage, "failed to read blob", err)
	}
	ctype, err := os.ReadFile(path + ".ctype")
	if err != nil {
		ctype = []byte("application/octet-stream")
	}
	return data, string(ctype), nil
}

// SignedURL returns a time-limited URL for the blob.
func (l *Local) SignedURL(ctx context.Context, key string, op Operation, ttl time.Duration) (string, error) {
	expires := time.Now().Add(ttl).Unix()
	sig := l.sign(key, op, expires)
	return fmt.Sprintf("%s/%s?op=%s&expires=%d&signature=%s",
		l.baseURL, key, url.QueryEscape(string(op)), expires, sig), nil
}

// VerifySignedURL checks the signature and expiry of a signed request.
func (l *Local) VerifySignedURL(key string, op Operation, expires int64, signature string) error {
	if time.Now().Unix() > expires {
		return apperror.New(apperror.KindForbidden, "URL has expired")
	}
	expected := l.sign(key, op, expires)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return apperror.New(apperror.KindForbidden, "invalid URL signature")
	}
	return nil
}

func (l *Local) sign(key string, op Operation, expires int64) string {
	mac := hmac.New(sha256.New, l.signingKey)
	mac.Write([]byte(key))
	mac.Write([]byte("|"))
	mac.Write([]byte(op))
	mac.Write([]byte("|"))
	mac.Write([]byte(strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
