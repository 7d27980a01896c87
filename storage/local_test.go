package storage

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"passport-apply/apperror"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	store, err := NewLocal(t.TempDir(), "http://localhost:3000/files", []byte("test-signing-key"))
	require.NoError(t, err)
	return store
}

func TestLocalPutGetRoundTrip(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "documents/1/nic-front-123", []byte("blob-bytes"), "image/jpeg"))

	data, ctype, err := store.Get(ctx, "documents/1/nic-front-123")
	require.NoError(t, err)
	require.Equal(t, []byte("blob-bytes"), data)
	require.Equal(t, "image/jpeg", ctype)
}

func TestLocalGetMissingKey(t *testing.T) {
	store := newTestLocal(t)
	_, _, err := store.Get(context.Background(), "documents/1/missing")
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestLocalRePutReplaces(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "documents/1/photo", []byte("first"), "image/png"))
	require.NoError(t, store.Put(ctx, "documents/1/photo", []byte("second"), "image/jpeg"))

	data, ctype, err := store.Get(ctx, "documents/1/photo")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), data)
	require.Equal(t, "image/jpeg", ctype)
}

func TestLocalDeleteIsIdempotent(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "documents/1/photo", []byte("bytes"), "image/jpeg"))
	require.NoError(t, store.Delete(ctx, "documents/1/photo"))
	require.NoError(t, store.Delete(ctx, "documents/1/photo"))

	_, _, err := store.Get(ctx, "documents/1/photo")
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

// parseSignedURL pulls the key and query parameters back out of a signed URL
// the way the files controller does.
func parseSignedURL(t *testing.T, signed string) (key string, op Operation, expires int64, signature string) {
	t.Helper()
	parsed, err := url.Parse(signed)
	require.NoError(t, err)
	key = strings.TrimPrefix(parsed.Path, "/files/")
	q := parsed.Query()
	expires, err = strconv.ParseInt(q.Get("expires"), 10, 64)
	require.NoError(t, err)
	return key, Operation(q.Get("op")), expires, q.Get("signature")
}

func TestSignedURLVerifies(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	signed, err := store.SignedURL(ctx, "documents/1/nic-front-123", OperationRead, time.Hour)
	require.NoError(t, err)

	key, op, expires, signature := parseSignedURL(t, signed)
	require.Equal(t, "documents/1/nic-front-123", key)
	require.Equal(t, OperationRead, op)
	require.NoError(t, store.VerifySignedURL(key, op, expires, signature))
}

func TestSignedURLRejectsExpiry(t *testing.T) {
	store := newTestLocal(t)

	signed, err := store.SignedURL(context.Background(), "documents/1/photo", OperationRead, -time.Minute)
	require.NoError(t, err)

	key, op, expires, signature := parseSignedURL(t, signed)
	err = store.VerifySignedURL(key, op, expires, signature)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))
}

func TestSignedURLRejectsTampering(t *testing.T) {
	store := newTestLocal(t)

	signed, err := store.SignedURL(context.Background(), "documents/1/photo", OperationRead, time.Hour)
	require.NoError(t, err)
	key, op, expires, signature := parseSignedURL(t, signed)

	err = store.VerifySignedURL(key, op, expires, "deadbeef"+signature[8:])
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	err = store.VerifySignedURL("documents/2/photo", op, expires, signature)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	err = store.VerifySignedURL(key, op, expires+60, signature)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))
}
