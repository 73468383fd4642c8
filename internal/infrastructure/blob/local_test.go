package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Save(ctx, "aadhaar.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/files/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	rc, err := store.Open(ctx, url)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
}

func TestDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Save(ctx, "certificate.pdf", strings.NewReader("signed"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, url))
	_, err = store.Open(ctx, url)
	require.Error(t, err)

	// Deleting again is a no-op.
	require.NoError(t, store.Delete(ctx, url))

	require.Error(t, store.Delete(ctx, "/files/../secret"))
}

func TestOpenRejectsEscapes(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Open(ctx, "/etc/passwd")
	require.Error(t, err)
	_, err = store.Open(ctx, "/files/../secret")
	require.Error(t, err)
}
