package fsxlocal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Abraxas-365/hojavida/pkg/fsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileSystem_WriteReadDelete(t *testing.T) {
	root := t.TempDir()
	fs, err := NewLocalFileSystem(root)
	require.NoError(t, err)
	ctx := context.Background()

	key := fs.Join("12345", "hoja_vida_1.pdf")
	require.NoError(t, fs.WriteFile(ctx, key, []byte("%PDF"), fsx.WithContentType("application/pdf")))

	_, err = os.Stat(filepath.Join(root, "12345", "hoja_vida_1.pdf"))
	require.NoError(t, err)

	data, err := fs.ReadFile(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	ok, err := fs.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, fs.DeleteFile(ctx, key))
	_, err = fs.ReadFile(ctx, key)
	assert.True(t, errors.Is(err, fsx.ErrNotExist))
}

func TestLocalFileSystem_KeysStayUnderRoot(t *testing.T) {
	root := t.TempDir()
	fs, err := NewLocalFileSystem(root)
	require.NoError(t, err)

	require.NoError(t, fs.WriteFileStream(context.Background(), "../../escape.txt", strings.NewReader("x")))

	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err)

	assert.Error(t, fs.WriteFile(context.Background(), "/", []byte("x")))
}
