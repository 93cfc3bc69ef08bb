package watson_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

func TestMediaTypeForFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		expected string
	}{
		{filename: "glossary.TMX", expected: "application/x-tmx+xml"},
		{filename: "audio.flac", expected: "audio/flac"},
		{filename: "doc.pdf", expected: "application/pdf"},
		{filename: "page.html", expected: "text/html"},
		{filename: "no-extension", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, watson.MediaTypeForFilename(tt.filename))
		})
	}
}

func TestFileFromPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sample.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o600))

	file := watson.FileFromPath(path)
	require.NoError(t, file.Validate())
	assert.Equal(t, path, file.Path())
	assert.Equal(t, "sample.wav", file.Filename())
	assert.Equal(t, "audio/wav", file.ContentType())
	assert.Empty(t, file.ExplicitContentType())
	assert.Equal(t, int64(4), file.Size())

	for range 2 {
		rc, err := file.Open()
		require.NoError(t, err)

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "RIFF", string(data))
	}

	overridden := file.WithContentType("audio/l16;rate=16000")
	assert.Equal(t, "audio/l16;rate=16000", overridden.ContentType())
	assert.Equal(t, "audio/wav", file.ContentType())
}

func TestFileFromPath_Missing(t *testing.T) {
	t.Parallel()

	file := watson.FileFromPath(filepath.Join(t.TempDir(), "missing.txt"))
	require.NoError(t, file.Validate())

	_, err := file.Open()
	require.Error(t, err)
	assert.Equal(t, int64(-1), file.Size())
}

func TestFileFromReader(t *testing.T) {
	t.Parallel()

	t.Run("requires filename or content type", func(t *testing.T) {
		t.Parallel()

		file := watson.FileFromReader(strings.NewReader("data"), "", "")
		err := file.Validate()
		require.ErrorIs(t, err, watson.ErrFileSourceAmbiguous)
		assert.True(t, watson.IsInvalidArgument(err))

		_, err = file.Open()
		require.ErrorIs(t, err, watson.ErrFileSourceAmbiguous)
	})

	t.Run("filename only infers type", func(t *testing.T) {
		t.Parallel()

		file := watson.FileFromReader(strings.NewReader("data"), "corpus.tmx", "")
		require.NoError(t, file.Validate())
		assert.Equal(t, "application/x-tmx+xml", file.ContentType())
	})

	t.Run("unknown filename defaults to octet-stream", func(t *testing.T) {
		t.Parallel()

		file := watson.FileFromReader(strings.NewReader("data"), "blob", "")
		assert.Equal(t, "application/octet-stream", file.ContentType())
	})

	t.Run("content type only", func(t *testing.T) {
		t.Parallel()

		file := watson.FileFromBytes([]byte("data"), "", "text/plain")
		require.NoError(t, file.Validate())
		assert.Equal(t, "text/plain", file.ContentType())
		assert.Empty(t, file.Filename())
		assert.Equal(t, int64(4), file.Size())

		named := file.WithFilename("notes.txt")
		assert.Equal(t, "notes.txt", named.Filename())
		assert.Empty(t, file.Filename())
	})

	t.Run("nil source", func(t *testing.T) {
		t.Parallel()

		var file *watson.FileSource
		assert.True(t, watson.IsInvalidArgument(file.Validate()))
	})
}
