package archive

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func extractedPaths(files []entities.UploadedFile) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}

func TestExtractPlainArchive(t *testing.T) {
	data := buildZip(t, map[string]string{
		"index.html":    "<html></html>",
		"css/style.css": "body{}",
	})

	files, err := Extract(data)
	require.NoError(t, err)
	require.Len(t, files, 2)

	paths := extractedPaths(files)
	assert.Contains(t, paths, "index.html")
	assert.Contains(t, paths, "css/style.css")

	for _, f := range files {
		if f.Path == "index.html" {
			assert.Equal(t, "text/html; charset=utf-8", f.ContentType)
			assert.Equal(t, int64(13), f.Size)
		}
	}
}

func TestExtractFiltersMetadataEntries(t *testing.T) {
	data := buildZip(t, map[string]string{
		"index.html":              "<html></html>",
		".DS_Store":               "junk",
		".git/config":             "junk",
		"__MACOSX/index.html":     "junk",
		"assets/.hidden/logo.png": "junk",
	})

	files, err := Extract(data)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "index.html", files[0].Path)
}

func TestExtractRejectsEscapingPaths(t *testing.T) {
	data := buildZip(t, map[string]string{
		"index.html":        "<html></html>",
		"../escape.html":    "junk",
		"a/../../evil.html": "junk",
	})

	files, err := Extract(data)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "index.html", files[0].Path)
}

func TestExtractRejectsDeepNesting(t *testing.T) {
	deep := strings.Repeat("d/", 11) + "file.html"
	data := buildZip(t, map[string]string{
		"index.html": "<html></html>",
		deep:         "junk",
	})

	files, err := Extract(data)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "index.html", files[0].Path)
}

func TestExtractCorruptArchive(t *testing.T) {
	_, err := Extract([]byte("this is not a zip"))
	require.ErrorIs(t, err, entities.ErrCorruptArchive)
}

func TestExtractEmptyArchive(t *testing.T) {
	files, err := Extract(buildZip(t, nil))
	require.NoError(t, err)
	assert.Empty(t, files)
}
