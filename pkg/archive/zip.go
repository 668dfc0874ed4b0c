// Package archive unpacks uploaded ZIP archives into the flat file set the
// rest of the deployment pipeline works on.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/deployhub/deployhub-backend/internal/logger"
	"github.com/deployhub/deployhub-backend/internal/utils"
	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
	"go.uber.org/zap"
)

// maxEntryDepth bounds path nesting to keep pathological archives out.
const maxEntryDepth = 10

// Extract decompresses an uploaded ZIP archive into a flat file set.
//
// Hidden and OS-metadata entries are filtered, as are entries whose path
// escapes the extraction root or exceeds the depth bound. A single entry that
// fails to decompress is logged and skipped; an archive that cannot be opened
// at all fails with entities.ErrCorruptArchive.
func Extract(data []byte) ([]entities.UploadedFile, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrCorruptArchive, err)
	}

	files := make([]entities.UploadedFile, 0, len(reader.File))
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := path.Clean(entry.Name)
		if skipEntry(name) {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			logger.Error("skipping archive entry", zap.String("entry", entry.Name), zap.Error(err))
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			logger.Error("skipping archive entry", zap.String("entry", entry.Name), zap.Error(err))
			continue
		}

		files = append(files, entities.UploadedFile{
			Path:        name,
			Content:     content,
			ContentType: utils.ContentTypeForName(name),
			Size:        int64(len(content)),
		})
	}

	return files, nil
}

func skipEntry(name string) bool {
	if name == "." || path.IsAbs(name) || strings.HasPrefix(name, "..") {
		return true
	}
	segments := strings.Split(name, "/")
	if len(segments) > maxEntryDepth {
		return true
	}
	for _, segment := range segments {
		if segment == ".." || strings.HasPrefix(segment, ".") || segment == "__MACOSX" {
			return true
		}
	}
	return false
}
