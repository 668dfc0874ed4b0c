package utils

import (
	"path"
	"strings"
)

// Extension to MIME table used for extracted archive entries and for uploads
// whose declared type is missing or opaque. Text types carry an explicit
// charset so browsers render them instead of downloading.
var contentTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".htm":   "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "application/javascript; charset=utf-8",
	".mjs":   "application/javascript; charset=utf-8",
	".json":  "application/json; charset=utf-8",
	".txt":   "text/plain; charset=utf-8",
	".xml":   "application/xml; charset=utf-8",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".eot":   "application/vnd.ms-fontobject",
	".pdf":   "application/pdf",
	".zip":   "application/zip",
}

const binaryContentType = "application/octet-stream"

// ContentTypeForName resolves a content type from a file name's extension.
// Unknown extensions resolve to an opaque binary type.
func ContentTypeForName(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return binaryContentType
}

// CacheControlForName picks the Cache-Control header for a deployed object.
// HTML must revalidate so redeploys show up; everything else is immutable
// under its hashed or versioned name.
func CacheControlForName(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") {
		return "public, max-age=0, must-revalidate"
	}
	return "public, max-age=31536000"
}

// IsZipArchive reports whether the name looks like a ZIP archive.
func IsZipArchive(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zip")
}

// IsMarkup reports whether the name looks like an HTML document.
func IsMarkup(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
}
