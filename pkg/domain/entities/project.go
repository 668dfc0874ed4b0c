package entities

// IndexDocument is the canonical index name a static host serves by default.
const IndexDocument = "index.html"

// ErrorDocument is the object served for missing keys on the website endpoint.
const ErrorDocument = "error.html"

// UploadedFile is one file of an upload, either selected directly by the user
// or produced by archive extraction. Immutable once classified.
type UploadedFile struct {
	Path        string `json:"path"`
	Content     []byte `json:"content"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Classification is the project inspector's verdict on an upload.
//
// EntryPath names the file to serve as the site index. A Static
// classification always carries one; Framework carries one only when the
// upload already contains the canonical index; Unrecognized never does.
type Classification struct {
	Kind      ProjectKind `json:"kind"`
	EntryPath string      `json:"entryPath,omitempty"`
}
