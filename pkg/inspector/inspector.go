// Package inspector classifies an uploaded file set as a framework project, a
// plain static site, or neither.
package inspector

import (
	"path"
	"strings"

	"github.com/deployhub/deployhub-backend/internal/utils"
	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
)

// frameworkManifests are file names whose presence marks a framework project.
var frameworkManifests = map[string]struct{}{
	"package.json": {},
}

// staticExtensions are the markup/style/script extensions that mark a static
// site when no framework manifest exists.
var staticExtensions = map[string]struct{}{
	".html": {},
	".htm":  {},
	".css":  {},
	".js":   {},
	".mjs":  {},
}

// Classify decides what kind of project an upload is and which file serves as
// the entry document.
//
// A framework manifest always wins over static-file heuristics: framework
// projects legitimately lack a pre-built index, so a missing index is not an
// error for them. A static classification always carries an entry document —
// the canonical index when present, otherwise the first markup file, which
// the publisher will write at the canonical index path.
func Classify(files []entities.UploadedFile) (entities.Classification, error) {
	if hasFrameworkManifest(files) {
		return entities.Classification{
			Kind:      entities.ProjectKindFramework,
			EntryPath: findIndex(files),
		}, nil
	}

	if !hasStaticSignal(files) {
		return entities.Classification{Kind: entities.ProjectKindUnrecognized}, entities.ErrNoRecognizableProject
	}

	entry := findIndex(files)
	if entry == "" {
		entry = firstMarkup(files)
	}
	if entry == "" {
		return entities.Classification{Kind: entities.ProjectKindUnrecognized}, entities.ErrNoEntryDocument
	}

	return entities.Classification{
		Kind:      entities.ProjectKindStatic,
		EntryPath: entry,
	}, nil
}

func hasFrameworkManifest(files []entities.UploadedFile) bool {
	for _, f := range files {
		if _, ok := frameworkManifests[strings.ToLower(path.Base(f.Path))]; ok {
			return true
		}
	}
	return false
}

func hasStaticSignal(files []entities.UploadedFile) bool {
	for _, f := range files {
		if _, ok := staticExtensions[strings.ToLower(path.Ext(f.Path))]; ok {
			return true
		}
	}
	return false
}

// findIndex returns the path of the canonical index document, matched
// case-insensitively, or "".
func findIndex(files []entities.UploadedFile) string {
	for _, f := range files {
		if strings.EqualFold(path.Base(f.Path), entities.IndexDocument) {
			return f.Path
		}
	}
	return ""
}

func firstMarkup(files []entities.UploadedFile) string {
	for _, f := range files {
		if utils.IsMarkup(f.Path) {
			return f.Path
		}
	}
	return ""
}
