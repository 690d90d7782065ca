// Package split packages storey-partition results into a zip archive,
// shared by the synchronous endpoint and the background worker.
package split

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/buildlane/ifcbridge/pkg/engine"
	"github.com/buildlane/ifcbridge/pkg/ifc"
)

// Entry describes one file inside a produced archive.
type Entry struct {
	StoreyName     string `json:"storey_name"`
	StoreyGlobalID string `json:"storey_id"`
	FileName       string `json:"file_name"`
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func fileName(index int, storeyName string) string {
	name := unsafeFileChars.ReplaceAllString(strings.TrimSpace(storeyName), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "Unnamed"
	}
	return fmt.Sprintf("%02d_%s.ifcj", index+1, name)
}

// Archive serializes each sub-document and writes them into a zip,
// preserving storey order. The index prefix keeps file names unique
// when storeys share a name.
func Archive(results []engine.SplitResult) ([]byte, []Entry, error) {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	entries := make([]Entry, 0, len(results))
	for i, result := range results {
		name := fileName(i, result.StoreyName)

		f, err := w.Create(name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
		if err := ifc.Write(result.Document, f); err != nil {
			return nil, nil, fmt.Errorf("failed to serialize %s: %w", name, err)
		}

		entries = append(entries, Entry{
			StoreyName:     result.StoreyName,
			StoreyGlobalID: result.StoreyGlobalID,
			FileName:       name,
		})
	}

	if err := w.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), entries, nil
}
