package ifc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrInvalidDocument marks a source document that could not be decoded.
// This is fatal for the whole operation it was opened for.
var ErrInvalidDocument = errors.New("invalid document")

type documentJSON struct {
	Schema        string            `json:"schema"`
	Header        map[string]string `json:"header,omitempty"`
	Entities      []*Entity         `json:"entities"`
	Relationships []Relationship    `json:"relationships,omitempty"`
}

// Open decodes a serialized document and builds its indexes.
func Open(data []byte) (*Document, error) {
	var dec documentJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if dec.Schema == "" {
		return nil, fmt.Errorf("%w: missing schema tag", ErrInvalidDocument)
	}
	doc := NewDocument(dec.Schema)
	if dec.Header != nil {
		doc.header = dec.Header
	}
	for _, e := range dec.Entities {
		if e == nil || e.ID == 0 {
			return nil, fmt.Errorf("%w: entity without id", ErrInvalidDocument)
		}
		if doc.Contains(e.ID) {
			return nil, fmt.Errorf("%w: duplicate entity id %d", ErrInvalidDocument, e.ID)
		}
		doc.Add(e)
	}
	for _, rel := range dec.Relationships {
		if !doc.Contains(rel.Source) || !doc.Contains(rel.Target) {
			return nil, fmt.Errorf("%w: relationship %s references missing entity", ErrInvalidDocument, rel.Kind)
		}
		doc.Relate(rel.Kind, rel.Source, rel.Target)
	}
	return doc, nil
}

// OpenFile reads and decodes a document from disk.
func OpenFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Open(data)
}

// Marshal serializes a document.
func Marshal(doc *Document) ([]byte, error) {
	enc := documentJSON{
		Schema:        doc.schema,
		Header:        doc.header,
		Entities:      doc.entities,
		Relationships: doc.rels,
	}
	if enc.Entities == nil {
		enc.Entities = []*Entity{}
	}
	data, err := json.Marshal(enc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Write serializes a document to a writer.
func Write(doc *Document, w io.Writer) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// WriteFile serializes a document to a file.
func WriteFile(doc *Document, path string) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
