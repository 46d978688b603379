package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rosshadden/emcee/internal/domain/addon"
)

// maxMetadataSize caps the metadata entry; real documents are a few kilobytes.
const maxMetadataSize = 1 << 20

// Shape tells which layout a metadata document used.
type Shape int

const (
	// ShapeObject is a bare descriptor object.
	ShapeObject Shape = iota + 1
	// ShapeList is a top-level array of descriptors.
	ShapeList
	// ShapeModList is an object whose modList field holds the descriptors.
	ShapeModList
)

// String implements fmt.Stringer.
func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "object"
	case ShapeList:
		return "list"
	case ShapeModList:
		return "modList"
	default:
		return "unknown"
	}
}

// Document is a parsed metadata file.
type Document struct {
	// Shape is the layout the document was written in.
	Shape Shape
	// Metadata is the first descriptor of the document.
	Metadata addon.Metadata
}

var (
	errMetadataMissing = errors.New("metadata file not present")
	errEmptyDocument   = errors.New("metadata document lists no descriptors")
	errNameMissing     = errors.New("metadata has no name")
	errNotJSON         = errors.New("metadata is neither an object nor an array")
	errTooLarge        = errors.New("metadata file is too large")
)

// Reader extracts metadata from archives.
type Reader struct {
	// entryName is the path of the metadata document inside each archive.
	entryName string
}

// NewReader returns a Reader looking for entryName inside archives.
func NewReader(entryName string) *Reader {
	return &Reader{
		entryName: entryName,
	}
}

// Read extracts and parses the metadata of the archive at path.
// Every failure wraps addon.ErrExtractionFailure.
func (r *Reader) Read(ctx context.Context, path string) (*Document, error) {
	zr, err := zip.OpenReader(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", addon.ErrExtractionFailure, filepath.Base(path), err)
	}

	defer func() {
		_ = zr.Close()
	}()

	data, err := r.extract(ctx, &zr.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", addon.ErrExtractionFailure, filepath.Base(path), err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", addon.ErrExtractionFailure, filepath.Base(path), err)
	}

	return doc, nil
}

// extract looks the metadata entry up in the central directory.
func (r *Reader) extract(ctx context.Context, zr *zip.Reader) ([]byte, error) {
	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if entry.Name != r.entryName {
			continue
		}

		return readEntry(entry)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("%w: %s", errMetadataMissing, r.entryName)
}

func readEntry(entry *zip.File) ([]byte, error) {
	if entry.UncompressedSize64 > maxMetadataSize {
		return nil, errTooLarge
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", entry.Name, err)
	}

	defer func() {
		_ = rc.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(rc, maxMetadataSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Name, err)
	}

	if len(data) > maxMetadataSize {
		return nil, errTooLarge
	}

	return data, nil
}

// Parse decodes a metadata document. Arrays yield their first element.
// Objects yield the first element of modList when that field is present,
// otherwise the object itself.
func Parse(data []byte) (*Document, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(data) == 0 {
		return nil, errNotJSON
	}

	var (
		shape       Shape
		descriptors []json.RawMessage
	)

	switch data[0] {
	case '[':
		shape = ShapeList

		if err := json.Unmarshal(data, &descriptors); err != nil {
			return nil, fmt.Errorf("decode metadata list: %w", err)
		}
	case '{':
		var wrapper struct {
			ModList *[]json.RawMessage `json:"modList"`
		}

		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("decode metadata object: %w", err)
		}

		if wrapper.ModList != nil {
			shape = ShapeModList
			descriptors = *wrapper.ModList
		} else {
			shape = ShapeObject
			descriptors = []json.RawMessage{data}
		}
	default:
		return nil, errNotJSON
	}

	if len(descriptors) == 0 {
		return nil, fmt.Errorf("%w (%s)", errEmptyDocument, shape)
	}

	var metadata addon.Metadata
	if err := json.Unmarshal(descriptors[0], &metadata); err != nil {
		return nil, fmt.Errorf("decode %s descriptor: %w", shape, err)
	}

	if metadata.Name == "" {
		return nil, fmt.Errorf("%w (%s)", errNameMissing, shape)
	}

	return &Document{
		Shape:    shape,
		Metadata: metadata,
	}, nil
}
