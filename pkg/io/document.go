package io

import (
	"io"
	"os"

	"github.com/matzehuels/spantower/pkg/errors"
	"github.com/matzehuels/spantower/pkg/source"
)

// MaxDocumentSize bounds the payload read by [ReadDocument].
const MaxDocumentSize = 32 << 20

// ReadDocument reads and decodes a JSON payload from r.
// ReadDocument does not close r.
func ReadDocument(r io.Reader) (*source.Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read document")
	}
	if len(data) > MaxDocumentSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document exceeds %d bytes", MaxDocumentSize)
	}
	return source.Decode(data)
}

// ReadDocumentFile reads and decodes the payload at path.
func ReadDocumentFile(path string) (*source.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	doc, err := ReadDocument(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "document %s", path)
	}
	return doc, nil
}
