// Package storage persists uploaded media. LocalStorage writes to a directory
// served by the static file mount; S3Storage writes to an S3-compatible bucket.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/common"
)

// Storage saves named objects and returns the URL they are reachable at.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
}

// validName rejects anything that is not a plain file name.
func validName(name string) error {
	if name == "" || name == "." || name == ".." ||
		filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return common.ErrInvalidFileName
	}
	return nil
}
