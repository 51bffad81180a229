// Package archive bundles processed rasters into a single downloadable
// archive, one entry per successfully exported asset.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
)

// Writer accepts finished rasters from the export pipeline.
type Writer interface {
	Add(filename string, data []byte) error
}

// ZipWriter writes entries into a ZIP stream.
type ZipWriter struct {
	zw *zip.Writer
}

// NewZipWriter wraps the destination stream.
func NewZipWriter(w io.Writer) *ZipWriter {
	return &ZipWriter{zw: zip.NewWriter(w)}
}

// Add appends one file entry to the archive.
func (z *ZipWriter) Add(filename string, data []byte) error {
	entry, err := z.zw.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", filename, err)
	}
	if _, err := entry.Write(data); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", filename, err)
	}
	return nil
}

// Close flushes the archive directory. The archive is unreadable until
// Close has been called.
func (z *ZipWriter) Close() error {
	if err := z.zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}
