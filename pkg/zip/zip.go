// Package zip builds the downloadable creation bundle.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Asset is one file inside a bundle.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets writes the assets into an in-memory zip archive, preserving
// order. It returns nil when any entry cannot be written.
func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		hdr := &zip.FileHeader{Name: asset.Filename, Method: zip.Deflate}
		if asset.MIME != "" {
			hdr.Comment = fmt.Sprintf("Content-Type: %s", asset.MIME)
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil
		}
	}
	if err := zw.Close(); err != nil {
		return nil
	}
	return buf.Bytes()
}
