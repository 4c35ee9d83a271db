// Package pdf reads page text and embedded raster images out of PDF files.
package pdf

import "context"

// Page is the extracted text of one page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Image is an embedded raster image in its stored encoding.
type Image struct {
	Page  int
	Index int
	Ext   string
	Data  []byte
}

// Reader extracts content from a PDF on disk.
type Reader interface {
	Pages(ctx context.Context, path string) ([]Page, error)
	// Images returns images from firstPage onward, in page order then drawing order.
	Images(ctx context.Context, path string, firstPage int) ([]Image, error)
}
