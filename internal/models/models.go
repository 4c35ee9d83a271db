package models

import "fmt"

// Record types stored in the vector store metadata.
const (
	TypeImage = "image"
	TypePage  = "page"
)

// ExtractedImage is a raster image pulled out of the source PDF that passed the size filter.
type ExtractedImage struct {
	Data   []byte
	Ext    string
	Width  int
	Height int
	Page   int
	Rank   int
}

// Filename is the on-disk name of the image, <rank>.<ext>.
func (img ExtractedImage) Filename() string {
	return fmt.Sprintf("%d.%s", img.Rank, img.Ext)
}

// TitleEntry is one "<rank>. <title> (<year>)" line found in the page text.
type TitleEntry struct {
	Rank  int
	Title string
	Year  int
}

func (t TitleEntry) String() string {
	return fmt.Sprintf("%d. %s (%d)", t.Rank, t.Title, t.Year)
}

// ImageTitleMap maps an image filename to its formatted title.
type ImageTitleMap map[string]string

// PageTextMap maps a "page N" label to the page text.
type PageTextMap map[string]string

type ExtractStats struct {
	Total   int
	Saved   int
	Skipped int
}

// SummaryRecord is the unit persisted to the vector store, one per image or page.
type SummaryRecord struct {
	File   string
	Text   string
	Source string
	Type   string
}

type Metadata struct {
	File   string `json:"file"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// Entry is a stored vector store row.
type Entry struct {
	ID        string
	Document  string
	Metadata  Metadata
	Embedding []float32
}

// Match is an entry returned by a similarity search, Score is cosine similarity.
type Match struct {
	Entry
	Score float64
}
