package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type PopplerConfig struct {
	PdfToText string
	PdfImages string
	TempDir   string
}

// Poppler implements Reader with the poppler-utils command line tools.
type Poppler struct {
	config PopplerConfig
}

func NewPoppler(config PopplerConfig) *Poppler {
	if config.PdfToText == "" {
		config.PdfToText = "pdftotext"
	}
	if config.PdfImages == "" {
		config.PdfImages = "pdfimages"
	}
	return &Poppler{config: config}
}

// Pages runs pdftotext in bbox-layout mode and rebuilds each page's text line by line.
func (p *Poppler) Pages(ctx context.Context, path string) ([]Page, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	out, err := p.run(ctx, p.config.PdfToText, "-bbox-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, err
	}
	return parseBBoxLayout(bytes.NewReader(out))
}

// Images runs pdfimages into a scratch directory and reads the files back. JPEG streams
// are kept as-is, everything else is written as PNG. Soft masks and stencil masks are
// dropped, only entries listed with type "image" are returned.
func (p *Poppler) Images(ctx context.Context, path string, firstPage int) ([]Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	dir, err := os.MkdirTemp(p.config.TempDir, "reelindex-images-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	var pageArgs []string
	if firstPage > 1 {
		pageArgs = []string{"-f", strconv.Itoa(firstPage)}
	}

	listing, err := p.run(ctx, p.config.PdfImages, append(append([]string{"-list"}, pageArgs...), path)...)
	if err != nil {
		return nil, err
	}
	keep := make(map[int]bool)
	for _, li := range parseImageList(string(listing)) {
		if li.Type == "image" {
			keep[li.Num] = true
		}
	}

	args := append([]string{"-png", "-j", "-p"}, pageArgs...)
	args = append(args, path, filepath.Join(dir, "img"))
	if _, err := p.run(ctx, p.config.PdfImages, args...); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing extracted images: %w", err)
	}

	var images []Image
	for _, entry := range entries {
		page, index, ext, ok := parseImageName(entry.Name())
		if !ok || !keep[index] {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		images = append(images, Image{Page: page, Index: index, Ext: ext, Data: data})
	}

	sort.Slice(images, func(i, j int) bool {
		if images[i].Page != images[j].Page {
			return images[i].Page < images[j].Page
		}
		return images[i].Index < images[j].Index
	})

	return images, nil
}

func (p *Poppler) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%s not found: install poppler-utils (brew install poppler on macOS)", name)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// listedImage is one row of pdfimages -list.
type listedImage struct {
	Page int
	Num  int
	Type string
}

// parseImageList reads the page, num and type columns of pdfimages -list output.
// Header and separator lines are skipped.
func parseImageList(out string) []listedImage {
	var images []listedImage
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		page, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		num, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		images = append(images, listedImage{Page: page, Num: num, Type: fields[2]})
	}
	return images
}

var imageNamePattern = regexp.MustCompile(`^img-(\d+)-(\d+)\.([A-Za-z0-9]+)$`)

// parseImageName splits a pdfimages -p output name, img-PPP-NNN.ext.
func parseImageName(name string) (page, index int, ext string, ok bool) {
	m := imageNamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, "", false
	}
	page, _ = strconv.Atoi(m[1])
	index, _ = strconv.Atoi(m[2])
	return page, index, strings.ToLower(m[3]), true
}

func parseBBoxLayout(r io.Reader) ([]Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing pdftotext output: %w", err)
	}

	var pages []Page
	doc.Find("page").Each(func(i int, page *goquery.Selection) {
		var lines []string
		page.Find("line").Each(func(_ int, line *goquery.Selection) {
			if text := joinWords(line); text != "" {
				lines = append(lines, text)
			}
		})
		// plain -bbox output has words but no line structure
		if len(lines) == 0 {
			if text := joinWords(page); text != "" {
				lines = append(lines, text)
			}
		}

		text := strings.Join(lines, "\n")
		if text != "" {
			text += "\n"
		}
		pages = append(pages, Page{Number: i + 1, Text: text})
	})

	return pages, nil
}

func joinWords(s *goquery.Selection) string {
	var words []string
	s.Find("word").Each(func(_ int, word *goquery.Selection) {
		if w := strings.TrimSpace(word.Text()); w != "" {
			words = append(words, w)
		}
	})
	return strings.Join(words, " ")
}
