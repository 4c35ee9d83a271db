// Package processor turns extracted page text into summary records.
package processor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xhad/reelindex/internal/models"
)

type ProcessorConfig struct {
	// ChunkSize of 0 keeps each page as a single record.
	ChunkSize           int
	ChunkOverlap        int
	NormalizeWhitespace bool
}

type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize < 0 {
		config.ChunkSize = 0
	}
	if config.ChunkOverlap < 0 || (config.ChunkSize > 0 && config.ChunkOverlap >= config.ChunkSize) {
		config.ChunkOverlap = config.ChunkSize / 5
	}

	return Processor{
		config: config,
	}
}

type page struct {
	number int
	text   string
}

// Process builds one record per page (or per chunk) in page-number order.
func (p *Processor) Process(pages models.PageTextMap) ([]models.SummaryRecord, error) {
	ordered := make([]page, 0, len(pages))
	for label, text := range pages {
		n, err := PageNumber(label)
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, page{number: n, text: text})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].number < ordered[j].number })

	var records []models.SummaryRecord
	for _, pg := range ordered {
		text := pg.text
		if p.config.NormalizeWhitespace {
			text = p.cleanText(text)
		}

		source := fmt.Sprintf("Page %d", pg.number)
		chunks := p.splitIntoChunks(text)
		if len(chunks) <= 1 {
			records = append(records, models.SummaryRecord{
				File:   fmt.Sprintf("page_%d.txt", pg.number),
				Text:   text,
				Source: source,
				Type:   models.TypePage,
			})
			continue
		}

		for i, chunk := range chunks {
			records = append(records, models.SummaryRecord{
				File:   fmt.Sprintf("page_%d_%d.txt", pg.number, i+1),
				Text:   chunk,
				Source: source,
				Type:   models.TypePage,
			})
		}
	}

	return records, nil
}

// PageNumber parses a "page N" label.
func PageNumber(label string) (int, error) {
	rest, ok := strings.CutPrefix(label, "page ")
	if !ok {
		return 0, fmt.Errorf("invalid page label %q", label)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page label %q", label)
	}
	return n, nil
}

func (p *Processor) cleanText(text string) string {
	// Replace runs of whitespace with a single space
	return strings.Join(strings.Fields(text), " ")
}

func (p *Processor) splitIntoChunks(text string) []string {
	if p.config.ChunkSize == 0 || len(text) <= p.config.ChunkSize {
		return nil
	}

	var chunks []string
	sentences := p.splitIntoSentences(text)
	currentChunk := strings.Builder{}

	for _, sentence := range sentences {
		// If adding this sentence would exceed chunk size
		if currentChunk.Len() > 0 && currentChunk.Len()+len(sentence) > p.config.ChunkSize {
			current := strings.TrimSpace(currentChunk.String())
			chunks = append(chunks, current)

			// Start new chunk with overlap
			currentChunk.Reset()
			if p.config.ChunkOverlap > 0 {
				currentChunk.WriteString(tail(current, p.config.ChunkOverlap))
				currentChunk.WriteString(" ")
			}
		}

		currentChunk.WriteString(sentence)
		currentChunk.WriteString(" ")
	}

	if last := strings.TrimSpace(currentChunk.String()); last != "" {
		chunks = append(chunks, last)
	}

	return chunks
}

// tail returns at most n bytes from the end of s without splitting a rune.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !isRuneStart(s[i]) {
		i++
	}
	return strings.TrimSpace(s[i:])
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func (p *Processor) splitIntoSentences(text string) []string {
	sentenceEnders := []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}
	var sentences []string

	current := strings.Builder{}

	for i := 0; i < len(text); i++ {
		current.WriteByte(text[i])

		for _, ender := range sentenceEnders {
			if strings.HasSuffix(current.String(), ender) {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
				break
			}
		}
	}

	// Add any remaining text
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
