package processor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/reelindex/internal/models"
	"github.com/xhad/reelindex/pkg/processor"
)

func TestProcessor_Process(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	pages := models.PageTextMap{
		"page 10": "Ten\n",
		"page 2":  "10. Alien (1979)\n",
		"page 1":  "Cover  text\n",
	}

	records, err := p.Process(pages)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, models.SummaryRecord{
		File:   "page_1.txt",
		Text:   "Cover  text\n",
		Source: "Page 1",
		Type:   models.TypePage,
	}, records[0])
	assert.Equal(t, "page_2.txt", records[1].File)
	assert.Equal(t, "page_10.txt", records[2].File)
	assert.Equal(t, "Page 10", records[2].Source)
}

func TestProcessor_NormalizeWhitespace(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{NormalizeWhitespace: true})

	records, err := p.Process(models.PageTextMap{"page 3": "  Cover \n\n text\t"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Cover text", records[0].Text)
}

func TestProcessor_Chunking(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    40,
		ChunkOverlap: 8,
	})

	text := "The first sentence is here. The second sentence follows it. A third one closes the page."
	records, err := p.Process(models.PageTextMap{"page 4": text})
	require.NoError(t, err)
	require.Greater(t, len(records), 1)

	for i, r := range records {
		assert.Equal(t, "Page 4", r.Source)
		assert.Equal(t, models.TypePage, r.Type)
		assert.Equal(t, "page_4_"+string(rune('1'+i))+".txt", r.File)
		assert.NotEmpty(t, r.Text)
	}
	assert.True(t, strings.HasPrefix(records[0].Text, "The first sentence"))
	assert.True(t, strings.HasSuffix(records[len(records)-1].Text, "closes the page."))
}

func TestProcessor_ShortPageNotChunked(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 1000})

	records, err := p.Process(models.PageTextMap{"page 1": "Short."})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "page_1.txt", records[0].File)
}

func TestProcessor_InvalidLabel(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	_, err := p.Process(models.PageTextMap{"cover": "x"})
	assert.Error(t, err)
}

func TestPageNumber(t *testing.T) {
	tests := []struct {
		label   string
		want    int
		wantErr bool
	}{
		{"page 1", 1, false},
		{"page 42", 42, false},
		{"page 0", 0, true},
		{"Page 1", 0, true},
		{"page x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := processor.PageNumber(tt.label)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
