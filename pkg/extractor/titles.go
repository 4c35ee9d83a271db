package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xhad/reelindex/internal/models"
)

// titlePattern matches "<rank>. <title> (<year>)"; the title may run across line breaks.
var titlePattern = regexp.MustCompile(`(?s)(?:^|\n|\. )(\d{1,2})\.\s+(.*?)\s*\((\d{4})\)`)

// ParseTitles returns the ranked titles in text, in the order they appear.
func ParseTitles(text string) []models.TitleEntry {
	var titles []models.TitleEntry
	for _, m := range titlePattern.FindAllStringSubmatch(text, -1) {
		rank, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		titles = append(titles, models.TitleEntry{
			Rank:  rank,
			Title: strings.Join(strings.Fields(m[2]), " "),
			Year:  year,
		})
	}
	return titles
}
