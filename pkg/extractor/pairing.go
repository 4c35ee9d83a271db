package extractor

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xhad/reelindex/internal/models"
)

// ListImageFiles returns the regular files in dir sorted by SortImageFiles.
func ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return SortImageFiles(names), nil
}

// SortImageFiles orders names by their numeric base name, ascending. Names whose base is
// not a number sort last, by name.
func SortImageFiles(names []string) []string {
	sorted := append([]string(nil), names...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := fileRank(sorted[i]), fileRank(sorted[j])
		if ki != kj {
			return ki < kj
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}

func fileRank(name string) float64 {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" || strings.TrimLeft(base, "0123456789") != "" {
		return math.Inf(1)
	}
	n, err := strconv.Atoi(base)
	if err != nil {
		return math.Inf(1)
	}
	return float64(n)
}

// PairPositional walks the ascending image list from the end and pairs it index by index
// with titles in document order. Whatever is left over on either side is dropped.
func PairPositional(images []string, titles []models.TitleEntry) models.ImageTitleMap {
	pairs := make(models.ImageTitleMap)
	for i := 0; i < len(images) && i < len(titles); i++ {
		pairs[images[len(images)-1-i]] = titles[i].String()
	}
	return pairs
}

// PairByRank pairs image <n>.<ext> with the first title ranked n. Images without a
// numeric name or a matching title are dropped.
func PairByRank(images []string, titles []models.TitleEntry) models.ImageTitleMap {
	byRank := make(map[int]models.TitleEntry, len(titles))
	for _, t := range titles {
		if _, seen := byRank[t.Rank]; !seen {
			byRank[t.Rank] = t
		}
	}

	pairs := make(models.ImageTitleMap)
	for _, name := range images {
		rank := fileRank(name)
		if math.IsInf(rank, 1) {
			continue
		}
		if t, ok := byRank[int(rank)]; ok {
			pairs[name] = t.String()
		}
	}
	return pairs
}
