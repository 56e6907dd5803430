package core

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// Family groups formats by the document model that handles them.
type Family string

const (
	FamilyText     Family = "text"
	FamilyWorkbook Family = "workbook"
)

// Format describes one registered file layout.
type Format struct {
	Name      string // Stable identifier, e.g. "csv.gz"
	Extension string // Lowercase extension including the dot, e.g. ".csv.gz"
	Family    Family
	Writable  bool
}

var (
	formats   = make(map[string]Format)
	formatsMu sync.RWMutex
)

// RegisterFormat adds a format to the registry.
// Panics if the extension is already registered.
func RegisterFormat(f Format) {
	formatsMu.Lock()
	defer formatsMu.Unlock()

	ext := strings.ToLower(f.Extension)
	if _, exists := formats[ext]; exists {
		panic(fmt.Sprintf("format already registered: %s", ext))
	}
	f.Extension = ext
	formats[ext] = f
}

// DetectFormat resolves the format of a file name or URL path by its longest
// registered extension, so "a.csv.gz" matches ".csv.gz" before ".gz".
func DetectFormat(name string) (Format, error) {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	base := strings.ToLower(path.Base(name))
	var (
		best  Format
		found bool
	)
	for ext, f := range formats {
		if strings.HasSuffix(base, ext) && len(ext) > len(best.Extension) {
			best, found = f, true
		}
	}
	if !found {
		return Format{}, Unsupported("detect format", name, nil)
	}
	return best, nil
}

// Formats returns every registered format sorted by extension.
func Formats() []Format {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	result := make([]Format, 0, len(formats))
	for _, f := range formats {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Extension < result[j].Extension
	})
	return result
}

// FormatsByFamily returns the registered formats of one family, sorted.
func FormatsByFamily(family Family) []Format {
	var result []Format
	for _, f := range Formats() {
		if f.Family == family {
			result = append(result, f)
		}
	}
	return result
}
