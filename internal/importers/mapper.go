package importers

import (
	"sort"
	"strings"
	"unicode"

	"github.com/mrlokans/booklibrary/internal/normalize"
)

// MinMatchScore is the lowest score a (field, header) pair needs to be proposed.
const MinMatchScore = 0.5

const (
	scoreExact         = 1.0
	scoreContainsBase  = 0.6
	scoreContainsRange = 0.3
	scoreTokenWeight   = 0.8
	minContainsLength  = 3
)

// Detection is a proposed column mapping. Matched is a confidence signal for
// the user interface and carries no correctness guarantee.
type Detection struct {
	Mapping         ColumnMapping `json:"mapping"`
	Matched         int           `json:"matched"`
	MissingRequired []Field       `json:"missing_required"`
}

// AutoDetectColumns proposes a mapping for the given CSV headers.
//
// Every (field, header) pair is scored; pairs are then assigned greedily from
// the highest score down, so each field gets at most one header and each
// header is used at most once. Ties go to the field earlier in Fields, then to
// the leftmost header.
func AutoDetectColumns(headers []string) Detection {
	type candidate struct {
		field  int
		header int
		score  float64
	}

	var candidates []candidate
	for fi, spec := range Fields {
		for hi, header := range headers {
			if strings.TrimSpace(header) == "" {
				continue
			}
			if s := ScoreHeader(spec, header); s >= MinMatchScore {
				candidates = append(candidates, candidate{field: fi, header: hi, score: s})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.field != b.field {
			return a.field < b.field
		}
		return a.header < b.header
	})

	mapping := make(ColumnMapping)
	fieldTaken := make(map[int]bool)
	headerTaken := make(map[int]bool)
	for _, c := range candidates {
		if fieldTaken[c.field] || headerTaken[c.header] {
			continue
		}
		fieldTaken[c.field] = true
		headerTaken[c.header] = true
		mapping[Fields[c.field].Key] = strings.TrimSpace(headers[c.header])
	}

	return Detection{
		Mapping:         mapping,
		Matched:         len(mapping),
		MissingRequired: mapping.MissingRequired(),
	}
}

// ScoreHeader rates how well a CSV header matches a canonical field, from 0
// (no resemblance) to 1 (exact match on the key, label or a known alias).
func ScoreHeader(spec FieldSpec, header string) float64 {
	best := 0.0
	for _, name := range fieldNames(spec) {
		if s := scorePair(name, header); s > best {
			best = s
		}
	}
	return best
}

func fieldNames(spec FieldSpec) []string {
	names := make([]string, 0, len(spec.Aliases)+2)
	names = append(names, string(spec.Key), spec.Label)
	return append(names, spec.Aliases...)
}

func scorePair(name, header string) float64 {
	nameTokens, headerTokens := tokens(name), tokens(header)
	nameCompact, headerCompact := strings.Join(nameTokens, ""), strings.Join(headerTokens, "")
	if nameCompact == "" || headerCompact == "" {
		return 0
	}
	if nameCompact == headerCompact {
		return scoreExact
	}

	best := 0.0
	shorter, longer := nameCompact, headerCompact
	shortTokens, longTokens := nameTokens, headerTokens
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
		shortTokens, longTokens = longTokens, shortTokens
	}
	// Containment counts on whole words only, so "Date" does not match
	// "Dates Read".
	if len(shorter) >= minContainsLength && containsRun(longTokens, shortTokens) {
		best = scoreContainsBase + scoreContainsRange*float64(len(shorter))/float64(len(longer))
	}

	if overlap := tokenOverlap(nameTokens, headerTokens); overlap*scoreTokenWeight > best {
		best = overlap * scoreTokenWeight
	}
	return best
}

// tokens folds s and splits it into alphanumeric words.
func tokens(s string) []string {
	return strings.FieldsFunc(normalize.Key(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsRun reports whether sub appears in words as consecutive words.
func containsRun(words, sub []string) bool {
	if len(sub) == 0 || len(sub) > len(words) {
		return false
	}
	for i := 0; i+len(sub) <= len(words); i++ {
		match := true
		for j := range sub {
			if words[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// tokenOverlap is the Jaccard index of two token sets.
func tokenOverlap(a, b []string) float64 {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	union := len(set)
	shared := 0
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			shared++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
