package parsers

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"hf_cortex_backend/internal/leadsales/domain"
)

// Ordinal stems cover the declensions customers actually type: "первый",
// "первого", "по второму" and so on. RE2 word boundaries are ASCII-only,
// so Cyrillic stems use explicit non-letter guards.
var ordinalPatterns = []struct {
	re *regexp.Regexp
	n  int
}{
	{regexp.MustCompile(`(?i)(?:^|[^\p{L}])перв[а-яё]*(?:[^\p{L}]|$)`), 1},
	{regexp.MustCompile(`(?i)(?:^|[^\p{L}])втор[а-яё]*(?:[^\p{L}]|$)`), 2},
	{regexp.MustCompile(`(?i)(?:^|[^\p{L}])трет[а-яё]*(?:[^\p{L}]|$)`), 3},
	{regexp.MustCompile(`(?i)(?:^|[^\p{L}])четв[её]рт[а-яё]*(?:[^\p{L}]|$)`), 4},
	{regexp.MustCompile(`(?i)(?:^|[^\p{L}])пят[а-яё]*(?:[^\p{L}]|$)`), 5},
}

var (
	// "вариант 2", "варианта №3", "вариант № 1".
	variantNumberRe = regexp.MustCompile(`(?i)вариант[а-яё]*\s*(?:№\s*)?(\d{1,2})`)

	// A message that is nothing but the number itself, optionally with the
	// word "вариант" or a № sign.
	bareNumberRe = regexp.MustCompile(`(?i)^\s*(?:вариант[а-яё]*\s*)?(?:№\s*)?(\d{1,2})\s*$`)
)

// ExtractOfferChoice detects which offers the customer picked out of a
// numbered list. Quantity phrases are stripped first so "первый вариант
// 2 шт" reads as a pick of offer 1, not offers 1 and 2.
func ExtractOfferChoice(text string) domain.OfferChoice {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return domain.NoChoice()
	}
	cleaned = quantityPhraseRe.ReplaceAllString(cleaned, " ")
	cleaned = quantityXRe.ReplaceAllString(cleaned, " ")

	picked := map[int]bool{}

	for _, p := range ordinalPatterns {
		if p.re.MatchString(cleaned) {
			picked[p.n] = true
		}
	}

	for _, m := range variantNumberRe.FindAllStringSubmatch(cleaned, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			picked[n] = true
		}
	}

	if len(picked) == 0 {
		if m := bareNumberRe.FindStringSubmatch(cleaned); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				picked[n] = true
			}
		}
	}

	if len(picked) == 0 {
		return domain.NoChoice()
	}
	ids := make([]int, 0, len(picked))
	for n := range picked {
		ids = append(ids, n)
	}
	sort.Ints(ids)
	if len(ids) == 1 {
		return domain.SingleChoice(ids[0])
	}
	return domain.MultipleChoice(ids)
}
