package parsers

import (
	"regexp"
	"strings"

	"hf_cortex_backend/platform/textkit"
)

// FullName is a strictly parsed Russian full name.
type FullName struct {
	Last   string
	First  string
	Middle string
	// Raw is the normalized "Last First Middle" form for CRM logs.
	Raw string
}

// Address and service words that must never be mistaken for name parts.
var fullNameStopwords = map[string]struct{}{
	"город": {}, "г": {}, "ул": {}, "улица": {}, "проспект": {}, "пр": {},
	"пр-т": {}, "дом": {}, "д": {}, "кв": {}, "квартира": {}, "корп": {},
	"корпус": {}, "стр": {}, "строение": {}, "офис": {}, "самовывоз": {},
	"индекс": {}, "республика": {}, "область": {}, "край": {}, "район": {},
	"р-н": {}, "шоссе": {}, "пер": {}, "переулок": {}, "проезд": {},
}

var (
	cyrillicNameWordRe = regexp.MustCompile(`[А-ЯЁ][А-ЯЁа-яё\-]+`)
	patronymicRe       = regexp.MustCompile(`(?i)(ович|евич|ич|овна|евна|ична|инична|вна|на)$`)
)

// ExtractFullName finds a strictly complete Russian full name in text.
//
// It scans windows of three capitalized Cyrillic words that are adjacent
// in the text, separated by whitespace only, and accepts either
// "Фамилия Имя Отчество" (patronymic third) or "Имя Отчество Фамилия"
// (patronymic second). Words split by digits or punctuation do not form
// a window. Two-word names and initials are always rejected: a partial
// name must never reach the CRM.
func ExtractFullName(text string) *FullName {
	t := textkit.Normalize(text)
	if t == "" {
		return nil
	}

	spans := cyrillicNameWordRe.FindAllStringIndex(t, -1)
	for i := 0; i+2 < len(spans); i++ {
		if !whitespaceOnly(t[spans[i][1]:spans[i+1][0]]) || !whitespaceOnly(t[spans[i+1][1]:spans[i+2][0]]) {
			continue
		}
		w1 := t[spans[i][0]:spans[i][1]]
		w2 := t[spans[i+1][0]:spans[i+1][1]]
		w3 := t[spans[i+2][0]:spans[i+2][1]]
		if isNameStopword(w1) || isNameStopword(w2) || isNameStopword(w3) {
			continue
		}
		if patronymicRe.MatchString(w3) {
			return buildFullName(w1, w2, w3)
		}
		if patronymicRe.MatchString(w2) {
			return buildFullName(w3, w1, w2)
		}
	}
	return nil
}

func whitespaceOnly(s string) bool {
	return strings.TrimSpace(s) == "" && s != ""
}

func isNameStopword(word string) bool {
	_, ok := fullNameStopwords[strings.ToLower(word)]
	return ok
}

func buildFullName(last, first, middle string) *FullName {
	l := normalizeNameWord(last)
	f := normalizeNameWord(first)
	m := normalizeNameWord(middle)
	if l == "" || f == "" || m == "" {
		return nil
	}
	return &FullName{
		Last:   l,
		First:  f,
		Middle: m,
		Raw:    l + " " + f + " " + m,
	}
}

func normalizeNameWord(word string) string {
	word = strings.Trim(word, "-")
	if word == "" {
		return ""
	}
	runes := []rune(strings.ToLower(word))
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}
