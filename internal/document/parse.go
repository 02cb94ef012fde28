package document

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
	"unicode"
)

// ParseMarkdown builds a document from a lightweight markdown dialect:
//
//	# Title                  document title (first level-1 heading)
//	## Heading               starts a section whose path is the slug of Heading
//	@source sales.csv        declares a data source
//	@citation-style IEEE     sets the citation style
//
// Everything else is appended to the current section's text.
func ParseMarkdown(id string, data []byte) *Document {
	doc := New(id, id)

	var current string
	var body []string
	flush := func() {
		if current == "" {
			return
		}
		doc.Set(current, strings.TrimSpace(strings.Join(body, "\n")))
		body = nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "## "):
			flush()
			current = Slugify(strings.TrimPrefix(trimmed, "## "))
			if current == "" {
				current = "section"
			}
			if _, exists := doc.Node(current); exists {
				current = uniqueSlug(doc, current)
			}
		case strings.HasPrefix(trimmed, "# ") && current == "":
			doc.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		case strings.HasPrefix(trimmed, "@source "):
			doc.AddSource(strings.TrimSpace(strings.TrimPrefix(trimmed, "@source ")))
		case strings.HasPrefix(trimmed, "@citation-style "):
			doc.Set(SettingsPrefix+SettingCitationStyle, strings.TrimSpace(strings.TrimPrefix(trimmed, "@citation-style ")))
		default:
			if current != "" {
				body = append(body, line)
			}
		}
	}
	flush()

	return doc
}

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

func uniqueSlug(doc *Document, base string) string {
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, exists := doc.Node(candidate); !exists {
			return candidate
		}
	}
}
