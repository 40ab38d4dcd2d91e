package content

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Processor cleans text coming from users and from the tourism API.
type Processor struct {
	ugc             *bluemonday.Policy
	strict          *bluemonday.Policy
	lineBreaks      *regexp.Regexp
	multiWhitespace *regexp.Regexp
}

func NewProcessor() *Processor {
	return &Processor{
		ugc:             bluemonday.UGCPolicy(),
		strict:          bluemonday.StrictPolicy(),
		lineBreaks:      regexp.MustCompile(`(?i)<br\s*/?>|</p>`),
		multiWhitespace: regexp.MustCompile(`[ \t\r\f\v]+`),
	}
}

// SanitizeHTML keeps safe formatting in user posts and strips scripts and handlers.
func (p *Processor) SanitizeHTML(s string) string {
	return strings.TrimSpace(p.ugc.Sanitize(s))
}

// PlainText strips all markup, e.g. for titles and nicknames.
func (p *Processor) PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(p.strict.Sanitize(s)))
}

// CleanOverview turns the HTML overview of a tour into plain text with line breaks.
func (p *Processor) CleanOverview(s string) string {
	s = p.lineBreaks.ReplaceAllString(s, "\n")
	s = html.UnescapeString(p.strict.Sanitize(s))
	s = p.multiWhitespace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	var cleaned []string
	emptyLines := 0

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			emptyLines++
			if emptyLines <= 1 {
				cleaned = append(cleaned, "")
			}
		} else {
			emptyLines = 0
			cleaned = append(cleaned, line)
		}
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// Summary returns at most maxRunes runes of plain text, ending in "..." when cut.
func (p *Processor) Summary(s string, maxRunes int) string {
	s = strings.Join(strings.Fields(p.PlainText(s)), " ")
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxRunes])) + "..."
}
