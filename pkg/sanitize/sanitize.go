// Package sanitize cleans user supplied strings before they become file names
// or plain text cells.
package sanitize

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// maxFileNameBytes leaves room for the ".png" suffix under the usual 255 byte limit.
const maxFileNameBytes = 200

var (
	fileNameSpecials = strings.NewReplacer(
		"?", "", "[", "", "]", "", "/", "", `\`, "", "=", "", "<", "", ">", "",
		":", "", ";", "", ",", "", "'", "", `"`, "", "&", "", "$", "", "#", "",
		"*", "", "(", "", ")", "", "|", "", "~", "", "`", "", "!", "", "{", "",
		"}", "", "%", "", "+", "", "’", "", "«", "", "»", "",
		"”", "", "“", "",
	)
	repeatedDots   = regexp.MustCompile(`\.{2,}`)
	dashRuns       = regexp.MustCompile(`[\r\n\t -]+`)
	whitespaceRuns = regexp.MustCompile(`[\r\n\t ]+`)
	percentOctets  = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
)

// FileName turns s into a safe file name stem. Characters that are special on
// common file systems or in URLs are removed, whitespace and dash runs become a
// single dash, and leading or trailing dots, dashes and underscores are trimmed.
// The result may be empty.
func FileName(s string) string {
	s = norm.NFC.String(strings.ToValidUTF8(s, ""))
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = stripControl(s, false)
	s = fileNameSpecials.Replace(s)
	s = repeatedDots.ReplaceAllString(s, ".")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, ".-_")
	return truncate(s, maxFileNameBytes)
}

// TextField reduces s to a single line of plain text: markup is removed
// together with script and style bodies, whitespace runs collapse to one space,
// control characters and percent-encoded octets are dropped.
func TextField(s string) string {
	s = strings.ToValidUTF8(s, "")
	if strings.Contains(s, "<") {
		s = stripTags(s)
	}
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = stripControl(s, true)

	for percentOctets.MatchString(s) {
		s = percentOctets.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
}

func stripTags(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var out bytes.Buffer
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way the text so far is kept.
			return out.String()
		case html.TextToken:
			if skip == 0 {
				out.Write(z.Raw())
			}
		case html.StartTagToken:
			if isSkippedElement(z) {
				skip++
			}
		case html.EndTagToken:
			if skip > 0 && isSkippedElement(z) {
				skip--
			}
		}
	}
}

func isSkippedElement(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style:
		return true
	}
	return false
}

func stripControl(s string, keepSpaces bool) string {
	return strings.Map(func(r rune) rune {
		if keepSpaces && (r == ' ' || r == '\t' || r == '\n' || r == '\r') {
			return r
		}
		if r == '\t' || r == '\n' || r == '\r' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimRight(s[:cut], ".-_")
}
