package report

import (
	"strings"
	"unicode/utf8"
)

// Wrap breaks text into lines whose printed width at size points stays
// within maxWidth millimetres. Words wider than a line are split; explicit
// newlines start a new line.
func Wrap(text string, maxWidth, size float64) []string {
	width := func(s string) float64 { return TextWidth(s, size, false) }

	var lines []string
	for _, paragraph := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := ""
		for _, word := range words {
			for width(word) > maxWidth {
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				var head string
				head, word = fitPrefix(word, maxWidth, width)
				lines = append(lines, head)
			}

			switch {
			case word == "":
			case line == "":
				line = word
			case width(line+" "+word) <= maxWidth:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// fitPrefix cuts word after the longest prefix that fits, keeping at least
// one rune so the caller always makes progress
func fitPrefix(word string, maxWidth float64, width func(string) float64) (string, string) {
	cut := 0
	for i := range word {
		if i == 0 {
			continue
		}
		if width(word[:i]) > maxWidth {
			break
		}
		cut = i
	}
	if cut == 0 {
		_, cut = utf8.DecodeRuneInString(word)
	}
	return word[:cut], word[cut:]
}
