package docs

import (
	"regexp"
	"strings"
)

var (
	// Fence start/end allow leading whitespace and support ``` and ~~~
	fenceStartPattern = regexp.MustCompile(`^\s*(` + "```" + `|~~~)\s*([\w+#-]*)[^` + "`" + `]*$`)
	fenceEndPattern   = regexp.MustCompile(`^\s*(` + "```" + `|~~~)\s*$`)

	headingPattern = regexp.MustCompile(`^\s{0,3}(#{1,6})\s+(.+?)\s*#*\s*$`)
	bulletPattern  = regexp.MustCompile(`^(\s*)(?:[-*+]|\d+[.)])\s+(.*)$`)
)

// line is one document line outside fenced blocks.
type line struct {
	num  int
	text string
}

// heading is a markdown ATX heading.
type heading struct {
	level int
	text  string
}

// fence is a fenced code block with the nearest preceding heading.
type fence struct {
	lang    string
	body    string
	line    int
	heading string
}

// markdown is the pre-scanned structure of a document.
type markdown struct {
	title  string
	lines  []line
	fences []fence
}

// scanMarkdown splits content into prose lines and fenced blocks. An
// unterminated fence runs to the end of the document.
func scanMarkdown(content string) *markdown {
	md := &markdown{}
	var (
		inFence        bool
		fenceDelimiter string
		current        fence
		body           []string
		lastHeading    string
	)

	for i, text := range strings.Split(content, "\n") {
		num := i + 1
		text = strings.TrimRight(text, "\r")

		if !inFence {
			if match := fenceStartPattern.FindStringSubmatch(text); match != nil {
				inFence = true
				fenceDelimiter = match[1]
				current = fence{lang: strings.ToLower(match[2]), line: num, heading: lastHeading}
				body = nil
				continue
			}
		} else {
			// Only end the fence if the delimiter matches
			if match := fenceEndPattern.FindStringSubmatch(text); match != nil && match[1] == fenceDelimiter {
				inFence = false
				current.body = strings.Join(body, "\n")
				md.fences = append(md.fences, current)
				continue
			}
			body = append(body, text)
			continue
		}

		if h, ok := parseHeading(text); ok {
			lastHeading = h.text
			if md.title == "" && h.level == 1 {
				md.title = h.text
			}
		}
		md.lines = append(md.lines, line{num: num, text: text})
	}

	if inFence {
		current.body = strings.Join(body, "\n")
		md.fences = append(md.fences, current)
	}
	return md
}

func parseHeading(text string) (heading, bool) {
	m := headingPattern.FindStringSubmatch(text)
	if m == nil {
		return heading{}, false
	}
	return heading{level: len(m[1]), text: cleanInline(m[2])}, true
}

// parseBullet returns the indentation width and text of a list item.
func parseBullet(text string) (int, string, bool) {
	m := bulletPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	return indentWidth(m[1]), strings.TrimSpace(m[2]), true
}

func indentWidth(s string) int {
	w := 0
	for _, r := range s {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}

var inlineReplacer = strings.NewReplacer("**", "", "__", "", "`", "")

// cleanInline strips emphasis and code markers.
func cleanInline(s string) string {
	return strings.TrimSpace(inlineReplacer.Replace(s))
}
