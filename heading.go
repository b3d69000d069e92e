package siteindex

import (
	"regexp"
	"strings"
)

// HeadingSeparator joins the titles of a heading path.
const HeadingSeparator = " > "

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)(?:\s+#+)?\s*$`)

// Heading is an ATX markdown heading.
type Heading struct {
	Level int
	Title string
}

// ParseHeading returns the heading on line, if line is one.
func ParseHeading(line string) (Heading, bool) {
	m := headingRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Heading{}, false
	}
	return Heading{Level: len(m[1]), Title: strings.TrimSpace(m[2])}, true
}

// SetHeadingPaths fills the HeadingPath of chunks cut from markdown with the
// headings in effect where each chunk's first paragraph begins, outermost
// first. Headings that open a chunk count toward its own path. Lines inside
// fenced code blocks are never headings.
func SetHeadingPaths(chunks []*Chunk) {
	var stack []Heading
	fenced := false

	for _, c := range chunks {
		path := joinHeadings(stack)
		started := false

		for _, line := range strings.Split(c.Text, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				fenced = !fenced
				started = true
				continue
			}
			if fenced {
				continue
			}

			h, ok := ParseHeading(line)
			if !ok {
				started = true
				continue
			}
			for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, h)
			if !started {
				path = joinHeadings(stack)
			}
		}

		c.HeadingPath = path
	}
}

func joinHeadings(stack []Heading) string {
	titles := make([]string, len(stack))
	for i, h := range stack {
		titles[i] = h.Title
	}
	return strings.Join(titles, HeadingSeparator)
}
