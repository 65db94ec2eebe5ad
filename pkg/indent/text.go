package indent

import "strings"

// Text is a block of lines to indent when rendered.
type Text struct {
	Body  string
	Level int
	Size  int
	Char  string

	// SkipFirstLine leaves the first line unindented
	SkipFirstLine bool
}

// String renders the indented text.
func (t Text) String() string {
	return strings.Join(t.Lines(), "\n")
}

// Lines renders the indented lines.
func (t Text) Lines() []string {
	prefix := ""
	if t.Level > 0 && t.Size > 0 {
		prefix = strings.Repeat(t.Char, t.Level*t.Size)
	}

	lines := strings.Split(strings.ReplaceAll(t.Body, "\r\n", "\n"), "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i := range lines {
		if i == 0 && t.SkipFirstLine {
			continue
		}
		lines[i] = prefix + lines[i]
	}
	return lines
}

// IndentText indents every line of text by level steps of size chars.
func IndentText(text string, level, size int, char string) string {
	return Text{Body: text, Level: level, Size: size, Char: char}.String()
}
