package proto

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is one decoded protocol line: a 4-letter verb followed by
// comma-separated fields.
type Command struct {
	Verb   string
	Fields []string
	raw    string
}

// ParseCommand decodes a single protocol line. The trailing newline may or
// may not be present.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < 4 {
		return Command{}, fmt.Errorf("line too short for a verb: %q", line)
	}

	parts := strings.Split(line, ",")
	verb := parts[0]
	if len(verb) != 4 {
		return Command{}, fmt.Errorf("malformed verb: %q", verb)
	}

	return Command{
		Verb:   verb,
		Fields: parts[1:],
		raw:    line,
	}, nil
}

// SplitLines breaks a raw inbound chunk into complete protocol lines.
// Empty lines are dropped.
func SplitLines(data []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Field returns field i, or an error when the command is too short.
func (c Command) Field(i int) (string, error) {
	if i >= len(c.Fields) {
		return "", fmt.Errorf("%s: missing field %d", c.Verb, i)
	}
	return strings.TrimSpace(c.Fields[i]), nil
}

// IntField returns field i parsed as an integer.
func (c Command) IntField(i int) (int, error) {
	s, err := c.Field(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: field %d: %w", c.Verb, i, err)
	}
	return v, nil
}

// FloatField returns field i parsed as a float.
func (c Command) FloatField(i int) (float64, error) {
	s, err := c.Field(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: field %d: %w", c.Verb, i, err)
	}
	return v, nil
}

// Rest returns everything after the verb and the first n fields, with
// embedded commas preserved. Chat text is carried this way.
func (c Command) Rest(n int) string {
	idx := len(c.Verb)
	for i := 0; i < n; i++ {
		if i >= len(c.Fields) {
			return ""
		}
		idx += 1 + len(c.Fields[i])
	}
	if idx+1 > len(c.raw) {
		return ""
	}
	return c.raw[idx+1:]
}
