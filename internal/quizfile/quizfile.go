// Package quizfile parses the uploaded quiz text format: blocks separated by
// a literal "---" line, each block holding one question line, four
// "N|option text" lines and one "ANS: n" marker. Malformed blocks are
// discarded, never an error.
package quizfile

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

type Quiz struct {
	Question string
	Options  [4]string
	Correct  int // 1..4
}

// Parse returns the well-formed quizzes and the number of discarded blocks.
func Parse(r io.Reader) ([]Quiz, int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read quiz file: %w", err)
	}

	var (
		out     []Quiz
		skipped int
	)

	for _, block := range strings.Split(strings.TrimSpace(string(raw)), "---") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		q, ok := parseBlock(block)
		if !ok {
			skipped++
			continue
		}

		out = append(out, q)
	}

	return out, skipped, nil
}

func parseBlock(block string) (Quiz, bool) {
	lines := strings.Split(block, "\n")
	if len(lines) < 6 {
		return Quiz{}, false
	}

	q := Quiz{Question: strings.TrimSpace(lines[0])}

	var options []string

	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "ANS:"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "ANS:")))
			if err != nil {
				return Quiz{}, false
			}

			q.Correct = n
		case strings.Contains(line, "|"):
			parts := strings.SplitN(line, "|", 2)
			options = append(options, strings.TrimSpace(parts[1]))
		}
	}

	if q.Question == "" || len(options) != 4 || q.Correct < 1 || q.Correct > 4 {
		return Quiz{}, false
	}

	copy(q.Options[:], options)

	return q, true
}
