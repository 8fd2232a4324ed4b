package quizfile

import (
	"strings"
	"testing"
)

func TestParse_WellFormed(t *testing.T) {
	t.Parallel()

	input := `What is 2+2?
1|3
2|4
3|5
4|6
ANS: 2
---
Capital of Japan?
1|Kyoto
2|Osaka
3|Tokyo
4|Nagoya
ANS: 3`

	quizzes, skipped, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if skipped != 0 {
		t.Fatalf("skipped: want 0, got %d", skipped)
	}
	if len(quizzes) != 2 {
		t.Fatalf("quizzes: want 2, got %d", len(quizzes))
	}

	if quizzes[0].Question != "What is 2+2?" || quizzes[0].Correct != 2 || quizzes[0].Options[1] != "4" {
		t.Fatalf("first quiz mismatch: %+v", quizzes[0])
	}
	if quizzes[1].Question != "Capital of Japan?" || quizzes[1].Correct != 3 || quizzes[1].Options[2] != "Tokyo" {
		t.Fatalf("second quiz mismatch: %+v", quizzes[1])
	}
}

func TestParse_MalformedBlocks(t *testing.T) {
	t.Parallel()

	type tc struct {
		name  string
		block string
	}

	tests := []tc{
		{
			name:  "too_few_lines",
			block: "Q?\n1|a\n2|b\nANS: 1",
		},
		{
			name:  "missing_answer_marker",
			block: "Q?\n1|a\n2|b\n3|c\n4|d\nno marker",
		},
		{
			name:  "answer_out_of_range",
			block: "Q?\n1|a\n2|b\n3|c\n4|d\nANS: 5",
		},
		{
			name:  "answer_not_numeric",
			block: "Q?\n1|a\n2|b\n3|c\n4|d\nANS: two",
		},
		{
			name:  "three_options",
			block: "Q?\n1|a\n2|b\n3|c\nANS: 1\npadding",
		},
		{
			name:  "five_options",
			block: "Q?\n1|a\n2|b\n3|c\n4|d\n5|e\nANS: 1",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			quizzes, skipped, err := Parse(strings.NewReader(tt.block))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}

			if len(quizzes) != 0 {
				t.Fatalf("malformed block accepted: %+v", quizzes)
			}
			if skipped != 1 {
				t.Fatalf("skipped: want 1, got %d", skipped)
			}
		})
	}
}

// One bad block never poisons the rest of the file.
func TestParse_MixedFile(t *testing.T) {
	t.Parallel()

	input := `Good one?
1|a
2|b
3|c
4|d
ANS: 1
---
broken
---
Also good?
1|w
2|x
3|y
4|z
ANS: 4`

	quizzes, skipped, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(quizzes) != 2 {
		t.Fatalf("quizzes: want 2, got %d", len(quizzes))
	}
	if skipped != 1 {
		t.Fatalf("skipped: want 1, got %d", skipped)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	t.Parallel()

	quizzes, skipped, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(quizzes) != 0 || skipped != 0 {
		t.Fatalf("want nothing, got quizzes=%d skipped=%d", len(quizzes), skipped)
	}
}

func TestParse_WhitespaceTolerance(t *testing.T) {
	t.Parallel()

	input := "\n  Question with padding?  \n 1| option a \n2|option b\n3|option c\n4|option d\n  ANS: 4  \n"

	quizzes, skipped, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if skipped != 0 || len(quizzes) != 1 {
		t.Fatalf("want one quiz, got quizzes=%d skipped=%d", len(quizzes), skipped)
	}

	q := quizzes[0]
	if q.Question != "Question with padding?" {
		t.Fatalf("question not trimmed: %q", q.Question)
	}
	if q.Options[0] != "option a" {
		t.Fatalf("option not trimmed: %q", q.Options[0])
	}
	if q.Correct != 4 {
		t.Fatalf("correct: want 4, got %d", q.Correct)
	}
}
