package ledger

import (
	"context"
	"fmt"
	"io"

	"github.com/quizearn/quizearn/internal/quizfile"
)

// ImportQuizzes parses an uploaded quiz file and adds every well-formed block
// to the catalog. It returns how many were added and how many blocks the
// parser discarded.
func (s *Service) ImportQuizzes(ctx context.Context, r io.Reader) (int, int, error) {
	parsed, skipped, err := quizfile.Parse(r)
	if err != nil {
		return 0, 0, fmt.Errorf("parse quiz file: %w", err)
	}

	added := 0

	for _, q := range parsed {
		_, err := s.quizzes.Add(ctx, q.Question, q.Options, q.Correct)
		if err != nil {
			return added, skipped, fmt.Errorf("add quiz: %w", err)
		}

		added++
	}

	return added, skipped, nil
}
