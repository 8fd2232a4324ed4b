package quizzes

import (
	"database/sql"
)

type quizzesRepo struct{ db *sql.DB }

func New(db *sql.DB) *quizzesRepo {
	return &quizzesRepo{db: db}
}
