package accounts

import (
	"database/sql"
	"fmt"
)

func (r *accountsRepo) IncrementReferrals(tx *sql.Tx, id int64) error {
	_, err := tx.Exec(`
		UPDATE accounts
		SET referral_count = referral_count + 1
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("increment referral count: %w", err)
	}

	return nil
}

func (r *accountsRepo) IncrementQuizPlayed(tx *sql.Tx, id int64) error {
	_, err := tx.Exec(`
		UPDATE accounts
		SET quiz_played = quiz_played + 1
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("increment quiz played: %w", err)
	}

	return nil
}
