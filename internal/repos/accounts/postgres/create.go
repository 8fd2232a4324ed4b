package accounts

import (
	"database/sql"
	"fmt"

	"github.com/quizearn/quizearn/internal/repos/accounts"
)

func (r *accountsRepo) Create(tx *sql.Tx, acc accounts.NewAccount) (bool, error) {
	res, err := tx.Exec(`
		INSERT INTO accounts (id, name, username, referred_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, acc.ID, acc.Name, acc.Username, acc.ReferredBy)
	if err != nil {
		return false, fmt.Errorf("insert account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected == 1, nil
}
