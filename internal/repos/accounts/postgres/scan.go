package accounts

import (
	"database/sql"
	"fmt"

	"github.com/quizearn/quizearn/internal/repos/accounts"
)

func scanAccounts(rows *sql.Rows) ([]accounts.Account, error) {
	var out []accounts.Account

	for rows.Next() {
		var acc accounts.Account

		err := rows.Scan(
			&acc.ID,
			&acc.Name,
			&acc.Username,
			&acc.Balance,
			&acc.ReferralCount,
			&acc.ReferredBy,
			&acc.QuizPlayed,
			&acc.Banned,
			&acc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}

		out = append(out, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return out, nil
}
