package journal

import (
	"context"
)

func (db *DB) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS 'forwarded' (
id integer PRIMARY KEY AUTOINCREMENT,
account text NOT NULL,
uid int NOT NULL,
messageid varchar(256),
subject text,
forwarded_at int NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS forwarded_at_idx ON forwarded (forwarded_at);`,
	}

	for _, m := range migrations {
		_, err := db.db.ExecContext(ctx, m)
		if err != nil {
			return err
		}
	}
	return nil
}
