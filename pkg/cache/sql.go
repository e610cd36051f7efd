package cache

import (
	"database/sql"
	"time"
)

func buildCreateResponsesTable() string {
	return `CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		fetched INTEGER NOT NULL);`
}

func buildSelectResponseCommand() (string, func(*sql.Rows) ([]byte, bool, error)) {
	return `SELECT body FROM responses WHERE key = ?`, processSelectResponseRows
}

func processSelectResponseRows(rows *sql.Rows) ([]byte, bool, error) {
	defer rows.Close()

	// only can be one row
	if rows.Next() {
		var body []byte
		err := rows.Scan(&body)
		if err != nil {
			return nil, false, err
		}
		return body, true, nil
	}
	return nil, false, rows.Err()
}

func buildUpsertResponseCommand(key string, body []byte) (string, []interface{}) {
	return `INSERT OR REPLACE INTO responses (key, body, fetched) VALUES (?, ?, ?)`,
		[]interface{}{key, body, time.Now().Unix()}
}

func buildCountResponsesCommand() string {
	return `SELECT COUNT(*) FROM responses`
}
