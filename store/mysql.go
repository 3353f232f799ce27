package store

import (
	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore persists to a MySQL/MariaDB database, suited to production
// deployments where multiple processes or repeated runs need durable,
// queryable solution history.
type MySQLStore struct {
	*sqlStore
}

// NewMySQLStore opens (and migrates, if needed) a MySQL database via
// dsn, e.g. "user:password@tcp(127.0.0.1:3306)/parsearch?parseTime=true".
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	s, err := openSQLStore("mysql", dsn,
		`CREATE TABLE IF NOT EXISTS search_solutions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(255) NOT NULL,
			payload TEXT NOT NULL,
			objective DOUBLE NOT NULL,
			owner_id INT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS search_checkpoints (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(255) NOT NULL,
			step INT NOT NULL,
			incumbent DOUBLE NOT NULL,
			saved_at DATETIME NOT NULL
		)`)
	if err != nil {
		return nil, err
	}
	return &MySQLStore{sqlStore: s}, nil
}
