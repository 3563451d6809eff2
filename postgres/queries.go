package postgres

import "fmt"

type queries struct {
	selectPending      string
	selectPendingLimit string
	updateVersioned    string
	insert             string
	countByStatus      string
}

func newQueries(table string, ordered bool) queries {
	cols := "id, payload, status, version"
	order := ""
	if ordered {
		order = " ORDER BY id ASC"
	}

	return queries{
		selectPending: fmt.Sprintf(
			"SELECT %s FROM %s WHERE status = $1%s FOR UPDATE SKIP LOCKED",
			cols, table, order,
		),
		selectPendingLimit: fmt.Sprintf(
			"SELECT %s FROM %s WHERE status = $1%s LIMIT $2 FOR UPDATE SKIP LOCKED",
			cols, table, order,
		),
		updateVersioned: fmt.Sprintf(
			"UPDATE %s SET payload = $1, status = $2, version = version + 1 WHERE id = $3 AND version = $4",
			table,
		),
		insert:        fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1, $2, $3, $4)", table, cols),
		countByStatus: fmt.Sprintf("SELECT status, COUNT(*) FROM %s GROUP BY status", table),
	}
}
