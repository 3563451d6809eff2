package mysql

import (
	"fmt"
	"strings"
)

const (
	insertColumns     = 4
	placeholderGrowth = len("(?, ?, ?, ?), ")
)

type queries struct {
	table              string
	selectPending      string
	selectPendingLimit string
	updateVersioned    string
	countByStatus      string
}

func newQueries(table string, ordered bool) queries {
	cols := "id, payload, status, version"
	order := ""
	if ordered {
		order = " ORDER BY id ASC"
	}

	return queries{
		table: table,
		selectPending: fmt.Sprintf(
			"SELECT %s FROM %s WHERE status = ?%s FOR UPDATE SKIP LOCKED",
			cols, table, order,
		),
		selectPendingLimit: fmt.Sprintf(
			"SELECT %s FROM %s WHERE status = ?%s LIMIT ? FOR UPDATE SKIP LOCKED",
			cols, table, order,
		),
		updateVersioned: fmt.Sprintf(
			"UPDATE %s SET payload = ?, status = ?, version = version + 1 WHERE id = ? AND version = ?",
			table,
		),
		countByStatus: fmt.Sprintf("SELECT status, COUNT(*) FROM %s GROUP BY status", table),
	}
}

// insert builds a multi-row INSERT for count rows.
func (q queries) insert(count int) string {
	var b strings.Builder
	b.Grow(len(q.table) + count*placeholderGrowth + len("INSERT INTO  (id, payload, status, version) VALUES "))
	fmt.Fprintf(&b, "INSERT INTO %s (id, payload, status, version) VALUES ", q.table)
	for i := 0; i < count; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?)")
	}

	return b.String()
}
