package warehouse

import (
	"strings"

	"railetl/internal/records"
)

// dialect captures the DDL differences between the SQL backends. The mapping
// is deliberately simple and biased toward portable choices.
type dialect struct {
	name     string
	intType  string
	realType string
	boolType string
	textType string
	quote    byte
}

var (
	sqliteDialect = dialect{
		name: "sqlite", intType: "INTEGER", realType: "REAL",
		boolType: "INTEGER", textType: "TEXT", quote: '"',
	}
	postgresDialect = dialect{
		name: "postgres", intType: "BIGINT", realType: "DOUBLE PRECISION",
		boolType: "BOOLEAN", textType: "TEXT", quote: '"',
	}
	mysqlDialect = dialect{
		name: "mysql", intType: "BIGINT", realType: "DOUBLE",
		boolType: "BOOLEAN", textType: "VARCHAR(512)", quote: '`',
	}
)

func (d dialect) ident(name string) string {
	q := string(d.quote)
	return q + strings.ReplaceAll(name, q, "") + q
}

// columnType infers a column's SQL type from the first typed cell. Columns
// holding only no-data cells degrade to text, which every backend accepts.
func (d dialect) columnType(t *records.Table, col string) string {
	for i := 0; i < t.Len(); i++ {
		switch t.Value(i, col).(type) {
		case int64:
			return d.intType
		case float64:
			return d.realType
		case bool:
			return d.boolType
		case string:
			return d.textType
		}
	}
	return d.textType
}

// createTableDDL renders a CREATE TABLE statement for the table. The first
// column of every warehouse table is its surrogate key and becomes the
// primary key.
func createTableDDL(t *records.Table, d dialect) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(d.ident(t.Source))
	b.WriteString(" (")
	for i, col := range t.Columns() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.ident(col))
		b.WriteByte(' ')
		b.WriteString(d.columnType(t, col))
		if i == 0 && strings.HasSuffix(col, "_id") {
			b.WriteString(" PRIMARY KEY")
		}
	}
	b.WriteString(")")
	return b.String()
}
