package db

import "regexp"

var dollarPlaceholder = regexp.MustCompile(`\$\d+`)

// Rebind rewrites PostgreSQL $N placeholders into the form driver expects.
// Queries in this module use each placeholder once, in ascending order,
// so SQLite's anonymous ? binds them positionally.
func Rebind(driver, query string) string {
	if driver != DriverSQLite {
		return query
	}
	return dollarPlaceholder.ReplaceAllString(query, "?")
}
