// Package dataset loads the restaurant and review tables from CSV files
// or Postgres and hands them to the ranking call as immutable snapshots.
package dataset

import "fmt"

// MissingColumnError reports a required column absent from an input
// table. It is a structural data error: the whole load fails and the
// error surfaces to the caller with the offending column name.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s table: required column %q is missing", e.Table, e.Column)
}
