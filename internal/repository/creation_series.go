package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// seriesScope narrows a creation series to rows matching one column value.
type seriesScope struct {
	column string
	value  interface{}
}

// loadCreationSeries returns the ascending created_at values inside [since, until)
// together with the number of rows created strictly before since.
func loadCreationSeries(ctx context.Context, db *sqlx.DB, table string, since, until time.Time, scope *seriesScope) ([]time.Time, int, error) {
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE created_at < $1", table)
	countArgs := []interface{}{since}
	eventsQuery := fmt.Sprintf("SELECT created_at FROM %s WHERE created_at >= $1 AND created_at < $2", table)
	eventArgs := []interface{}{since, until}
	if scope != nil {
		countArgs = append(countArgs, scope.value)
		countQuery += fmt.Sprintf(" AND %s = $%d", scope.column, len(countArgs))
		eventArgs = append(eventArgs, scope.value)
		eventsQuery += fmt.Sprintf(" AND %s = $%d", scope.column, len(eventArgs))
	}
	eventsQuery += " ORDER BY created_at ASC"

	var baseline int
	if err := db.GetContext(ctx, &baseline, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count %s before window: %w", table, err)
	}
	var events []time.Time
	if err := db.SelectContext(ctx, &events, eventsQuery, eventArgs...); err != nil {
		return nil, 0, fmt.Errorf("list %s creation times: %w", table, err)
	}
	return events, baseline, nil
}
