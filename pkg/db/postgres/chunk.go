package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
)

// maxParams is the Postgres limit on bind parameters per statement.
const maxParams = 65535

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

// InsertSQL builds a multi-row INSERT for rows tuples of the given columns.
// suffix is appended verbatim, typically an ON CONFLICT clause.
func InsertSQL(table string, columns []indexermodels.ColumnDef, rows int, suffix string) string {
	names := indexermodels.ColumnsToNameList(columns)

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(") VALUES ")

	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range names {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
		}
		b.WriteByte(')')
	}
	if suffix != "" {
		b.WriteByte(' ')
		b.WriteString(suffix)
	}
	return b.String()
}

// QueueChunked queues one multi-row INSERT per chunk of rows onto batch.
func QueueChunked[R indexermodels.Row](batch *pgx.Batch, table string, columns []indexermodels.ColumnDef, rows []R, chunkSize int, suffix string) error {
	if len(columns) == 0 {
		return fmt.Errorf("%s: no columns", table)
	}
	if limit := maxParams / len(columns); chunkSize <= 0 || chunkSize > limit {
		chunkSize = limit
	}

	for _, chunk := range Chunk(rows, chunkSize) {
		args := make([]any, 0, len(chunk)*len(columns))
		for _, row := range chunk {
			values := row.Values()
			if len(values) != len(columns) {
				return fmt.Errorf("%s: row has %d values for %d columns", table, len(values), len(columns))
			}
			args = append(args, values...)
		}
		batch.Queue(InsertSQL(table, columns, len(chunk), suffix), args...)
	}
	return nil
}

// ExecuteBatch sends batch and checks every statement result.
func ExecuteBatch(ctx context.Context, exec Executor, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	br := exec.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch statement %d failed: %w", i, err)
		}
	}
	return nil
}
