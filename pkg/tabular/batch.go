// Package tabular materializes one collection's documents into a
// row-oriented in-memory batch and serializes it as flat CSV. The
// column set is the union of field names observed across the batch's
// rows; documents stay "as found" apart from the store-internal
// identity field, which never reaches the output.
package tabular

import "sort"

// Batch accumulates the rows of one unit together with the union of
// field names observed across them.
//
// A Batch is owned by a single unit-processing step and is not safe
// for concurrent use.
type Batch struct {
	identityField string
	columns       []string
	seen          map[string]struct{}
	rows          []map[string]interface{}
}

// NewBatch returns an empty batch that drops identityField from every
// appended row.
func NewBatch(identityField string) *Batch {
	return &Batch{
		identityField: identityField,
		seen:          make(map[string]struct{}),
	}
}

// Append adds one row, taking ownership of the map. The identity field
// is removed unconditionally. Remaining field names join the column
// union in first-seen order across rows; keys within a single row are
// visited in sorted order, since Go maps carry no order of their own,
// keeping the final column order deterministic for a given row stream.
func (b *Batch) Append(row map[string]interface{}) {
	if b.identityField != "" {
		delete(row, b.identityField)
	}

	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := b.seen[key]; ok {
			continue
		}
		b.seen[key] = struct{}{}
		b.columns = append(b.columns, key)
	}

	b.rows = append(b.rows, row)
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int {
	return len(b.rows)
}

// Width returns the number of columns in the batch. A positive Len
// with zero Width means every row held only the identity field.
func (b *Batch) Width() int {
	return len(b.columns)
}

// Columns returns the batch's column names in output order.
func (b *Batch) Columns() []string {
	out := make([]string, len(b.columns))
	copy(out, b.columns)
	return out
}
