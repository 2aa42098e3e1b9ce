package listaccess

import (
	"context"
	"encoding/json"
	"fmt"
)

// ColumnDescriptor is the column metadata the remote store exposes for a
// list. Only the pieces relevant to the write whitelist are kept: the
// internal field name plus the flags that disqualify a column from being
// written. Descriptors live for the duration of one write operation and are
// never retained.
type ColumnDescriptor struct {
	Name     string `json:"name"`
	ReadOnly bool   `json:"readOnly"`
	Hidden   bool   `json:"hidden"`
}

// columnsEnvelope is the remote wire shape of a column metadata response.
type columnsEnvelope struct {
	Value []ColumnDescriptor `json:"value"`
}

// fetchColumns retrieves column metadata for a list. Identical concurrent
// fetches for the same list are collapsed into one request; the result is
// not cached beyond the in-flight call.
func (r *Records) fetchColumns(ctx context.Context, listID string) ([]ColumnDescriptor, error) {
	v, err, _ := r.columnGroup.Do(listID, func() (interface{}, error) {
		raw, err := r.client.Do(ctx, "GET", "lists/"+listID+"/columns", nil)
		if err != nil {
			return nil, err
		}
		var envelope columnsEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode column metadata: %w", err)
		}
		return envelope.Value, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]ColumnDescriptor), nil
}
