package store

import (
	"context"
	"fmt"
)

// LogRequest records the request half of one outgoing query — one row
// per outgoing request in network_log — returning its rowid so the
// response half can be linked back to it once the transport call
// returns.
func LogRequest(ctx context.Context, s *Store, queryText, variablesJSON string, requestedAtMillis int64) (int64, error) {
	var id int64
	err := WithTx(ctx, s, func(tx *Tx) error {
		res, err := tx.Exec(ctx, `INSERT INTO network_log (query, variables, requested_at) VALUES (?, ?, ?)`, queryText, variablesJSON, requestedAtMillis)
		if err != nil {
			return fmt.Errorf("mirror: log request: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("mirror: read network_log rowid: %w", err)
		}
		return nil
	})
	return id, err
}

// LogResponse fills in the response half of the network_log row logID,
// linking it to the ingest it produced (updateID is nil when the
// transport call itself failed before any ingest ran).
func LogResponse(ctx context.Context, s *Store, logID, respondedAtMillis int64, responseJSON string, updateID *int64) error {
	return WithTx(ctx, s, func(tx *Tx) error {
		_, err := tx.Exec(ctx, `UPDATE network_log SET responded_at = ?, response = ?, update_id = ? WHERE id = ?`,
			respondedAtMillis, responseJSON, updateID, logID)
		if err != nil {
			return fmt.Errorf("mirror: log response: %w", err)
		}
		return nil
	})
}
