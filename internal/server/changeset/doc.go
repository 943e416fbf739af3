// Package changeset turns the untrusted body of a sync request into typed
// operations.
//
// The envelope (watermark and the per-kind created/updated/deleted lists) must
// be well formed; a malformed envelope is reported as common.ErrorValidation.
// Individual items are checked only structurally: an item with a missing
// required field or an ill-typed id is skipped and reported in Batch.Skipped,
// never failing the whole request. Field values are not interpreted (an
// unparseable date is left for the store to reject).
package changeset
