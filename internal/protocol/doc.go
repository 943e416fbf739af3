// Package protocol defines the JSON wire contract of the delta-sync service:
// the request envelope a client submits (watermark plus change-set), the
// reply (new watermark, id remaps, outbound delta) and the small auth and
// backup payloads that travel next to it.
//
// The types are shared by the server transports and the client so both sides
// agree on field names byte for byte. Inbound parsing on the server does not
// decode straight into these types: the change ledger parser validates every
// item on its own so one malformed item cannot fail the whole call.
package protocol
