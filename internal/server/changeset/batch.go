package changeset

import (
	"time"

	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

// Created is a record the client made offline, keyed by its temporary id.
type Created[T any] struct {
	TempID protocol.TempID
	Record T
}

// Ops are the normalized operations of one entity kind. Records carry no
// owner; the reconciler assigns it.
type Ops[T any] struct {
	Created []Created[T]
	Updated []T
	Deleted []int64
}

// Len is the number of operations.
func (o Ops[T]) Len() int {
	return len(o.Created) + len(o.Updated) + len(o.Deleted)
}

// Skip describes an item dropped by the parser.
type Skip struct {
	Kind  string
	List  string
	Index int
	Err   error
}

// Batch is a parsed sync request.
type Batch struct {
	Watermark    time.Time
	Appointments Ops[models.Appointment]
	Notes        Ops[models.Note]
	Skipped      []Skip
}
