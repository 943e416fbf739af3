package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/schedsync/internal/common"
)

// TempID is the client-only identifier of a record created offline. The
// server never interprets it; it is echoed back exactly as received (a JSON
// string or a JSON number) so clients can match remaps by equality.
type TempID struct {
	raw json.RawMessage
}

// NewTempID wraps a string identifier.
func NewTempID(s string) TempID {
	return TempID{raw: json.RawMessage(strconv.Quote(s))}
}

// IsZero reports whether no identifier was supplied.
func (t TempID) IsZero() bool { return len(t.raw) == 0 }

// String returns the identifier without JSON quoting.
func (t TempID) String() string {
	if len(t.raw) > 0 && t.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(t.raw, &s); err == nil {
			return s
		}
	}
	return string(t.raw)
}

func (t TempID) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return t.raw, nil
}

// UnmarshalJSON accepts a non-empty string or a number.
func (t *TempID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("%w: empty temp id", common.ErrorValidation)
	}
	switch {
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			return fmt.Errorf("%w: empty temp id", common.ErrorValidation)
		}
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: temp id must be a string or a number", common.ErrorValidation)
	}
	t.raw = append(json.RawMessage(nil), b...)
	return nil
}
