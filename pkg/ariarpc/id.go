package ariarpc

import (
	"bytes"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"
)

// ID is a correlation identifier: either an integer or a string.
// The zero value is the integer 0. IDs are comparable and can be used
// as map keys.
type ID struct {
	num   int64
	str   string
	isStr bool
}

// IntID returns an integer correlation identifier.
func IntID(n int64) ID {
	return ID{num: n}
}

// StringID returns a string correlation identifier.
func StringID(s string) ID {
	return ID{str: s, isStr: true}
}

// Int returns the integer value and true if id is an integer.
func (id ID) Int() (int64, bool) {
	return id.num, !id.isStr
}

// Str returns the string value and true if id is a string.
func (id ID) Str() (string, bool) {
	return id.str, id.isStr
}

func (id ID) String() string {
	if id.isStr {
		return strconv.Quote(id.str)
	}
	return strconv.FormatInt(id.num, 10)
}

// MarshalJSON encodes id as a bare JSON number or string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.isStr {
		return json.Marshal(id.str)
	}
	return []byte(strconv.FormatInt(id.num, 10)), nil
}

// UnmarshalJSON accepts a JSON string or an integral JSON number.
// Every other shape fails with ErrInvalidID.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ErrInvalidID
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ErrInvalidID
		}
		*id = StringID(s)
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return ErrInvalidID
	}
	*id = IntID(n)
	return nil
}

// idSequence hands out strictly increasing integer ids. It is seeded from
// the wall clock so ids from successive client instances do not collide.
type idSequence struct {
	n atomic.Int64
}

func newIDSequence() *idSequence {
	s := &idSequence{}
	s.n.Store(time.Now().UnixNano())
	return s
}

func (s *idSequence) next() ID {
	return IntID(s.n.Add(1))
}
