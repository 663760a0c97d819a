package spf

import (
	"errors"

	"github.com/tinylib/msgp/msgp"
)

var (
	_ msgp.Marshaler   = (*Outcome)(nil)
	_ msgp.Unmarshaler = (*Outcome)(nil)
	_ msgp.Sizer       = (*Outcome)(nil)
)

// Keys of the encoded Outcome map.
const (
	keyID        = "id"
	keyVerdict   = "verdict"
	keyErrorKind = "error_kind"
	keyProblem   = "problem"
	keyDomain    = "domain"
	keyMatch     = "match"
	keyHops      = "hops"
)

// MarshalMsg appends the MessagePack encoding of o to b.
// Err is represented by Problem and ErrorKind.
func (o *Outcome) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.Require(b, o.Msgsize())
	b = msgp.AppendMapHeader(b, 7)
	b = msgp.AppendString(b, keyID)
	b = msgp.AppendString(b, o.ID)
	b = msgp.AppendString(b, keyVerdict)
	b = msgp.AppendString(b, string(o.Verdict))
	b = msgp.AppendString(b, keyErrorKind)
	b = msgp.AppendString(b, string(o.ErrorKind))
	b = msgp.AppendString(b, keyProblem)
	b = msgp.AppendString(b, o.Problem)
	b = msgp.AppendString(b, keyDomain)
	b = msgp.AppendString(b, o.Domain)
	b = msgp.AppendString(b, keyMatch)
	b = msgp.AppendString(b, o.Match)
	b = msgp.AppendString(b, keyHops)
	b = msgp.AppendInt(b, o.Hops)
	return b, nil
}

// UnmarshalMsg decodes an Outcome from bts and returns the remaining bytes.
// Unknown keys are skipped. Err is rebuilt from Problem when one is present.
func (o *Outcome) UnmarshalMsg(bts []byte) ([]byte, error) {
	sz, bts, err := msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return bts, msgp.WrapError(err)
	}

	*o = Outcome{}
	for ; sz > 0; sz-- {
		var field []byte
		field, bts, err = msgp.ReadMapKeyZC(bts)
		if err != nil {
			return bts, msgp.WrapError(err)
		}

		var s string
		switch msgp.UnsafeString(field) {
		case keyID:
			o.ID, bts, err = msgp.ReadStringBytes(bts)
		case keyVerdict:
			s, bts, err = msgp.ReadStringBytes(bts)
			o.Verdict = Verdict(s)
		case keyErrorKind:
			s, bts, err = msgp.ReadStringBytes(bts)
			o.ErrorKind = ErrorKind(s)
		case keyProblem:
			o.Problem, bts, err = msgp.ReadStringBytes(bts)
		case keyDomain:
			o.Domain, bts, err = msgp.ReadStringBytes(bts)
		case keyMatch:
			o.Match, bts, err = msgp.ReadStringBytes(bts)
		case keyHops:
			o.Hops, bts, err = msgp.ReadIntBytes(bts)
		default:
			bts, err = msgp.Skip(bts)
		}
		if err != nil {
			return bts, msgp.WrapError(err, string(field))
		}
	}

	if o.Problem != "" {
		o.Err = errors.New(o.Problem)
	}
	return bts, nil
}

// Msgsize returns an upper bound of the encoded size of o.
func (o *Outcome) Msgsize() int {
	str := func(s string) int { return msgp.StringPrefixSize + len(s) }
	return msgp.MapHeaderSize +
		str(keyID) + str(o.ID) +
		str(keyVerdict) + str(string(o.Verdict)) +
		str(keyErrorKind) + str(string(o.ErrorKind)) +
		str(keyProblem) + str(o.Problem) +
		str(keyDomain) + str(o.Domain) +
		str(keyMatch) + str(o.Match) +
		str(keyHops) + msgp.IntSize
}
