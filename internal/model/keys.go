package model

import "strconv"

// Key identifies one tuple in an app message dictionary.
type Key uint32

// Message keys understood by the watch.
const (
	KeyLocation        Key = 0
	KeyConditions      Key = 1
	KeyTemperature     Key = 2
	KeyUpdateAvailable Key = 999

	// KeyRefresh is the outbound "please refresh weather" key.
	KeyRefresh Key = 0
)

// KeyKind is the closed set of meanings a key can have.
type KeyKind int

const (
	KindIgnored KeyKind = iota
	KindLocation
	KindConditions
	KindTemperature
	KindUpdateAvailable
)

func (k KeyKind) String() string {
	switch k {
	case KindLocation:
		return "location"
	case KindConditions:
		return "conditions"
	case KindTemperature:
		return "temperature"
	case KindUpdateAvailable:
		return "update"
	default:
		return "ignored"
	}
}

// Classify maps a raw key onto its kind. Unknown keys are KindIgnored.
func Classify(k Key) KeyKind {
	switch k {
	case KeyLocation:
		return KindLocation
	case KeyConditions:
		return KindConditions
	case KeyTemperature:
		return KindTemperature
	case KeyUpdateAvailable:
		return KindUpdateAvailable
	default:
		return KindIgnored
	}
}

// Value is either a string or a 32-bit integer.
type Value struct {
	Str   string
	Int   int32
	IsInt bool
}

// StringValue wraps s.
func StringValue(s string) Value { return Value{Str: s} }

// IntValue wraps n.
func IntValue(n int32) Value { return Value{Int: n, IsInt: true} }

// String renders the value as text; integers are printed in decimal.
func (v Value) String() string {
	if v.IsInt {
		return strconv.FormatInt(int64(v.Int), 10)
	}
	return v.Str
}

// Tuple is one key/value pair.
type Tuple struct {
	Key   Key
	Value Value
}

// Dictionary is an ordered batch of tuples delivered as one message.
type Dictionary []Tuple

// Get returns the first value bound to k.
func (d Dictionary) Get(k Key) (Value, bool) {
	for _, t := range d {
		if t.Key == k {
			return t.Value, true
		}
	}
	return Value{}, false
}

// RefreshRequest is the zero-payload outbound request for new weather.
func RefreshRequest() Dictionary {
	return Dictionary{{Key: KeyRefresh, Value: IntValue(0)}}
}
