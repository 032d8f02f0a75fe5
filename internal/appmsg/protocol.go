package appmsg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tinytelemetry/cards/internal/model"
)

// Wire format
//
// Each frame is one JSON object on a single line. Property names are decimal
// message keys; values are strings or 32-bit integers. Property order is
// the tuple order.
//
//   watch <- phone   {"0":"Paris","1":"Cloudy","2":15}
//   watch <- phone   {"999":0}
//   watch -> phone   {"0":0}
//
// Non-numeric property names are ignored. Anything else that does not match
// dictionarySchema is rejected.

const dictionarySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "patternProperties": {
    "^[0-9]+$": {
      "oneOf": [
        {"type": "string"},
        {"type": "integer", "minimum": -2147483648, "maximum": 2147483647}
      ]
    }
  }
}`

var schema = jsonschema.MustCompileString("dictionary.schema.json", dictionarySchema)

// ErrInvalidFrame wraps every decode failure.
var ErrInvalidFrame = errors.New("appmsg: invalid frame")

// Decode parses one frame into an ordered dictionary.
func Decode(line []byte) (model.Dictionary, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidFrame)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidFrame)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	// The schema guarantees shape; walk tokens again to keep key order.
	dec = json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	var d model.Dictionary
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
		}
		name, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
		}
		key, err := strconv.ParseUint(name, 10, 32)
		if err != nil {
			continue
		}
		v, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: key %s: %v", ErrInvalidFrame, name, err)
		}
		d = append(d, model.Tuple{Key: model.Key(key), Value: v})
	}
	return d, nil
}

func decodeValue(raw json.RawMessage) (model.Value, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return model.Value{}, err
		}
		return model.StringValue(s), nil
	}
	num := json.Number(raw)
	n, err := num.Int64()
	if err != nil {
		// Integral values written with a fraction or exponent, e.g. 15.0.
		f, ferr := num.Float64()
		if ferr != nil || f != math.Trunc(f) {
			return model.Value{}, err
		}
		if f < math.MinInt32 || f > math.MaxInt32 {
			return model.Value{}, fmt.Errorf("integer %v out of range", f)
		}
		n = int64(f)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return model.Value{}, fmt.Errorf("integer %d out of range", n)
	}
	return model.IntValue(int32(n)), nil
}

// Encode renders d as one frame without the trailing newline.
func Encode(d model.Dictionary) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, t := range d {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strconv.FormatUint(uint64(t.Key), 10))
		b.WriteString(`":`)
		if t.Value.IsInt {
			b.WriteString(strconv.FormatInt(int64(t.Value.Int), 10))
			continue
		}
		s, err := json.Marshal(t.Value.Str)
		if err != nil {
			return nil, err
		}
		b.Write(s)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
