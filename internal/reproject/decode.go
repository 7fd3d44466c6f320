package reproject

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// ErrInvalidJSON reports a body that is not exactly one JSON value.
var ErrInvalidJSON = errors.New("invalid JSON")

// Decode parses data into the payload value model. Numbers stay json.Number so
// values outside coordinate positions keep their lexical form.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after top-level value", ErrInvalidJSON)
	}
	return v, nil
}

// Encode renders a payload produced by Decode or by a transformation.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
