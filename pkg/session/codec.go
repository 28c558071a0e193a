package session

import (
	"encoding/json"
	"errors"
)

// Codec converts records to and from bytes for stores that persist blobs.
type Codec interface {
	Marshal(Data) ([]byte, error)
	Unmarshal([]byte) (Data, error)
}

// JSONCodec is the default Codec.
type JSONCodec struct{}

func (JSONCodec) Marshal(d Data) ([]byte, error) {
	if d == nil {
		d = Data{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, errors.Join(ErrCodec, err)
	}
	return b, nil
}

func (JSONCodec) Unmarshal(b []byte) (Data, error) {
	d := Data{}
	if len(b) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, errors.Join(ErrCodec, err)
	}
	return d, nil
}
