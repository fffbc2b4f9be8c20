package groupcardv1

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// Codec names replace Connect's built-in protobuf JSON codecs, which only
// accept proto.Message values.
const (
	codecName        = "json"
	codecNameCharset = "json; charset=utf-8"
)

type jsonCodec struct {
	name string
}

func (c jsonCodec) Name() string { return c.name }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}

// WithJSON installs the JSON codec on a handler or client. The generated
// constructors in this package apply it already.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{name: codecName})
}

// handlerCodecs also accepts requests that spell out the charset.
func handlerCodecs() []connect.HandlerOption {
	return []connect.HandlerOption{
		WithJSON(),
		connect.WithCodec(jsonCodec{name: codecNameCharset}),
	}
}
