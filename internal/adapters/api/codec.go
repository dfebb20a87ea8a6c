package api

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// The messages in messages.go are plain structs, so the built-in codecs, which
// only accept proto messages, are replaced under the same names.

// jsonCodec serves "application/json" requests
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// protoCodec carries a message as a binary google.protobuf.Struct
// whose fields are the message's JSON fields.
type protoCodec struct{}

var _ connect.Codec = protoCodec{}

func (protoCodec) Name() string { return "proto" }

func (protoCodec) Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("message is not an object: %w", err)
	}
	return proto.Marshal(s)
}

func (protoCodec) Unmarshal(data []byte, v any) error {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(data, s); err != nil {
		return err
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// WithCodecs registers both codecs on a handler
func WithCodecs() connect.HandlerOption {
	return connect.WithHandlerOptions(
		connect.WithCodec(jsonCodec{}),
		connect.WithCodec(protoCodec{}),
	)
}

// WithJSON makes a client send JSON instead of binary protobuf
func WithJSON() connect.ClientOption {
	return connect.WithCodec(jsonCodec{})
}

// WithProto makes a client send binary protobuf. It is the client default.
func WithProto() connect.ClientOption {
	return connect.WithCodec(protoCodec{})
}
