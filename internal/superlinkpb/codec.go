package superlinkpb

import (
	"github.com/gogo/protobuf/proto"
	"google.golang.org/grpc/encoding"
)

// protoString renders a message via gogo/protobuf's reflection-based
// text marshaller, used to satisfy proto.Message's String() method
// without hand-writing one per type.
func protoString(m proto.Message) string {
	return proto.CompactTextString(m)
}

// codecName is registered with grpc's global codec registry. It is
// deliberately "proto" so that grpc's default content-subtype
// negotiation (which assumes "proto" absent an explicit
// CallContentSubtype) picks it up without requiring callers to set
// grpc.CallContentSubtype on every invocation.
const codecName = "proto"

// gogoCodec adapts github.com/gogo/protobuf/proto's Marshal/Unmarshal
// to grpc's encoding.Codec, in place of the protoc-gen-go-grpc codec
// that would normally be registered by an import of
// google.golang.org/grpc/encoding/proto. superlinkpb's messages are
// hand-written gogo-shaped structs, not generated code, so the
// standard codec (which expects google.golang.org/protobuf's
// proto.Message) cannot be reused here.
type gogoCodec struct{}

func (gogoCodec) Marshal(v interface{}) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, errNotProtoMessage(v)
	}
	return proto.Marshal(msg)
}

func (gogoCodec) Unmarshal(data []byte, v interface{}) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return errNotProtoMessage(v)
	}
	msg.Reset()
	return proto.Unmarshal(data, msg)
}

func (gogoCodec) Name() string { return codecName }

func errNotProtoMessage(v interface{}) error {
	return &notProtoMessageError{v: v}
}

type notProtoMessageError struct{ v interface{} }

func (e *notProtoMessageError) Error() string {
	return "superlinkpb: value does not implement gogo/protobuf proto.Message"
}

func init() {
	encoding.RegisterCodec(gogoCodec{})
}
