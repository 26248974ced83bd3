package mqtt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes/wrappers"
)

// Codec converts variable values to and from MQTT payloads.
type Codec interface {
	EncodeUint(v uint32) []byte
	DecodeUint(payload []byte) (uint32, error)
	EncodeString(s string) []byte
	DecodeString(payload []byte) (string, error)
	EncodeInt(v int32) []byte
}

// CodecByName returns "text" or "proto".
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "text":
		return TextCodec{}, nil
	case "proto":
		return ProtoCodec{}, nil
	}
	return nil, fmt.Errorf("unknown payload format %q", name)
}

// TextCodec uses decimal numbers and raw strings. Numbers may also be
// written with 0x or 0 prefix.
type TextCodec struct{}

// EncodeUint implements Codec.
func (TextCodec) EncodeUint(v uint32) []byte {
	return strconv.AppendUint(nil, uint64(v), 10)
}

// DecodeUint implements Codec.
func (TextCodec) DecodeUint(payload []byte) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(string(payload)), 0, 32)
	return uint32(v), err
}

// EncodeString implements Codec.
func (TextCodec) EncodeString(s string) []byte {
	return []byte(s)
}

// DecodeString implements Codec.
func (TextCodec) DecodeString(payload []byte) (string, error) {
	return string(payload), nil
}

// EncodeInt implements Codec.
func (TextCodec) EncodeInt(v int32) []byte {
	return strconv.AppendInt(nil, int64(v), 10)
}

// ProtoCodec uses protobuf well-known wrapper messages.
type ProtoCodec struct{}

// EncodeUint implements Codec.
func (ProtoCodec) EncodeUint(v uint32) []byte {
	return mustMarshal(&wrappers.UInt32Value{Value: v})
}

// DecodeUint implements Codec.
func (ProtoCodec) DecodeUint(payload []byte) (uint32, error) {
	var msg wrappers.UInt32Value
	if err := proto.Unmarshal(payload, &msg); err != nil {
		return 0, err
	}
	return msg.Value, nil
}

// EncodeString implements Codec.
func (ProtoCodec) EncodeString(s string) []byte {
	return mustMarshal(&wrappers.StringValue{Value: s})
}

// DecodeString implements Codec.
func (ProtoCodec) DecodeString(payload []byte) (string, error) {
	var msg wrappers.StringValue
	if err := proto.Unmarshal(payload, &msg); err != nil {
		return "", err
	}
	return msg.Value, nil
}

// EncodeInt implements Codec.
func (ProtoCodec) EncodeInt(v int32) []byte {
	return mustMarshal(&wrappers.Int32Value{Value: v})
}

func mustMarshal(msg proto.Message) []byte {
	data, err := proto.Marshal(msg)
	if err != nil {
		panic(err)
	}
	return data
}
