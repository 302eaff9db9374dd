package api

import "encoding/json"

// CodecName is the Connect codec name, which also selects the
// application/json content type.
const CodecName = "json"

// JSONCodec is a connect.Codec that marshals the plain structs in this
// package with encoding/json. It replaces Connect's default JSON codec, which
// only accepts protobuf messages.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return CodecName }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
