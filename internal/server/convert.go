package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStruct converts any JSON-marshalable value whose encoding is an object
// into a google.protobuf.Struct. Field names follow the JSON tags, so gRPC
// and HTTP clients see the same document.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("convert message: %w", err)
	}
	return out, nil
}

// fromStruct decodes a google.protobuf.Struct into dst using dst's JSON
// tags. A nil Struct leaves dst untouched.
func fromStruct(s *structpb.Struct, dst any) error {
	if s == nil {
		return nil
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("convert message: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return inputError("malformed request: " + err.Error())
	}
	return nil
}
