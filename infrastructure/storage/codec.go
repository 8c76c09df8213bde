package storage

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// encodeValue serializes a node value as a protobuf Value. Numbers come
// back as float64, like any JSON-shaped store.
func encodeValue(value any) ([]byte, error) {
	v, err := structpb.NewValue(cloneValue(value))
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return proto.Marshal(v)
}

func decodeValue(data []byte) (any, error) {
	var v structpb.Value
	if err := proto.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return v.AsInterface(), nil
}
