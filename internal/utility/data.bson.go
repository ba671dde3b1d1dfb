package utility

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ToMap chuyển struct (hoặc map) thành map theo tag bson
func ToMap(s interface{}) (map[string]interface{}, error) {
	raw, err := bson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("bson marshal failed: %w", err)
	}
	var m map[string]interface{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("bson unmarshal failed: %w", err)
	}
	return m, nil
}

// FromMap decode map (theo tag bson) vào out
func FromMap(m map[string]interface{}, out interface{}) error {
	raw, err := bson.Marshal(m)
	if err != nil {
		return fmt.Errorf("bson marshal failed: %w", err)
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("bson unmarshal failed: %w", err)
	}
	return nil
}
