package storage

import (
	"encoding/json"
	"fmt"
)

// MarshalPayload сериализует данные события.
func MarshalPayload(data interface{}) ([]byte, error) {
	buf, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return buf, nil
}
