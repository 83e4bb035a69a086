package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONMap stores a free-form key/value object as serialized JSON in a text
// column. Used for survey answers, question config, template sections and
// organization details.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	var payload []byte
	switch v := value.(type) {
	case []byte:
		payload = v
	case string:
		payload = []byte(v)
	default:
		return errors.New("unsupported type for JSONMap")
	}

	if len(payload) == 0 {
		*m = JSONMap{}
		return nil
	}

	return json.Unmarshal(payload, m)
}
