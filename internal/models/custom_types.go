package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Metrics holds patient-reported recovery metrics (pain score, range of
// motion, etc.) stored as a JSONB column.
type Metrics map[string]float64

// Scan implements the sql.Scanner interface
func (m *Metrics) Scan(value interface{}) error {
	if value == nil {
		*m = make(map[string]float64)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	temp := make(map[string]float64)
	if err := json.Unmarshal(bytes, &temp); err != nil {
		return err
	}

	*m = temp
	return nil
}

// Value implements the driver.Valuer interface
func (m Metrics) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}
