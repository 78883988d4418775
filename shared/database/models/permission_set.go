package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PermissionSet is a flat permission-key -> granted mapping stored as a
// JSON column. Keys absent from the set resolve to false.
type PermissionSet map[string]bool

// Value implements driver.Valuer for gorm.
func (ps PermissionSet) Value() (driver.Value, error) {
	if ps == nil {
		ps = PermissionSet{}
	}
	return json.Marshal(ps)
}

// Scan implements sql.Scanner for gorm.
func (ps *PermissionSet) Scan(value interface{}) error {
	if value == nil {
		*ps = PermissionSet{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for PermissionSet: %T", value)
	}

	if len(data) == 0 {
		*ps = PermissionSet{}
		return nil
	}
	return json.Unmarshal(data, ps)
}

// Has returns the mapped value, defaulting to false for unknown keys.
func (ps PermissionSet) Has(key string) bool {
	return ps[key]
}

// Contains reports whether the set carries an explicit value for key,
// granted or denied.
func (ps PermissionSet) Contains(key string) bool {
	_, ok := ps[key]
	return ok
}
