package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Tristate is a nullable boolean: unset, true or false.
type Tristate struct {
	value bool
	set   bool
}

var (
	Unset = Tristate{}
	True  = Tristate{value: true, set: true}
	False = Tristate{value: false, set: true}
)

func TristateOf(b bool) Tristate {
	return Tristate{value: b, set: true}
}

func (t Tristate) IsSet() bool  { return t.set }
func (t Tristate) IsTrue() bool { return t.set && t.value }

func (t Tristate) IsFalse() bool { return t.set && !t.value }

// Ptr returns nil when unset.
func (t Tristate) Ptr() *bool {
	if !t.set {
		return nil
	}
	v := t.value
	return &v
}

func (t Tristate) String() string {
	switch {
	case !t.set:
		return "unset"
	case t.value:
		return "true"
	default:
		return "false"
	}
}

func (t Tristate) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Ptr())
}

func (t *Tristate) UnmarshalJSON(data []byte) error {
	var v *bool
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("tristate: %w", err)
	}
	*t = Unset
	if v != nil {
		*t = TristateOf(*v)
	}
	return nil
}

// Scan reads a nullable boolean column.
func (t *Tristate) Scan(src any) error {
	var nb sql.NullBool
	if err := nb.Scan(src); err != nil {
		return err
	}
	*t = Unset
	if nb.Valid {
		*t = TristateOf(nb.Bool)
	}
	return nil
}

func (t Tristate) Value() (driver.Value, error) {
	if !t.set {
		return nil, nil
	}
	return t.value, nil
}
