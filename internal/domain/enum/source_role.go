package enum

import (
	"database/sql/driver"
	"fmt"
)

// SourceRole is a member's role inside one source
type SourceRole string

const (
	SourceRoleController SourceRole = "controller"
	SourceRoleAdmin      SourceRole = "admin"
	SourceRoleViewer     SourceRole = "viewer"
)

func (r SourceRole) IsValid() bool {
	switch r {
	case SourceRoleController, SourceRoleAdmin, SourceRoleViewer:
		return true
	}
	return false
}

func (r SourceRole) String() string {
	return string(r)
}

func (r *SourceRole) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data, "role", func(v string) bool { return SourceRole(v).IsValid() })
	if err != nil {
		return err
	}
	*r = SourceRole(v)
	return nil
}

func (r SourceRole) Value() (driver.Value, error) {
	return string(r), nil
}

func (r *SourceRole) Scan(value interface{}) error {
	v, err := scanString(value)
	if err != nil {
		return err
	}
	if !SourceRole(v).IsValid() {
		return fmt.Errorf("invalid role %q", v)
	}
	*r = SourceRole(v)
	return nil
}
