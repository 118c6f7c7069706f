package enum

import (
	"database/sql/driver"
	"fmt"
)

// ItemType tags catalog entries and bill lines
type ItemType string

const (
	ItemTypeBasic     ItemType = "basic"
	ItemTypeComposite ItemType = "composite"
	ItemTypeService   ItemType = "service"
)

func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeBasic, ItemTypeComposite, ItemTypeService:
		return true
	}
	return false
}

// TracksStock is true for goods whose containers are counted
func (t ItemType) TracksStock() bool {
	return t == ItemTypeBasic
}

func (t *ItemType) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data, "item type", func(v string) bool { return ItemType(v).IsValid() })
	if err != nil {
		return err
	}
	*t = ItemType(v)
	return nil
}

func (t ItemType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *ItemType) Scan(value interface{}) error {
	v, err := scanString(value)
	if err != nil {
		return err
	}
	if v == "" {
		*t = ItemTypeBasic
		return nil
	}
	if !ItemType(v).IsValid() {
		return fmt.Errorf("invalid item type %q", v)
	}
	*t = ItemType(v)
	return nil
}

// CategoryKind separates product categories from service categories
type CategoryKind string

const (
	CategoryKindProduct CategoryKind = "product"
	CategoryKindService CategoryKind = "service"
)

func (k CategoryKind) IsValid() bool {
	return k == CategoryKindProduct || k == CategoryKindService
}
