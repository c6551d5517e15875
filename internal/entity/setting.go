package entity

import "github.com/uptrace/bun"

// Well-known setting keys.
const (
	SettingBrandName   = "brand_name"
	SettingCompanyName = "company_name"
	SettingLogoPath    = "logo_path"
)

// Setting is a key/value application setting row.
type Setting struct {
	bun.BaseModel `bun:"table:settings"`

	Key   string `bun:",pk"`
	Value string `bun:"value,notnull"`
}
