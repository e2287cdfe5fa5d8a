package models

import "strings"

// Sizes lists every size code accepted by the shop, smallest first.
var Sizes = []string{"XXS", "XS", "S", "M", "L", "XL", "XXL", "XXXL"}

// Clothing is a catalog entry. Its sizes are removed together with it.
type Clothing struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"uniqueIndex;type:varchar(20);not null"`
	Sizes []Size `json:"sizes,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName keeps the singular table name used by the existing schema.
func (Clothing) TableName() string {
	return "clothing"
}

// Size holds the stock of one clothing item in one size code.
type Size struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ClothingID uint   `json:"clothing_id" gorm:"uniqueIndex:idx_sizes_clothing_size;not null"`
	Size       string `json:"size" gorm:"uniqueIndex:idx_sizes_clothing_size;type:varchar(4);not null"`
	Quantity   int    `json:"quantity" gorm:"not null"`
}

// InStock returns the sizes that still have at least one unit.
func (c *Clothing) InStock() []Size {
	available := make([]Size, 0, len(c.Sizes))
	for _, s := range c.Sizes {
		if s.Quantity > 0 {
			available = append(available, s)
		}
	}
	return available
}

// AvailableSize returns the size with the given code if it has stock left.
func (c *Clothing) AvailableSize(code string) (*Size, bool) {
	for i := range c.Sizes {
		if c.Sizes[i].Size == code && c.Sizes[i].Quantity > 0 {
			return &c.Sizes[i], true
		}
	}
	return nil, false
}

// IsValidSize reports whether code is one of Sizes.
func IsValidSize(code string) bool {
	for _, s := range Sizes {
		if s == code {
			return true
		}
	}
	return false
}

// NormalizeSize upper-cases a size code.
func NormalizeSize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Capitalize upper-cases the first letter and lower-cases the rest, so
// "sHIRT" and "shirt" both become "Shirt".
func Capitalize(name string) string {
	runes := []rune(strings.ToLower(name))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}
