package domain

import (
	"github.com/shopspring/decimal"
)

type Language string

const (
	LangEnglish Language = "en"
	LangArabic  Language = "ar"
)

// LocalizedString carries both required language variants of a label.
type LocalizedString struct {
	En string `json:"en"`
	Ar string `json:"ar"`
}

// In returns the variant for the given language, falling back to English.
func (s LocalizedString) In(lang Language) string {
	if lang == LangArabic && s.Ar != "" {
		return s.Ar
	}
	return s.En
}

type Category string

const (
	CategoryVegetables Category = "vegetables"
	CategoryFruits     Category = "fruits"
	CategoryOrganic    Category = "organic"
	CategoryOther      Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryVegetables, CategoryFruits, CategoryOrganic, CategoryOther:
		return true
	}
	return false
}

// Product is a catalog entry. Immutable once fetched for a session;
// only the admin back-office mutates it.
type Product struct {
	ID            string           `json:"id"`
	Name          LocalizedString  `json:"name"`
	Category      Category         `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Image         string           `json:"image"`
	Unit          string           `json:"unit"`
	Organic       bool             `json:"organic"`
	Description   *LocalizedString `json:"description,omitempty"`
}

// HasDeal reports whether the discount price is active, i.e. present and
// strictly below the list price.
func (p Product) HasDeal() bool {
	return p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price)
}
