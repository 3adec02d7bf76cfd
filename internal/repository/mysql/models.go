package mysql

import (
	"encoding/json"
	"time"

	"khodarji-server/internal/domain"

	"github.com/shopspring/decimal"
)

// Row types mirror the remote tables. Localized fields are flattened into
// per-language columns; order items are frozen as a JSON blob because the
// snapshot is immutable and never queried field-by-field.

type productRow struct {
	ID            string           `gorm:"primaryKey;size:64"`
	NameEn        string           `gorm:"not null"`
	NameAr        string           `gorm:"not null"`
	Category      string           `gorm:"size:32;not null;index"`
	Price         decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Image         string
	Unit          string `gorm:"size:32"`
	Organic       bool
	DescriptionEn *string
	DescriptionAr *string
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (productRow) TableName() string { return "products" }

type orderRow struct {
	ID            string          `gorm:"primaryKey;size:16"`
	CustomerPhone string          `gorm:"size:16;not null;index"`
	CustomerCity  string          `gorm:"size:64"`
	Items         []byte          `gorm:"type:json;not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DeliveryFee   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status        string          `gorm:"size:16;not null;index"`
	CreatedAt     time.Time       `gorm:"not null"`
}

func (orderRow) TableName() string { return "orders" }

type userRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Phone     string    `gorm:"size:16;not null;uniqueIndex"`
	City      string    `gorm:"size:64"`
	Role      string    `gorm:"size:16;not null"`
	Pin       string    `gorm:"size:16"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (userRow) TableName() string { return "users" }

type enrollmentRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:64"`
	Phone     string    `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (enrollmentRow) TableName() string { return "enrollments" }

// Migrations returns every row type for AutoMigrate.
func Migrations() []any {
	return []any{&productRow{}, &orderRow{}, &userRow{}, &enrollmentRow{}}
}

func toProductRow(p domain.Product) productRow {
	row := productRow{
		ID:            p.ID,
		NameEn:        p.Name.En,
		NameAr:        p.Name.Ar,
		Category:      string(p.Category),
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Image:         p.Image,
		Unit:          p.Unit,
		Organic:       p.Organic,
	}
	if p.Description != nil {
		row.DescriptionEn = &p.Description.En
		row.DescriptionAr = &p.Description.Ar
	}
	return row
}

func (r productRow) toDomain() domain.Product {
	p := domain.Product{
		ID:            r.ID,
		Name:          domain.LocalizedString{En: r.NameEn, Ar: r.NameAr},
		Category:      domain.Category(r.Category),
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		Image:         r.Image,
		Unit:          r.Unit,
		Organic:       r.Organic,
	}
	if r.DescriptionEn != nil {
		desc := domain.LocalizedString{En: *r.DescriptionEn}
		if r.DescriptionAr != nil {
			desc.Ar = *r.DescriptionAr
		}
		p.Description = &desc
	}
	return p
}

func toOrderRow(o *domain.Order) (orderRow, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return orderRow{}, err
	}
	return orderRow{
		ID:            o.ID,
		CustomerPhone: o.CustomerPhone,
		CustomerCity:  o.CustomerCity,
		Items:         items,
		Subtotal:      o.Subtotal,
		DeliveryFee:   o.DeliveryFee,
		Total:         o.Total,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}, nil
}

func (r orderRow) toDomain() (domain.Order, error) {
	var items []domain.CartLine
	if len(r.Items) > 0 {
		if err := json.Unmarshal(r.Items, &items); err != nil {
			return domain.Order{}, err
		}
	}
	return domain.Order{
		ID:            r.ID,
		CustomerPhone: r.CustomerPhone,
		CustomerCity:  r.CustomerCity,
		Items:         items,
		Subtotal:      r.Subtotal,
		DeliveryFee:   r.DeliveryFee,
		Total:         r.Total,
		Status:        domain.OrderStatus(r.Status),
		CreatedAt:     r.CreatedAt,
	}, nil
}
