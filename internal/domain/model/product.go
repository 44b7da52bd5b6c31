package model

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar-date form used for date columns on the wire and in queries.
const DateLayout = "2006-01-02"

type DiscountOrder string

const (
	DiscountAsc  DiscountOrder = "asc"
	DiscountDesc DiscountOrder = "desc"
)

type ProductDeal struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Price       *float64  `json:"price" gorm:"type:numeric(10,2)"`
	TotalRating *int      `json:"total_rating"`
	Img         *string   `json:"img"`
	Discount    *int      `json:"discount"`
	URL         *string   `json:"url" gorm:"column:url"`
	Date        time.Time `json:"date" gorm:"type:date;index;not null"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	Deleted     bool      `json:"deleted" gorm:"not null;default:false;index"`
	CategoryID  uint      `json:"category_id" gorm:"not null;index"`
	Category    *Category `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ProductDeal) TableName() string { return "product_deals" }

// MarshalJSON writes date as YYYY-MM-DD.
func (p ProductDeal) MarshalJSON() ([]byte, error) {
	type plain ProductDeal
	return json.Marshal(struct {
		plain
		Date string `json:"date"`
	}{plain(p), p.Date.Format(DateLayout)})
}

func (p *ProductDeal) UnmarshalJSON(data []byte) error {
	type plain ProductDeal
	aux := struct {
		*plain
		Date string `json:"date"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	return parseDateField(aux.Date, &p.Date)
}

// ProductFilter narrows product listings. Soft-deleted rows are always excluded.
type ProductFilter struct {
	CategoryID    *uint
	Active        *bool
	DiscountOrder DiscountOrder // empty keeps newest-first ordering
}

// DataLoadLog records one committed CSV load.
type DataLoadLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CategoryID   uint      `json:"category_id" gorm:"not null;index"`
	FileName     string    `json:"file_name"`
	RowsInserted int       `json:"rows_inserted"`
	LoadedBy     string    `json:"loaded_by"`
	Date         time.Time `json:"date" gorm:"type:date"`
	CreatedAt    time.Time `json:"created_at"`
}

func (DataLoadLog) TableName() string { return "data_load_logs" }

func (l DataLoadLog) MarshalJSON() ([]byte, error) {
	type plain DataLoadLog
	return json.Marshal(struct {
		plain
		Date string `json:"date"`
	}{plain(l), l.Date.Format(DateLayout)})
}

func (l *DataLoadLog) UnmarshalJSON(data []byte) error {
	type plain DataLoadLog
	aux := struct {
		*plain
		Date string `json:"date"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	return parseDateField(aux.Date, &l.Date)
}

func parseDateField(value string, dst *time.Time) error {
	if value == "" {
		*dst = time.Time{}
		return nil
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

// LoadEvent is the queue payload published after a CSV load commits.
type LoadEvent struct {
	CategoryID   uint      `json:"category_id"`
	FileName     string    `json:"file_name"`
	RowsInserted int       `json:"rows_inserted"`
	LoadedBy     string    `json:"loaded_by"`
	LoadedAt     time.Time `json:"loaded_at"`
}
