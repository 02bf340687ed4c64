package entity

import (
	"time"
)

// MaxListingPrice is the highest price a listing may be uploaded with.
const MaxListingPrice = 2000.0

type Report struct {
	ReporterID string    `json:"reporter_id" firestore:"userId"`
	Reason     string    `json:"reason" firestore:"reason"`
	ReportedAt time.Time `json:"reported_at" firestore:"reportedAt"`
}

type Item struct {
	ID          string     `json:"id" firestore:"-"`
	OwnerID     string     `json:"user_id" firestore:"userId"`
	Username    string     `json:"username,omitempty" firestore:"username,omitempty"`
	Title       string     `json:"title,omitempty" firestore:"title,omitempty"`
	Description string     `json:"description" firestore:"description"`
	Category    string     `json:"category" firestore:"category"`
	Price       *float64   `json:"price" firestore:"price"`
	PriceText   string     `json:"price_text" firestore:"priceText"`
	ImageURLs   []string   `json:"image_urls" firestore:"imageUrls"`
	Sold        bool       `json:"sold" firestore:"sold"`
	BuyerID     string     `json:"buyer_id,omitempty" firestore:"buyerId,omitempty"`
	SoldPrice   string     `json:"sold_price,omitempty" firestore:"soldPrice,omitempty"`
	SoldAt      *time.Time `json:"sold_at,omitempty" firestore:"soldAt,omitempty"`
	Reports     []Report   `json:"reports,omitempty" firestore:"reports,omitempty"`
	CreatedAt   time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" firestore:"updatedAt,omitempty"`
}

// Sale is the attribution written when an offer is accepted.
type Sale struct {
	BuyerID   string
	SoldPrice string
	SoldAt    time.Time
}

// ItemUpdate holds the owner-editable listing fields.
type ItemUpdate struct {
	Description string
	Category    string
	PriceText   string
	Price       *float64
	UpdatedAt   time.Time
}

// DisplayTitle falls back from title to description to a generic label.
func (i *Item) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	if i.Description != "" {
		return i.Description
	}
	return "Listing"
}

// PriceLabel renders the asking price as shown on cards.
func (i *Item) PriceLabel() string {
	if i.Price != nil && *i.Price != 0 {
		return FormatEuro(*i.Price)
	}
	return i.PriceText
}

func (i *Item) FirstImage() string {
	if len(i.ImageURLs) == 0 {
		return ""
	}
	return i.ImageURLs[0]
}

func (i *Item) IsOwnedBy(userID string) bool {
	return i.OwnerID == userID
}

func (i *Item) HasReportFrom(userID string) bool {
	for _, r := range i.Reports {
		if r.ReporterID == userID {
			return true
		}
	}
	return false
}
