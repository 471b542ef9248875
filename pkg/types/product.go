package types

import "github.com/shopspring/decimal"

type ProductId int

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is the shape returned by the catalog source for both the list and
// the detail endpoint.
type Product struct {
	Id          ProductId       `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

func (p *Product) GetId() ProductId {
	return p.Id
}

func (p *Product) GetPrice() decimal.Decimal {
	return p.Price
}

func (p *Product) GetRating() (float64, int) {
	return p.Rating.Rate, p.Rating.Count
}
