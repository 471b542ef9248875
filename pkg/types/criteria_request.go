package types

import (
	"net/http"
	"net/url"

	"github.com/gorilla/schema"
)

// CriteriaRequest is the query shape used by the presentation api, every
// field is optional and only the present ones are applied.
type CriteriaRequest struct {
	Category *string `json:"category" schema:"category"`
	Price    *string `json:"price" schema:"price"`
	Rating   *int    `json:"rating" schema:"rating"`
	Sort     *string `json:"sort" schema:"sort"`
}

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

func GetCriteriaFromRequest(r *http.Request) (*CriteriaRequest, error) {
	return criteriaFromQuery(r.URL.Query())
}

func criteriaFromQuery(query url.Values) (*CriteriaRequest, error) {
	cr := &CriteriaRequest{}
	if err := decoder.Decode(cr, query); err != nil {
		return nil, err
	}
	return cr, nil
}

func (c *CriteriaRequest) HasFilter() bool {
	return c.Category != nil || c.Price != nil || c.Rating != nil
}

// ApplyTo overlays the present fields onto base.
func (c *CriteriaRequest) ApplyTo(base FilterCriteria) FilterCriteria {
	if c.Category != nil {
		base.Category = *c.Category
		if base.Category == "" {
			base.Category = AllCategories
		}
	}
	if c.Price != nil {
		base.PriceRange = ParsePriceRange(*c.Price)
	}
	if c.Rating != nil {
		base.MinRating = MinRating(*c.Rating)
	}
	return base
}

func (c *CriteriaRequest) SortKey() (SortKey, bool) {
	if c.Sort == nil {
		return "", false
	}
	return SortKey(*c.Sort), true
}
