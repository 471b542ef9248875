// Package display holds the formatting rules shared by the product cards,
// the detail view and the api.
package display

import (
	"fmt"
	"math"
	"strings"

	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	CurrencySymbol = "₹"
	fullStar       = "⭐"
	emptyStar      = "☆"
	maxStars       = 5
)

var printer = message.NewPrinter(language.English)

// Stars renders five symbols. A fractional part of at least .5 counts as an
// extra filled star.
func Stars(rate float64) string {
	full := int(math.Floor(rate))
	half := math.Mod(rate, 1) >= 0.5
	stars := make([]string, maxStars)
	for i := range maxStars {
		switch {
		case i < full:
			stars[i] = fullStar
		case i == full && half:
			stars[i] = fullStar
		default:
			stars[i] = emptyStar
		}
	}
	return strings.Join(stars, " ")
}

func Price(price decimal.Decimal) string {
	return CurrencySymbol + price.StringFixed(2)
}

func Rate(rate float64) string {
	return fmt.Sprintf("%.1f", rate)
}

func ReviewCount(count int) string {
	return printer.Sprintf("%d reviews", count)
}

func ResultCount(n int) string {
	if n == 1 {
		return "1 Product"
	}
	return fmt.Sprintf("%d Products", n)
}

func ProductNumber(id types.ProductId) string {
	return fmt.Sprintf("#%d", id)
}
