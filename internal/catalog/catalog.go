package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/shopgen/internal/domain"
	"github.com/andresuchdata/shopgen/internal/locale"
	"github.com/andresuchdata/shopgen/internal/random"
)

// Pricing bounds for generated products.
const (
	MinCost   = 5.0
	MaxCost   = 150.0
	MinMargin = 1.5
	MaxMargin = 2.5

	// modifierChance is the probability a product name gets a modifier suffix.
	modifierChance = 0.5
)

// ProductID formats the fixed-width identifier of the i-th product (1-based).
func ProductID(i int) string {
	return fmt.Sprintf("SKU-%04d", i)
}

// GenerateProducts builds n products from the locale's vocabulary.
func GenerateProducts(src random.Source, loc *locale.Locale, n int) []domain.Product {
	products := make([]domain.Product, 0, n)
	for i := 1; i <= n; i++ {
		category := random.Pick(src, loc.Categories)
		name := productName(src, category, loc.Modifiers)

		cost := decimal.NewFromFloat(random.Uniform(src, MinCost, MaxCost)).Round(2)
		margin := decimal.NewFromFloat(random.Uniform(src, MinMargin, MaxMargin))

		products = append(products, domain.Product{
			ID:       ProductID(i),
			Name:     name,
			Category: category.Name,
			Cost:     cost,
			Price:    cost.Mul(margin).Round(2),
		})
	}
	return products
}

// productName picks a base name for the category and, half of the time, appends a modifier.
func productName(src random.Source, category locale.Category, modifiers []string) string {
	base := random.Pick(src, category.Products)
	modifier := random.Pick(src, modifiers)
	if random.Chance(src, modifierChance) {
		return base + " " + modifier
	}
	return base
}

// GenerateChannels returns one channel per locale channel name, in order, numbered from 1.
func GenerateChannels(loc *locale.Locale) []domain.Channel {
	channels := make([]domain.Channel, len(loc.Channels))
	for i, name := range loc.Channels {
		channels[i] = domain.Channel{ID: i + 1, Name: name}
	}
	return channels
}
