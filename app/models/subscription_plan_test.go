package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSubscriptionPlanFinalPrice(t *testing.T) {
	twenty := 20
	zero := 0
	hundred := 100

	tests := []struct {
		name     string
		base     string
		discount *int
		want     string
	}{
		{name: "no discount returns base price", base: "29.99", discount: nil, want: "29.99"},
		{name: "zero discount returns base price", base: "29.99", discount: &zero, want: "29.99"},
		{name: "twenty percent off", base: "359.88", discount: &twenty, want: "287.90"},
		{name: "rounds to cents", base: "9.99", discount: &twenty, want: "7.99"},
		{name: "full discount is free", base: "29.99", discount: &hundred, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := &SubscriptionPlan{
				BasePrice:       decimal.RequireFromString(tt.base),
				DiscountPercent: tt.discount,
			}
			got := plan.FinalPrice()
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"FinalPrice() = %s, want %s", got, tt.want)
		})
	}
}
