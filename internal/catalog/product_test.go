package catalog_test

import (
	"testing"

	"github.com/ariefcatur/go-juice-pos/internal/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductInput_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		in         catalog.ProductInput
		wantStatus catalog.Status
		wantPrice  string
		wantError  string
	}{
		{
			name:       "defaults to active",
			in:         catalog.ProductInput{Name: " Mango Smoothie ", Price: decimal.RequireFromString("45.005")},
			wantStatus: catalog.StatusActive,
			wantPrice:  "45.01",
		},
		{
			name:       "inactive kept",
			in:         catalog.ProductInput{Name: "Lime", Price: decimal.NewFromInt(30), Status: catalog.StatusInactive},
			wantStatus: catalog.StatusInactive,
			wantPrice:  "30",
		},
		{name: "empty name", in: catalog.ProductInput{Name: "  "}, wantError: "name is empty"},
		{name: "negative price", in: catalog.ProductInput{Name: "x", Price: decimal.NewFromInt(-1)}, wantError: "negative"},
		{name: "bad status", in: catalog.ProductInput{Name: "x", Status: "archived"}, wantError: `status "archived"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			err := in.Normalize()
			if tt.wantError != "" {
				require.ErrorIs(t, err, catalog.ErrInvalidProduct)
				assert.ErrorContains(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, in.Status)
			assert.True(t, decimal.RequireFromString(tt.wantPrice).Equal(in.Price), "price %s", in.Price)
		})
	}
}

func TestProduct_LineItem(t *testing.T) {
	p := catalog.Product{ID: uuid.New(), Name: "Watermelon", Price: decimal.NewFromInt(40), Emoji: "🍉"}

	it := p.LineItem(3)
	assert.Equal(t, p.ID, it.ProductID)
	assert.Equal(t, "Watermelon", it.Name)
	assert.Equal(t, 3, it.Qty)
	assert.Equal(t, "🍉", it.Emoji)
	assert.True(t, decimal.NewFromInt(120).Equal(it.Subtotal()))
}
