package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductInput_ApplyTo(t *testing.T) {
	name, sale, featured := "  Brass Diya ", 80.0, false
	p := &Product{Name: "Old", Price: 100, IsFeatured: true}

	fields := (&ProductInput{Name: &name, DiscountPrice: &sale, IsFeatured: &featured}).ApplyTo(p)
	assert.Equal(t, []string{"Name", "DiscountPrice", "IsFeatured"}, fields)
	assert.Equal(t, "Brass Diya", p.Name)
	assert.False(t, p.IsFeatured)
	assert.True(t, p.OnSale())
	assert.InDelta(t, 80, p.EffectivePrice(), 0.001)

	// The stored value must not alias the input
	sale = 10
	assert.InDelta(t, 80, *p.DiscountPrice, 0.001)

	fields = (&ProductInput{ClearDiscount: true, DiscountPrice: &sale}).ApplyTo(p)
	assert.Equal(t, []string{"DiscountPrice"}, fields)
	assert.Nil(t, p.DiscountPrice)
	assert.InDelta(t, 100, p.EffectivePrice(), 0.001)

	assert.Empty(t, (&ProductInput{}).ApplyTo(p))
}

func TestValidateProduct(t *testing.T) {
	over, under := 120.0, -1.0
	for name, p := range map[string]*Product{
		"no name":        {Price: 10},
		"negative price": {Name: "x", Price: -1},
		"discount above": {Name: "x", Price: 100, DiscountPrice: &over},
		"discount below": {Name: "x", Price: 100, DiscountPrice: &under},
		"negative stock": {Name: "x", Price: 100, Stock: -3},
	} {
		err := ValidateProduct(p)
		assert.Equal(t, KindValidation, KindOf(err), name)
	}
	assert.NoError(t, ValidateProduct(&Product{Name: "x", Price: 0}))
}

func TestAfterFind_FillsNilLists(t *testing.T) {
	p := &Product{}
	assert.NoError(t, p.AfterFind(nil))
	assert.Equal(t, []string{}, p.Images)

	s := &ShopInfo{}
	assert.NoError(t, s.AfterFind(nil))
	assert.Equal(t, Locations{}, s.Locations)
}
