// Package domain contains the core business entities for the taplist server.
package domain

// TapAssignment represents the beverage currently poured from one numbered tap.
type TapAssignment struct {
	Position      int           `json:"position" validate:"required,gte=1"`
	Brewery       string        `json:"brewery" validate:"required"`
	Name          string        `json:"name" validate:"required"`
	Style         string        `json:"style" validate:"required"`
	PricePerLiter float64       `json:"price_per_liter" validate:"gte=0"`
	ServingCosts  []ServingCost `json:"serving_costs" validate:"dive"`
	Description   string        `json:"description,omitempty"`
	CatalogURL    string        `json:"catalog_url,omitempty"`
	ABV           *float64      `json:"abv,omitempty" validate:"omitempty,gte=0"`
	IBU           *float64      `json:"ibu,omitempty" validate:"omitempty,gte=0"`
}

// ServingCost is the price of one poured serving size (e.g. 400ml).
type ServingCost struct {
	Volume string  `json:"volume" validate:"required"`
	Price  float64 `json:"price" validate:"gte=0"`
}

// ServingCost returns the price for a serving volume.
func (t *TapAssignment) ServingCost(volume string) (float64, bool) {
	for _, sc := range t.ServingCosts {
		if sc.Volume == volume {
			return sc.Price, true
		}
	}
	return 0, false
}

// SetServingCost updates an existing serving cost or appends it if absent.
func (t *TapAssignment) SetServingCost(volume string, price float64) {
	for i := range t.ServingCosts {
		if t.ServingCosts[i].Volume == volume {
			t.ServingCosts[i].Price = price
			return
		}
	}
	t.ServingCosts = append(t.ServingCosts, ServingCost{Volume: volume, Price: price})
}
