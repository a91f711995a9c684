// Package plan holds the static plan catalog consumed by order creation.
package plan

import "strings"

type Plan struct {
	Type          string
	DisplayName   string
	QuestionCount int

	// Price is in whole rupees; the gateway wants paise.
	Price int64
}

func (p Plan) AmountPaise() int64 {
	return p.Price * 100
}

type Catalog struct {
	plans map[string]Plan
}

func NewCatalog(plans ...Plan) *Catalog {
	items := make(map[string]Plan, len(plans))
	for _, p := range plans {
		items[p.Type] = p
	}
	return &Catalog{plans: items}
}

// Lookup resolves a plan type to its catalog entry. Unknown types return
// ok=false, they are not an error at this layer.
func (c *Catalog) Lookup(planType string) (Plan, bool) {
	p, ok := c.plans[strings.TrimSpace(planType)]
	return p, ok
}
