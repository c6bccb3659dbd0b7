package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/tinyplaces/server/internal/catalog"
)

type CatalogConfig struct {
	Spells          string `json:"spells"`
	Creatures       string `json:"creatures"`
	Items           string `json:"items"`
	Transitions     string `json:"transitions"`
	Populations     string `json:"populations"`
	TreasureClasses string `json:"treasure_classes"`
}

func (c *CatalogConfig) validate() error {
	el := errors.NewErrorList()

	for name, path := range map[string]string{
		"spells":           c.Spells,
		"creatures":        c.Creatures,
		"items":            c.Items,
		"transitions":      c.Transitions,
		"populations":      c.Populations,
		"treasure_classes": c.TreasureClasses,
	} {
		if path == "" {
			el.Add(fmt.Errorf("%s file must be set", name))
		}
	}

	return el.Err()
}

func (c *CatalogConfig) loadCatalogs() (*catalog.Set, error) {
	return catalog.Load(catalog.Paths{
		Spells:          c.Spells,
		Creatures:       c.Creatures,
		Items:           c.Items,
		Transitions:     c.Transitions,
		Populations:     c.Populations,
		TreasureClasses: c.TreasureClasses,
	})
}
