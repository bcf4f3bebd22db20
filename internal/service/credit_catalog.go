package service

import "fmt"

// CreditPack is a purchasable bundle of credits (one credit is about one
// minute of source video).
type CreditPack struct {
	Name    string
	PriceID string
	Credits int
}

// CreditCatalog is the closed table of credit packs keyed by Stripe price id.
type CreditCatalog struct {
	packs []CreditPack
}

func NewCreditCatalog(smallPriceID, mediumPriceID, largePriceID string) *CreditCatalog {
	return &CreditCatalog{packs: []CreditPack{
		{Name: "small", PriceID: smallPriceID, Credits: 50},
		{Name: "medium", PriceID: mediumPriceID, Credits: 150},
		{Name: "large", PriceID: largePriceID, Credits: 500},
	}}
}

// ByPriceID resolves a purchased price to its pack. Unrecognized prices
// return ErrUnknownSku.
func (c *CreditCatalog) ByPriceID(priceID string) (CreditPack, error) {
	if priceID != "" {
		for _, p := range c.packs {
			if p.PriceID == priceID {
				return p, nil
			}
		}
	}
	return CreditPack{}, fmt.Errorf("%w: %q", ErrUnknownSku, priceID)
}

func (c *CreditCatalog) ByName(name string) (CreditPack, error) {
	for _, p := range c.packs {
		if p.Name == name {
			return p, nil
		}
	}
	return CreditPack{}, fmt.Errorf("%w: %q", ErrInvalidPack, name)
}
