package model

import (
	"strings"
)

// Offer is one exam sitting as returned by the exam finder.
// Every field is kept as text because the upstream types are not stable.
type Offer struct {
	OfferKey         string `mapstructure:"offerKey" json:"offerKey,omitempty"`
	OID              string `mapstructure:"oid" json:"oid,omitempty"`
	ModuleID         string `mapstructure:"moduleId" json:"moduleId,omitempty"`
	LocationID       string `mapstructure:"locationId" json:"locationId,omitempty"`
	StartDate        string `mapstructure:"startDate" json:"startDate,omitempty"`
	EndDate          string `mapstructure:"endDate" json:"endDate,omitempty"`
	LocationName     string `mapstructure:"locationName" json:"locationName,omitempty"`
	Availability     string `mapstructure:"availability" json:"availability,omitempty"`
	AvailabilityText string `mapstructure:"availabilityText" json:"availabilityText,omitempty"`
	Price            string `mapstructure:"price" json:"price,omitempty"`
	ButtonLink       string `mapstructure:"buttonLink" json:"buttonLink,omitempty"`
}

// NormalizedOffer holds the fields shown in notifications.
type NormalizedOffer struct {
	Key              string
	StartDate        string
	EndDate          string
	LocationName     string
	Availability     string
	AvailabilityText string
	Price            string
	ButtonLink       string
}

// Key returns the state key for this offer.
// Priority: offerKey, then oid, then moduleId|startDate|locationId with
// "module", "date" and "location" standing in for missing parts.
// The composite is only as stable as the upstream fields it is built from.
// The Goethe source drops false or zero identifiers, so an oid of 0 is missing.
func (o Offer) Key() string {
	if o.OfferKey != "" {
		return o.OfferKey
	}
	if o.OID != "" {
		return o.OID
	}
	return strings.Join([]string{
		orDefault(o.ModuleID, "module"),
		orDefault(o.StartDate, "date"),
		orDefault(o.LocationID, "location"),
	}, "|")
}

// Bookable reports whether the offer has a non-blank booking link.
func (o Offer) Bookable() bool {
	return strings.TrimSpace(o.ButtonLink) != ""
}

// Normalize returns the display subset of the offer.
func (o Offer) Normalize() NormalizedOffer {
	return NormalizedOffer{
		Key:              o.Key(),
		StartDate:        o.StartDate,
		EndDate:          o.EndDate,
		LocationName:     o.LocationName,
		Availability:     o.Availability,
		AvailabilityText: o.AvailabilityText,
		Price:            strings.TrimSpace(o.Price),
		ButtonLink:       o.ButtonLink,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
