package merge

import (
	"encoding/json"

	"shipmerge/internal/domain"
)

// DocumentResult is the structured extraction of one source document.
type DocumentResult struct {
	Filename      string              `json:"filename"`
	DocumentType  domain.DocumentType `json:"documentType"`
	Number        string              `json:"number,omitempty"`
	Date          string              `json:"date,omitempty"`
	Consignor     *Counteragent       `json:"consignor,omitempty"`
	Consignee     *Counteragent       `json:"consignee,omitempty"`
	Carrier       *Counteragent       `json:"carrier,omitempty"`
	Declarant     *Counteragent       `json:"declarant,omitempty"`
	Vehicles      *Vehicles           `json:"vehicles,omitempty"`
	Driver        *Driver             `json:"driver,omitempty"`
	Products      []ProductCandidate  `json:"products,omitempty"`
	TotalWeight   Number              `json:"totalWeight,omitempty"`
	TotalPackages Number              `json:"totalPackages,omitempty"`
	TotalCost     Number              `json:"totalCost,omitempty"`
	Countries     *Countries          `json:"countries,omitempty"`
	Shipping      *Shipping           `json:"shipping,omitempty"`
	Validation    *EmbeddedValidation `json:"validation,omitempty"`
	Error         string              `json:"error,omitempty"`
}

// Counteragent returns the payload for role, or nil when the document has none.
func (d *DocumentResult) Counteragent(role domain.Role) *Counteragent {
	switch role {
	case domain.RoleConsignor:
		return d.Consignor
	case domain.RoleConsignee:
		return d.Consignee
	case domain.RoleCarrier:
		return d.Carrier
	case domain.RoleDeclarant:
		return d.Declarant
	}
	return nil
}

// Counteragent is one party to the shipment as seen by one document, or the
// resolved canonical party once the merge is done.
type Counteragent struct {
	Present                   bool              `json:"present"`
	EntityType                domain.EntityType `json:"entityType,omitempty"`
	Legal                     LegalInfo         `json:"legal"`
	NonResidentLegal          NonResidentInfo   `json:"nonResidentLegal"`
	Addresses                 []Address         `json:"addresses"`
	RepresentativeCertificate *Certificate      `json:"representativeCertificate,omitempty"`
}

// UnmarshalJSON decodes present tolerantly; see Flag.
func (c *Counteragent) UnmarshalJSON(data []byte) error {
	type plain Counteragent
	aux := struct {
		*plain
		Present Flag `json:"present"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Present = bool(aux.Present)
	return nil
}

// DisplayName is the resident legal name when set, else the non-resident name.
func (c *Counteragent) DisplayName() string {
	if c.Legal.NameRu != "" {
		return c.Legal.NameRu
	}
	return c.NonResidentLegal.NameRu
}

// LegalInfo holds resident legal-entity identification.
type LegalInfo struct {
	BIN    string `json:"bin"`
	NameRu string `json:"nameRu"`
}

// NonResidentInfo holds foreign legal-entity identification.
type NonResidentInfo struct {
	NameRu string `json:"nameRu"`
}

// Address is a structured postal address.
type Address struct {
	CountryCode string `json:"countryCode,omitempty"`
	Region      string `json:"region,omitempty"`
	City        string `json:"city,omitempty"`
	Street      string `json:"street,omitempty"`
	House       string `json:"house,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	FullAddress string `json:"fullAddress,omitempty"`
}

// Certificate is a customs representative certificate.
type Certificate struct {
	Number string `json:"number"`
	Date   string `json:"date,omitempty"`
}

// Vehicles holds the tractor unit and trailer plates.
type Vehicles struct {
	Tractor VehiclePlate `json:"tractor"`
	Trailer VehiclePlate `json:"trailer"`
}

// VehiclePlate is a registration plate and its issuing country.
type VehiclePlate struct {
	Plate   string `json:"plate"`
	Country string `json:"country,omitempty"`
}

// Driver identifies the driver of the vehicle.
type Driver struct {
	LastName       string `json:"lastName,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	MiddleName     string `json:"middleName,omitempty"`
	IIN            string `json:"iin,omitempty"`
	DocumentNumber string `json:"documentNumber,omitempty"`
}

// Countries holds the departure and destination country codes.
type Countries struct {
	Departure   string `json:"departure,omitempty"`
	Destination string `json:"destination,omitempty"`
}

// Shipping holds customs office codes and the transport mode.
type Shipping struct {
	CustomsCode            string `json:"customsCode,omitempty"`
	DestinationCustomsCode string `json:"destinationCustomsCode,omitempty"`
	TransportMode          string `json:"transportMode,omitempty"`
}

// EmbeddedValidation carries findings pre-computed by the extraction step.
type EmbeddedValidation struct {
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// ProductCandidate is a raw line item as extracted from one document.
type ProductCandidate struct {
	TariffCode     Code   `json:"tariffCode"`
	CommercialName string `json:"commercialName"`
	GrossWeight    Number `json:"grossWeight"`
	Quantity       Number `json:"quantity"`
	Cost           Number `json:"cost"`
	CurrencyCode   string `json:"currencyCode"`
}

// Product is a normalized line item of the canonical shipment.
type Product struct {
	TariffCode     string  `json:"tariffCode"`
	CommercialName string  `json:"commercialName"`
	GrossWeight    float64 `json:"grossWeight"`
	Quantity       int     `json:"quantity"`
	Cost           float64 `json:"cost"`
	CurrencyCode   string  `json:"currencyCode"`
	SourceLabel    string  `json:"sourceLabel"`
}

// Counteragents holds one resolved party per role.
type Counteragents struct {
	Consignor Counteragent `json:"consignor"`
	Consignee Counteragent `json:"consignee"`
	Carrier   Counteragent `json:"carrier"`
	Declarant Counteragent `json:"declarant"`
}

// Get returns a pointer to the party resolved for role.
func (c *Counteragents) Get(role domain.Role) *Counteragent {
	switch role {
	case domain.RoleConsignor:
		return &c.Consignor
	case domain.RoleConsignee:
		return &c.Consignee
	case domain.RoleCarrier:
		return &c.Carrier
	case domain.RoleDeclarant:
		return &c.Declarant
	}
	return nil
}

// Registry is the declared number and date of the goods registry.
type Registry struct {
	Number string `json:"number"`
	Date   string `json:"date"`
}

// Shipment is the canonical, reconciled shipment record.
type Shipment struct {
	Counteragents Counteragents `json:"counteragents"`
	Vehicles      Vehicles      `json:"vehicles"`
	Countries     Countries     `json:"countries"`
	Products      []Product     `json:"products"`
	Registry      Registry      `json:"registry"`
	Driver        Driver        `json:"driver"`
	Shipping      Shipping      `json:"shipping"`
}

// Finding is one reconciliation outcome.
type Finding struct {
	Rule     string          `json:"rule"`
	Severity domain.Severity `json:"severity"`
	Field    string          `json:"field,omitempty"`
	Message  string          `json:"message"`
}

// DocumentDescriptor is the pass-through summary of one recognized source document.
type DocumentDescriptor struct {
	Filename     string              `json:"filename"`
	DocumentType domain.DocumentType `json:"documentType"`
	Number       string              `json:"number"`
	Date         string              `json:"date"`
}

// Result is the complete output of one merge.
type Result struct {
	Documents []DocumentDescriptor `json:"documents"`
	Findings  []Finding            `json:"findings"`
	Shipment  Shipment             `json:"shipment"`
}

// Count returns the number of findings with severity s.
func (r *Result) Count(s domain.Severity) int {
	n := 0
	for i := range r.Findings {
		if r.Findings[i].Severity == s {
			n++
		}
	}
	return n
}
