package domain

import "strings"

// DocumentType identifies the kind of source document an extraction came from.
type DocumentType string

const (
	DocTypeInvoice         DocumentType = "INVOICE"
	DocTypeInvoiceExcel    DocumentType = "INVOICE_EXCEL"
	DocTypeTransportDoc    DocumentType = "TRANSPORT_DOC"
	DocTypeCMR             DocumentType = "CMR"
	DocTypeTTN             DocumentType = "TTN"
	DocTypeRegistry        DocumentType = "REGISTRY"
	DocTypePackingList     DocumentType = "PACKING_LIST"
	DocTypeVehicleDoc      DocumentType = "VEHICLE_DOC"
	DocTypeVehiclePermit   DocumentType = "VEHICLE_PERMIT"
	DocTypeDriverID        DocumentType = "DRIVER_ID"
	DocTypePowerOfAttorney DocumentType = "POWER_OF_ATTORNEY"
	DocTypeOther           DocumentType = "OTHER"
)

// documentTypeNames maps each DocumentType to its human-readable name.
var documentTypeNames = map[DocumentType]string{
	DocTypeInvoice:         "Invoice",
	DocTypeInvoiceExcel:    "Invoice (spreadsheet)",
	DocTypeTransportDoc:    "Transport document",
	DocTypeCMR:             "CMR",
	DocTypeTTN:             "TTN",
	DocTypeRegistry:        "Registry",
	DocTypePackingList:     "Packing list",
	DocTypeVehicleDoc:      "Vehicle registration",
	DocTypeVehiclePermit:   "Vehicle permit",
	DocTypeDriverID:        "Driver ID",
	DocTypePowerOfAttorney: "Power of attorney",
	DocTypeOther:           "Other document",
}

// ParseDocumentType normalizes a raw type string. Unknown values map to DocTypeOther.
func ParseDocumentType(s string) DocumentType {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := documentTypeNames[t]; ok {
		return t
	}
	return DocTypeOther
}

// DisplayName returns the human-readable name of the document type.
func (t DocumentType) DisplayName() string {
	if name, ok := documentTypeNames[t]; ok {
		return name
	}
	return documentTypeNames[DocTypeOther]
}

// IsInvoice reports whether the type is one of the invoice variants.
func (t DocumentType) IsInvoice() bool {
	return t == DocTypeInvoice || t == DocTypeInvoiceExcel
}

// Role identifies a counteragent role on the shipment.
type Role string

const (
	RoleConsignor Role = "consignor"
	RoleConsignee Role = "consignee"
	RoleCarrier   Role = "carrier"
	RoleDeclarant Role = "declarant"
)

// Roles lists every counteragent role in canonical processing order.
var Roles = []Role{RoleConsignor, RoleConsignee, RoleCarrier, RoleDeclarant}

// EntityType classifies a counteragent.
type EntityType string

const (
	EntityLegal            EntityType = "LEGAL"
	EntityNonResidentLegal EntityType = "NON_RESIDENT_LEGAL"
	EntityIndividual       EntityType = "INDIVIDUAL"
	EntityEntrepreneur     EntityType = "INDIVIDUAL_ENTREPRENEUR"
)

// Severity is the outcome class of a reconciliation finding.
type Severity string

const (
	SeveritySuccess Severity = "SUCCESS"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)
