package merge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipmerge/internal/domain"
	"shipmerge/internal/merge"
)

func newResolver() *merge.Resolver {
	h := merge.DefaultHeuristics()
	return merge.NewResolver(&h)
}

func TestResolve_NoMentions(t *testing.T) {
	ca, findings := newResolver().Resolve(domain.RoleCarrier, nil)

	assert.False(t, ca.Present)
	assert.NotNil(t, ca.Addresses)
	assert.Empty(t, findings)
}

func TestResolve_TransportDocumentWins(t *testing.T) {
	inv := doc(domain.DocTypeInvoice, "invoice.pdf")
	inv.Consignee = party("ТОО Ромашка", "123456789012")
	inv.Consignee.Addresses = []merge.Address{{FullAddress: "Almaty, Abay 1"}}
	cmr := doc(domain.DocTypeCMR, "cmr.pdf")
	cmr.Consignee = &merge.Counteragent{Present: true, Legal: merge.LegalInfo{NameRu: "тоо ромашка"}}

	ca, _ := newResolver().Resolve(domain.RoleConsignee, mentionsOf(domain.RoleConsignee, inv, cmr))

	assert.True(t, ca.Present)
	assert.Equal(t, "ТОО РОМАШКА", ca.Legal.NameRu)
	// Base is the CMR mention; the rest is backfilled from the invoice.
	assert.Equal(t, "123456789012", ca.Legal.BIN)
	assert.Equal(t, domain.EntityLegal, ca.EntityType)
	require.Len(t, ca.Addresses, 1)
	assert.Equal(t, "Almaty, Abay 1", ca.Addresses[0].FullAddress)
}

func TestResolve_DeclarantCertificateWins(t *testing.T) {
	a := doc(domain.DocTypeInvoice, "a.pdf")
	a.Declarant = party("ТОО БРОКЕР", "123456789012")
	a.Declarant.Addresses = []merge.Address{{FullAddress: "Astana"}}
	b := doc(domain.DocTypePowerOfAttorney, "poa.pdf")
	b.Declarant = &merge.Counteragent{
		Present:                   true,
		Legal:                     merge.LegalInfo{NameRu: "ТОО БРОКЕР ПЛЮС"},
		RepresentativeCertificate: &merge.Certificate{Number: "KZ-0042"},
	}

	ca, _ := newResolver().Resolve(domain.RoleDeclarant, mentionsOf(domain.RoleDeclarant, a, b))

	assert.Equal(t, "ТОО БРОКЕР ПЛЮС", ca.Legal.NameRu)
	require.NotNil(t, ca.RepresentativeCertificate)
	assert.Equal(t, "KZ-0042", ca.RepresentativeCertificate.Number)
	assert.Equal(t, "123456789012", ca.Legal.BIN)
}

func TestResolve_TieFirstWins(t *testing.T) {
	a := doc(domain.DocTypeInvoice, "a.pdf")
	a.Consignor = party("FIRST LLC", "")
	b := doc(domain.DocTypePackingList, "b.pdf")
	b.Consignor = party("SECOND LLC", "")

	ca, _ := newResolver().Resolve(domain.RoleConsignor, mentionsOf(domain.RoleConsignor, a, b))

	assert.Equal(t, "FIRST LLC", ca.Legal.NameRu)
}

func TestResolve_BackfillNameFromNonResident(t *testing.T) {
	a := doc(domain.DocTypeCMR, "cmr.pdf")
	a.Consignor = &merge.Counteragent{Present: true, Legal: merge.LegalInfo{BIN: "123456789012"}}
	b := doc(domain.DocTypeInvoice, "inv.pdf")
	b.Consignor = &merge.Counteragent{
		Present:          true,
		EntityType:       domain.EntityNonResidentLegal,
		NonResidentLegal: merge.NonResidentInfo{NameRu: "Shenzhen Trading Co"},
	}

	ca, _ := newResolver().Resolve(domain.RoleConsignor, mentionsOf(domain.RoleConsignor, a, b))

	assert.Equal(t, "SHENZHEN TRADING CO", ca.DisplayName())
	assert.Equal(t, domain.EntityNonResidentLegal, ca.EntityType)
}

func TestResolve_NameFindings(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		wantMsg  string
		wantNone bool
	}{
		{name: "exact_ignoring_case_and_space", a: "ТОО  Ромашка", b: " тоо ромашка", wantNone: true},
		{name: "typo", a: "ТОО РОМАШКА", b: "ТОО РОМАШКО", wantMsg: "probable typo"},
		{name: "legal_form_only", a: "ТОО РОМАШКА", b: "РОМАШКА", wantMsg: "probable typo"},
		{name: "conflict", a: "ТОО РОМАШКА", b: "АО ЛОТОС", wantMsg: "unresolved name conflict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := doc(domain.DocTypeInvoice, "a.pdf")
			a.Consignee = party(tt.a, "123456789012")
			b := doc(domain.DocTypeCMR, "b.pdf")
			b.Consignee = party(tt.b, "123456789012")

			_, findings := newResolver().Resolve(domain.RoleConsignee, mentionsOf(domain.RoleConsignee, a, b))

			if tt.wantNone {
				assert.Empty(t, findings)
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, "resolve.consignee.name", findings[0].Rule)
			assert.Equal(t, domain.SeverityWarning, findings[0].Severity)
			assert.Contains(t, findings[0].Message, tt.wantMsg)
			assert.Contains(t, findings[0].Message, "Invoice (a.pdf)")
			assert.Contains(t, findings[0].Message, "CMR (b.pdf)")
		})
	}
}

func TestResolve_TaxIDConflictIsError(t *testing.T) {
	a := doc(domain.DocTypeInvoice, "a.pdf")
	a.Consignee = party("ТОО РОМАШКА", "123456789012")
	b := doc(domain.DocTypeCMR, "b.pdf")
	b.Consignee = party("ТОО РОМАШКА", "123 456 789 012")
	c := doc(domain.DocTypeTTN, "c.pdf")
	c.Consignee = party("ТОО РОМАШКА", "987654321098")

	_, findings := newResolver().Resolve(domain.RoleConsignee, mentionsOf(domain.RoleConsignee, a, b, c))

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, "resolve.consignee.bin", f.Rule)
	assert.Equal(t, domain.SeverityError, f.Severity)
	assert.Contains(t, f.Message, `"123456789012" (Invoice (a.pdf), CMR (b.pdf))`)
	assert.Contains(t, f.Message, `"987654321098" (TTN (c.pdf))`)
}

func TestResolve_MalformedTaxIDKept(t *testing.T) {
	a := doc(domain.DocTypeCMR, "a.pdf")
	a.Carrier = party("ТОО КАРГО", " 12-345 ")

	ca, _ := newResolver().Resolve(domain.RoleCarrier, mentionsOf(domain.RoleCarrier, a))

	assert.Equal(t, "12-345", ca.Legal.BIN)
}
