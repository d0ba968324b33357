package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipmerge/internal/config"
	"shipmerge/internal/domain"
	"shipmerge/internal/merge"
	"shipmerge/internal/port"
	"shipmerge/internal/service"
	"shipmerge/mocks"
)

func testEnrichmentConfig() config.EnrichmentConfig {
	return config.EnrichmentConfig{Concurrency: 2, Timeout: time.Second}
}

func enrichableResult() *merge.Result {
	r := &merge.Result{Findings: []merge.Finding{{Rule: "xv.weight", Severity: domain.SeverityError, Message: "existing"}}}
	r.Shipment.Counteragents = merge.Counteragents{
		Consignor: merge.Counteragent{Present: true, Legal: merge.LegalInfo{BIN: "111111111111", NameRu: "ТОО АЛЬФА"}, Addresses: []merge.Address{}},
		Consignee: merge.Counteragent{Present: true, Legal: merge.LegalInfo{BIN: "222222222222", NameRu: "ТОО БЕТА"}, Addresses: []merge.Address{{City: "Астана"}}},
		Carrier:   merge.Counteragent{Present: true, Legal: merge.LegalInfo{BIN: "3333", NameRu: "ТОО ГАММА"}},
		Declarant: merge.Counteragent{Present: true, Legal: merge.LegalInfo{BIN: "444444444444", NameRu: "ТОО ДЕЛЬТА"}},
	}
	return r
}

func TestEnrichmentService_Enrich(t *testing.T) {
	registry := new(mocks.MockCompanyRegistry)
	cfg := testEnrichmentConfig()
	svc := service.NewEnrichmentService(registry, &cfg)
	r := enrichableResult()

	registry.On("FindByBIN", mock.Anything, "111111111111").
		Return(&port.RegistryRecord{BIN: "111111111111", NameRu: "Товарищество Альфа", Address: "Алматы, Абая 1"}, nil)
	registry.On("FindByBIN", mock.Anything, "222222222222").
		Return(&port.RegistryRecord{BIN: "222222222222", NameRu: "ТОО Бета", Address: "Астана, Кенесары 5"}, nil)
	registry.On("FindByBIN", mock.Anything, "444444444444").Return(nil, domain.ErrNotFound)

	svc.Enrich(context.Background(), r)

	registry.AssertExpectations(t)
	registry.AssertNotCalled(t, "FindByBIN", mock.Anything, "3333")

	c := r.Shipment.Counteragents
	assert.Equal(t, "ТОВАРИЩЕСТВО АЛЬФА", c.Consignor.Legal.NameRu)
	require.Len(t, c.Consignor.Addresses, 1)
	assert.Equal(t, "Алматы, Абая 1", c.Consignor.Addresses[0].FullAddress)
	assert.Equal(t, "ТОО БЕТА", c.Consignee.Legal.NameRu)
	assert.Equal(t, "Астана, Кенесары 5", c.Consignee.Addresses[0].FullAddress)
	assert.Equal(t, "Астана", c.Consignee.Addresses[0].City)
	assert.Equal(t, "ТОО ДЕЛЬТА", c.Declarant.Legal.NameRu)

	require.Len(t, r.Findings, 4)
	assert.Equal(t, "existing", r.Findings[0].Message)
	assert.Equal(t, "enrich.consignor.registry", r.Findings[1].Rule)
	assert.Equal(t, domain.SeveritySuccess, r.Findings[1].Severity)
	assert.Equal(t, "enrich.consignee.registry", r.Findings[2].Rule)
	assert.Equal(t, "enrich.declarant.registry", r.Findings[3].Rule)
	assert.Equal(t, domain.SeverityWarning, r.Findings[3].Severity)
	assert.Contains(t, r.Findings[3].Message, "not found")
}

func TestEnrichmentService_Enrich_KeepsExistingAddress(t *testing.T) {
	registry := new(mocks.MockCompanyRegistry)
	cfg := testEnrichmentConfig()
	svc := service.NewEnrichmentService(registry, &cfg)
	r := &merge.Result{}
	r.Shipment.Counteragents.Carrier = merge.Counteragent{
		Present:   true,
		Legal:     merge.LegalInfo{BIN: "555555555555"},
		Addresses: []merge.Address{{FullAddress: "Шымкент"}},
	}
	registry.On("FindByBIN", mock.Anything, "555555555555").
		Return(&port.RegistryRecord{NameRu: "ип омега", Address: "Тараз"}, nil)

	svc.Enrich(context.Background(), r)

	assert.Equal(t, "ИП ОМЕГА", r.Shipment.Counteragents.Carrier.Legal.NameRu)
	assert.Equal(t, "Шымкент", r.Shipment.Counteragents.Carrier.Addresses[0].FullAddress)
	require.Len(t, r.Findings, 1)
	assert.Contains(t, r.Findings[0].Message, "ИП ОМЕГА")
}

func TestEnrichmentService_Enrich_LookupError(t *testing.T) {
	registry := new(mocks.MockCompanyRegistry)
	cfg := testEnrichmentConfig()
	svc := service.NewEnrichmentService(registry, &cfg)
	r := &merge.Result{}
	r.Shipment.Counteragents.Consignee = merge.Counteragent{Present: true, Legal: merge.LegalInfo{BIN: "222222222222", NameRu: "ТОО БЕТА"}}
	registry.On("FindByBIN", mock.Anything, "222222222222").Return(nil, errors.New("connection refused"))

	svc.Enrich(context.Background(), r)

	require.Len(t, r.Findings, 1)
	assert.Equal(t, domain.SeverityWarning, r.Findings[0].Severity)
	assert.Contains(t, r.Findings[0].Message, "lookup failed")
	assert.Equal(t, "ТОО БЕТА", r.Shipment.Counteragents.Consignee.Legal.NameRu)
}

func TestEnrichmentService_Enrich_SkipsAbsentAndInvalid(t *testing.T) {
	registry := new(mocks.MockCompanyRegistry)
	cfg := testEnrichmentConfig()
	svc := service.NewEnrichmentService(registry, &cfg)
	r := &merge.Result{}
	r.Shipment.Counteragents.Consignor = merge.Counteragent{Present: false, Legal: merge.LegalInfo{BIN: "111111111111"}}
	r.Shipment.Counteragents.Consignee = merge.Counteragent{Present: true, Legal: merge.LegalInfo{BIN: "12-34"}}

	svc.Enrich(context.Background(), r)

	registry.AssertNotCalled(t, "FindByBIN", mock.Anything, mock.Anything)
	assert.Empty(t, r.Findings)
}

func TestEnrichmentService_Enrich_AppliesTimeout(t *testing.T) {
	registry := new(mocks.MockCompanyRegistry)
	cfg := config.EnrichmentConfig{Concurrency: 1, Timeout: 50 * time.Millisecond}
	svc := service.NewEnrichmentService(registry, &cfg)
	r := &merge.Result{}
	r.Shipment.Counteragents.Declarant = merge.Counteragent{Present: true, Legal: merge.LegalInfo{BIN: "444444444444"}}

	registry.On("FindByBIN", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), "444444444444").Return(nil, domain.ErrNotFound)

	svc.Enrich(context.Background(), r)

	registry.AssertExpectations(t)
}
