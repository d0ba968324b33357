package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipmerge/internal/config"
	"shipmerge/internal/handler"
	"shipmerge/internal/router"
	"shipmerge/internal/service"
)

const shipmentBody = `{"documents": [
	{
		"filename": "invoice.xlsx",
		"documentType": "INVOICE",
		"consignee": {"present": true, "legal": {"bin": "123456789012", "nameRu": "ТОО Ромашка"}},
		"products": [{"tariffCode": 8471300000, "commercialName": "Laptop", "grossWeight": 12, "quantity": 4, "cost": 4000}],
		"totalCost": 4000,
		"totalWeight": 12
	},
	{
		"filename": "cmr.pdf",
		"documentType": "CMR",
		"consignor": {"present": true, "legal": {"nameRu": "Shenzhen Trading Co"}},
		"consignee": {"present": true, "legal": {"bin": "123456789012", "nameRu": "ТОО РОМАШКА"}},
		"vehicles": {"tractor": {"plate": "A123BC02"}},
		"totalWeight": "12,0"
	}
]}`

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mergeCfg := config.MergeConfig{SimilarityThreshold: 0.8, FinancialTolerance: 0.1, MaxDocuments: 10}
	shipmentH := handler.NewShipmentHandler(
		service.NewMergeService(&mergeCfg, nil),
		service.NewReportService(nil, &config.S3Config{}),
	)
	return router.Setup(shipmentH, handler.NewHealthHandler(nil), []string{"http://localhost:3000"}, 1<<20)
}

func post(r *gin.Engine, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Merge(t *testing.T) {
	w := post(newEngine(t), "/api/v1/shipments/merge", shipmentBody)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			MergeID   string `json:"mergeId"`
			Documents []any  `json:"documents"`
			Findings  []struct {
				Rule     string `json:"rule"`
				Severity string `json:"severity"`
			} `json:"findings"`
			Shipment struct {
				Counteragents struct {
					Consignee struct {
						Legal struct {
							BIN    string `json:"bin"`
							NameRu string `json:"nameRu"`
						} `json:"legal"`
					} `json:"consignee"`
				} `json:"counteragents"`
				Products []struct {
					TariffCode string `json:"tariffCode"`
				} `json:"products"`
			} `json:"shipment"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.MergeID)
	assert.Len(t, resp.Data.Documents, 2)
	assert.Equal(t, "ТОО РОМАШКА", resp.Data.Shipment.Counteragents.Consignee.Legal.NameRu)
	require.Len(t, resp.Data.Shipment.Products, 1)
	assert.Equal(t, "847130", resp.Data.Shipment.Products[0].TariffCode)

	severities := map[string]string{}
	for _, f := range resp.Data.Findings {
		severities[f.Rule] = f.Severity
	}
	assert.Equal(t, "SUCCESS", severities["xv.financial"])
	assert.Equal(t, "SUCCESS", severities["xv.weight"])
	assert.Equal(t, "SUCCESS", severities["xv.consignee.name"])
}

func TestRouter_Report(t *testing.T) {
	w := post(newEngine(t), "/api/v1/shipments/report?format=json", shipmentBody)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".json")
	assert.NotEmpty(t, w.Header().Get("X-Merge-ID"))
}

func TestRouter_ArchiveDisabled(t *testing.T) {
	w := post(newEngine(t), "/api/v1/shipments/report/archive?format=csv", shipmentBody)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRouter_TooManyDocuments(t *testing.T) {
	body := "[" + strings.TrimSuffix(strings.Repeat("{},", 11), ",") + "]"

	w := post(newEngine(t), "/api/v1/shipments/merge", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_BodyTooLarge(t *testing.T) {
	body := `{"documents": ["` + strings.Repeat("x", 2<<20) + `"]}`

	w := post(newEngine(t), "/api/v1/shipments/merge", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_Health(t *testing.T) {
	r := newEngine(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
