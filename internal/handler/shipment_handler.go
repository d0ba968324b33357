package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shipmerge/internal/domain"
	"shipmerge/internal/service"
)

// ShipmentHandler handles shipment merge and report endpoints.
type ShipmentHandler struct {
	mergeSvc  service.MergeService
	reportSvc service.ReportService
}

// NewShipmentHandler creates a new ShipmentHandler.
func NewShipmentHandler(mergeSvc service.MergeService, reportSvc service.ReportService) *ShipmentHandler {
	return &ShipmentHandler{mergeSvc: mergeSvc, reportSvc: reportSvc}
}

// mergeRequest is the JSON body of the merge endpoints. A bare JSON array of
// documents is accepted too.
type mergeRequest struct {
	Documents []json.RawMessage `json:"documents"`
	Enrich    bool              `json:"enrich"`
}

// Merge handles POST /api/v1/shipments/merge
func (h *ShipmentHandler) Merge(c *gin.Context) {
	out, ok := h.merge(c)
	if !ok {
		return
	}
	RespondOK(c, out)
}

// Report handles POST /api/v1/shipments/report?format=xlsx|csv|json
func (h *ShipmentHandler) Report(c *gin.Context) {
	if _, err := service.ParseFormat(c.Query("format")); err != nil {
		HandleError(c, err)
		return
	}
	out, ok := h.merge(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.Render(out.Result, c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename))
	c.Header("X-Merge-ID", out.MergeID.String())
	c.Data(http.StatusOK, report.ContentType, report.Body)
}

// Archive handles POST /api/v1/shipments/report/archive?format=xlsx|csv|json
func (h *ShipmentHandler) Archive(c *gin.Context) {
	if _, err := service.ParseFormat(c.Query("format")); err != nil {
		HandleError(c, err)
		return
	}
	out, ok := h.merge(c)
	if !ok {
		return
	}

	archived, err := h.reportSvc.Archive(c.Request.Context(), out, c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("X-Merge-ID", out.MergeID.String())
	RespondCreated(c, archived)
}

// merge reads the request body and runs the merge. It writes the error
// response itself and reports false on failure.
func (h *ShipmentHandler) merge(c *gin.Context) (*service.MergeOutput, bool) {
	data, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(c, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body is too large")
			return nil, false
		}
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "unable to read request body")
		return nil, false
	}

	input, err := parseMergeRequest(data)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	if enrich, perr := strconv.ParseBool(c.Query("enrich")); perr == nil {
		input.Enrich = enrich
	}

	out, err := h.mergeSvc.Merge(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return out, true
}

func parseMergeRequest(data []byte) (service.MergeInput, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return service.MergeInput{}, fmt.Errorf("%w: request body is empty", domain.ErrInvalidInput)
	}
	if data[0] == '[' {
		var docs []json.RawMessage
		if err := json.Unmarshal(data, &docs); err != nil {
			return service.MergeInput{}, fmt.Errorf("%w: malformed JSON array", domain.ErrInvalidInput)
		}
		if docs == nil {
			docs = []json.RawMessage{}
		}
		return service.MergeInput{Documents: docs}, nil
	}

	var req mergeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return service.MergeInput{}, fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput)
	}
	return service.MergeInput{Documents: req.Documents, Enrich: req.Enrich}, nil
}
