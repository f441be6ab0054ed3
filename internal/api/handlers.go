// handlers.go - HTTP handlers for the transform and audit endpoints
package api

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/freight-audit/backend/internal/audit"
	"github.com/freight-audit/backend/internal/config"
	"github.com/freight-audit/backend/internal/models"
	"github.com/freight-audit/backend/internal/table"
	"github.com/freight-audit/backend/internal/transform"
	"github.com/freight-audit/backend/internal/xlsx"
)

// Handler handles API requests.
type Handler struct {
	cfg     *config.AppConfig
	version string
}

// NewHandler creates the API handler.
func NewHandler(cfg *config.AppConfig, version string) *Handler {
	return &Handler{cfg: cfg, version: version}
}

// HandleHealth returns service status and version
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleTransform loads one sheet of an uploaded workbook, applies
// the transform pipeline from the "spec" form field and returns the
// result as a new workbook (or JSON/msgpack with format=json|msgpack).
func (h *Handler) HandleTransform(c echo.Context) error {
	data, apiErr := h.readFormFile(c, "file")
	if apiErr != nil {
		return apiErr
	}

	t, err := xlsx.Load(data, c.FormValue("sheet"))
	if err != nil {
		return FromDomainError("loader", err)
	}

	spec := transform.Spec{}
	if raw := c.FormValue("spec"); raw != "" {
		spec, err = transform.ParseSpec([]byte(raw))
		if err != nil {
			return NewBadRequestError("invalid transform spec", err)
		}
	}

	out, err := transform.Apply(t, spec)
	if err != nil {
		return FromDomainError("transform", err)
	}

	switch c.FormValue("format") {
	case "", "xlsx":
		body, err := xlsx.Write(out)
		if err != nil {
			return FromDomainError("writer", err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="transformed.xlsx"`)
		return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", body)
	case "json":
		return c.JSON(http.StatusOK, tablePayload(out))
	case "msgpack":
		return h.msgpackResponse(c, tablePayload(out))
	default:
		return NewBadRequestError("unsupported format: "+c.FormValue("format"), nil)
	}
}

// HandleAudit runs the full reconciliation between a FILS report and
// a carrier invoice and returns the results. format=xlsx returns the
// multi sheet report instead of JSON.
func (h *Handler) HandleAudit(c echo.Context) error {
	carrier, apiErr := h.formCarrier(c)
	if apiErr != nil {
		return apiErr
	}

	filsData, apiErr := h.readFormFile(c, "fils")
	if apiErr != nil {
		return apiErr
	}
	invoiceData, apiErr := h.readFormFile(c, "invoice")
	if apiErr != nil {
		return apiErr
	}

	tolerance := h.cfg.Tolerance()
	if raw := c.FormValue("tolerance"); raw != "" {
		tol, err := decimal.NewFromString(raw)
		if err != nil || tol.IsNegative() {
			return NewBadRequestError("invalid tolerance: "+raw, err)
		}
		tolerance = tol
	}

	res, err := audit.Run(carrier, filsData, invoiceData, tolerance)
	if err != nil {
		return FromDomainError("audit", err)
	}

	switch c.FormValue("format") {
	case "", "json":
		return c.JSON(http.StatusOK, res)
	case "msgpack":
		return h.msgpackResponse(c, res)
	case "xlsx":
		body, err := audit.Export(res)
		if err != nil {
			return FromDomainError("writer", err)
		}
		name := fmt.Sprintf("auditoria_%s_%s.xlsx", strings.ToLower(res.Carrier), res.RunID[:8])
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", body)
	default:
		return NewBadRequestError("unsupported format: "+c.FormValue("format"), nil)
	}
}

// HandlePrecheck sniffs both uploads and reports mapping issues
// without running the audit
func (h *Handler) HandlePrecheck(c echo.Context) error {
	carrier, apiErr := h.formCarrier(c)
	if apiErr != nil {
		return apiErr
	}

	filsData, apiErr := h.readFormFile(c, "fils")
	if apiErr != nil {
		return apiErr
	}
	invoiceData, apiErr := h.readFormFile(c, "invoice")
	if apiErr != nil {
		return apiErr
	}

	report, err := audit.Precheck(carrier, filsData, invoiceData)
	if err != nil {
		return FromDomainError("precheck", err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) formCarrier(c echo.Context) (models.Carrier, *APIError) {
	carrier, err := models.ParseCarrier(c.FormValue("carrier"))
	if err != nil {
		return "", NewBadRequestError(err.Error(), nil)
	}
	return carrier, nil
}

// readFormFile reads one multipart file, enforcing the per-file size
// cap before buffering the content.
func (h *Handler) readFormFile(c echo.Context, field string) ([]byte, *APIError) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, NewBadRequestError("missing file field: "+field, err)
	}

	if max := h.cfg.Limits.MaxUploadBytes; max > 0 && fileHeader.Size > max {
		slog.Warn("upload rejected", "field", field, "size", fileHeader.Size, "limit", max)
		return nil, NewPayloadTooLargeError("uploaded file exceeds the size limit")
	}

	data, apiErr := readAll(fileHeader)
	if apiErr != nil {
		return nil, apiErr
	}
	return data, nil
}

func readAll(fh *multipart.FileHeader) ([]byte, *APIError) {
	src, err := fh.Open()
	if err != nil {
		return nil, NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, NewInternalError("failed to read uploaded file", err)
	}
	return data, nil
}

func (h *Handler) msgpackResponse(c echo.Context, payload interface{}) error {
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// tablePayload renders a table as column names plus row tuples
func tablePayload(t *table.Table) map[string]interface{} {
	rows := make([][]interface{}, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		row := t.Row(i)
		tuple := make([]interface{}, len(row))
		for j, v := range row {
			tuple[j] = v.Native()
		}
		rows = append(rows, tuple)
	}
	return map[string]interface{}{
		"columns": t.Columns(),
		"rows":    rows,
	}
}
