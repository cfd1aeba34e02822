package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wellfield/rigops/internal/auth"
	"github.com/wellfield/rigops/internal/domain"
	"github.com/wellfield/rigops/internal/export"
	"github.com/wellfield/rigops/internal/logger"
)

// Content types for the supported export formats.
const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Export handles GET /api/v1/dashboard/export. It renders the current
// snapshot (and rig table for operational sections) as a CSV or XLSX
// download.
func (h *DashboardHandler) Export(c *gin.Context) {
	section, ok := export.ParseSection(c.DefaultQuery("section", string(export.SectionAll)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "section must be one of: all, financial, operational"})
		return
	}

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	caps := auth.CapabilitiesFrom(c)
	if !exportAllowed(section, caps) {
		c.JSON(http.StatusForbidden, gin.H{"error": "missing capability for section " + string(section)})
		return
	}

	anchor := h.now()
	f, err := h.parseFilter(c, anchor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.computeSnapshot(c, f, anchor)
	if err != nil {
		h.respondComputeError(c, err)
		return
	}

	var rigs []domain.RigPerformanceRow
	if section == export.SectionAll || section == export.SectionOperational {
		rigs, err = h.engine.ComputeRigPerformance(c.Request.Context(), f)
		if err != nil {
			h.respondComputeError(c, err)
			return
		}
	}

	var buf bytes.Buffer
	switch format {
	case "csv":
		err = export.WriteCSV(&buf, snap, rigs, section)
	case "xlsx":
		err = export.WriteXLSX(&buf, snap, rigs, section)
	}
	if err != nil {
		h.log.Error("Export render failed",
			logger.String("format", format),
			logger.String("section", string(section)),
			logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render export"})
		return
	}

	filename := exportFilename(section, format, anchor)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	contentType := contentTypeCSV
	if format == "xlsx" {
		contentType = contentTypeXLSX
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// exportAllowed checks the caller's capabilities against the requested
// section. "all" needs both sides.
func exportAllowed(section export.Section, caps domain.Capabilities) bool {
	switch section {
	case export.SectionFinancial:
		return caps.Financial
	case export.SectionOperational:
		return caps.Operational
	default:
		return caps.Financial && caps.Operational
	}
}

func exportFilename(section export.Section, format string, anchor time.Time) string {
	return fmt.Sprintf("dashboard_%s_%s.%s", section, anchor.Format("20060102"), format)
}
