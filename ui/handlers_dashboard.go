package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"impactdash/adapters/export"
	"impactdash/app"
	"impactdash/domain/core"
	"impactdash/internal/errors"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) handleStartups(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		s.respondError(c, err, "Ungültiger Filter")
		return
	}
	list, err := s.deps.Dashboard.Startups(c.Request.Context(), criteria)
	if err != nil {
		s.respondError(c, err, app.MsgDataUnavailable)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleStartup(c *gin.Context) {
	id, err := core.ParseStartupID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()), "Ungültige Startup-ID")
		return
	}
	detail, err := s.deps.Dashboard.Startup(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err, app.MsgDataUnavailable)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) handleFacets(c *gin.Context) {
	facets, err := s.deps.Dashboard.Facets(c.Request.Context())
	if err != nil {
		s.respondError(c, err, app.MsgDataUnavailable)
		return
	}
	c.JSON(http.StatusOK, facets)
}

func (s *Server) handleKPIs(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		s.respondError(c, err, "Ungültiger Filter")
		return
	}
	kpis, err := s.deps.Dashboard.KPIs(c.Request.Context(), criteria)
	if err != nil {
		s.respondError(c, err, app.MsgDataUnavailable)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

func (s *Server) handleCharts(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		s.respondError(c, err, "Ungültiger Filter")
		return
	}
	charts, err := s.deps.Dashboard.Charts(c.Request.Context(), criteria)
	if err != nil {
		s.respondError(c, err, app.MsgDataUnavailable)
		return
	}
	c.JSON(http.StatusOK, charts)
}

func (s *Server) handleQuality(c *gin.Context) {
	report, err := s.deps.Dashboard.Quality(c.Request.Context())
	if err != nil {
		s.respondError(c, err, app.MsgDataUnavailable)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleSDGs(c *gin.Context) {
	sdgs, err := s.deps.Dashboard.SDGs(c.Request.Context())
	if err != nil {
		s.respondError(c, err, app.MsgDataUnavailable)
		return
	}
	c.JSON(http.StatusOK, sdgs)
}

func (s *Server) handleCrawlRuns(c *gin.Context) {
	runs, err := s.deps.Dashboard.CrawlRuns(c.Request.Context())
	if err != nil {
		s.respondError(c, err, app.MsgDataUnavailable)
		return
	}
	c.JSON(http.StatusOK, runs)
}

// handleExport downloads the filtered table as csv (default) or xlsx
func (s *Server) handleExport(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		s.respondError(c, errors.InvalidInput("Unbekanntes Exportformat: "+format), "Ungültiges Format")
		return
	}
	criteria, err := parseCriteria(c)
	if err != nil {
		s.respondError(c, err, "Ungültiger Filter")
		return
	}
	startups, sdgs, err := s.deps.Dashboard.ExportRows(c.Request.Context(), criteria)
	if err != nil {
		s.respondError(c, err, app.MsgDataUnavailable)
		return
	}

	var buf bytes.Buffer
	contentType := contentTypeCSV
	if format == "xlsx" {
		contentType = contentTypeXLSX
		err = export.WriteXLSX(&buf, startups, sdgs)
	} else {
		err = export.WriteCSV(&buf, startups, sdgs)
	}
	if err != nil {
		s.respondError(c, errors.Wrap(err, "export failed"), "Export fehlgeschlagen")
		return
	}

	filename := fmt.Sprintf("startups-%s.%s", time.Now().Format("2006-01-02"), format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// handleUsage summarizes LLM usage over the last ?days (default 30)
func (s *Server) handleUsage(c *gin.Context) {
	if s.deps.Usage == nil {
		s.respondError(c, errors.NotFound("usage tracking"), "Nutzungsdaten nicht verfügbar")
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		s.respondError(c, errors.InvalidInput("days must be a positive number"), "Ungültiger Zeitraum")
		return
	}
	end := time.Now().UTC()
	summary, err := s.deps.Usage.Summary(c.Request.Context(), end.AddDate(0, 0, -days), end)
	if err != nil {
		s.respondError(c, err, "Nutzungsdaten nicht verfügbar")
		return
	}
	c.JSON(http.StatusOK, summary)
}
