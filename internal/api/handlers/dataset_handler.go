package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/shopgen/internal/export"
	"github.com/andresuchdata/shopgen/internal/service"
)

type DatasetHandler struct {
	service *service.DatasetService
}

func NewDatasetHandler(service *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{service: service}
}

func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	manifests, err := h.service.ListDatasets(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list datasets")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list datasets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"datasets": manifests,
		"total":    len(manifests),
	})
}

func (h *DatasetHandler) GetDataset(c *gin.Context) {
	m, err := h.service.GetDataset(c.Request.Context(), c.Param("folder"))
	if err != nil {
		h.fail(c, err, "failed to fetch dataset")
		return
	}

	c.JSON(http.StatusOK, m)
}

// DownloadTable streams one CSV table of a dataset
func (h *DatasetHandler) DownloadTable(c *gin.Context) {
	folder, table := c.Param("folder"), c.Param("table")

	path, err := h.service.TablePath(c.Request.Context(), folder, table)
	if err != nil {
		h.fail(c, err, "failed to fetch table")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.FileAttachment(path, folder+"_"+export.FileName(table))
}

func (h *DatasetHandler) ListRuns(c *gin.Context) {
	limit := 50
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && v > 0 && v <= 500 {
		limit = v
	}

	runs, err := h.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err, "failed to fetch runs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *DatasetHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("run_id"))
	if err != nil {
		h.fail(c, err, "failed to fetch run")
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *DatasetHandler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrDatasetNotFound), errors.Is(err, service.ErrRunNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownTable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "tables": export.TableNames})
	case errors.Is(err, service.ErrRunsUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Msg(message)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
	}
}
