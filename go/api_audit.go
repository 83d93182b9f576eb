package opsserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	audithttpmapper "github.com/Apurer/reseller-ops-api/internal/domains/audit/adapters/http/mapper"
	auditports "github.com/Apurer/reseller-ops-api/internal/domains/audit/ports"
)

// AuditAPI exposes the read side of the audit log.
type AuditAPI struct {
	service auditports.Service
}

func NewAuditAPI(service auditports.Service) AuditAPI {
	return AuditAPI{service: service}
}

// Get /api/audit-logs
// Lists entries newest first, filtered by free-text search and action
func (api *AuditAPI) ListAuditLogs(c *gin.Context) {
	var filter audithttpmapper.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindingError(c, err)
		return
	}
	entries, err := api.service.List(c.Request.Context(), filter.ToListInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, audithttpmapper.FromDomainEntries(entries))
}
