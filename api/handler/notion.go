package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/clipper/models"
	"github.com/use-agent/clipper/webhook"
)

// NotionProperties returns a handler for GET /api/notion/properties.
func NotionProperties(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		props, err := d.Exporter.Properties(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PropertiesResponse{Status: "success", Data: props})
	}
}

// SaveToNotion returns a handler for POST /api/save-to-notion. The created
// page id is stored on the record.
func SaveToNotion(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SaveToNotionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		ctx := c.Request.Context()
		rec, err := d.Store.FindByID(ctx, req.ContentID)
		if err != nil {
			respondError(c, err)
			return
		}

		pageID, err := d.Exporter.CreatePage(ctx, rec, req.Properties)
		if err != nil {
			d.logger().Warn("notion export failed", "content_id", rec.ID, "error", err)
			respondError(c, err)
			return
		}

		rec.NotionPageID = pageID
		if err := d.Store.Update(ctx, rec); err != nil {
			respondError(c, err)
			return
		}

		d.Webhook.DeliverAsync(webhook.NewEvent(webhook.EventContentExported, rec.ID, gin.H{
			"url":            rec.URL,
			"notion_page_id": pageID,
		}))
		c.JSON(http.StatusOK, models.SaveToNotionResponse{Success: true, NotionPageID: pageID})
	}
}
