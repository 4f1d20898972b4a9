package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/clipper/models"
)

// Translate returns a handler for POST /api/translate. Translations are
// stored on the record, so repeated calls reuse the first result.
func Translate(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TranslateRequest
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
		if rec.Translated() {
			c.JSON(http.StatusOK, rec)
			return
		}

		fields := []struct {
			src string
			dst *string
		}{
			{rec.Title, &rec.TranslatedTitle},
			{rec.Content, &rec.TranslatedContent},
			{rec.Description, &rec.TranslatedDescription},
		}
		for _, f := range fields {
			out, err := d.Translator.Translate(ctx, f.src)
			if err != nil {
				respondError(c, err)
				return
			}
			*f.dst = out
		}

		if err := d.Store.Update(ctx, rec); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
