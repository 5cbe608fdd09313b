package handler

import (
	"errors"
	"net/http"

	"github.com/emberhaus/internal/markup"
	"github.com/gin-gonic/gin"
)

type previewRequest struct {
	Text string `json:"text"`
}

type formatRequest struct {
	Text      string           `json:"text"`
	Selection markup.Selection `json:"selection"`
	Action    markup.Action    `json:"action"`
	Href      string           `json:"href"`
}

// PreviewMarkup renders editor markup to the sanitised HTML that would be stored.
func (a *API) PreviewMarkup(c *gin.Context) {
	var req previewRequest
	if !bindJSON(c, &req, "invalid preview payload") {
		return
	}
	html, err := markup.Render(req.Text)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to render preview")
		return
	}
	c.JSON(http.StatusOK, gin.H{"html": string(html)})
}

// FormatMarkup applies one toolbar action to the editor text and selection.
func (a *API) FormatMarkup(c *gin.Context) {
	var req formatRequest
	if !bindJSON(c, &req, "invalid format payload") {
		return
	}
	edit, err := markup.Apply(req.Text, req.Selection, req.Action, req.Href)
	if err != nil {
		if errors.Is(err, markup.ErrUnknownAction) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to format text")
		return
	}
	c.JSON(http.StatusOK, edit)
}
