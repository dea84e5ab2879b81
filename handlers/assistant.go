package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/assistant"
	"servswap/utils"

	"github.com/gin-gonic/gin"
)

const allowedVoiceExtension = ".wav"

// AssistantHandler serves the in-app help assistant.
type AssistantHandler struct {
	Assistant assistant.AssistantService
}

func (h *AssistantHandler) AskHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.AssistantRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Assistant.Ask(c.Request.Context(), userID, req.Text)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VoiceHandler accepts a LINEAR16 WAV recording in the multipart "audio" field.
// ?language= selects the recognition language.
func (h *AssistantHandler) VoiceHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("audio")
	if err != nil {
		utils.RespondError(c, apperr.Invalid("audio file not provided"))
		return
	}
	if strings.ToLower(filepath.Ext(fh.Filename)) != allowedVoiceExtension {
		utils.RespondError(c, apperr.Invalid("only .wav recordings are supported"))
		return
	}
	if fh.Size > assistant.MaxVoiceSize {
		utils.RespondError(c, apperr.Invalid("recording exceeds %d MB", assistant.MaxVoiceSize/(1024*1024)))
		return
	}

	f, err := fh.Open()
	if err != nil {
		utils.RespondError(c, apperr.Invalid("cannot read recording"))
		return
	}
	defer f.Close()
	wav, err := io.ReadAll(io.LimitReader(f, assistant.MaxVoiceSize+1))
	if err != nil {
		utils.RespondError(c, apperr.Invalid("cannot read recording"))
		return
	}

	resp, err := h.Assistant.AskVoice(c.Request.Context(), userID, wav, c.Query("language"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
