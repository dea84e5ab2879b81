package handlers

import (
	"net/http"
	"strconv"

	"servswap/middleware"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/storage"
	"servswap/utils"

	"github.com/gin-gonic/gin"
)

// currentUser returns the member set by the auth middleware and writes a 401
// when it is missing.
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.CtxUserID)
	if userID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "")
		return "", false
	}
	return userID, true
}

// currentDevice builds the calling device from DeviceDetailsMiddleware values.
func currentDevice(c *gin.Context) models.Device {
	return models.Device{
		DeviceID:   c.GetString(middleware.CtxDeviceID),
		DeviceName: c.GetString(middleware.CtxDeviceName),
		IP:         c.GetString(middleware.CtxDeviceIP),
	}
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		utils.RespondError(c, apperr.Invalid("invalid request: %v", err))
		return false
	}
	return true
}

func pageFrom(c *gin.Context) models.Page {
	var p models.Page
	_ = c.ShouldBindQuery(&p)
	return p.Normalize()
}

func intQuery(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// stageImage saves the multipart "file" field to a temp file for upload.
func stageImage(c *gin.Context) (string, func(), bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, apperr.Invalid("file not provided"))
		return "", nil, false
	}
	path, cleanup, err := storage.SaveUpload(fh)
	if err != nil {
		utils.RespondError(c, err)
		return "", nil, false
	}
	return path, cleanup, true
}
