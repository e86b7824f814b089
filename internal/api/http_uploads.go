package api

import (
	"fmt"
	"io"
	"net/http"
	"resalelens/internal/storage"
	"resalelens/internal/utils"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxPhotoSize 上传图片大小上限。
const maxPhotoSize = 20 << 20

type uploadDataURLRequest struct {
	Image string `json:"image" binding:"required"`
}

// UploadPhoto 接收商品照片并写入存储层,返回可供分析使用的公共 URL。
// 支持 multipart 表单 (字段名 photo) 和 JSON data URL 两种提交方式。
func (h *HTTPHandler) UploadPhoto(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}
	if h.storage == nil {
		ServiceUnavailable(c, "storage not configured")
		return
	}

	var (
		data []byte
		ext  string
		err  error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		data, ext, err = readMultipartPhoto(c)
	} else {
		var req uploadDataURLRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			InvalidPayload(c)
			return
		}
		data, ext, err = utils.DecodeMediaPayload(req.Image)
	}
	if err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid photo payload")
		return
	}
	if len(data) == 0 {
		MissingField(c, "photo")
		return
	}
	if len(data) > maxPhotoSize {
		BadRequest(c, ErrCodeInvalidRequest, "photo exceeds size limit")
		return
	}

	path, err := h.storage.SavePhoto(c.Request.Context(), data, storage.PhotoMeta{
		UserID:    user.ID,
		Extension: ext,
	})
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to save photo")
		InternalError(c, "failed to save photo")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"path": path,
		"url":  h.publicURL(path),
	})
}

func readMultipartPhoto(c *gin.Context) ([]byte, string, error) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return nil, "", err
	}
	if fileHeader.Size > maxPhotoSize {
		return nil, "", fmt.Errorf("photo exceeds size limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize+1))
	if err != nil {
		return nil, "", err
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	ext := utils.ExtensionFromMime(mimeType)
	if ext == "" {
		ext = utils.ExtensionFromMime(http.DetectContentType(data))
	}
	return data, ext, nil
}

func (h *HTTPHandler) publicURL(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	base := h.storagePublicBase
	if base == "" {
		base = "/files"
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), strings.TrimLeft(trimmed, "/"))
}
