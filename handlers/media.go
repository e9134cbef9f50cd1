package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"talkie/server/backend/constants"
	"talkie/server/backend/providers"
	"talkie/server/backend/storage"
	"talkie/server/models"
)

// MediaDeps groups what the audio, speech and image routes need. Media is
// nil when OpenAI is not configured.
type MediaDeps struct {
	DB         *gorm.DB
	Media      providers.Media
	Store      *storage.FileStore
	SpeechFile string
	Logger     *slog.Logger
}

// RegisterMediaRoutes wires upload-audio and generate_image on the
// authenticated group and generate_speech on the public one.
func RegisterMediaRoutes(public, private *gin.RouterGroup, deps MediaDeps) {
	private.POST("/upload-audio/", func(c *gin.Context) { uploadAudio(c, deps) })
	private.POST("/generate_image/", func(c *gin.Context) { generateImage(c, deps) })
	public.POST("/generate_speech/", func(c *gin.Context) { generateSpeech(c, deps) })
}

// audioSubtype returns the subtype of the declared part content type.
func audioSubtype(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	_, sub, _ := strings.Cut(mt, "/")
	return sub
}

func uploadAudio(c *gin.Context, deps MediaDeps) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := models.SupportedAudioFormats[audioSubtype(fh.Header.Get("Content-Type"))]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrUnsupportedFormat})
		return
	}
	if deps.Media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": fmt.Sprintf(constants.ErrProviderUnavailable, providers.OpenAI)})
		return
	}

	// 每次上传使用唯一文件名，原始文件名只记录在 Audio 行中
	original := filepath.Base(fh.Filename)
	name := uuid.NewString() + "." + audioSubtype(fh.Header.Get("Content-Type"))
	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()
	size, err := deps.Store.Save(name, src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	path, _ := deps.Store.Path(name)

	text, err := deps.Media.Transcribe(c.Request.Context(), path)
	if err != nil {
		abortProvider(c, providers.OpenAI, err)
		return
	}
	if err := deps.DB.WithContext(c.Request.Context()).Create(&models.Audio{Filename: original, Transcription: text}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"file_size": size, "transcription": text})
}

type speechRequest struct {
	Text string `json:"text" binding:"required"`
}

func generateSpeech(c *gin.Context, deps MediaDeps) {
	var dto speechRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrEmptyContent})
		return
	}
	if deps.Media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": fmt.Sprintf(constants.ErrProviderUnavailable, providers.OpenAI)})
		return
	}
	rc, err := deps.Media.Speech(c.Request.Context(), dto.Text)
	if err != nil {
		abortProvider(c, providers.OpenAI, err)
		return
	}
	defer rc.Close()
	audio, err := io.ReadAll(rc)
	if err != nil {
		abortProvider(c, providers.OpenAI, &providers.UpstreamError{Provider: providers.OpenAI, Op: "speech", Err: err})
		return
	}
	// 同一路径会被后续请求覆盖，响应直接使用内存中的数据
	if _, err := deps.Store.Save(deps.SpeechFile, bytes.NewReader(audio)); err != nil {
		deps.Logger.Warn("save speech file", "error", err)
	}
	c.Header("Content-Disposition", `attachment; filename="`+deps.SpeechFile+`"`)
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

type imageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

func generateImage(c *gin.Context, deps MediaDeps) {
	var dto imageRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrEmptyContent})
		return
	}
	if deps.Media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": fmt.Sprintf(constants.ErrProviderUnavailable, providers.OpenAI)})
		return
	}
	url, err := deps.Media.Image(c.Request.Context(), dto.Prompt)
	if err != nil {
		abortProvider(c, providers.OpenAI, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
