package routev1

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/controller"
	"facegate.io/application/controller/dto"
	"facegate.io/application/interfaces"
	"facegate.io/application/utils"
	"facegate.io/infrastructure/logger"
	messagequeue "facegate.io/infrastructure/message_queue"
	queue_tasks "facegate.io/infrastructure/message_queue/tasks"
	mq_types "facegate.io/infrastructure/message_queue/types"
	middlewares "facegate.io/infrastructure/middleware"
	"github.com/gin-gonic/gin"
)

var errUnsupportedVideoFormat = errors.New("unsupported video format. upload an mp4 or webm file")

func FaceRouter(router *gin.RouterGroup) {
	faceRouter := router.Group("/face")
	{
		faceRouter.POST("/register", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			var body dto.FaceRegistrationRequest
			if isMultipart(ctx) {
				body.Name = ctx.PostForm("name")
				if raw := ctx.PostForm("accessLevel"); raw != "" {
					level, err := strconv.Atoi(raw)
					if err != nil {
						apperrors.ErrorProcessingPayload(ctx)
						return
					}
					body.AccessLevel = level
				}
				if key := ctx.PostForm("videoKey"); key != "" {
					body.VideoKey = &key
				}
				if image := ctx.PostForm("image"); image != "" {
					body.Image = &image
				}
				videoPath, err := saveVideoUpload(ctx)
				if err != nil {
					if errors.Is(err, errUnsupportedVideoFormat) {
						apperrors.ClientError(ctx, err.Error(), nil, nil)
					} else {
						apperrors.FatalServerError(ctx, err)
					}
					return
				}
				body.VideoPath = videoPath
			} else {
				if err := ctx.ShouldBindJSON(&body); err != nil {
					apperrors.ErrorProcessingPayload(ctx)
					return
				}
			}
			controller.RegisterFace(&interfaces.ApplicationContext[dto.FaceRegistrationRequest]{
				Ctx:        ctx,
				Body:       &body,
				DeviceID:   appContext.DeviceID,
				DeviceName: appContext.DeviceName,
				UserAgent:  appContext.UserAgent,
			})
		})

		faceRouter.POST("/verify", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			var body dto.FaceVerificationRequest
			if isMultipart(ctx) {
				if key := ctx.PostForm("videoKey"); key != "" {
					body.VideoKey = &key
				}
				if image := ctx.PostForm("image"); image != "" {
					body.Image = &image
				}
				videoPath, err := saveVideoUpload(ctx)
				if err != nil {
					if errors.Is(err, errUnsupportedVideoFormat) {
						apperrors.ClientError(ctx, err.Error(), nil, nil)
					} else {
						apperrors.FatalServerError(ctx, err)
					}
					return
				}
				body.VideoPath = videoPath
			} else {
				if err := ctx.ShouldBindJSON(&body); err != nil {
					apperrors.ErrorProcessingPayload(ctx)
					return
				}
			}
			controller.VerifyFace(&interfaces.ApplicationContext[dto.FaceVerificationRequest]{
				Ctx:        ctx,
				Body:       &body,
				DeviceID:   appContext.DeviceID,
				DeviceName: appContext.DeviceName,
				UserAgent:  appContext.UserAgent,
			})
		})

		faceRouter.GET("/attempts", middlewares.UserAuthenticationMiddleware(), func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			controller.GetVerificationAttempts(&interfaces.ApplicationContext[any]{
				Ctx:        ctx,
				Keys:       appContext.Keys,
				DeviceID:   appContext.DeviceID,
				DeviceName: appContext.DeviceName,
				UserAgent:  appContext.UserAgent,
			})
		})

		faceRouter.GET("/last-verdict", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			controller.LastVerdict(&interfaces.ApplicationContext[any]{
				Ctx:        ctx,
				DeviceID:   appContext.DeviceID,
				DeviceName: appContext.DeviceName,
				UserAgent:  appContext.UserAgent,
			})
		})
	}
}

func isMultipart(ctx *gin.Context) bool {
	return strings.HasPrefix(ctx.GetHeader("Content-Type"), "multipart/form-data")
}

// acceptedVideoExtension reports whether an uploaded file looks like a
// format the decode stage can handle, and returns the extension to
// stage it under.
func acceptedVideoExtension(filename string, contentType string) (string, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4", ".m4v":
		return ".mp4", true
	case ".webm":
		return ".webm", true
	}
	switch strings.ToLower(contentType) {
	case "video/mp4":
		return ".mp4", true
	case "video/webm":
		return ".webm", true
	}
	return "", false
}

// saveVideoUpload stages the uploaded probe video in the temp asset
// directory. The file is removed by the pipeline once processed, or by
// the sweep task if the request dies before then. A nil path with a nil
// error means no video was attached.
func saveVideoUpload(ctx *gin.Context) (*string, error) {
	file, err := ctx.FormFile("video")
	if err != nil {
		return nil, nil
	}
	ext, ok := acceptedVideoExtension(file.Filename, uploadContentType(file))
	if !ok {
		return nil, errUnsupportedVideoFormat
	}
	if err := os.MkdirAll(queue_tasks.TempAssetDir, 0o755); err != nil {
		logger.Error("could not create temp asset directory", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	dest := filepath.Join(queue_tasks.TempAssetDir, utils.GenerateUULDString()+ext)
	if err := ctx.SaveUploadedFile(file, dest); err != nil {
		logger.Error("could not stage uploaded video", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	scheduleStagedAssetSweep()
	return &dest, nil
}

func uploadContentType(file *multipart.FileHeader) string {
	if file.Header == nil {
		return ""
	}
	return file.Header.Get("Content-Type")
}

// scheduleStagedAssetSweep queues a deferred cleanup for the asset just
// staged, in case the request never reaches the pipeline.
func scheduleStagedAssetSweep() {
	payload, err := json.Marshal(queue_tasks.TempAssetSweepPayload{MaxAgeMinutes: 30})
	if err != nil {
		return
	}
	messagequeue.TaskQueue.Enqueue(mq_types.QueueTask{
		Name:      queue_tasks.HandleTempAssetSweepTaskName,
		Payload:   payload,
		Priority:  mq_types.Low,
		ProcessIn: 35 * 60,
		MaxRetry:  3,
	})
}
