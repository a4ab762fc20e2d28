package controller

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/controller/dto"
	"facegate.io/application/interfaces"
	"facegate.io/application/repository"
	"facegate.io/application/utils"
	"facegate.io/entities"
	"facegate.io/infrastructure/auth"
	"facegate.io/infrastructure/database/repository/cache"
	"facegate.io/infrastructure/database/repository/mongo"
	"facegate.io/infrastructure/facematch"
	facematch_types "facegate.io/infrastructure/facematch/types"
	fileupload "facegate.io/infrastructure/file_upload"
	file_upload_types "facegate.io/infrastructure/file_upload/types"
	"facegate.io/infrastructure/liveness"
	liveness_types "facegate.io/infrastructure/liveness/types"
	"facegate.io/infrastructure/logger"
	queue_tasks "facegate.io/infrastructure/message_queue/tasks"
	server_response "facegate.io/infrastructure/serverResponse"
	"facegate.io/infrastructure/validator"
)

const encodingCandidatesCacheKey = "face-encoding-candidates"

// RegisterFace enrolls a new user after a successful liveness check on
// the submitted probe.
func RegisterFace(ctx *interfaces.ApplicationContext[dto.FaceRegistrationRequest]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	if err := ctx.Body.Validate(); err != nil {
		apperrors.ClientError(ctx.Ctx, err.Error(), nil, nil)
		return
	}

	verdict, snapshot, ok := runLivenessCheck(ctx.Ctx, ctx.Body.Image, ctx.Body.VideoKey, ctx.Body.VideoPath)
	if !ok {
		if verdict != nil {
			recordAttempt(nil, ctx.DeviceID, ctx.DeviceName, verdict, false)
		}
		return
	}
	if !verdict.IsLive {
		recordAttempt(nil, ctx.DeviceID, ctx.DeviceName, verdict, false)
		apperrors.CustomError(ctx.Ctx, fmt.Sprintf("liveness check failed - %s", verdict.ReasonCode), nil)
		return
	}

	encoded := base64.StdEncoding.EncodeToString(snapshot)
	encodingResult, err := facematch.FaceMatchService.EncodeFace(&encoded)
	if err != nil {
		apperrors.ExternalDependencyError(ctx.Ctx, "facematch", "encode", err)
		return
	}
	if !encodingResult.Success || len(encodingResult.Encoding) == 0 {
		apperrors.ClientError(ctx.Ctx, "no face could be extracted from the submitted probe", nil, nil)
		return
	}

	candidates, err := loadEncodingCandidates()
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	if len(candidates) != 0 {
		matchResult, err := facematch.FaceMatchService.MatchFace(encodingResult.Encoding, candidates)
		if err != nil {
			apperrors.ExternalDependencyError(ctx.Ctx, "facematch", "match", err)
			return
		}
		if matchResult.Success && matchResult.Matched {
			apperrors.EntityAlreadyExistsError(ctx.Ctx, "this face is already registered")
			return
		}
	}

	imageKey := fmt.Sprintf("faces/%s.jpg", utils.GenerateUULDString())
	if err := fileupload.FileUploader.UploadBytes(imageKey, snapshot); err != nil {
		apperrors.ExternalDependencyError(ctx.Ctx, "azure", "upload", err)
		return
	}

	user, err := repository.UserRepo().CreateOne(context.Background(), entities.User{
		Name:         ctx.Body.Name,
		AccessLevel:  ctx.Body.AccessLevel,
		FaceEncoding: encodingResult.Encoding,
		ImageKey:     imageKey,
		UserAgent:    ctx.UserAgent,
	})
	if err != nil {
		// the portrait was already uploaded, do not leave it orphaned
		if deleteErr := fileupload.FileUploader.DeleteFile(imageKey); deleteErr != nil {
			logger.Error("failed to remove orphaned portrait after registration failure", logger.LoggerOptions{
				Key:  "error",
				Data: deleteErr,
			}, logger.LoggerOptions{
				Key:  "imageKey",
				Data: imageKey,
			})
		}
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	cache.Cache.DeleteOne(encodingCandidatesCacheKey)
	recordAttempt(&user.ID, ctx.DeviceID, ctx.DeviceName, verdict, true)

	token, err := auth.GenerateAuthToken(auth.ClaimsData{
		UserID:      user.ID,
		Name:        user.Name,
		AccessLevel: user.AccessLevel,
		IssuedAt:    time.Now().Unix(),
		ExpiresAt:   time.Now().Add(12 * time.Hour).Unix(),
		DeviceID:    ctx.DeviceID,
		UserAgent:   ctx.UserAgent,
	})
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}

	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "face registered", map[string]any{
		"user":        user,
		"token":       token,
		"portraitUrl": signedPortraitURL(user.ImageKey),
		"liveness":    verdict,
	}, nil, nil)
}

// VerifyFace runs the liveness gate and then matches the probe face
// against every enrolled user.
func VerifyFace(ctx *interfaces.ApplicationContext[dto.FaceVerificationRequest]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	if err := ctx.Body.Validate(); err != nil {
		apperrors.ClientError(ctx.Ctx, err.Error(), nil, nil)
		return
	}

	verdict, snapshot, ok := runLivenessCheck(ctx.Ctx, ctx.Body.Image, ctx.Body.VideoKey, ctx.Body.VideoPath)
	if !ok {
		if verdict != nil {
			recordAttempt(nil, ctx.DeviceID, ctx.DeviceName, verdict, false)
		}
		return
	}
	if !verdict.IsLive {
		recordAttempt(nil, ctx.DeviceID, ctx.DeviceName, verdict, false)
		apperrors.CustomError(ctx.Ctx, fmt.Sprintf("liveness check failed - %s", verdict.ReasonCode), nil)
		return
	}

	encoded := base64.StdEncoding.EncodeToString(snapshot)
	encodingResult, err := facematch.FaceMatchService.EncodeFace(&encoded)
	if err != nil {
		apperrors.ExternalDependencyError(ctx.Ctx, "facematch", "encode", err)
		return
	}
	if !encodingResult.Success || len(encodingResult.Encoding) == 0 {
		recordAttempt(nil, ctx.DeviceID, ctx.DeviceName, verdict, false)
		apperrors.ClientError(ctx.Ctx, "no face could be extracted from the submitted probe", nil, nil)
		return
	}

	candidates, err := loadEncodingCandidates()
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	if len(candidates) == 0 {
		recordAttempt(nil, ctx.DeviceID, ctx.DeviceName, verdict, false)
		apperrors.NotFoundError(ctx.Ctx, "no enrolled faces to match against")
		return
	}

	matchResult, err := facematch.FaceMatchService.MatchFace(encodingResult.Encoding, candidates)
	if err != nil {
		apperrors.ExternalDependencyError(ctx.Ctx, "facematch", "match", err)
		return
	}
	if !matchResult.Success || !matchResult.Matched || matchResult.UserID == nil {
		recordAttempt(nil, ctx.DeviceID, ctx.DeviceName, verdict, false)
		apperrors.NotFoundError(ctx.Ctx, "face does not match any enrolled user")
		return
	}

	user, err := repository.UserRepo().FindByID(*matchResult.UserID)
	if err != nil || user == nil {
		apperrors.FatalServerError(ctx.Ctx, errors.New("matched user could not be loaded"))
		return
	}
	recordAttempt(&user.ID, ctx.DeviceID, ctx.DeviceName, verdict, true)

	token, err := auth.GenerateAuthToken(auth.ClaimsData{
		UserID:      user.ID,
		Name:        user.Name,
		AccessLevel: user.AccessLevel,
		IssuedAt:    time.Now().Unix(),
		ExpiresAt:   time.Now().Add(12 * time.Hour).Unix(),
		DeviceID:    ctx.DeviceID,
		UserAgent:   ctx.UserAgent,
	})
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}

	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "face verified", map[string]any{
		"user":        user,
		"token":       token,
		"portraitUrl": signedPortraitURL(user.ImageKey),
		"distance":    matchResult.Distance,
		"liveness":    verdict,
	}, nil, nil)
}

// GetVerificationAttempts returns the authenticated user's audit trail,
// newest first.
func GetVerificationAttempts(ctx *interfaces.ApplicationContext[any]) {
	userID, ok := ctx.GetContextData("userID").(string)
	if !ok || userID == "" {
		apperrors.AuthenticationError(ctx.Ctx, "no authenticated user on this request")
		return
	}
	var sort interface{} = map[string]interface{}{"createdAt": -1}
	attempts, err := repository.VerificationAttemptRepo().FindMany(map[string]interface{}{
		"userID": userID,
	}, &mongo.FindOptions{Sort: &sort})
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "verification attempts fetched", attempts, nil, nil)
}

// LastVerdict returns the most recent liveness verdict recorded for the
// calling device, if one is still cached.
func LastVerdict(ctx *interfaces.ApplicationContext[any]) {
	cached := cache.Cache.FindOne(fmt.Sprintf("last-verdict-%s", ctx.DeviceID))
	if cached == nil {
		apperrors.NotFoundError(ctx.Ctx, "no verdict recorded for this device")
		return
	}
	var verdict liveness_types.LivenessVerdict
	if err := json.Unmarshal([]byte(*cached), &verdict); err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "last recorded verdict", verdict, nil, nil)
}

// signedPortraitURL returns a short-lived read URL for the stored
// portrait. Failure to sign degrades to no URL rather than failing the
// request.
func signedPortraitURL(imageKey string) *string {
	if imageKey == "" {
		return nil
	}
	signedURL, err := fileupload.FileUploader.GeneratedSignedURL(imageKey, file_upload_types.SignedURLPermission{
		Read: true,
	}, 15*time.Minute)
	if err != nil {
		logger.Warning("could not sign portrait url", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "imageKey",
			Data: imageKey,
		})
		return nil
	}
	return signedURL
}

// runLivenessCheck resolves the probe source, runs the pipeline and maps
// failures onto client responses. The returned bool reports whether the
// caller should continue; the verdict may be non-nil even on failure so
// the attempt can still be audited.
func runLivenessCheck(ginCtx interface{}, image *string, videoKey *string, videoPath *string) (*liveness_types.LivenessVerdict, []byte, bool) {
	if image != nil && *image != "" {
		snapshot, err := utils.DecodeBase64Image(*image)
		if err != nil {
			apperrors.ClientError(ginCtx, err.Error(), nil, nil)
			return nil, nil, false
		}
		return liveness.LivenessService.ProcessImage(), snapshot, true
	}

	asset, err := resolveVideoAsset(videoKey, videoPath)
	if err != nil {
		apperrors.ClientError(ginCtx, err.Error(), nil, nil)
		return nil, nil, false
	}

	verdict, snapshot, err := liveness.LivenessService.ProcessVideo(asset)
	if err != nil {
		var validationErr *liveness_types.ValidationError
		var decodeErr *liveness_types.DecodeError
		if errors.As(err, &validationErr) {
			apperrors.ClientError(ginCtx, validationErr.Reason, nil, nil)
			return verdict, nil, false
		}
		if errors.As(err, &decodeErr) {
			apperrors.ClientError(ginCtx, decodeErr.Reason, nil, nil)
			return verdict, nil, false
		}
		apperrors.UnknownError(ginCtx, err, nil)
		return verdict, nil, false
	}
	return verdict, snapshot, true
}

func resolveVideoAsset(videoKey *string, videoPath *string) (*liveness_types.VideoAsset, error) {
	path := ""
	if videoPath != nil && *videoPath != "" {
		path = *videoPath
	} else if videoKey != nil && *videoKey != "" {
		exists, err := fileupload.FileUploader.CheckFileExists(*videoKey)
		if err != nil {
			return nil, errors.New("the referenced video could not be checked in storage")
		}
		if !exists {
			return nil, errors.New("the referenced video does not exist in storage")
		}
		if err := os.MkdirAll(queue_tasks.TempAssetDir, 0o755); err != nil {
			return nil, err
		}
		path = filepath.Join(queue_tasks.TempAssetDir, fmt.Sprintf("%s.mp4", utils.GenerateUULDString()))
		if err := fileupload.FileUploader.DownloadToFile(*videoKey, path); err != nil {
			return nil, errors.New("the referenced video could not be fetched from storage")
		}
	} else {
		return nil, errors.New("no probe source provided")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.New("the submitted video could not be read")
	}
	return &liveness_types.VideoAsset{
		ID:        utils.GenerateUULDString(),
		Path:      path,
		SizeBytes: info.Size(),
	}, nil
}

func recordAttempt(userID *string, deviceID string, deviceName string, verdict *liveness_types.LivenessVerdict, matched bool) {
	if serialised, marshalErr := json.Marshal(verdict); marshalErr == nil {
		cache.Cache.CreateEntry(fmt.Sprintf("last-verdict-%s", deviceID), serialised, 24*time.Hour)
	}
	_, err := repository.VerificationAttemptRepo().CreateOne(context.Background(), entities.VerificationAttempt{
		UserID:     userID,
		DeviceID:   deviceID,
		DeviceName: deviceName,
		IsLive:     verdict.IsLive,
		FinalScore: verdict.FinalScore,
		ReasonCode: string(verdict.ReasonCode),
		Signals:    map[string]float64(verdict.PerSignalScores),
		Matched:    matched,
	})
	if err != nil {
		logger.Error("failed to record verification attempt", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
}

func loadEncodingCandidates() ([]facematch_types.CandidateEncoding, error) {
	if cached := cache.Cache.FindOneByteArray(encodingCandidatesCacheKey); cached != nil {
		candidates := []facematch_types.CandidateEncoding{}
		if err := json.Unmarshal(*cached, &candidates); err == nil {
			return candidates, nil
		}
		cache.Cache.DeleteOne(encodingCandidatesCacheKey)
	}

	users, err := repository.UserRepo().FindMany(map[string]interface{}{
		"deactivated": false,
	})
	if err != nil {
		return nil, err
	}
	candidates := []facematch_types.CandidateEncoding{}
	for _, user := range *users {
		if len(user.FaceEncoding) == 0 {
			continue
		}
		candidates = append(candidates, facematch_types.CandidateEncoding{
			UserID:   user.ID,
			Encoding: user.FaceEncoding,
		})
	}
	if serialised, err := json.Marshal(candidates); err == nil {
		cache.Cache.CreateEntry(encodingCandidatesCacheKey, serialised, 5*time.Minute)
	}
	return candidates, nil
}
