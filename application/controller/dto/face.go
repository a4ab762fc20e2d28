package dto

import (
	"errors"
	"fmt"
)

// FaceRegistrationRequest enrolls a new user. The probe can come in as a
// multipart video upload (VideoPath is set by the route handler), a blob
// storage key of a previously uploaded video, or a base64 still image
// used as a degraded fallback.
type FaceRegistrationRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	AccessLevel int     `json:"accessLevel" validate:"gte=0,lte=10"`
	Image       *string `json:"image,omitempty" validate:"omitempty,base64image"`
	VideoKey    *string `json:"videoKey,omitempty"`
	VideoPath   *string `json:"-"`
}

func (payload *FaceRegistrationRequest) Validate() error {
	if payload == nil {
		return errors.New("request cannot be nil")
	}
	if payload.Name == "" {
		return errors.New("name cannot be empty")
	}
	return validateProbeSource(payload.Image, payload.VideoKey, payload.VideoPath)
}

// FaceVerificationRequest looks up an enrolled user by face.
type FaceVerificationRequest struct {
	Image     *string `json:"image,omitempty" validate:"omitempty,base64image"`
	VideoKey  *string `json:"videoKey,omitempty"`
	VideoPath *string `json:"-"`
}

func (payload *FaceVerificationRequest) Validate() error {
	if payload == nil {
		return errors.New("request cannot be nil")
	}
	return validateProbeSource(payload.Image, payload.VideoKey, payload.VideoPath)
}

func validateProbeSource(image *string, videoKey *string, videoPath *string) error {
	sources := 0
	if image != nil && *image != "" {
		sources++
	}
	if videoKey != nil && *videoKey != "" {
		sources++
	}
	if videoPath != nil && *videoPath != "" {
		sources++
	}
	if sources == 0 {
		return errors.New("a video upload, a videoKey or a fallback image must be provided")
	}
	if sources > 1 {
		return fmt.Errorf("only one probe source may be provided, got %d", sources)
	}
	return nil
}
