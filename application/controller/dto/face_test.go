package dto

import (
	"strings"
	"testing"

	"facegate.io/application/utils"
)

func TestValidateFaceRegistrationRequest(t *testing.T) {
	tests := []struct {
		name    string
		request *FaceRegistrationRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "nil request",
			request: nil,
			wantErr: true,
			errMsg:  "request cannot be nil",
		},
		{
			name: "empty name",
			request: &FaceRegistrationRequest{
				Name:      "",
				VideoPath: utils.GetStringPointer("/tmp/probe.mp4"),
			},
			wantErr: true,
			errMsg:  "name cannot be empty",
		},
		{
			name: "no probe source",
			request: &FaceRegistrationRequest{
				Name: "Ada Obi",
			},
			wantErr: true,
			errMsg:  "a video upload, a videoKey or a fallback image must be provided",
		},
		{
			name: "more than one probe source",
			request: &FaceRegistrationRequest{
				Name:      "Ada Obi",
				VideoKey:  utils.GetStringPointer("uploads/probe.mp4"),
				VideoPath: utils.GetStringPointer("/tmp/probe.mp4"),
			},
			wantErr: true,
			errMsg:  "only one probe source may be provided, got 2",
		},
		{
			name: "valid request with video path",
			request: &FaceRegistrationRequest{
				Name:      "Ada Obi",
				VideoPath: utils.GetStringPointer("/tmp/probe.mp4"),
			},
			wantErr: false,
		},
		{
			name: "valid request with video key",
			request: &FaceRegistrationRequest{
				Name:     "Ada Obi",
				VideoKey: utils.GetStringPointer("uploads/probe.mp4"),
			},
			wantErr: false,
		},
		{
			name: "valid request with fallback image",
			request: &FaceRegistrationRequest{
				Name:  "Ada Obi",
				Image: utils.GetStringPointer(strings.Repeat("a", 200)),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err.Error() != tt.errMsg {
				t.Errorf("Validate() error = %q, want %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestValidateFaceVerificationRequest(t *testing.T) {
	tests := []struct {
		name    string
		request *FaceVerificationRequest
		wantErr bool
	}{
		{
			name:    "nil request",
			request: nil,
			wantErr: true,
		},
		{
			name:    "no probe source",
			request: &FaceVerificationRequest{},
			wantErr: true,
		},
		{
			name: "empty strings do not count as sources",
			request: &FaceVerificationRequest{
				Image:    utils.GetStringPointer(""),
				VideoKey: utils.GetStringPointer(""),
			},
			wantErr: true,
		},
		{
			name: "valid request with video key",
			request: &FaceVerificationRequest{
				VideoKey: utils.GetStringPointer("uploads/probe.mp4"),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
