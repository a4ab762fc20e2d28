package routev1

import "testing"

func TestAcceptedVideoExtension(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		wantExt     string
		wantOK      bool
	}{
		{name: "mp4 file", filename: "selfie.mp4", wantExt: ".mp4", wantOK: true},
		{name: "m4v staged as mp4", filename: "selfie.m4v", wantExt: ".mp4", wantOK: true},
		{name: "webm file", filename: "selfie.webm", wantExt: ".webm", wantOK: true},
		{name: "upper case extension", filename: "SELFIE.MP4", wantExt: ".mp4", wantOK: true},
		{name: "content type fallback", filename: "blob", contentType: "video/mp4", wantExt: ".mp4", wantOK: true},
		{name: "webm content type fallback", filename: "blob", contentType: "video/webm", wantExt: ".webm", wantOK: true},
		{name: "image rejected", filename: "selfie.jpg", contentType: "image/jpeg", wantOK: false},
		{name: "quicktime rejected", filename: "selfie.mov", contentType: "video/quicktime", wantOK: false},
		{name: "no hint rejected", filename: "blob", wantOK: false},
		{name: "executable rejected", filename: "payload.exe", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, ok := acceptedVideoExtension(tt.filename, tt.contentType)
			if ok != tt.wantOK {
				t.Fatalf("acceptedVideoExtension(%q, %q) ok = %v, want %v", tt.filename, tt.contentType, ok, tt.wantOK)
			}
			if ok && ext != tt.wantExt {
				t.Errorf("acceptedVideoExtension(%q, %q) ext = %q, want %q", tt.filename, tt.contentType, ext, tt.wantExt)
			}
		})
	}
}
