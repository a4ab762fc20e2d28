package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"facegate.io/application/interfaces"
	"github.com/gin-gonic/gin"
)

func TestUserAgentMiddleware(t *testing.T) {
	const browserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

	tests := []struct {
		name       string
		userAgent  string
		deviceID   string
		wantNext   bool
		wantDevice string
	}{
		{
			name:       "browser with device id",
			userAgent:  browserAgent,
			deviceID:   "device-42",
			wantNext:   true,
			wantDevice: "device-42",
		},
		{
			name:     "missing user agent",
			deviceID: "device-42",
			wantNext: false,
		},
		{
			name:      "bot agent",
			userAgent: "Googlebot/2.1 (+http://www.google.com/bot.html)",
			deviceID:  "device-42",
			wantNext:  false,
		},
		{
			name:      "missing device id",
			userAgent: browserAgent,
			wantNext:  false,
		},
		{
			name:      "oversized device id",
			userAgent: browserAgent,
			deviceID:  strings.Repeat("x", 200),
			wantNext:  false,
		},
	}

	gin.SetMode(gin.TestMode)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ginCtx, _ := gin.CreateTestContext(httptest.NewRecorder())
			ginCtx.Request = httptest.NewRequest(http.MethodPost, "/api/v1/face/verify", nil)
			header := http.Header{}
			if tt.userAgent != "" {
				header.Set("User-Agent", tt.userAgent)
			}
			if tt.deviceID != "" {
				header.Set("X-Device-Id", tt.deviceID)
			}
			got, next := UserAgentMiddleware(&interfaces.ApplicationContext[any]{
				Ctx:    ginCtx,
				Header: header,
			})
			if next != tt.wantNext {
				t.Fatalf("UserAgentMiddleware() next = %v, want %v", next, tt.wantNext)
			}
			if tt.wantNext && got.DeviceID != tt.wantDevice {
				t.Errorf("DeviceID = %q, want %q", got.DeviceID, tt.wantDevice)
			}
		})
	}
}
