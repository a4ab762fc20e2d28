package interfaces

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ApplicationContext carries the parsed request payload and the metadata
// extracted by the middleware chain into a controller.
type ApplicationContext[T any] struct {
	Ctx        *gin.Context
	Body       *T
	Keys       map[string]any
	Header     http.Header
	DeviceID   string
	DeviceName string
	UserAgent  string
}

func (ac *ApplicationContext[T]) GetHeader(key string) *string {
	value := ac.Header.Get(key)
	if value == "" {
		return nil
	}
	return &value
}

func (ac *ApplicationContext[T]) GetContextData(key string) any {
	if ac.Keys == nil {
		return nil
	}
	return ac.Keys[key]
}
