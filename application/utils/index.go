package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

func GenerateUULDString() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy()).String()
}

func GetStringPointer(text string) *string {
	return &text
}

// DecodeBase64Image decodes a base64 encoded image (with or without a
// data URI prefix) and checks that the bytes are a parseable image.
func DecodeBase64Image(encoded string) ([]byte, error) {
	payload := encoded
	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return nil, errors.New("malformed data uri")
		}
		payload = parts[1]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.New("invalid base64 image data")
	}
	_, _, err = image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.New("decoded data is not a valid image")
	}
	return raw, nil
}
