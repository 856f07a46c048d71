package snaps

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidImage indicates the submitted image is not a decodable
// base64 data URL.
var ErrInvalidImage = errors.New("invalid image data url")

// decodeDataURL splits a "data:<media-type>;base64,<payload>" string
// into its decoded bytes and media type.
func decodeDataURL(dataURL string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, "", ErrInvalidImage
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrInvalidImage
	}

	mediaType, found := strings.CutSuffix(meta, ";base64")
	if !found {
		return nil, "", ErrInvalidImage
	}
	if mediaType == "" {
		mediaType = "image/jpeg"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return nil, "", ErrInvalidImage
	}

	return data, mediaType, nil
}

// encodeDataURL renders raw bytes as an inline base64 data URL.
func encodeDataURL(mediaType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(data))
}
