package upload

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math/big"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	saltLength   = 16
)

// AllowedExtensions is the fixed allow-list for stored images.
var AllowedExtensions = map[string]bool{
	"png":  true,
	"gif":  true,
	"jpeg": true,
	"jpg":  true,
}

// data:<mime>[;params],<payload>
var dataURLPattern = regexp.MustCompile(`(?s)^data:([^;,]*)((?:;[^;,]*)*),(.*)$`)

// decodedImage is a validated image payload ready for storage.
type decodedImage struct {
	MimeType  string
	Extension string
	Data      []byte
	Width     int
	Height    int
}

// mediaType resolves the declared type of a data URL, or sniffs the bytes of a
// bare payload, and maps it to a storage extension.
func mediaType(declared string, data []byte) (mimeType, ext string, err error) {
	if declared != "" {
		declared = strings.ToLower(strings.TrimSpace(declared))
		if declared == "image/jpg" {
			declared = "image/jpeg"
		}
		m := mimetype.Lookup(declared)
		if m == nil || m.Extension() == "" {
			return "", "", fmt.Errorf("%w: cannot infer extension for %q", ErrUnsupportedMediaType, declared)
		}
		mimeType, ext = m.String(), strings.TrimPrefix(m.Extension(), ".")
	} else {
		m := mimetype.Detect(data)
		mimeType, ext = m.String(), strings.TrimPrefix(m.Extension(), ".")
		if ext == "" {
			return "", "", fmt.Errorf("%w: cannot infer type of payload (%s)", ErrUnsupportedMediaType, mimeType)
		}
	}
	if !AllowedExtensions[ext] {
		return "", "", fmt.Errorf("%w: extension %q is not allowed", ErrUnsupportedMediaType, ext)
	}
	return mimeType, ext, nil
}

// decodeImageData parses a data URL or bare base64 string. A declared type is
// checked against the allow-list before the payload is decoded.
func decodeImageData(imageData string, maxBytes int64) (*decodedImage, error) {
	imageData = strings.TrimSpace(imageData)
	if imageData == "" {
		return nil, ErrImageDataMissing
	}

	var declared, payload string
	if m := dataURLPattern.FindStringSubmatch(imageData); m != nil {
		declared, payload = m[1], m[3]
		if declared == "" {
			return nil, fmt.Errorf("%w: data URL without media type", ErrUnsupportedMediaType)
		}
		if !strings.Contains(strings.ToLower(m[2]), ";base64") {
			return nil, fmt.Errorf("%w: data URL is not base64", ErrInvalidEncoding)
		}
		if _, _, err := mediaType(declared, nil); err != nil {
			return nil, err
		}
	} else {
		payload = imageData
	}

	data, err := decodeBase64(payload, maxBytes)
	if err != nil {
		return nil, err
	}

	mimeType, ext, err := mediaType(declared, data)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}
	if format != imageFormat(ext) {
		return nil, fmt.Errorf("%w: content is %s but declared %s", ErrCorruptImage, format, mimeType)
	}

	b := img.Bounds()
	return &decodedImage{
		MimeType:  mimeType,
		Extension: ext,
		Data:      data,
		Width:     b.Dx(),
		Height:    b.Dy(),
	}, nil
}

func decodeBase64(payload string, maxBytes int64) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidEncoding)
	}
	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes+2 {
		return nil, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// tolerate missing padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrImageTooLarge
	}
	return data, nil
}

// imageFormat maps an extension to the name image.Decode reports.
func imageFormat(ext string) string {
	if ext == "jpg" {
		return "jpeg"
	}
	return ext
}

// newSalt returns a random uppercase alphanumeric string from crypto/rand.
func newSalt() (string, error) {
	max := big.NewInt(int64(len(saltAlphabet)))
	buf := make([]byte, saltLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		buf[i] = saltAlphabet[n.Int64()]
	}
	return string(buf), nil
}
