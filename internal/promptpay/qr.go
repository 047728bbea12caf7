package promptpay

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const DefaultImageSize = 256

// PNG renders payload as a scannable QR image.
func PNG(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultImageSize
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qrcode.Encode: %w", err)
	}

	return png, nil
}
