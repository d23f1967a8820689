// Package qr is a pure formatting helper: it derives verification URLs and
// renders them as QR data URLs for embedding in certificate metadata.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const pngSize = 256

// VerifyURL builds the public verification link for a token id.
func VerifyURL(frontendBase string, tokenID int64) string {
	return fmt.Sprintf("%s/verify?tokenId=%d", frontendBase, tokenID)
}

// DataURL renders content as a PNG QR code wrapped in a data URL, ready to
// drop into a metadata image field.
func DataURL(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, pngSize)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
