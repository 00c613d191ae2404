// Package qr renders cabinet QR codes as PNG data URLs.
package qr

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const dataURLPrefix = "data:image/png;base64,"

// Encoder turns a payload into an image the client can display directly.
type Encoder struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewEncoder returns an encoder producing size x size PNGs at the high
// recovery level.
func NewEncoder(size int) *Encoder {
	if size <= 0 {
		size = 256
	}
	return &Encoder{size: size, level: qrcode.High}
}

// Encode returns the payload as a "data:image/png;base64," URL.
func (e *Encoder) Encode(payload string) (string, error) {
	if payload == "" {
		return "", fmt.Errorf("qr payload cannot be empty")
	}

	qr, err := qrcode.New(payload, e.level)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(e.size)
	if err != nil {
		return "", fmt.Errorf("failed to render QR code: %w", err)
	}

	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// CabinetURL is the payload embedded in a cabinet's QR code.
func CabinetURL(baseURL, cabinetID string) string {
	return strings.TrimRight(baseURL, "/") + "/cabinets/" + cabinetID
}
