package service

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

// QRCodeSize is the edge length in pixels of generated QR codes.
const QRCodeSize = 256

// GenerateQRCode encodes content as a PNG QR code.
func GenerateQRCode(content string) ([]byte, error) {
	if content == "" {
		return nil, errors.New("qr code content is empty")
	}
	return qrcode.Encode(content, qrcode.Medium, QRCodeSize)
}
