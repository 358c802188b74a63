package utils

import (
	"github.com/skip2/go-qrcode"
)

// TicketQRContent is what the entrance scanner reads back.
func TicketQRContent(ticketID string) string { return "cinema-ticket:" + ticketID }

// GenerateQRCode encodes content as a PNG of size x size pixels.
func GenerateQRCode(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
