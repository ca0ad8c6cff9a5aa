package service

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(orderNumber string) ([]byte, error)
}

type DefaultQRGenerator struct {
	BaseURL string
}

func (g DefaultQRGenerator) Generate(orderNumber string) ([]byte, error) {
	qrData := fmt.Sprintf("%s/order.html?number=%s", g.BaseURL, orderNumber)
	return qrcode.Encode(qrData, qrcode.Medium, 256)
}
