package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

// Fixed rendering parameters: low error correction, 6 px modules, 2 module quiet zone.
const (
	qrPixelsPerModule = 6
	qrMarginModules   = 2
)

var qrPalette = color.Palette{color.White, color.Black}

// QRCodeEncoder renders references as black on white PNG QR codes.
// Output depends only on the content, so saving the same batch twice yields
// byte-identical files.
type QRCodeEncoder struct {
	level           qrcode.RecoveryLevel
	pixelsPerModule int
	marginModules   int
}

func NewQREncoder() *QRCodeEncoder {
	return &QRCodeEncoder{
		level:           qrcode.Low,
		pixelsPerModule: qrPixelsPerModule,
		marginModules:   qrMarginModules,
	}
}

// EncodePNG encodes content into a PNG image.
func (e *QRCodeEncoder) EncodePNG(content string) ([]byte, error) {
	if content == "" {
		return nil, errors.New("qr content is empty")
	}

	code, err := qrcode.New(content, e.level)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	code.DisableBorder = true

	bitmap := code.Bitmap()
	modules := len(bitmap)

	src := image.NewPaletted(image.Rect(0, 0, modules, modules), qrPalette)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				src.SetColorIndex(x, y, 1)
			}
		}
	}

	side := (modules + 2*e.marginModules) * e.pixelsPerModule
	offset := e.marginModules * e.pixelsPerModule
	dst := image.NewPaletted(image.Rect(0, 0, side, side), qrPalette)
	target := image.Rect(offset, offset, offset+modules*e.pixelsPerModule, offset+modules*e.pixelsPerModule)
	draw.NearestNeighbor.Scale(dst, target, src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	if err := encoder.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to write png: %w", err)
	}
	return buf.Bytes(), nil
}
