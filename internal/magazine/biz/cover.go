package biz

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// CoverRenderer turns a PDF into a cover image.
type CoverRenderer interface {
	Render(pdf []byte) ([]byte, error)
}

// PDFCoverRenderer renders the first page of a PDF to PNG via MuPDF.
type PDFCoverRenderer struct{}

func NewPDFCoverRenderer() *PDFCoverRenderer {
	return &PDFCoverRenderer{}
}

func (*PDFCoverRenderer) Render(pdf []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("failed to render first page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode cover: %w", err)
	}
	return buf.Bytes(), nil
}
