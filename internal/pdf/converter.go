package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/gen2brain/go-fitz"
)

// Inspector reads rendered PDFs back with MuPDF
type Inspector struct {
	// PreviewQuality is the JPEG quality used for page previews
	PreviewQuality int
}

func NewInspector() *Inspector {
	return &Inspector{PreviewQuality: 85}
}

// PageCount returns the number of pages in pdfData
func (i *Inspector) PageCount(pdfData []byte) (int, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	return doc.NumPage(), nil
}

// Preview renders page n (zero based) as a JPEG
func (i *Inspector) Preview(pdfData []byte, n int) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if n < 0 || n >= doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d)", n, doc.NumPage())
	}

	img, err := doc.Image(n)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", n, err)
	}

	return encodeJPEG(img, i.PreviewQuality)
}

// DetectImageFormat returns the registered format name of data (jpeg, png, gif)
func DetectImageFormat(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return format, nil
}

// ConvertImageToJPEG re-encodes any supported image as JPEG
func ConvertImageToJPEG(imageData []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return encodeJPEG(img, 90)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
