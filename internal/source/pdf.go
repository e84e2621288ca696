package source

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// PDFSource растеризует страницы PDF; страница = кадр.
type PDFSource struct {
	doc       *fitz.Document
	path      string
	dpi       int
	maxPixels int64
}

func NewPDFSource(path string, dpi int, maxPixels int64) (*PDFSource, error) {
	if dpi < 1 {
		return nil, fmt.Errorf("dpi must be positive, got %d", dpi)
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, &DecodeError{Format: "pdf", Err: err}
	}
	return &PDFSource{doc: doc, path: path, dpi: dpi, maxPixels: maxPixels}, nil
}

func (s *PDFSource) FrameCount() int {
	return s.doc.NumPage()
}

// PageSize возвращает размер страницы в пикселях при текущем DPI.
func (s *PDFSource) PageSize(index int) (image.Point, error) {
	if index < 0 || index >= s.FrameCount() {
		return image.Point{}, fmt.Errorf("page index %d out of range [0,%d)", index, s.FrameCount())
	}
	rect, err := s.doc.Bound(index)
	if err != nil {
		return image.Point{}, &DecodeError{Format: "pdf", Err: err}
	}
	scale := float64(s.dpi) / 72
	return image.Pt(int(float64(rect.Dx())*scale+0.5), int(float64(rect.Dy())*scale+0.5)), nil
}

func (s *PDFSource) Frame(index int) (image.Image, error) {
	size, err := s.PageSize(index)
	if err != nil {
		return nil, err
	}
	if err := checkPixels(size.X, size.Y, s.maxPixels); err != nil {
		return nil, &DecodeError{Format: "pdf", Err: fmt.Errorf("page %d: %w", index, err)}
	}
	img, err := s.doc.ImageDPI(index, float64(s.dpi))
	if err != nil {
		return nil, &DecodeError{Format: "pdf", Err: fmt.Errorf("page %d: %w", index, err)}
	}
	return img, nil
}

func (s *PDFSource) Close() error {
	return s.doc.Close()
}
