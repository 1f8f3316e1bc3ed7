// Package imaging loads chest radiographs for attachment and generates the
// local preview thumbnail shown in the imaging step.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
	"golang.org/x/image/draw"

	"github.com/karuna-health/tbscreen/internal/session"
)

// MaxFileSize caps attachments before they are read into memory.
const MaxFileSize = 20 << 20

// ThumbnailWidth is the preview width in pixels; height follows the aspect.
const ThumbnailWidth = 256

var (
	// ErrUnsupportedFormat is returned for files that are neither DICOM nor
	// a decodable PNG/JPEG.
	ErrUnsupportedFormat = errors.New("imaging: unsupported image format")

	// ErrFileTooLarge is returned before reading a file past the size cap.
	ErrFileTooLarge = errors.New("imaging: file exceeds size limit")
)

// Load reads the image at path and returns it as a session attachment with a
// generated preview. The caller owns the attachment; replacing it in the
// session releases the preview file.
func Load(path string) (*session.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("imaging: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imaging: %w", err)
	}

	var (
		img         image.Image
		contentType string
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dcm", ".dicom":
		img, err = decodeDICOM(data)
		contentType = "application/dicom"
	case ".png":
		img, err = png.Decode(bytes.NewReader(data))
		contentType = "image/png"
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
		contentType = "image/jpeg"
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: decoding %s: %w", filepath.Base(path), err)
	}

	preview, err := writeThumbnail(img)
	if err != nil {
		return nil, err
	}

	return &session.Attachment{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
		Preview:     preview,
	}, nil
}

// decodeDICOM extracts the first frame of the pixel data as a plain image.
func decodeDICOM(data []byte) (image.Image, error) {
	ds, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return nil, err
	}

	elem, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("no pixel data: %w", err)
	}

	pixelInfo := dicom.MustGetPixelDataInfo(elem.Value)
	if len(pixelInfo.Frames) == 0 {
		return nil, errors.New("pixel data has no frames")
	}

	img, err := pixelInfo.Frames[0].GetImage()
	if err != nil {
		return nil, fmt.Errorf("extracting frame: %w", err)
	}
	return img, nil
}

// writeThumbnail scales the image down and writes it as a temp PNG whose path
// becomes the releasable preview handle.
func writeThumbnail(img image.Image) (*session.Preview, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, errors.New("imaging: empty image")
	}

	thumbWidth := width
	thumbHeight := height
	if width > ThumbnailWidth {
		thumbWidth = ThumbnailWidth
		thumbHeight = height * ThumbnailWidth / width
		if thumbHeight == 0 {
			thumbHeight = 1
		}
	}

	thumb := image.NewRGBA(image.Rect(0, 0, thumbWidth, thumbHeight))
	draw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), img, bounds, draw.Over, nil)

	f, err := os.CreateTemp("", "tbscreen-preview-*.png")
	if err != nil {
		return nil, fmt.Errorf("imaging: creating preview: %w", err)
	}
	if err := png.Encode(f, thumb); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("imaging: encoding preview: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("imaging: closing preview: %w", err)
	}

	return &session.Preview{Path: f.Name()}, nil
}
