package pipeline

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// maxPhotoBytes is Telegram's cap for photo uploads.
	maxPhotoBytes = 10 << 20
	// maxPhotoEdge is Telegram's cap for a photo's longer dimension.
	maxPhotoEdge = 4000
	// thumbEdge is the longer dimension of generated document thumbnails.
	thumbEdge = 320
	// oversizeFactor is applied once when a rendition exceeds maxPhotoBytes.
	oversizeFactor = 0.5

	jpegQuality = 90
)

// enforceSizeGuard rewrites path scaled down by oversizeFactor when the file
// exceeds maxPhotoBytes. The factor is applied once, not iterated.
func enforceSizeGuard(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat rendition: %w", err)
	}
	if fi.Size() <= maxPhotoBytes {
		return nil
	}
	img, err := decodeImage(path)
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	w := int(math.Round(float64(bounds.Dx()) * oversizeFactor))
	h := int(math.Round(float64(bounds.Dy()) * oversizeFactor))
	return saveJPEG(path, scaleTo(img, w, h))
}

// enforceDimensionGuard rewrites path so the longer edge is at most
// maxPhotoEdge, preserving aspect ratio.
func enforceDimensionGuard(path string) error {
	img, err := decodeImage(path)
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	longer := bounds.Dx()
	if bounds.Dy() > longer {
		longer = bounds.Dy()
	}
	if longer <= maxPhotoEdge {
		return nil
	}
	factor := float64(maxPhotoEdge) / float64(longer)
	w := int(math.Round(float64(bounds.Dx()) * factor))
	h := int(math.Round(float64(bounds.Dy()) * factor))
	return saveJPEG(path, scaleTo(img, w, h))
}

// writeThumbnail renders src into dst with the longer edge capped at
// thumbEdge.
func writeThumbnail(src, dst string) error {
	img, err := decodeImage(src)
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	longer := bounds.Dx()
	if bounds.Dy() > longer {
		longer = bounds.Dy()
	}
	factor := 1.0
	if longer > thumbEdge {
		factor = float64(thumbEdge) / float64(longer)
	}
	w := int(math.Round(float64(bounds.Dx()) * factor))
	h := int(math.Round(float64(bounds.Dy()) * factor))
	return saveJPEG(dst, scaleTo(img, w, h))
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rendition: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode rendition: %w", err)
	}
	return img, nil
}

func scaleTo(img image.Image, w, h int) image.Image {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func saveJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write rendition: %w", err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		f.Close()
		return fmt.Errorf("encode rendition: %w", err)
	}
	return f.Close()
}
