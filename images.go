package pubsite

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"strconv"

	"github.com/coocood/freecache"
	"golang.org/x/image/draw"
)

const (
	jpegQuality      = 80
	maxVariantPixels = 40 << 20
)

// variantWidths are the widths a content image may be requested at with ?w=.
var variantWidths = []int{320, 640, 800, 1200}

// allowedWidth returns the smallest variant width that is at least w.
func allowedWidth(w int) (int, bool) {
	if w <= 0 {
		return 0, false
	}
	for _, v := range variantWidths {
		if w <= v {
			return v, true
		}
	}
	return variantWidths[len(variantWidths)-1], true
}

// ImageVariants renders scaled copies of content images and keeps them in memory.
type ImageVariants struct {
	cache *freecache.Cache
}

// NewImageVariants creates a variant cache of size bytes.
func NewImageVariants(size int) *ImageVariants {
	return &ImageVariants{cache: freecache.NewCache(size)}
}

// Get returns the image at name scaled down to width. Images no wider than
// width are returned unchanged. PNG sources stay PNG; everything else is
// encoded as JPEG.
func (v *ImageVariants) Get(name string, src []byte, width int) ([]byte, string, error) {
	key := []byte(name + "@" + strconv.Itoa(width))
	if data, err := v.cache.Get(key); err == nil {
		return data, http.DetectContentType(data), nil
	}
	data, contentType, err := scaleImage(src, width)
	if err != nil {
		return nil, "", err
	}
	_ = v.cache.Set(key, data, 0)
	return data, contentType, nil
}

// Clear drops every cached variant.
func (v *ImageVariants) Clear() {
	v.cache.Clear()
}

// scaleImage decodes src and scales it to width keeping the aspect ratio.
func scaleImage(src []byte, width int) ([]byte, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width*cfg.Height > maxVariantPixels {
		return nil, "", fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Width <= width {
		return src, "image/" + format, nil
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	h := bounds.Dy() * width / bounds.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if format == "png" {
		if err := png.Encode(&buf, dst); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	}
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
