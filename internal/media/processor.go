// Package media turns uploaded pictures into bounded-width WebP files.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxWidth       = 1600
	DefaultQuality = 82
	ContentType    = "image/webp"
)

var ErrUnsupportedImage = errors.New("unsupported image")

type Storage interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type Result struct {
	URL    string `json:"url"`
	Key    string `json:"key"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Processor struct {
	MaxWidth int
	Quality  float32
}

func NewProcessor() *Processor {
	return &Processor{MaxWidth: MaxWidth, Quality: DefaultQuality}
}

// Convert decodes JPEG, PNG or WebP, scales it down to MaxWidth keeping the
// aspect ratio and encodes it as WebP.
func (p *Processor) Convert(data []byte) ([]byte, image.Rectangle, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	img := resize(src, p.MaxWidth)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: p.Quality}); err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), img.Bounds(), nil
}

func resize(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return src
	}

	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

type Uploader struct {
	processor *Processor
	storage   Storage
}

func NewUploader(p *Processor, s Storage) *Uploader {
	return &Uploader{processor: p, storage: s}
}

func (u *Uploader) Upload(ctx context.Context, data []byte) (*Result, error) {
	out, bounds, err := u.processor.Convert(data)
	if err != nil {
		return nil, err
	}

	key := "media/" + uuid.NewString() + ".webp"
	url, err := u.storage.Put(ctx, key, ContentType, out)
	if err != nil {
		return nil, err
	}

	return &Result{URL: url, Key: key, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}
