package helper

import (
	"bytes"
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	avatarMaxUpload = int64(5 * 1024 * 1024)
	avatarMaxDim    = 512
	avatarQuality   = 80
)

// EncodeAvatarWebP re-encodes an uploaded profile picture to a bounded-size
// WebP. Keeps aspect ratio, longest side capped at avatarMaxDim.
func EncodeAvatarWebP(fh *multipart.FileHeader) ([]byte, error) {
	if fh == nil {
		return nil, fmt.Errorf("nil file header")
	}
	if fh.Size > avatarMaxUpload {
		return nil, fmt.Errorf("file too large (max %d bytes)", avatarMaxUpload)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img = imaging.Fit(img, avatarMaxDim, avatarMaxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: avatarQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
