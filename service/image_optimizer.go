package service

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/disintegration/imaging"
)

// ImageProfile selects how an uploaded image is resized and encoded
type ImageProfile string

const (
	// ProfileSticker keeps transparency: PNG, longest side 512px
	ProfileSticker ImageProfile = "sticker"
	// ProfilePhoto is used for user photos and frame artwork: JPEG, longest side 1600px
	ProfilePhoto ImageProfile = "photo"
	// ProfileThumb is used for admin grid thumbnails: JPEG, longest side 300px
	ProfileThumb ImageProfile = "thumb"
)

type profileSettings struct {
	maxDim  int
	format  imaging.Format
	quality int
}

var profiles = map[ImageProfile]profileSettings{
	ProfileSticker: {maxDim: 512, format: imaging.PNG},
	ProfilePhoto:   {maxDim: 1600, format: imaging.JPEG, quality: 82},
	ProfileThumb:   {maxDim: 300, format: imaging.JPEG, quality: 60},
}

// ParseImageProfile maps a query value to a profile, defaulting to photo
func ParseImageProfile(s string) ImageProfile {
	p := ImageProfile(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := profiles[p]; ok {
		return p
	}
	return ProfilePhoto
}

// Extension returns the file extension of the profile's output format
func (p ImageProfile) Extension() string {
	if profiles[p].format == imaging.PNG {
		return ".png"
	}
	return ".jpg"
}

// ContentType returns the MIME type of the profile's output format
func (p ImageProfile) ContentType() string {
	if profiles[p].format == imaging.PNG {
		return "image/png"
	}
	return "image/jpeg"
}

// OptimizeImage decodes raw image bytes (PNG, JPEG, GIF, ...), applies EXIF
// orientation, shrinks the image to fit the profile and re-encodes it.
// Images already smaller than the profile are never enlarged.
func OptimizeImage(imageData []byte, profile ImageProfile) ([]byte, error) {
	settings, ok := profiles[profile]
	if !ok {
		return nil, fmt.Errorf("unknown image profile %q", profile)
	}

	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > settings.maxDim || bounds.Dy() > settings.maxDim {
		log.Printf("🔄 Resizing image: %dx%d -> fit %d", bounds.Dx(), bounds.Dy(), settings.maxDim)
		img = imaging.Fit(img, settings.maxDim, settings.maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	var opts []imaging.EncodeOption
	if settings.format == imaging.JPEG {
		opts = append(opts, imaging.JPEGQuality(settings.quality))
	}
	if err := imaging.Encode(&buf, img, settings.format, opts...); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	log.Printf("✓ Image optimized: profile=%s, output_size=%d bytes", profile, buf.Len())
	return buf.Bytes(), nil
}
