package gallery

import (
	"errors"
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"
)

// ErrInvalidImage 上传内容无法按图片解码
var ErrInvalidImage = errors.New("invalid image payload")

// EncodedImage 重编码结果：WebP 原图 + 缩略图
type EncodedImage struct {
	Original  []byte
	Thumbnail []byte
	Width     int
	Height    int
}

// Encoder 用 libvips 把上传的图片统一重编码为 WebP
type Encoder struct {
	quality int
	maxDim  int
}

// NewEncoder 创建编码器。quality 为 WebP 质量，maxDim 为缩略图长边上限。
func NewEncoder(quality, maxDim int) *Encoder {
	return &Encoder{quality: quality, maxDim: maxDim}
}

// Encode 解码任意支持的图片格式，导出 WebP 原图和缩略图。
// 无法解码的数据返回错误。
func (e *Encoder) Encode(data []byte) (*EncodedImage, error) {
	img, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	defer img.Close()

	width := img.Width()
	height := img.Height()

	original, _, err := img.ExportWebp(e.exportParams())
	if err != nil {
		return nil, fmt.Errorf("export webp: %w", err)
	}

	thumbnail := original
	if targetWidth := ThumbnailTargetWidth(width, height, e.maxDim); targetWidth < width {
		thumbImg, err := vips.NewThumbnailFromBuffer(data, targetWidth, 0, vips.InterestingNone)
		if err != nil {
			return nil, fmt.Errorf("thumbnail from buffer: %w", err)
		}
		defer thumbImg.Close()

		thumbnail, _, err = thumbImg.ExportWebp(e.exportParams())
		if err != nil {
			return nil, fmt.Errorf("export thumbnail webp: %w", err)
		}
	}

	return &EncodedImage{
		Original:  original,
		Thumbnail: thumbnail,
		Width:     width,
		Height:    height,
	}, nil
}

func (e *Encoder) exportParams() *vips.WebpExportParams {
	return &vips.WebpExportParams{
		Quality:         e.quality,
		Lossless:        false,
		ReductionEffort: 4,
		StripMetadata:   true,
	}
}

// ThumbnailTargetWidth 返回使图片较长边不超过 maxDim 的目标宽度。
// 图片本身不超限时返回原宽度。
func ThumbnailTargetWidth(width, height, maxDim int) int {
	if width <= 0 || height <= 0 {
		return maxDim
	}

	longer := width
	if height > longer {
		longer = height
	}
	if longer <= maxDim {
		return width
	}
	return width * maxDim / longer
}
