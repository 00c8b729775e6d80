package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// ExifInfo holds the camera metadata fields used for captions, already
// formatted. Absent fields are empty strings.
type ExifInfo struct {
	Maker        string
	Model        string
	FNumber      string // "f/1.80"
	ExposureTime string // "1/250s"
	FocalLength  string // "26.00mm"
	ISO          string // "ISO100"
}

// LoadExif reads camera metadata from an image file. Files without readable
// EXIF yield nil; the caption then degrades to attribution only.
func LoadExif(path string) *ExifInfo {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil
	}

	info := &ExifInfo{
		Maker: stringField(x, exif.Make),
		Model: stringField(x, exif.Model),
	}
	if num, den, ok := ratField(x, exif.FNumber); ok {
		info.FNumber = fmt.Sprintf("f/%.2f", float64(num)/float64(den))
	}
	if num, den, ok := ratField(x, exif.ExposureTime); ok && num > 0 {
		info.ExposureTime = fmt.Sprintf("1/%.0fs", float64(den)/float64(num))
	}
	if num, den, ok := ratField(x, exif.FocalLength); ok {
		info.FocalLength = fmt.Sprintf("%.2fmm", float64(num)/float64(den))
	}
	if iso, ok := intField(x, exif.ISOSpeedRatings); ok {
		info.ISO = fmt.Sprintf("ISO%d", iso)
	}
	return info
}

// TechLine joins whichever technical fields are present, space-separated.
func (i *ExifInfo) TechLine() string {
	var parts []string
	for _, field := range []string{i.FNumber, i.ExposureTime, i.FocalLength, i.ISO} {
		if field != "" {
			parts = append(parts, field)
		}
	}
	return strings.Join(parts, " ")
}

func stringField(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	val, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(val, `"`, ""))
}

func ratField(x *exif.Exif, name exif.FieldName) (int64, int64, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, 0, false
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0, 0, false
	}
	return num, den, true
}

func intField(x *exif.Exif, name exif.FieldName) (int, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	val, err := tag.Int(0)
	if err != nil {
		return 0, false
	}
	return val, true
}
