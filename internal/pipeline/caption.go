package pipeline

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// MergeMakerModel combines the EXIF maker and model into a single camera
// name. Many vendors repeat the maker inside the model string ("Canon EOS
// R5"), so the maker is only prepended when the model does not already
// contain it, compared case-insensitively.
func MergeMakerModel(maker, model string) string {
	maker = strings.TrimSpace(maker)
	model = strings.TrimSpace(model)
	switch {
	case maker == "" && model == "":
		return ""
	case model == "":
		return titleCaser.String(maker)
	case maker == "":
		return model
	}
	if strings.Contains(strings.ToLower(model), strings.ToLower(maker)) {
		return model
	}
	return titleCaser.String(maker) + " " + model
}

// ComposeCaption renders the channel caption: camera line and technical line
// when metadata allows, a blank separator when either is present, and always
// the attribution line.
func ComposeCaption(info *ExifInfo, author string) string {
	var lines []string
	if info != nil {
		if camera := MergeMakerModel(info.Maker, info.Model); camera != "" {
			lines = append(lines, "\U0001F4F8 Shot on: "+camera)
		}
		if tech := info.TechLine(); tech != "" {
			lines = append(lines, "ℹ️ "+tech)
		}
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, "\U0001F464 Author: "+author)
	return strings.Join(lines, "\n")
}
