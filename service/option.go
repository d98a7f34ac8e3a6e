package service

import (
	"strings"
)

// OptionFields are the structured values bundled inside a Naver
// option-description cell.
type OptionFields struct {
	SenderName string
	RawDate    string
	GiftOption string
	WrapOption string
}

// ParseOptionInfo splits an option-description string into its named
// sub-fields. The cell is a " / "-delimited list of "label: value"
// segments; labels are matched by substring containment because the
// marketplace renders them with and without internal spacing. Segments
// without a colon are ignored, and a repeated label overwrites the
// earlier value.
func ParseOptionInfo(optionText string) OptionFields {
	var result OptionFields

	for _, part := range strings.Split(optionText, " / ") {
		key, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case strings.Contains(key, "보내시는 분"):
			result.SenderName = value
		case strings.Contains(key, "도착 희망 날짜"), strings.Contains(key, "도착희망날짜"):
			result.RawDate = value
		case strings.Contains(key, "과일 선물 옵션"), strings.Contains(key, "과일선물옵션"):
			result.GiftOption = value
		case strings.Contains(key, "크리스탈 보자기"):
			result.WrapOption = value
		}
	}

	return result
}
