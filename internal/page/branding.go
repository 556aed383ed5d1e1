package page

import (
	"fmt"
	"regexp"
	"strings"
)

// 缺省品牌色，与租户未配置时的渲染结果保持一致。
const (
	DefaultPrimaryColor    = "#3B82F6"
	DefaultSecondaryColor  = "#10B981"
	DefaultButtonColor     = "#EF4444"
	DefaultTextColor       = "#1F2937"
	DefaultBackgroundColor = "#F3F4F6"
	DefaultHeadingColor    = "#3B82F6"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Branding 表示一组品牌色。字段为空串表示“未设置”，
// 渲染时按级联规则继续向下回退。
type Branding struct {
	PrimaryColor    string `json:"primaryColor,omitempty"`
	SecondaryColor  string `json:"secondaryColor,omitempty"`
	ButtonColor     string `json:"buttonColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	HeadingColor    string `json:"headingColor,omitempty"`
}

// DefaultBranding 返回全部字段取缺省值的品牌配置。
func DefaultBranding() Branding {
	return Branding{
		PrimaryColor:    DefaultPrimaryColor,
		SecondaryColor:  DefaultSecondaryColor,
		ButtonColor:     DefaultButtonColor,
		TextColor:       DefaultTextColor,
		BackgroundColor: DefaultBackgroundColor,
		HeadingColor:    DefaultHeadingColor,
	}
}

// IsZero 报告是否没有任何字段被设置。
func (b Branding) IsZero() bool {
	return b == Branding{}
}

// CleanHexColor 规范化十六进制颜色：去除空白、自动补 '#'、
// 校验 6 位十六进制、统一为大写。空串原样返回（表示未设置）。
func CleanHexColor(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if !hexColorPattern.MatchString(s) {
		return "", fmt.Errorf("invalid hex color %q", raw)
	}
	return "#" + strings.ToUpper(s[1:]), nil
}

// Normalize 逐字段规范化颜色，返回首个非法字段的错误。
func (b Branding) Normalize() (Branding, error) {
	fields := []struct {
		name string
		val  *string
	}{
		{"primaryColor", &b.PrimaryColor},
		{"secondaryColor", &b.SecondaryColor},
		{"buttonColor", &b.ButtonColor},
		{"textColor", &b.TextColor},
		{"backgroundColor", &b.BackgroundColor},
		{"headingColor", &b.HeadingColor},
	}
	for _, f := range fields {
		cleaned, err := CleanHexColor(*f.val)
		if err != nil {
			return Branding{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.val = cleaned
	}
	return b, nil
}

// Merge 以 b 为基础，用 override 中非空的字段覆盖，返回合并结果。
func (b Branding) Merge(override Branding) Branding {
	if override.PrimaryColor != "" {
		b.PrimaryColor = override.PrimaryColor
	}
	if override.SecondaryColor != "" {
		b.SecondaryColor = override.SecondaryColor
	}
	if override.ButtonColor != "" {
		b.ButtonColor = override.ButtonColor
	}
	if override.TextColor != "" {
		b.TextColor = override.TextColor
	}
	if override.BackgroundColor != "" {
		b.BackgroundColor = override.BackgroundColor
	}
	if override.HeadingColor != "" {
		b.HeadingColor = override.HeadingColor
	}
	return b
}

// Colors 是渲染期使用的已完全解析的颜色集合：每个字段保证非空。
type Colors struct {
	Primary    string
	Secondary  string
	Button     string
	Text       string
	Background string
	Heading    string
}

// EffectiveColors 按级联规则解析组件的最终颜色：
// 组件级 customColors > 品牌配置 >（仅 heading：品牌 primary）> 字面缺省值。
func EffectiveColors(b Branding, custom map[string]string) Colors {
	resolve := func(key, brandingVal, fallback string) string {
		if v, ok := custom[key]; ok && v != "" {
			if cleaned, err := CleanHexColor(v); err == nil {
				return cleaned
			}
		}
		if brandingVal != "" {
			return brandingVal
		}
		return fallback
	}

	heading := b.HeadingColor
	if heading == "" {
		heading = b.PrimaryColor
	}

	return Colors{
		Primary:    resolve("primaryColor", b.PrimaryColor, DefaultPrimaryColor),
		Secondary:  resolve("secondaryColor", b.SecondaryColor, DefaultSecondaryColor),
		Button:     resolve("buttonColor", b.ButtonColor, DefaultButtonColor),
		Text:       resolve("textColor", b.TextColor, DefaultTextColor),
		Background: resolve("backgroundColor", b.BackgroundColor, DefaultBackgroundColor),
		Heading:    resolve("headingColor", heading, DefaultHeadingColor),
	}
}
