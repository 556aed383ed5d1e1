package page

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Kind 标识一种可渲染组件。集合封闭，文档写入边界校验。
type Kind string

const (
	KindAbout  Kind = "about"
	KindJobs   Kind = "jobs"
	KindBanner Kind = "banner"
	KindImage  Kind = "image"
	KindVideo  Kind = "video"
	KindHTML   Kind = "html"
	KindText   Kind = "text"
	KindFooter Kind = "footer"
)

// Kinds 按固定顺序列出全部合法组件类型。
func Kinds() []Kind {
	return []Kind{KindAbout, KindJobs, KindBanner, KindImage, KindVideo, KindHTML, KindText, KindFooter}
}

// Valid 报告 k 是否属于封闭枚举。
func (k Kind) Valid() bool {
	switch k {
	case KindAbout, KindJobs, KindBanner, KindImage, KindVideo, KindHTML, KindText, KindFooter:
		return true
	}
	return false
}

// Config 是组件配置的原始键值文档。未知或缺失的键在渲染期
// 回退到各类型的缺省值，配置永远不要求完整。
type Config map[string]any

// Component 表示页面上一个已放置、已配置的组件实例。
type Component struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"type"`
	Order  int    `json:"order"`
	Config Config `json:"config,omitempty"`
}

// Normalize 按 Order 稳定排序并重排为连续的 0..N-1。
// 每次增删、拖拽、保存之后都必须经过它。
func Normalize(components []Component) []Component {
	sorted := make([]Component, len(components))
	copy(sorted, components)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	for i := range sorted {
		sorted[i].Order = i
	}
	return sorted
}

// Validate 校验组件列表：类型必须在枚举内，缺失 id 自动补
// uuid，config 中的 customColors 必须是合法十六进制色。
func Validate(components []Component) ([]Component, error) {
	out := make([]Component, len(components))
	copy(out, components)
	for i := range out {
		if !out[i].Kind.Valid() {
			return nil, fmt.Errorf("component %d: unknown kind %q", i, out[i].Kind)
		}
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
		if err := validateCustomColors(out[i].Config); err != nil {
			return nil, fmt.Errorf("component %d (%s): %w", i, out[i].Kind, err)
		}
	}
	return out, nil
}

func validateCustomColors(cfg Config) error {
	raw, ok := cfg["customColors"]
	if !ok {
		return nil
	}
	colors, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("customColors must be an object")
	}
	for key, val := range colors {
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("customColors.%s must be a string", key)
		}
		if _, err := CleanHexColor(s); err != nil {
			return fmt.Errorf("customColors.%s: %w", key, err)
		}
	}
	return nil
}

// CustomColors 提取组件级颜色覆盖（已规范化）。非法值被忽略，
// 渲染路径上永远不报错。
func (c Config) CustomColors() map[string]string {
	raw, ok := c["customColors"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}
		cleaned, err := CleanHexColor(s)
		if err != nil {
			continue
		}
		out[key] = cleaned
	}
	return out
}

// decode 将原始配置经 JSON 往返解码到类型化结构。目标结构
// 预置缺省值，原始文档中缺失的键不会覆盖它们。
func (c Config) decode(target any) {
	if len(c) == 0 {
		return
	}
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	// 渲染器必须是全函数：坏字段静默退回缺省值。
	_ = json.Unmarshal(data, target)
}

// TextPosition 描述横幅文案的水平/垂直对齐。
type TextPosition struct {
	Horizontal string `json:"horizontal"`
	Vertical   string `json:"vertical"`
}

// AboutConfig 对应 about 组件。
type AboutConfig struct {
	Heading   string `json:"heading"`
	Text      string `json:"text"`
	Alignment string `json:"alignment"`
}

// BannerConfig 对应 banner 组件。Height 单位为 vh，
// PaddingLeft/PaddingRight 单位为百分比。
type BannerConfig struct {
	ImageURL     string       `json:"imageUrl"`
	Text         string       `json:"text"`
	Description  string       `json:"description"`
	ButtonText   string       `json:"buttonText"`
	ButtonLink   string       `json:"buttonLink"`
	TextPosition TextPosition `json:"textPosition"`
	Height       float64      `json:"height"`
}

// ImageItem 是 image 组件中的一张图。
type ImageItem struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// ImageConfig 对应 image 组件。
type ImageConfig struct {
	Images []ImageItem `json:"images"`
}

// VideoConfig 对应 video 组件。
type VideoConfig struct {
	VideoURL string `json:"videoUrl"`
}

// TextConfig 对应 text 组件。Text 允许受信的内联 HTML。
type TextConfig struct {
	Heading    string `json:"heading"`
	Subheading string `json:"subheading"`
	Text       string `json:"text"`
	Alignment  string `json:"alignment"`
}

// HTMLConfig 对应 html 组件，内容原样注入。
type HTMLConfig struct {
	HTML string `json:"html"`
}

// FooterConfig 对应 footer 组件。
type FooterConfig struct {
	Text string `json:"text"`
}

// AboutConfig 解码 about 配置并套用缺省值。
func (c Config) AboutConfig() AboutConfig {
	cfg := AboutConfig{Alignment: "start"}
	c.decode(&cfg)
	return cfg
}

// BannerConfig 解码 banner 配置并套用缺省值。
func (c Config) BannerConfig() BannerConfig {
	cfg := BannerConfig{
		TextPosition: TextPosition{Horizontal: "center", Vertical: "mid"},
		Height:       50,
	}
	c.decode(&cfg)
	if cfg.Height <= 0 {
		cfg.Height = 50
	}
	return cfg
}

// ImageConfig 解码 image 配置。
func (c Config) ImageConfig() ImageConfig {
	var cfg ImageConfig
	c.decode(&cfg)
	return cfg
}

// VideoConfig 解码 video 配置。
func (c Config) VideoConfig() VideoConfig {
	var cfg VideoConfig
	c.decode(&cfg)
	return cfg
}

// TextConfig 解码 text 配置并套用缺省值。
func (c Config) TextConfig() TextConfig {
	cfg := TextConfig{Alignment: "start"}
	c.decode(&cfg)
	return cfg
}

// HTMLConfig 解码 html 配置。
func (c Config) HTMLConfig() HTMLConfig {
	var cfg HTMLConfig
	c.decode(&cfg)
	return cfg
}

// FooterConfig 解码 footer 配置。
func (c Config) FooterConfig() FooterConfig {
	var cfg FooterConfig
	c.decode(&cfg)
	return cfg
}

// Padding 返回组件两侧的百分比留白。
func (c Config) Padding() (left, right float64) {
	left = c.floatValue("paddingLeft")
	right = c.floatValue("paddingRight")
	return left, right
}

func (c Config) floatValue(key string) float64 {
	switch v := c[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}
