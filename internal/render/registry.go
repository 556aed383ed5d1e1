package render

import "careerforge/internal/page"

// RenderFunc 是一种组件的声明式渲染描述：纯函数，
// (配置, 最终颜色, 页面数据) -> 节点树。
type RenderFunc func(cfg page.Config, colors page.Colors, ctx Context) *Node

// Entry 描述注册表中的一种组件类型。
type Entry struct {
	Kind        page.Kind   `json:"kind"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Defaults    page.Config `json:"defaults"`
	render      RenderFunc
}

var registry = map[page.Kind]Entry{
	page.KindAbout: {
		Kind:        page.KindAbout,
		Label:       "About Section",
		Description: "Tell candidates who you are and what you stand for",
		Defaults:    page.Config{"heading": "", "text": "", "alignment": "start"},
		render:      renderAbout,
	},
	page.KindJobs: {
		Kind:        page.KindJobs,
		Label:       "Job Listings",
		Description: "Live list of your open positions with search and filters",
		Defaults:    page.Config{},
		render:      renderJobs,
	},
	page.KindBanner: {
		Kind:        page.KindBanner,
		Label:       "Company Banner",
		Description: "Full-width hero with headline, description and call to action",
		Defaults: page.Config{
			"imageUrl":     "",
			"text":         "",
			"description":  "",
			"buttonText":   "",
			"buttonLink":   "",
			"textPosition": map[string]any{"horizontal": "center", "vertical": "mid"},
			"height":       50,
		},
		render: renderBanner,
	},
	page.KindImage: {
		Kind:        page.KindImage,
		Label:       "Image Gallery",
		Description: "One or more images with optional captions",
		Defaults:    page.Config{"images": []any{}},
		render:      renderImage,
	},
	page.KindVideo: {
		Kind:        page.KindVideo,
		Label:       "Video Embed",
		Description: "Embedded video player",
		Defaults:    page.Config{"videoUrl": ""},
		render:      renderVideo,
	},
	page.KindHTML: {
		Kind:        page.KindHTML,
		Label:       "Custom HTML",
		Description: "Raw HTML block for anything the other components can't do",
		Defaults:    page.Config{"html": ""},
		render:      renderHTML,
	},
	page.KindText: {
		Kind:        page.KindText,
		Label:       "Text Block",
		Description: "Heading, subheading and rich text content",
		Defaults:    page.Config{"heading": "", "subheading": "", "text": "", "alignment": "start"},
		render:      renderText,
	},
	page.KindFooter: {
		Kind:        page.KindFooter,
		Label:       "Footer",
		Description: "Closing section with a copyright line",
		Defaults:    page.Config{"text": ""},
		render:      renderFooter,
	},
}

// Palette 按固定顺序返回全部注册表条目，供构建器侧边栏使用。
func Palette() []Entry {
	kinds := page.Kinds()
	out := make([]Entry, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, registry[kind])
	}
	return out
}

// Defaults 返回某类型的缺省配置；合法但未注册的类型返回空
// 配置，永不失败。
func Defaults(kind page.Kind) page.Config {
	if entry, ok := registry[kind]; ok {
		return entry.Defaults
	}
	return page.Config{}
}

// Component 渲染单个组件实例为节点树。未知类型返回 nil，
// 由调用方跳过。
func Component(c page.Component, branding page.Branding, ctx Context) *Node {
	entry, ok := registry[c.Kind]
	if !ok {
		return nil
	}
	colors := page.EffectiveColors(branding, c.Config.CustomColors())
	return entry.render(c.Config, colors, ctx)
}
