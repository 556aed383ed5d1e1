package render

import (
	"strconv"

	"careerforge/internal/page"
)

// PageData 汇总渲染一张完整页面所需的全部输入。
type PageData struct {
	CompanyName string
	CompanySlug string
	LogoURL     string
	Components  []page.Component
	Branding    page.Branding
	Jobs        []Job
	Context     Context
}

// Page 将整张页面物化为一棵节点树：按 Order 渲染全部组件，
// 每个组件外包一层留白容器，最后追加版权页脚。
func Page(data PageData) *Node {
	components := page.Normalize(data.Components)
	ctx := data.Context
	ctx.CompanyName = data.CompanyName
	ctx.Jobs = data.Jobs

	colors := page.EffectiveColors(data.Branding, nil)

	children := make([]*Node, 0, len(components)+1)
	for _, c := range components {
		node := Component(c, data.Branding, ctx)
		if node == nil {
			continue
		}
		children = append(children, paddingWrapper(c, node))
	}
	children = append(children, pageFooter(data.CompanyName, colors, ctx))

	return El("div", map[string]string{
		"class": "career-page",
		"style": style("background-color", colors.Background),
	}, children...)
}

// paddingWrapper 应用组件配置中的百分比留白。
func paddingWrapper(c page.Component, node *Node) *Node {
	left, right := c.Config.Padding()
	return El("div", map[string]string{
		"style": style(
			"padding-left", formatPercent(left),
			"padding-right", formatPercent(right),
		),
	}, node)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// pageFooter 是页面级版权页脚，独立于 footer 组件，每张页面
// 都有。
func pageFooter(companyName string, colors page.Colors, ctx Context) *Node {
	return El("footer", map[string]string{
		"class": "w-full py-8 mt-12 border-t",
		"style": style("border-color", colors.Primary+"20", "background-color", colors.Background),
	},
		El("div", map[string]string{"class": "max-w-6xl mx-auto px-6 text-center"},
			El("p", map[string]string{
				"class": "text-sm",
				"style": style("color", colors.Text, "opacity", "0.7"),
			}, Text(copyrightLine(companyName, ctx.Now))),
		),
	)
}
