package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"careerforge/internal/page"
)

// Job 是渲染期的职位视图，由调用方从存储行映射而来。
type Job struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Department      string     `json:"department"`
	Location        string     `json:"location"`
	WorkPolicy      string     `json:"workPolicy"`
	EmploymentType  string     `json:"employmentType"`
	ExperienceLevel string     `json:"experienceLevel"`
	SalaryRange     string     `json:"salaryRange"`
	Description     string     `json:"description"`
	PostedDate      *time.Time `json:"postedDate,omitempty"`
}

// Context 携带渲染一个组件所需的页面级数据。
type Context struct {
	CompanyName string
	Jobs        []Job
	Now         time.Time
}

// postedDaysAgo 格式化职位发布时间："today"、"yesterday"、
// "N days ago"。天数向上取整。
func postedDaysAgo(now time.Time, posted time.Time) string {
	diff := now.Sub(posted)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(diff.Hours() / 24))
	switch days {
	case 0:
		return "today"
	case 1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

// wrap 包裹每个组件：CSS 变量承载最终颜色，两条物化路径
// 读到的是同一组值。
func wrap(class string, colors page.Colors, children ...*Node) *Node {
	return El("div", map[string]string{
		"class": "component-wrapper " + class,
		"style": style(
			"--primary-color", colors.Primary,
			"--secondary-color", colors.Secondary,
			"--text-color", colors.Text,
			"--button-color", colors.Button,
			"--background-color", colors.Background,
			"padding", "0",
			"margin", "0",
		),
	}, children...)
}

// sectionBackground 返回带 F0 透明度后缀的区块底色。
func sectionBackground(colors page.Colors) string {
	return colors.Background + "F0"
}

var textAlignClasses = map[string]string{
	"start":  "text-left",
	"center": "text-center",
	"end":    "text-right",
}

func textAlignClass(alignment string) string {
	if class, ok := textAlignClasses[alignment]; ok {
		return class
	}
	return "text-left"
}

func renderAbout(cfg page.Config, colors page.Colors, _ Context) *Node {
	about := cfg.AboutConfig()

	var body []*Node
	if about.Heading != "" {
		body = append(body, El("h2", map[string]string{
			"class": "text-2xl md:text-3xl font-bold",
			"style": style("color", colors.Heading),
		}, Text(about.Heading)))
	}
	if about.Text != "" {
		body = append(body, El("div", map[string]string{
			"class": "text-base md:text-lg leading-relaxed whitespace-pre-line",
			"style": style("color", colors.Text),
		}, Text(about.Text)))
	}
	if about.Heading == "" && about.Text == "" {
		body = append(body, emptyState(colors, "No content available"))
	}

	return wrap("about-section", colors,
		El("div", map[string]string{
			"class": "w-full",
			"style": style("background-color", sectionBackground(colors), "min-height", "200px"),
		},
			El("div", map[string]string{"class": "w-full max-w-4xl mx-auto px-6 py-12"},
				El("div", map[string]string{
					"class": "space-y-6 " + textAlignClass(about.Alignment),
				}, body...),
			),
		),
	)
}

func emptyState(colors page.Colors, message string) *Node {
	return El("div", map[string]string{
		"class": "text-center py-12 border-2 border-dashed rounded-lg",
		"style": style("border-color", colors.Primary),
	},
		El("p", map[string]string{"style": style("color", colors.Text)}, Text(message)),
	)
}

func renderBanner(cfg page.Config, colors page.Colors, _ Context) *Node {
	banner := cfg.BannerConfig()

	horizontalClasses := map[string]string{
		"start": "justify-start", "center": "justify-center", "end": "justify-end",
	}
	verticalClasses := map[string]string{
		"up": "items-start", "mid": "items-center", "down": "items-end",
	}
	horizontal, ok := horizontalClasses[banner.TextPosition.Horizontal]
	if !ok {
		horizontal = "justify-center"
	}
	vertical, ok := verticalClasses[banner.TextPosition.Vertical]
	if !ok {
		vertical = "items-center"
	}
	textAlign, ok := textAlignClasses[banner.TextPosition.Horizontal]
	if !ok {
		textAlign = "text-center"
	}

	background := "linear-gradient(135deg,#667eea 0%,#764ba2 100%)"
	if banner.ImageURL != "" {
		background = "url(" + banner.ImageURL + ")"
	}

	// 深色缺省正文色压在横幅图上不可读，强制翻白。
	headlineColor := colors.Text
	if headlineColor == page.DefaultTextColor {
		headlineColor = "#FFFFFF"
	}

	var body []*Node
	if banner.Text != "" {
		body = append(body, El("h1", map[string]string{
			"class": "text-3xl md:text-4xl lg:text-5xl font-bold text-white drop-shadow-lg " + textAlign,
			"style": style("color", headlineColor),
		}, Text(banner.Text)))
	}
	if banner.Description != "" {
		body = append(body, El("p", map[string]string{
			"class": "text-sm md:text-base text-white drop-shadow-lg max-w-2xl whitespace-pre-line " + textAlign,
			"style": style("color", headlineColor),
		}, Text(banner.Description)))
	}
	if banner.ButtonText != "" {
		link := banner.ButtonLink
		if link == "" {
			link = "#"
		}
		body = append(body, El("div", map[string]string{"class": "flex " + horizontal},
			El("a", map[string]string{
				"href":  link,
				"class": "px-6 py-3 rounded-md font-medium text-white transition-colors shadow-lg",
				"style": style("background-color", colors.Button),
			}, Text(banner.ButtonText)),
		))
	}
	if banner.Text == "" && banner.Description == "" && banner.ButtonText == "" {
		body = append(body, El("h1", map[string]string{
			"class": "text-3xl md:text-4xl lg:text-5xl font-bold text-white drop-shadow-lg " + textAlign,
			"style": style("color", headlineColor),
		}, Text("Welcome")))
	}

	return wrap("company-banner", colors,
		El("div", map[string]string{
			"class": "relative w-full bg-center flex " + horizontal + " " + vertical,
			"style": style(
				"background-image", background,
				"height", strconv.FormatFloat(banner.Height, 'f', -1, 64)+"vh",
				"background-size", "cover",
				"background-position", "center",
				"background-repeat", "no-repeat",
			),
		},
			El("div", map[string]string{"class": "absolute inset-0"}),
			El("div", map[string]string{
				"class": "relative z-10 w-full h-full flex flex-col " + horizontal + " " + vertical + " p-8 space-y-6 max-w-4xl mx-auto",
			}, body...),
		),
	)
}

func renderImage(cfg page.Config, colors page.Colors, _ Context) *Node {
	imageCfg := cfg.ImageConfig()

	if len(imageCfg.Images) == 0 {
		return wrap("image-box", colors,
			El("div", map[string]string{
				"class": "w-full py-12",
				"style": style("background-color", sectionBackground(colors)),
			},
				El("div", map[string]string{"class": "w-full max-w-6xl mx-auto px-6 text-center"},
					El("p", map[string]string{"style": style("color", colors.Text)}, Text("No images to display")),
				),
			),
		)
	}

	layout := "flex justify-around items-center gap-6 flex-wrap"
	if len(imageCfg.Images) > 3 {
		layout = "grid grid-cols-1 md:grid-cols-2 lg:grid-cols-3 gap-6"
	}

	items := make([]*Node, 0, len(imageCfg.Images))
	for i, img := range imageCfg.Images {
		alt := img.Caption
		if alt == "" {
			alt = fmt.Sprintf("Image %d", i+1)
		}
		var caption *Node
		if img.Caption != "" {
			caption = El("p", map[string]string{
				"class": "mt-2 text-sm",
				"style": style("color", colors.Text),
			}, Text(img.Caption))
		}
		items = append(items, El("div", map[string]string{"class": "text-center"},
			El("img", map[string]string{
				"src":   img.URL,
				"alt":   alt,
				"class": "w-full h-64 object-cover rounded-lg shadow-md",
			}),
			caption,
		))
	}

	return wrap("image-box", colors,
		El("div", map[string]string{
			"class": "w-full py-12",
			"style": style("background-color", sectionBackground(colors)),
		},
			El("div", map[string]string{"class": "w-full max-w-6xl mx-auto px-6"},
				El("div", map[string]string{"class": layout}, items...),
			),
		),
	)
}

func renderVideo(cfg page.Config, colors page.Colors, _ Context) *Node {
	video := cfg.VideoConfig()

	if video.VideoURL == "" {
		return wrap("video-box", colors,
			El("div", map[string]string{
				"class": "w-full py-12",
				"style": style("background-color", sectionBackground(colors)),
			},
				El("div", map[string]string{"class": "w-full max-w-6xl mx-auto px-6 text-center"},
					El("p", map[string]string{"style": style("color", colors.Text)}, Text("No video to display")),
				),
			),
		)
	}

	return wrap("video-box", colors,
		El("div", map[string]string{
			"class": "w-full py-12",
			"style": style("background-color", sectionBackground(colors)),
		},
			El("div", map[string]string{"class": "w-full max-w-4xl mx-auto px-6"},
				El("div", map[string]string{"class": "aspect-video"},
					El("iframe", map[string]string{
						"src":             video.VideoURL,
						"class":           "w-full h-full rounded-lg",
						"frameborder":     "0",
						"allowfullscreen": "true",
					}),
				),
			),
		),
	)
}

func renderText(cfg page.Config, colors page.Colors, _ Context) *Node {
	textCfg := cfg.TextConfig()

	var body []*Node
	if textCfg.Heading != "" {
		body = append(body, El("h2", map[string]string{
			"class": "text-3xl font-bold mb-4",
			"style": style("color", colors.Heading),
		}, Text(textCfg.Heading)))
	}
	if textCfg.Subheading != "" {
		body = append(body, El("h3", map[string]string{
			"class": "text-xl font-semibold mb-6",
			"style": style("color", colors.Secondary),
		}, Text(textCfg.Subheading)))
	}
	if textCfg.Text != "" {
		body = append(body, El("div", map[string]string{
			"class": "prose max-w-none",
			"style": style("color", colors.Text),
		}, RawHTML(textCfg.Text)))
	}
	if len(body) == 0 {
		body = append(body, emptyState(colors, "No content available"))
	}

	return wrap("text-component", colors,
		El("div", map[string]string{
			"class": "w-full py-12",
			"style": style("background-color", sectionBackground(colors)),
		},
			El("div", map[string]string{
				"class": "w-full max-w-6xl mx-auto px-6 " + textAlignClass(textCfg.Alignment),
			}, body...),
		),
	)
}

func renderHTML(cfg page.Config, colors page.Colors, _ Context) *Node {
	htmlCfg := cfg.HTMLConfig()

	return wrap("html-box", colors,
		El("div", map[string]string{
			"class": "w-full py-12",
			"style": style("background-color", sectionBackground(colors)),
		},
			El("div", map[string]string{"class": "w-full max-w-6xl mx-auto px-6"},
				El("div", nil, RawHTML(htmlCfg.HTML)),
			),
		),
	)
}

func renderFooter(cfg page.Config, colors page.Colors, ctx Context) *Node {
	footer := cfg.FooterConfig()
	text := footer.Text
	if text == "" {
		text = copyrightLine(ctx.CompanyName, ctx.Now)
	}

	return wrap("footer-section", colors,
		El("footer", map[string]string{
			"class": "w-full py-8 border-t",
			"style": style("border-color", colors.Primary+"20", "background-color", colors.Background),
		},
			El("div", map[string]string{"class": "max-w-6xl mx-auto px-6 text-center"},
				El("p", map[string]string{
					"class": "text-sm",
					"style": style("color", colors.Text, "opacity", "0.7"),
				}, Text(text)),
			),
		),
	)
}

func copyrightLine(companyName string, now time.Time) string {
	return fmt.Sprintf("© %d %s. All rights reserved.", now.Year(), companyName)
}

// renderJobs 不读取持久化配置：jobs 组件永远反映实时职位数据。
func renderJobs(_ page.Config, colors page.Colors, ctx Context) *Node {
	var listing *Node
	if len(ctx.Jobs) == 0 {
		listing = emptyState(colors, "No open positions at this time")
	} else {
		items := make([]*Node, 0, len(ctx.Jobs))
		for _, job := range ctx.Jobs {
			items = append(items, renderJobItem(job, colors, ctx.Now))
		}
		listing = El("div", map[string]string{"class": "space-y-4", "id": "job-listings"}, items...)
	}

	return wrap("job-section", colors,
		El("div", map[string]string{
			"class": "w-full",
			"style": style("background-color", sectionBackground(colors)),
		},
			El("div", map[string]string{"class": "w-full max-w-6xl mx-auto px-6 py-12"},
				El("h2", map[string]string{
					"class": "text-3xl font-bold mb-8",
					"style": style("color", colors.Heading),
				}, Text("Open Positions")),
				renderJobControls(ctx.Jobs, colors),
				listing,
			),
		),
	)
}

func renderJobItem(job Job, colors page.Colors, now time.Time) *Node {
	details := make([]*Node, 0, 5)
	for _, field := range []string{job.Department, job.Location, job.WorkPolicy, job.EmploymentType, job.ExperienceLevel} {
		if field != "" {
			details = append(details, El("span", map[string]string{"class": "flex items-center"}, Text(field)))
		}
	}

	var salary, posted *Node
	if job.SalaryRange != "" {
		salary = El("p", map[string]string{
			"class": "text-sm font-semibold mb-2",
			"style": style("color", colors.Text),
		}, Text(job.SalaryRange))
	}
	if job.PostedDate != nil {
		posted = El("p", map[string]string{
			"class": "text-xs",
			"style": style("color", colors.Text, "opacity", "0.7"),
		}, Text("Posted "+postedDaysAgo(now, *job.PostedDate)))
	}

	return El("div", map[string]string{
		"class": "bg-white border rounded-lg p-6 hover:shadow-md transition-shadow",
		"style": style("border-color", colors.Primary),
	},
		El("div", map[string]string{"class": "flex justify-between items-start"},
			El("div", map[string]string{"class": "flex-1"},
				El("h3", map[string]string{
					"class": "text-xl font-semibold mb-2",
					"style": style("color", colors.Primary),
				}, Text(job.Title)),
				El("div", map[string]string{
					"class": "flex flex-wrap gap-4 text-sm mb-3",
					"style": style("color", colors.Text),
				}, details...),
				salary,
				posted,
			),
			El("div", map[string]string{"class": "ml-4"},
				El("button", map[string]string{
					"class": "px-4 py-2 rounded-md font-medium text-white transition-colors",
					"style": style("background-color", colors.Button),
				}, Text("Apply")),
			),
		),
	)
}

// renderJobControls 输出搜索/排序/过滤控件，交互由文档外壳内
// 联脚本接管。
func renderJobControls(jobs []Job, colors page.Colors) *Node {
	filterSelect := func(id, allLabel string, values []string) *Node {
		options := []*Node{El("option", map[string]string{"value": ""}, Text(allLabel))}
		for _, v := range values {
			options = append(options, El("option", map[string]string{"value": v}, Text(v)))
		}
		return El("select", map[string]string{
			"class": "px-4 py-2 border rounded-lg focus:ring-2 focus:ring-opacity-50",
			"style": style("border-color", colors.Primary),
			"id":    id,
		}, options...)
	}

	count := strconv.Itoa(len(jobs))

	return El("div", nil,
		El("div", map[string]string{"class": "mb-6 space-y-4"},
			El("div", map[string]string{"class": "flex flex-col sm:flex-row gap-4 items-start sm:items-center justify-between"},
				El("div", map[string]string{"class": "flex-1 max-w-md"},
					El("input", map[string]string{
						"type":        "text",
						"placeholder": "Search jobs by title, department, location...",
						"class":       "w-full px-4 py-2 border rounded-lg focus:ring-2 focus:ring-opacity-50",
						"style":       style("border-color", colors.Primary),
						"id":          "job-search",
					}),
				),
				El("div", map[string]string{"class": "flex items-center gap-2"},
					El("label", map[string]string{
						"class": "text-sm font-medium",
						"style": style("color", colors.Text),
						"for":   "job-sort",
					}, Text("Sort by:")),
					El("select", map[string]string{
						"class": "px-3 py-2 border rounded-lg focus:ring-2 focus:ring-opacity-50",
						"style": style("border-color", colors.Primary),
						"id":    "job-sort",
					},
						El("option", map[string]string{"value": "newest"}, Text("Newest First")),
						El("option", map[string]string{"value": "oldest"}, Text("Oldest First")),
						El("option", map[string]string{"value": "title"}, Text("Job Title A-Z")),
					),
				),
			),
		),
		El("div", map[string]string{"class": "mb-8 p-6 bg-gray-50 rounded-lg"},
			El("div", map[string]string{"class": "flex items-center justify-between mb-4"},
				El("h3", map[string]string{
					"class": "text-lg font-semibold",
					"style": style("color", colors.Text),
				}, Text("Filter Jobs")),
				El("button", map[string]string{
					"class": "text-sm underline hover:no-underline",
					"style": style("color", colors.Secondary),
					"id":    "clear-filters",
				}, Text("Clear all filters")),
			),
			El("div", map[string]string{"class": "grid grid-cols-1 sm:grid-cols-2 md:grid-cols-3 lg:grid-cols-5 gap-4"},
				filterSelect("filter-department", "All Departments", uniqueField(jobs, func(j Job) string { return j.Department })),
				filterSelect("filter-location", "All Locations", uniqueField(jobs, func(j Job) string { return j.Location })),
				filterSelect("filter-workPolicy", "All Work Policies", uniqueField(jobs, func(j Job) string { return j.WorkPolicy })),
				filterSelect("filter-employmentType", "All Types", uniqueField(jobs, func(j Job) string { return j.EmploymentType })),
				filterSelect("filter-experienceLevel", "All Levels", uniqueField(jobs, func(j Job) string { return j.ExperienceLevel })),
			),
			El("p", map[string]string{
				"class": "mt-4 text-sm",
				"style": style("color", colors.Text),
				"id":    "job-count",
			}, Text("Showing "+count+" of "+count+" jobs")),
		),
	)
}

// uniqueField 按出现顺序收集非空去重字段值。
func uniqueField(jobs []Job, get func(Job) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, job := range jobs {
		v := strings.TrimSpace(get(job))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
