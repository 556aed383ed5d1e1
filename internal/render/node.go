package render

import (
	"html"
	"sort"
	"strings"
)

// Node 是渲染描述树的一个节点。同一棵树有两种物化方式：
// 公共路由序列化为 HTML；构建器接口序列化为 JSON，由
// 客户端物化为 DOM。两条路径永远不会各自手写渲染逻辑。
type Node struct {
	// Tag 为空时表示文本节点（或 Raw 原样 HTML 节点）。
	Tag      string            `json:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Raw      bool              `json:"raw,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// El 构造一个元素节点，nil 子节点被丢弃，便于条件拼装。
func El(tag string, attrs map[string]string, children ...*Node) *Node {
	n := &Node{Tag: tag, Attrs: attrs}
	for _, child := range children {
		if child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

// Text 构造一个转义输出的文本节点。
func Text(s string) *Node {
	return &Node{Text: s}
}

// RawHTML 构造一个原样输出的 HTML 节点（html/text 组件的
// 受信内容）。
func RawHTML(s string) *Node {
	return &Node{Text: s, Raw: true}
}

// 自闭合元素集合。
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "source": true, "track": true, "wbr": true,
}

// HTML 将整棵树序列化为 HTML。属性按键名排序，保证输出
// 确定，可直接做字符串断言。
func (n *Node) HTML() string {
	var b strings.Builder
	n.writeTo(&b)
	return b.String()
}

func (n *Node) writeTo(b *strings.Builder) {
	if n == nil {
		return
	}
	if n.Tag == "" {
		if n.Raw {
			b.WriteString(n.Text)
		} else {
			b.WriteString(html.EscapeString(n.Text))
		}
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)
	if len(n.Attrs) > 0 {
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteByte(' ')
			b.WriteString(k)
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(n.Attrs[k]))
			b.WriteByte('"')
		}
	}
	if voidTags[n.Tag] {
		b.WriteString(">")
		return
	}
	b.WriteByte('>')
	for _, child := range n.Children {
		child.writeTo(b)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

// VisibleText 深度优先收集树中全部转义文本，供渲染一致性
// 断言使用。
func (n *Node) VisibleText() []string {
	var out []string
	var walk func(node *Node)
	walk = func(node *Node) {
		if node == nil {
			return
		}
		if node.Tag == "" && !node.Raw && node.Text != "" {
			out = append(out, node.Text)
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(n)
	return out
}

// style 将样式键值对按声明顺序拼接为 style 属性值。
func style(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(pairs[i])
		b.WriteByte(':')
		b.WriteString(pairs[i+1])
	}
	return b.String()
}
