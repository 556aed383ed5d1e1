package page

import (
	"fmt"

	"github.com/google/uuid"
)

// Document 是单个租户的页面草稿：有序组件列表加一份草稿品牌色。
// 所有变更都经由具名操作完成，每个操作都原子地维持
// Order 连续 0..N-1 的不变量。
type Document struct {
	Components []Component `json:"components"`
	Branding   Branding    `json:"branding"`
}

// AddComponent 在末尾追加一个指定类型的组件并返回其 id。
func (d *Document) AddComponent(kind Kind, cfg Config) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown kind %q", kind)
	}
	id := uuid.NewString()
	d.Components = append(d.Components, Component{
		ID:     id,
		Kind:   kind,
		Order:  len(d.Components),
		Config: cfg,
	})
	d.Components = Normalize(d.Components)
	return id, nil
}

// RemoveComponent 按 id 删除组件，不存在时返回错误。
func (d *Document) RemoveComponent(id string) error {
	idx := d.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("component %s not found", id)
	}
	d.Components = append(d.Components[:idx], d.Components[idx+1:]...)
	d.Components = Normalize(d.Components)
	return nil
}

// Reorder 将组件移动到目标位置（越界位置取钳制值）。
func (d *Document) Reorder(id string, position int) error {
	idx := d.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("component %s not found", id)
	}
	if position < 0 {
		position = 0
	}
	if position >= len(d.Components) {
		position = len(d.Components) - 1
	}

	moved := d.Components[idx]
	rest := append(d.Components[:idx:idx], d.Components[idx+1:]...)
	out := make([]Component, 0, len(d.Components))
	out = append(out, rest[:position]...)
	out = append(out, moved)
	out = append(out, rest[position:]...)
	for i := range out {
		out[i].Order = i
	}
	d.Components = out
	return nil
}

// UpdateConfig 整体替换指定组件的配置。
func (d *Document) UpdateConfig(id string, cfg Config) error {
	idx := d.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("component %s not found", id)
	}
	if err := validateCustomColors(cfg); err != nil {
		return err
	}
	d.Components[idx].Config = cfg
	return nil
}

// UpdateBranding 规范化后整体替换草稿品牌色。
func (d *Document) UpdateBranding(b Branding) error {
	normalized, err := b.Normalize()
	if err != nil {
		return err
	}
	d.Branding = normalized
	return nil
}

func (d *Document) indexOf(id string) int {
	for i := range d.Components {
		if d.Components[i].ID == id {
			return i
		}
	}
	return -1
}
