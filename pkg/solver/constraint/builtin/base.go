// Package builtin 提供排考引擎内置的硬/软约束实现
package builtin

import (
	"github.com/kaopai/kaopai/pkg/solver/constraint"
)

// Base 约束基础结构
type Base struct {
	id       string
	name     string
	category constraint.Category
	weight   int
}

// NewBase 创建约束基础结构
func NewBase(id, name string, category constraint.Category, weight int) Base {
	return Base{id: id, name: name, category: category, weight: weight}
}

// ID 返回约束标识
func (b Base) ID() string { return b.id }

// Name 返回约束名称
func (b Base) Name() string { return b.name }

// Category 返回约束类别
func (b Base) Category() constraint.Category { return b.category }

// Weight 返回约束权重
func (b Base) Weight() int { return b.weight }
