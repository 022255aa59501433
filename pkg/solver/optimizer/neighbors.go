// Package optimizer 提供基于局部搜索的排考方案优化
package optimizer

import (
	"math/rand"

	"github.com/kaopai/kaopai/pkg/duty"
	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/rules"
	"github.com/kaopai/kaopai/pkg/solver/constraint"
)

// MoveType 邻域移动类型
// 日期在构造阶段固定，全部移动只改写考官字段
type MoveType int

const (
	MoveReassign MoveType = iota // 更换某个角色的考官
	MoveSwapRole                 // 交换两条安排同角色的考官
	MoveAddBackup                // 补充缺失的备用考官
	MoveDropBackup               // 移除备用考官
)

// moveWeight 移动类型及其抽取权重
type moveWeight struct {
	move   MoveType
	weight float64
}

// NeighborhoodGenerator 邻域生成器
// 锁定的安排不参与任何移动
type NeighborhoodGenerator struct {
	rng *rand.Rand
	// 次序固定，保证同一随机种子下抽取序列可重现
	moveWeights []moveWeight
}

// NewNeighborhoodGenerator 创建邻域生成器
func NewNeighborhoodGenerator(rng *rand.Rand) *NeighborhoodGenerator {
	return &NeighborhoodGenerator{
		rng: rng,
		moveWeights: []moveWeight{
			{MoveReassign, 0.50},   // 50% 更换考官
			{MoveSwapRole, 0.30},   // 30% 同角色交换
			{MoveAddBackup, 0.10},  // 10% 补备用
			{MoveDropBackup, 0.10}, // 10% 去备用
		},
	}
}

// GenerateNeighbor 生成一个邻域解
// 失败（无合法移动可用）时返回 nil
func (n *NeighborhoodGenerator) GenerateNeighbor(ctx *constraint.Context) []*model.ExamAssignment {
	if len(ctx.Assignments) == 0 {
		return nil
	}

	switch n.selectMoveType() {
	case MoveSwapRole:
		return n.generateSwapRole(ctx)
	case MoveAddBackup:
		return n.generateAddBackup(ctx)
	case MoveDropBackup:
		return n.generateDropBackup(ctx)
	default:
		return n.generateReassign(ctx)
	}
}

// selectMoveType 按权重选择移动类型
func (n *NeighborhoodGenerator) selectMoveType() MoveType {
	r := n.rng.Float64()
	cumulative := 0.0

	for _, mw := range n.moveWeights {
		cumulative += mw.weight
		if r < cumulative {
			return mw.move
		}
	}

	return MoveReassign
}

// mutableIndexes 返回未锁定安排的下标
func mutableIndexes(assignments []*model.ExamAssignment) []int {
	var out []int
	for i, a := range assignments {
		if !a.Pinned {
			out = append(out, i)
		}
	}
	return out
}

// cloneAssignments 深拷贝安排列表
func cloneAssignments(assignments []*model.ExamAssignment) []*model.ExamAssignment {
	out := make([]*model.ExamAssignment, len(assignments))
	for i, a := range assignments {
		out[i] = a.Clone()
	}
	return out
}

// generateReassign 更换某条安排某个角色的考官
func (n *NeighborhoodGenerator) generateReassign(ctx *constraint.Context) []*model.ExamAssignment {
	mutable := mutableIndexes(ctx.Assignments)
	if len(mutable) == 0 {
		return nil
	}

	neighbor := cloneAssignments(ctx.Assignments)
	idx := mutable[n.rng.Intn(len(mutable))]
	target := neighbor[idx]

	role := n.randomRole()
	if target.RoleRef(role) == nil && role != model.RoleBackup {
		return nil
	}

	candidates := n.replacementCandidates(ctx, neighbor, target, role)
	if len(candidates) == 0 {
		return nil
	}

	target.SetRole(role, candidates[n.rng.Intn(len(candidates))].Ref())
	return neighbor
}

// generateSwapRole 交换两条安排同角色的考官
func (n *NeighborhoodGenerator) generateSwapRole(ctx *constraint.Context) []*model.ExamAssignment {
	mutable := mutableIndexes(ctx.Assignments)
	if len(mutable) < 2 {
		return nil
	}

	neighbor := cloneAssignments(ctx.Assignments)
	i := mutable[n.rng.Intn(len(mutable))]
	j := mutable[n.rng.Intn(len(mutable))]
	for attempts := 0; j == i && attempts < 8; attempts++ {
		j = mutable[n.rng.Intn(len(mutable))]
	}
	if i == j {
		return nil
	}

	role := n.randomRole()
	a, b := neighbor[i], neighbor[j]
	refA, refB := a.RoleRef(role), b.RoleRef(role)
	if refA == nil || refB == nil {
		return nil
	}

	a.SetRole(role, refB)
	b.SetRole(role, refA)
	return neighbor
}

// generateAddBackup 为缺备用考官的安排补充备用
func (n *NeighborhoodGenerator) generateAddBackup(ctx *constraint.Context) []*model.ExamAssignment {
	neighbor := cloneAssignments(ctx.Assignments)

	var missing []*model.ExamAssignment
	for _, a := range neighbor {
		if !a.Pinned && a.Backup == nil && a.IsComplete() {
			missing = append(missing, a)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	target := missing[n.rng.Intn(len(missing))]
	candidates := n.replacementCandidates(ctx, neighbor, target, model.RoleBackup)
	if len(candidates) == 0 {
		return nil
	}

	target.Backup = candidates[n.rng.Intn(len(candidates))].Ref()
	return neighbor
}

// generateDropBackup 移除某条安排的备用考官
func (n *NeighborhoodGenerator) generateDropBackup(ctx *constraint.Context) []*model.ExamAssignment {
	neighbor := cloneAssignments(ctx.Assignments)

	var withBackup []*model.ExamAssignment
	for _, a := range neighbor {
		if !a.Pinned && a.Backup != nil {
			withBackup = append(withBackup, a)
		}
	}
	if len(withBackup) == 0 {
		return nil
	}

	withBackup[n.rng.Intn(len(withBackup))].Backup = nil
	return neighbor
}

// randomRole 随机选择一个角色，主考官被选中的概率更高
func (n *NeighborhoodGenerator) randomRole() model.Role {
	switch n.rng.Intn(5) {
	case 0, 1:
		return model.RoleExaminer1
	case 2, 3:
		return model.RoleExaminer2
	default:
		return model.RoleBackup
	}
}

// replacementCandidates 某条安排某角色的合法替换考官
// 科室规则、可用性与当日未占用同时满足才入选
func (n *NeighborhoodGenerator) replacementCandidates(ctx *constraint.Context, neighbor []*model.ExamAssignment, target *model.ExamAssignment, role model.Role) []*model.Teacher {
	student := ctx.GetStudent(target.StudentID)
	if student == nil {
		return nil
	}
	sched, ok := duty.ShiftsForDate(target.Date)
	if !ok {
		return nil
	}

	busy := make(map[string]bool)
	for _, a := range neighbor {
		if a.Date != target.Date || a == target {
			continue
		}
		for _, ref := range []*model.TeacherRef{a.Examiner1, a.Examiner2, a.Backup} {
			if ref != nil {
				busy[ref.ID] = true
			}
		}
	}

	var out []*model.Teacher
	for _, t := range ctx.Teachers {
		id := t.ID.String()
		if busy[id] {
			continue
		}
		if current := target.RoleRef(role); current != nil && current.ID == id {
			continue
		}
		if _, taken := target.RoleOf(id); taken {
			continue
		}
		if !rules.TeacherAvailable(t, target.Date, sched) {
			continue
		}
		if !n.roleEligible(student, target, role, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// roleEligible 检查考官是否满足某角色的科室规则
func (n *NeighborhoodGenerator) roleEligible(student *model.Student, target *model.ExamAssignment, role model.Role, teacher *model.Teacher) bool {
	switch role {
	case model.RoleExaminer1:
		return rules.ValidExaminer1(student.Department, teacher.Department)
	case model.RoleExaminer2:
		e1Dept := ""
		if target.Examiner1 != nil {
			e1Dept = target.Examiner1.Department
		}
		return rules.ValidExaminer2(student.Department, e1Dept, teacher.Department)
	default:
		return rules.ValidBackup(target.Examiner1, target.Examiner2, teacher)
	}
}
