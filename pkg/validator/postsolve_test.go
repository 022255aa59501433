package validator

import (
	"testing"

	"github.com/kaopai/kaopai/pkg/model"
)

func makeTeacher(name, dept string) *model.Teacher {
	return &model.Teacher{
		BaseModel:  model.NewBaseModel(),
		Name:       name,
		Department: dept,
		DutyGroup:  model.GroupNone,
	}
}

func makeAssignment(studentID model.BaseModel, date string, e1, e2, backup *model.Teacher) *model.ExamAssignment {
	a := &model.ExamAssignment{
		BaseModel: model.NewBaseModel(),
		StudentID: studentID.ID,
		ExamType:  model.ExamDay1,
		Date:      date,
		Examiner1: e1.Ref(),
		Examiner2: e2.Ref(),
	}
	if backup != nil {
		a.Backup = backup.Ref()
	}
	return a
}

func TestValidate_CleanSolutionUntouched(t *testing.T) {
	v := New()

	student := model.NewBaseModel()
	e1 := makeTeacher("王老师", "3")
	e2 := makeTeacher("李老师", "5")

	report := v.Validate([]*model.ExamAssignment{
		makeAssignment(student, "2024-01-01", e1, e2, nil),
	})

	if !report.Clean() {
		t.Errorf("Expected clean report, got %d conflicts", len(report.Conflicts))
	}
	if len(report.Repairs) != 0 {
		t.Errorf("Expected 0 repairs, got %d", len(report.Repairs))
	}
	if len(report.Assignments) != 1 {
		t.Errorf("Expected 1 assignment, got %d", len(report.Assignments))
	}
}

func TestValidate_RemovesDuplicates(t *testing.T) {
	v := New()

	student := model.NewBaseModel()
	e1 := makeTeacher("王老师", "3")
	e2 := makeTeacher("李老师", "5")
	e2b := makeTeacher("张老师", "6")

	first := makeAssignment(student, "2024-01-01", e1, e2, nil)
	duplicate := makeAssignment(student, "2024-01-01", e1, e2b, nil)

	report := v.Validate([]*model.ExamAssignment{first, duplicate})

	if len(report.Assignments) != 1 {
		t.Fatalf("Expected 1 assignment after dedup, got %d", len(report.Assignments))
	}
	// 保留先出现的一条
	if report.Assignments[0].ID != first.ID {
		t.Errorf("Expected first assignment kept, got %s", report.Assignments[0].ID)
	}
	if len(report.Repairs) != 1 || report.Repairs[0].Kind != RepairDuplicate {
		t.Errorf("Expected 1 duplicate repair, got %+v", report.Repairs)
	}
}

func TestValidate_KeepsDifferentExamTypes(t *testing.T) {
	v := New()

	student := model.NewBaseModel()
	e1 := makeTeacher("王老师", "3")
	e2 := makeTeacher("李老师", "5")

	day1 := makeAssignment(student, "2024-01-01", e1, e2, nil)
	day2 := makeAssignment(student, "2024-01-02", e1, e2, nil)
	day2.ExamType = model.ExamDay2

	report := v.Validate([]*model.ExamAssignment{day1, day2})

	if len(report.Assignments) != 2 {
		t.Errorf("Expected 2 assignments, got %d", len(report.Assignments))
	}
	if len(report.Repairs) != 0 {
		t.Errorf("Expected 0 repairs, got %d", len(report.Repairs))
	}
}

func TestValidate_RepairsMultiRole(t *testing.T) {
	v := New()

	student1 := model.NewBaseModel()
	student2 := model.NewBaseModel()
	shared := makeTeacher("王老师", "3")
	e2a := makeTeacher("李老师", "5")
	e2b := makeTeacher("张老师", "6")

	// 王老师同日既是学员1的考官一，又是学员2的备用
	a1 := makeAssignment(student1, "2024-01-01", shared, e2a, nil)
	a2 := makeAssignment(student2, "2024-01-01", makeTeacher("赵老师", "3"), e2b, shared)

	report := v.Validate([]*model.ExamAssignment{a1, a2})

	if len(report.Repairs) != 1 || report.Repairs[0].Kind != RepairMultiRole {
		t.Fatalf("Expected 1 multi_role repair, got %+v", report.Repairs)
	}

	// 优先级高的考官一角色保留，备用被清除
	var repaired *model.ExamAssignment
	for _, a := range report.Assignments {
		if a.ID == a2.ID {
			repaired = a
		}
	}
	if repaired == nil {
		t.Fatal("Assignment not found in report")
	}
	if repaired.Backup != nil {
		t.Errorf("Expected backup cleared, got %s", repaired.Backup.Name)
	}
	if !report.Clean() {
		t.Errorf("Expected clean report after repair, got %d conflicts", len(report.Conflicts))
	}
}

func TestValidate_MultiRoleOnMainExaminerExposed(t *testing.T) {
	v := New()

	student1 := model.NewBaseModel()
	student2 := model.NewBaseModel()
	shared := makeTeacher("王老师", "3")
	e2a := makeTeacher("李老师", "5")
	e2b := makeTeacher("张老师", "6")

	// 王老师同日担任两名学员的考官一，修复后学员2缺主考官
	a1 := makeAssignment(student1, "2024-01-01", shared, e2a, nil)
	a2 := makeAssignment(student2, "2024-01-01", shared, e2b, nil)

	report := v.Validate([]*model.ExamAssignment{a1, a2})

	if report.Clean() {
		t.Fatal("Expected residual conflict for missing examiner")
	}
	if report.Conflicts[0].ConstraintID != model.HC3TwoMainExaminers {
		t.Errorf("Expected HC3 conflict, got %s", report.Conflicts[0].ConstraintID)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v := New()

	student1 := model.NewBaseModel()
	student2 := model.NewBaseModel()
	shared := makeTeacher("王老师", "3")
	e2a := makeTeacher("李老师", "5")
	e2b := makeTeacher("张老师", "6")

	a1 := makeAssignment(student1, "2024-01-01", shared, e2a, nil)
	a2 := makeAssignment(student2, "2024-01-01", makeTeacher("赵老师", "3"), e2b, shared)
	dup := makeAssignment(student1, "2024-01-01", shared, e2a, nil)

	first := v.Validate([]*model.ExamAssignment{a1, a2, dup})
	second := v.Validate(first.Assignments)

	if len(second.Repairs) != 0 {
		t.Errorf("Second pass should repair nothing, got %+v", second.Repairs)
	}
	if len(second.Assignments) != len(first.Assignments) {
		t.Errorf("Second pass changed assignment count: %d != %d",
			len(second.Assignments), len(first.Assignments))
	}
	if len(second.Conflicts) != len(first.Conflicts) {
		t.Errorf("Second pass changed conflict count: %d != %d",
			len(second.Conflicts), len(first.Conflicts))
	}
}

func TestValidate_InputNotMutated(t *testing.T) {
	v := New()

	student1 := model.NewBaseModel()
	student2 := model.NewBaseModel()
	shared := makeTeacher("王老师", "3")

	a1 := makeAssignment(student1, "2024-01-01", shared, makeTeacher("李老师", "5"), nil)
	a2 := makeAssignment(student2, "2024-01-01", makeTeacher("赵老师", "3"), makeTeacher("张老师", "6"), shared)

	v.Validate([]*model.ExamAssignment{a1, a2})

	// 原始输入的备用考官不受修复影响
	if a2.Backup == nil {
		t.Error("Input assignment was mutated")
	}
}
