package models

import (
	"testing"
	"time"
)

func TestTaskDependencyIDs(t *testing.T) {
	tests := []struct {
		input    string
		expected []int64
	}{
		{"", nil},
		{"12", []int64{12}},
		{"1, 2,3", []int64{1, 2, 3}},
		{"4,,x, 5 ", []int64{4, 5}},
	}

	for _, tt := range tests {
		got := Task{Dependencies: tt.input}.DependencyIDs()
		if len(got) != len(tt.expected) {
			t.Errorf("DependencyIDs(%q): expected %v, got %v", tt.input, tt.expected, got)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("DependencyIDs(%q)[%d]: expected %d, got %d", tt.input, i, tt.expected[i], got[i])
			}
		}
	}
}

func TestTaskDue(t *testing.T) {
	due, ok := Task{DueDate: "2025-03-14"}.Due()
	if !ok {
		t.Fatal("expected due date to parse")
	}
	if !due.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected due date %v", due)
	}

	if _, ok := (Task{DueDate: "2025-03-14T10:00:00"}).Due(); !ok {
		t.Error("expected timestamp due date to parse")
	}
	if _, ok := (Task{}).Due(); ok {
		t.Error("expected empty due date to be unset")
	}
	if _, ok := (Task{DueDate: "soon"}).Due(); ok {
		t.Error("expected malformed due date to be rejected")
	}
}

func TestParsePriority(t *testing.T) {
	if p, ok := ParsePriority(" high "); !ok || p != PriorityHigh {
		t.Errorf("expected HIGH, got %q (%v)", p, ok)
	}
	if _, ok := ParsePriority("urgent"); ok {
		t.Error("expected unknown priority to be rejected")
	}
}

func TestBoardHasColumnName(t *testing.T) {
	b := Board{Columns: []Column{{ID: 1, Name: "todo"}, {ID: 2, Name: "Doing"}}}

	if !b.HasColumnName("Todo", 0) {
		t.Error("expected case-insensitive match")
	}
	if b.HasColumnName("TODO", 1) {
		t.Error("expected the excepted column to be ignored")
	}
	if b.HasColumnName("Done", 0) {
		t.Error("expected no match for a new name")
	}
}

func TestBoardCanDeleteColumn(t *testing.T) {
	single := Board{Columns: []Column{{ID: 1, Name: "Only"}}}
	if ok, msg := single.CanDeleteColumn(1); ok || msg == "" {
		t.Errorf("expected last column to be protected, got ok=%v msg=%q", ok, msg)
	}

	two := Board{Columns: []Column{{ID: 1}, {ID: 2}}}
	if ok, _ := two.CanDeleteColumn(2); !ok {
		t.Error("expected column to be deletable")
	}
	if ok, _ := two.CanDeleteColumn(9); ok {
		t.Error("expected unknown column to be rejected")
	}
}

func TestBoardTaskCount(t *testing.T) {
	snapshot := func() Board {
		return Board{
			Columns: []Column{{ID: 1}, {ID: 2}, {ID: 3}},
			Tasks:   map[int64][]Task{1: {{ID: 1}, {ID: 2}}, 2: {{ID: 3}}},
		}
	}
	// called straight on a returned value, the way callers use Snapshot()
	if n := snapshot().TaskCount(); n != 3 {
		t.Errorf("TaskCount() = %d, want 3", n)
	}
	if n := (Board{}).TaskCount(); n != 0 {
		t.Errorf("empty TaskCount() = %d", n)
	}
}

func TestColumnUpdateApply(t *testing.T) {
	col := Column{ID: 3, Name: "Review", Color: "#fff"}
	updated := ColumnUpdate{Name: StringPtr("QA"), WIPLimit: IntPtr(4)}.Apply(col)

	if updated.Name != "QA" || updated.Color != "#fff" {
		t.Errorf("unexpected column after update: %+v", updated)
	}
	if !updated.HasWIPLimit() || *updated.WIPLimit != 4 {
		t.Errorf("expected WIP limit 4, got %v", updated.WIPLimit)
	}
	if col.WIPLimit != nil {
		t.Error("expected original column to be untouched")
	}
}

func TestColumnContainerID(t *testing.T) {
	if got := (Column{ID: 42}).ContainerID(); got != "column-42" {
		t.Errorf("expected column-42, got %q", got)
	}
}
