package devserver

import "wyboard/internal/kanban/models"

// DemoProjectID is the project created by NewDemo
const DemoProjectID = 1

// NewDemo returns a backend holding one small project to click around in
func NewDemo() *Memory {
	m := NewMemory()
	m.AddProject(DemoProjectID, "Website relaunch",
		models.Member{UserID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		models.Member{UserID: 2, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
		models.Member{UserID: 3, Email: "contractor@example.com"},
	)

	todo := m.AddColumn(models.Column{ProjectID: DemoProjectID, Name: "To Do", Color: models.DefaultColumnColor, DisplayOrder: 0, IsDefault: true})
	doing := m.AddColumn(models.Column{ProjectID: DemoProjectID, Name: "In Progress", Color: "#f59e0b", DisplayOrder: 1, WIPLimit: models.IntPtr(2)})
	review := m.AddColumn(models.Column{ProjectID: DemoProjectID, Name: "Review", Color: "#8b5cf6", DisplayOrder: 2})
	done := m.AddColumn(models.Column{ProjectID: DemoProjectID, Name: "Done", Color: "#10b981", DisplayOrder: 3})

	tasks := []models.Task{
		{Title: "Collect page inventory", ColumnID: todo.ID, AssigneeID: 1, Priority: models.PriorityMedium, DueDate: "2026-11-02",
			Description: "List every page of the **current** site.\n\n- marketing\n- docs\n- blog"},
		{Title: "Pick a static site generator", ColumnID: todo.ID, AssigneeID: 2, Priority: models.PriorityLow, DueDate: "2026-11-06"},
		{Title: "Draft new navigation", ColumnID: doing.ID, AssigneeID: 1, Priority: models.PriorityHigh, DueDate: "2026-10-30",
			ProgressPercentage: 60, EstimatedHours: 8, ActualHours: 5},
		{Title: "Migrate blog posts", ColumnID: doing.ID, AssigneeID: 3, Priority: models.PriorityMedium, DueDate: "2026-11-10",
			ProgressPercentage: 25, Dependencies: "5"},
		{Title: "Set up preview deploys", ColumnID: review.ID, AssigneeID: 2, Priority: models.PriorityCritical, DueDate: "2026-10-20",
			ProgressPercentage: 90},
		{Title: "Kickoff meeting", ColumnID: done.ID, AssigneeID: 1, Priority: models.PriorityLow, DueDate: "2026-10-01",
			ProgressPercentage: 100},
	}

	order := map[int64]int{}
	for _, t := range tasks {
		t.ProjectID = DemoProjectID
		t.DisplayOrder = order[t.ColumnID]
		order[t.ColumnID]++
		t.CreatedAt = "2026-10-01T09:00:00"
		t.UpdatedAt = t.CreatedAt
		m.AddTask(t)
	}
	return m
}
