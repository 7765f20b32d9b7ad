package orders

// Stage maps a project-progress label to its completion percentage.
type Stage struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// ProjectStages is the fixed progression every order moves through. Order
// matters: progress_stage_index indexes into this slice.
var ProjectStages = []Stage{
	{Name: "Design Review", Percent: 5},
	{Name: "Concept MEP Design", Percent: 15},
	{Name: "Detailed Design & Drawings", Percent: 30},
	{Name: "Coordination & Clash Resolution", Percent: 45},
	{Name: "Approvals", Percent: 55},
	{Name: "Procurement", Percent: 65},
	{Name: "Installation/Execution", Percent: 85},
	{Name: "Testing & Commissioning", Percent: 95},
	{Name: "Handover", Percent: 100},
}

// ValidStageIndex reports whether idx addresses a stage in ProjectStages.
func ValidStageIndex(idx int) bool {
	return idx >= 0 && idx < len(ProjectStages)
}
