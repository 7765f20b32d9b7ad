package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectStagesProgression(t *testing.T) {
	assert.Len(t, ProjectStages, 9)
	assert.Equal(t, "Design Review", ProjectStages[0].Name)
	assert.Equal(t, 100.0, ProjectStages[len(ProjectStages)-1].Percent)

	for i := 1; i < len(ProjectStages); i++ {
		assert.Greater(t, ProjectStages[i].Percent, ProjectStages[i-1].Percent,
			"stage percentages must be strictly increasing")
	}
}

func TestValidStageIndex(t *testing.T) {
	assert.True(t, ValidStageIndex(0))
	assert.True(t, ValidStageIndex(len(ProjectStages)-1))
	assert.False(t, ValidStageIndex(-1))
	assert.False(t, ValidStageIndex(len(ProjectStages)))
}
