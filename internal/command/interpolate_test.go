package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

func TestInterpolate_S2ChainReachesGoal(t *testing.T) {
	t.Parallel()

	env := pipelineenv.New()
	env.Insert("A", "$C")
	env.Insert("B", "$D")
	env.Insert("C", "$B")
	env.Insert("D", "goal")

	cmd := pipelinemodel.InterpolateCommand{
		Content: pipelinemodel.CommonContent{ContentSet: true, Content: "$A"},
	}

	res, err := Interpolate(cmd, env)
	require.NoError(t, err)
	assert.Equal(t, "goal", res.Content)
}
