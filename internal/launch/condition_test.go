package launch_test

import (
	"testing"

	"github.com/specialistvlad/launchgrid/internal/launch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTruthy(t *testing.T) {
	cases := map[string]bool{
		"true":  true,
		"TRUE":  true,
		"True":  true,
		"1":     true,
		"false": false,
		"0":     false,
		"yes":   false,
		"on":    false,
		"":      false,
		" true": false,
		"tru":   false,
	}
	for in, want := range cases {
		assert.Equal(t, want, launch.IsTruthy(in), "IsTruthy(%q)", in)
	}
}

func TestSelect_ConditionalExclusion(t *testing.T) {
	manager := proc("lifecycle_manager")
	manager.Condition = launch.IfArgument("use_lifecycle_manager")
	specs := []*launch.ProcessSpec{proc("map_server"), manager, proc("amcl")}

	tests := []struct {
		value string
		want  []string
	}{
		{"false", []string{"map_server", "amcl"}},
		{"true", []string{"map_server", "lifecycle_manager", "amcl"}},
		{"1", []string{"map_server", "lifecycle_manager", "amcl"}},
		{"TRUE", []string{"map_server", "lifecycle_manager", "amcl"}},
		// Malformed values fail closed.
		{"yes", []string{"map_server", "amcl"}},
		{"", []string{"map_server", "amcl"}},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			selected := launch.Select(specs, launch.Values{"use_lifecycle_manager": tc.value})
			ids := make([]string, 0, len(selected))
			for _, s := range selected {
				ids = append(ids, s.ID)
			}
			require.Equal(t, tc.want, ids)
		})
	}
}

func TestSelect_Unless(t *testing.T) {
	fake := proc("fake_localization")
	fake.Condition = launch.UnlessArgument("use_amcl")
	specs := []*launch.ProcessSpec{fake}

	require.Empty(t, launch.Select(specs, launch.Values{"use_amcl": "true"}))
	require.Len(t, launch.Select(specs, launch.Values{"use_amcl": "false"}), 1)
	require.Len(t, launch.Select(specs, launch.Values{"use_amcl": "maybe"}), 1)
}

func TestSelect_Deterministic(t *testing.T) {
	a, b := proc("a"), proc("b")
	b.Condition = launch.IfArgument("flag")
	specs := []*launch.ProcessSpec{a, b}
	args := launch.Values{"flag": "1"}

	first := launch.Select(specs, args)
	second := launch.Select(specs, args)
	require.Equal(t, first, second)
}

func TestConditionString(t *testing.T) {
	require.Equal(t, "always", launch.Always.String())
	require.Equal(t, "if arg.x", launch.IfArgument("x").String())
	require.Equal(t, "unless arg.x", launch.UnlessArgument("x").String())
}
