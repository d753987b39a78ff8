package launch_test

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/launchgrid/internal/launch"
	"github.com/stretchr/testify/require"
)

func TestMerge_LaterLayerWins(t *testing.T) {
	layers := []launch.ParameterLayer{
		inline("use_sim_time", "false"),
		inline("use_sim_time", "true", "yaml_filename", "/map.yaml"),
	}

	merged, err := launch.Merge(layers, launch.Values{}, nil, "map_server")
	require.NoError(t, err)
	require.Equal(t, launch.Parameters{"use_sim_time": "true", "yaml_filename": "/map.yaml"}, merged)
}

func TestMerge_OrderMatters(t *testing.T) {
	base := inline("use_sim_time", "false", "scan_topic", "scan")
	override := inline("use_sim_time", "true")

	forward, err := launch.Merge([]launch.ParameterLayer{base, override}, nil, nil, "amcl")
	require.NoError(t, err)
	backward, err := launch.Merge([]launch.ParameterLayer{override, base}, nil, nil, "amcl")
	require.NoError(t, err)

	require.Equal(t, "true", forward["use_sim_time"])
	require.Equal(t, "false", backward["use_sim_time"])
	require.Equal(t, "scan", forward["scan_topic"])
}

func TestMerge_FileThenInline(t *testing.T) {
	reader := mapReader{
		"/share/params/default.yaml": {"use_sim_time": false, "base_frame_id": "base_footprint", "max_particles": 2000},
	}
	layers := []launch.ParameterLayer{
		launch.FileLayer{Path: launch.Arg("params_file")},
		inline("use_sim_time", launch.Arg("use_sim_time")),
	}
	args := launch.Values{"params_file": "/share/params/default.yaml", "use_sim_time": "true"}

	merged, err := launch.Merge(layers, args, reader, "amcl")
	require.NoError(t, err)

	want := launch.Parameters{"use_sim_time": "true", "base_frame_id": "base_footprint", "max_particles": 2000}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("merged parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_ParameterSourceError(t *testing.T) {
	layers := []launch.ParameterLayer{
		inline("use_sim_time", "true"),
		launch.FileLayer{Path: launch.Literal("/missing.yaml")},
	}

	_, err := launch.Merge(layers, nil, mapReader{}, "map_server")
	require.ErrorIs(t, err, launch.ErrParameterSource)
	require.ErrorIs(t, err, os.ErrNotExist)

	var srcErr *launch.ParameterSourceError
	require.ErrorAs(t, err, &srcErr)
	require.Equal(t, "map_server", srcErr.Process)
	require.Equal(t, 1, srcErr.Layer)
	require.Equal(t, "/missing.yaml", srcErr.Source)
}

func TestMerge_UnresolvableInlineValue(t *testing.T) {
	_, err := launch.Merge([]launch.ParameterLayer{inline("x", launch.Arg("nope"))}, launch.Values{}, nil, "amcl")
	require.ErrorIs(t, err, launch.ErrUndeclaredReference)
	require.NotErrorIs(t, err, launch.ErrParameterSource)
	require.Contains(t, err.Error(), `key "x"`)
}

func TestMerge_Idempotent(t *testing.T) {
	reader := mapReader{"/p.yaml": {"a": 1, "nested.b": "x"}}
	layers := []launch.ParameterLayer{
		launch.FileLayer{Path: launch.Literal("/p.yaml")},
		inline("node_names", []any{"map_server", "amcl"}),
	}

	first, err := launch.Merge(layers, nil, reader, "p")
	require.NoError(t, err)
	second, err := launch.Merge(layers, nil, reader, "p")
	require.NoError(t, err)
	require.Equal(t, first, second)

	// Static values are copied, so mutating one result leaves the next intact.
	first["node_names"].([]any)[0] = "changed"
	third, err := launch.Merge(layers, nil, reader, "p")
	require.NoError(t, err)
	require.Equal(t, []any{"map_server", "amcl"}, third["node_names"])
}
