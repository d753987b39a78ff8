package testutil

import (
	"testing"

	"github.com/specialistvlad/launchgrid/internal/launch"
	"github.com/stretchr/testify/require"
)

// RequestNames returns the full names of the planned processes, in order.
func RequestNames(result *HarnessResult) []string {
	if result.Plan == nil {
		return nil
	}
	names := make([]string, 0, len(result.Plan.Requests))
	for _, r := range result.Plan.Requests {
		names = append(names, r.FullName())
	}
	return names
}

// RequireRequest returns the planned request with the given name or fails
// the test.
func RequireRequest(t *testing.T, result *HarnessResult, name string) launch.LaunchRequest {
	t.Helper()
	require.NoError(t, result.Err)
	req, ok := result.Plan.Request(name)
	require.True(t, ok, "process %q is not in the plan; planned: %v", name, RequestNames(result))
	return req
}
