package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeContainer(t *testing.T) {
	tests := []struct {
		name   string
		marker bool
		cgroup string
		want   bool
	}{
		{
			name:   "marker file present",
			marker: true,
			want:   true,
		},
		{
			name:   "docker cgroup entry",
			cgroup: "11:cpuset:/\n12:pids:/docker/0123abcdef\n",
			want:   true,
		},
		{
			name:   "plain host cgroup",
			cgroup: "11:cpuset:/\n12:pids:/init.scope\n",
			want:   false,
		},
		{
			name: "nothing present",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			marker := filepath.Join(dir, ".dockerenv")
			cgroup := filepath.Join(dir, "cgroup")
			if tt.marker {
				require.NoError(t, os.WriteFile(marker, nil, 0o600))
			}
			if tt.cgroup != "" {
				require.NoError(t, os.WriteFile(cgroup, []byte(tt.cgroup), 0o600))
			}
			assert.Equal(t, tt.want, probeContainer(marker, cgroup))
		})
	}
}

func TestInContainerStable(t *testing.T) {
	assert.Equal(t, InContainer(), InContainer())
}
