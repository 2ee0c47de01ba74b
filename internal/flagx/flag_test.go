package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "flag without value followed by another flag",
			args:         []string{"-secure", "-a", ":8080"},
			allowedFlags: []string{"-secure"},
			want:         []string{"-secure"},
		},
		{
			name:         "nothing allowed",
			args:         []string{"-x", "1"},
			allowedFlags: nil,
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "a.yaml", ConfigFileFlag([]string{"-a", ":1", "-c", "a.yaml"}))
	assert.Equal(t, "b.json", ConfigFileFlag([]string{"-config=b.json"}))
	assert.Equal(t, "", ConfigFileFlag([]string{"-a", ":1"}))
}
