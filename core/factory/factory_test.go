package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkConf struct {
	Path    string        `json:"path"`
	Retain  bool          `json:"retain"`
	QoS     int           `json:"qos"`
	Timeout time.Duration `json:"timeout"`
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[sinkConf]()
	require.NoError(t, reg.Register("file", func(conf map[string]any) (sinkConf, error) {
		var c sinkConf
		err := Decode(conf, &c)
		return c, err
	}))
	got, err := reg.Create(ModuleConfig{Type: "file", Conf: map[string]any{
		"path":    "load.csv",
		"retain":  "true",
		"qos":     "1",
		"timeout": "5s",
	}})
	require.NoError(t, err)
	assert.Equal(t, sinkConf{Path: "load.csv", Retain: true, QoS: 1, Timeout: 5 * time.Second}, got)

	_, err = reg.Create(ModuleConfig{Type: "file"})
	assert.NoError(t, err, "nil conf must decode to zero value")
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry[int]()
	require.NoError(t, reg.Register("b", func(map[string]any) (int, error) { return 1, nil }))
	require.NoError(t, reg.Register("a", func(map[string]any) (int, error) { return 2, nil }))
	assert.Error(t, reg.Register("a", func(map[string]any) (int, error) { return 3, nil }))
	assert.Error(t, reg.Register("c", nil))
	assert.Equal(t, []string{"a", "b"}, reg.Names())

	_, err := reg.Create(ModuleConfig{Type: "zzz"})
	assert.ErrorContains(t, err, `unknown module type "zzz"`)
}
