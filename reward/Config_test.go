package reward

import (
	"math"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"default", func(*Config) {}, true},
		{"zero weights", func(c *Config) { *c = Config{} }, true},
		{"negative crash weight", func(c *Config) { c.GammaCrash = -1 }, false},
		{"negative speed weight", func(c *Config) { c.AlphaSpeed = -0.1 }, false},
		{"negative lane change weight", func(c *Config) {
			c.LambdaLaneChange = -0.05
		}, false},
		{"negative unsafe distance", func(c *Config) {
			c.UnsafeDistance = -1
		}, false},
		{"nan weight", func(c *Config) { c.DeltaUnsafe = math.NaN() }, false},
	}

	for _, test := range tests {
		c := DefaultConfig()
		test.modify(&c)
		if err := c.Validate(); (err == nil) != test.valid {
			t.Errorf("%v: valid want(%v) have error(%v)", test.name,
				test.valid, err)
		}
	}
}
