package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabledValues(t *testing.T) {
	set := FromMap(map[string]string{
		"FLAG_A": "true",
		"FLAG_B": " ON ",
		"FLAG_C": "0",
		"FLAG_D": "",
	})

	assert.True(t, set.Enabled("a"))
	assert.True(t, set.Enabled("b"))
	assert.False(t, set.Enabled("c"))
	assert.False(t, set.Enabled("d"))
	assert.False(t, set.Enabled("missing"))
}

func TestEnabledFromEnv(t *testing.T) {
	t.Setenv("FLAG_IDEMPOTENT_ORDER_DELETE", "yes")

	assert.Equal(t, "FLAG_IDEMPOTENT_ORDER_DELETE", Key("idempotent_order_delete"))
	assert.True(t, Enabled("idempotent_order_delete"))
}
