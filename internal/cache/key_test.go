package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyDeterministic(t *testing.T) {
	t.Parallel()

	a := Key("react hooks", map[string]string{"tier": "verified", "category": "frontend"}, 10, 0)
	b := Key("react hooks", map[string]string{"category": "frontend", "tier": "verified"}, 10, 0)
	assert.Equal(t, a, b, "filter key ordering must not change the hash")
}

func TestKeyIgnoresEmptyFilterValues(t *testing.T) {
	t.Parallel()

	a := Key("react", map[string]string{"tier": ""}, 10, 0)
	b := Key("react", map[string]string{}, 10, 0)
	assert.Equal(t, a, b)
}

func TestKeyVariesWithInputs(t *testing.T) {
	t.Parallel()

	base := Key("react", nil, 10, 0)
	assert.NotEqual(t, base, Key("vue", nil, 10, 0))
	assert.NotEqual(t, base, Key("react", map[string]string{"tier": "verified"}, 10, 0))
	assert.NotEqual(t, base, Key("react", nil, 20, 0))
	assert.NotEqual(t, base, Key("react", nil, 10, 10))
}
