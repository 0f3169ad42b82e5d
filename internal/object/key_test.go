package object

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyFolds(t *testing.T) {
	k := NewKey("Database", "  analytics ")
	assert.Equal(t, "database", k.Type)
	assert.Equal(t, "ANALYTICS", k.Name)
	assert.Equal(t, "database.ANALYTICS", k.String())
}

func TestKeyEqualityIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, NewKey("ROLE", "loader"), NewKey("role", "LOADER"))
}

func TestParseRef(t *testing.T) {
	t.Run("valid reference", func(t *testing.T) {
		k, err := ParseRef("role.loader")
		require.NoError(t, err)
		assert.Equal(t, NewKey("role", "loader"), k)
	})

	t.Run("invalid references", func(t *testing.T) {
		for _, ref := range []string{"", "role", "role.", ".loader"} {
			_, err := ParseRef(ref)
			assert.Error(t, err, "ref %q", ref)
		}
	})
}

func TestKeyLess(t *testing.T) {
	a := NewKey("database", "B")
	b := NewKey("role", "A")
	assert.True(t, a.Less(b), "type orders before name")
	assert.True(t, NewKey("role", "A").Less(NewKey("role", "B")))
	assert.False(t, b.Less(a))
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, errors.Is(&DuplicateObjectError{Key: NewKey("role", "a")}, ErrInvalidDefinitions))
	assert.True(t, errors.Is(&UnresolvedDependencyError{}, ErrInvalidDefinitions))
	assert.True(t, errors.Is(&UnknownAttributeError{}, ErrInvalidDefinitions))
	assert.True(t, errors.Is(&CyclicDependencyError{}, ErrCycle))

	inner := errors.New("connection refused")
	provErr := &ProviderError{Key: NewKey("role", "a"), Err: inner}
	assert.True(t, errors.Is(provErr, ErrProvider))
	assert.True(t, errors.Is(provErr, inner))
}

func TestCyclicDependencyErrorMessage(t *testing.T) {
	err := &CyclicDependencyError{Cycle: []Key{
		NewKey("role", "a"), NewKey("role", "b"), NewKey("role", "a"),
	}}
	assert.Equal(t, "cyclic dependency: role.A -> role.B -> role.A", err.Error())
}
