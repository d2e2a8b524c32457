package load

import (
	"go/parser"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDirectives(t *testing.T) {
	t.Run("Plain list", func(t *testing.T) {
		assert.Equal(t, []string{"getter", "setter", "optional"}, splitDirectives("getter,setter,optional"))
	})

	t.Run("Commas inside calls stay intact", func(t *testing.T) {
		parts := splitDirectives("default=time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),getter")
		require.Len(t, parts, 2)
		assert.Equal(t, "default=time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)", parts[0])
		assert.Equal(t, "getter", parts[1])
	})

	t.Run("Commas inside strings stay intact", func(t *testing.T) {
		parts := splitDirectives(`default="a,b",setter`)
		require.Len(t, parts, 2)
		assert.Equal(t, `default="a,b"`, parts[0])
	})

	t.Run("Commas inside composite literals stay intact", func(t *testing.T) {
		parts := splitDirectives("default=[]string{\"a\", \"b\"}")
		require.Len(t, parts, 1)
	})

	t.Run("Escaped quote does not close the string", func(t *testing.T) {
		parts := splitDirectives(`default="a\"b,c",getter`)
		require.Len(t, parts, 2)
		assert.Equal(t, `default="a\"b,c"`, parts[0])
		assert.Equal(t, "getter", parts[1])
	})

	t.Run("Escaped backslash before the closing quote", func(t *testing.T) {
		parts := splitDirectives(`default="a\\",setter`)
		require.Len(t, parts, 2)
		assert.Equal(t, `default="a\\"`, parts[0])
		assert.Equal(t, "setter", parts[1])
	})
}

func TestDirectivesParse(t *testing.T) {
	t.Run("All flags", func(t *testing.T) {
		var d directives
		require.NoError(t, d.parse("getter, setter, optional"))
		assert.True(t, d.getter)
		assert.True(t, d.setter)
		assert.True(t, d.optional)
	})

	t.Run("Bare default", func(t *testing.T) {
		var d directives
		require.NoError(t, d.parse("default"))
		assert.True(t, d.def)
		assert.False(t, d.defSet)
	})

	t.Run("Default expression captured verbatim", func(t *testing.T) {
		var d directives
		require.NoError(t, d.parse("default=30 * time.Second"))
		assert.True(t, d.defSet)
		assert.Equal(t, "30 * time.Second", d.defExpr)
	})

	t.Run("Skip", func(t *testing.T) {
		var d directives
		require.NoError(t, d.parse("-"))
		assert.True(t, d.skip)
	})

	t.Run("Unknown directive rejected", func(t *testing.T) {
		var d directives
		err := d.parse("getter,lazy")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown directive "lazy"`)
	})

	t.Run("Flag with argument rejected", func(t *testing.T) {
		var d directives
		err := d.parse("getter=yes")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "takes no argument")
	})

	t.Run("Empty default expression rejected", func(t *testing.T) {
		var d directives
		err := d.parse("default=")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty expression")
	})

	t.Run("Conflicting default expressions rejected", func(t *testing.T) {
		var d directives
		require.NoError(t, d.parse("default=1"))
		err := d.parse("default=2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "conflicting default expressions")
	})

	t.Run("Repeated identical lists merge", func(t *testing.T) {
		// The tag form and the comment form may both appear; they are
		// equivalent and merge as a union.
		var d directives
		require.NoError(t, d.parse("getter"))
		require.NoError(t, d.parse("setter,default=5"))
		assert.True(t, d.getter)
		assert.True(t, d.setter)
		assert.Equal(t, "5", d.defExpr)
	})
}

func TestNillable(t *testing.T) {
	for _, tt := range []struct {
		typ  string
		want bool
	}{
		{"*string", true},
		{"[]byte", true},
		{"map[string]int", true},
		{"chan int", true},
		{"func()", true},
		{"interface{}", true},
		{"any", true},
		{"error", true},
		{"(*string)", true},
		{"string", false},
		{"int", false},
		{"[4]byte", false},
		{"time.Duration", false},
	} {
		t.Run(tt.typ, func(t *testing.T) {
			expr, err := parser.ParseExpr(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, nillable(expr))
		})
	}
}

func TestFieldRequired(t *testing.T) {
	assert.True(t, (&Field{}).Required())
	assert.False(t, (&Field{Default: DefaultZero}).Required())
	assert.False(t, (&Field{Default: DefaultExpr}).Required())
	assert.False(t, (&Field{Default: DefaultNil}).Required())
	assert.False(t, (&Field{Skip: true}).Required())
}

func TestDefaultKindString(t *testing.T) {
	assert.Equal(t, "none", DefaultNone.String())
	assert.Equal(t, "default", DefaultZero.String())
	assert.Equal(t, "default=<expr>", DefaultExpr.String())
	assert.Equal(t, "optional", DefaultNil.String())
}
