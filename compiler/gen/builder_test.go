package gen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/buildgen/compiler/load"
)

func render(t *testing.T, s *load.Schema) string {
	t.Helper()
	return builderFile(newTestType(t, s)).GoString()
}

func TestGenBuilderType(t *testing.T) {
	code := render(t, schema("UserService",
		field(t, "repository", "Repository"),
		field(t, "cache", "Cache"),
	))
	assert.Contains(t, code, "type UserServiceBuilder struct {")
	assert.Contains(t, code, "repository buildgen.Value[Repository]")
	assert.Contains(t, code, "buildgen.Value[Cache]")
	assert.Contains(t, code, `"github.com/syssam/buildgen"`)
	assert.Contains(t, code, "Code generated by buildgen. DO NOT EDIT.")
}

func TestGenFactory(t *testing.T) {
	code := render(t, schema("UserService", field(t, "repository", "Repository")))
	assert.Contains(t, code, "func NewUserServiceBuilder() *UserServiceBuilder {")
	assert.Contains(t, code, "return &UserServiceBuilder{}")
}

func TestGenFieldSetter(t *testing.T) {
	t.Run("One fluent setter per field", func(t *testing.T) {
		code := render(t, schema("UserService",
			field(t, "repository", "Repository"),
			field(t, "cache", "Cache"),
			field(t, "timeout", "time.Duration"),
		))
		assert.Contains(t, code, "func (b *UserServiceBuilder) Repository(value Repository) *UserServiceBuilder {")
		assert.Contains(t, code, "func (b *UserServiceBuilder) Cache(value Cache) *UserServiceBuilder {")
		assert.Contains(t, code, "func (b *UserServiceBuilder) Timeout(value time.Duration) *UserServiceBuilder {")
		assert.Equal(t, 3, strings.Count(code, "return b\n"))
	})

	t.Run("Setter stores into the cell", func(t *testing.T) {
		code := render(t, schema("UserService", field(t, "repository", "Repository")))
		assert.Contains(t, code, "b.repository.Set(value)")
	})

	t.Run("Skipped field has no setter", func(t *testing.T) {
		code := render(t, schema("UserService",
			field(t, "repository", "Repository"),
			field(t, "internal", "int", withSkip),
		))
		assert.NotContains(t, code, "Internal(")
		assert.NotContains(t, code, "internal buildgen.Value")
	})
}

func TestGenBuild(t *testing.T) {
	t.Run("Required fields checked in declaration order", func(t *testing.T) {
		code := render(t, schema("Config",
			field(t, "dir", "string"),
			field(t, "endpoint", "string"),
		))
		assert.Contains(t, code, "func (b *ConfigBuilder) Build() (*Config, error) {")
		assert.Contains(t, code, `buildgen.NewMissingDependencyError("Config", "dir")`)
		assert.Contains(t, code, `buildgen.NewMissingDependencyError("Config", "endpoint")`)
		assert.Less(t,
			strings.Index(code, `"dir"`),
			strings.Index(code, `"endpoint"`),
			"the first missing field in declaration order must be reported first",
		)
	})

	t.Run("Required value read after the check", func(t *testing.T) {
		code := render(t, schema("Config", field(t, "dir", "string")))
		assert.Contains(t, code, "if !b.dir.IsSet()")
		assert.Contains(t, code, "dir: b.dir.OrZero()")
	})

	t.Run("Defaultable fields are not checked", func(t *testing.T) {
		code := render(t, schema("Config",
			field(t, "verbose", "bool", withDefaultZero),
			field(t, "name", "*string", withOptional),
		))
		assert.NotContains(t, code, "IsSet")
		assert.Contains(t, code, "b.verbose.OrZero()")
		assert.Contains(t, code, "b.name.OrZero()")
	})

	t.Run("Expression default spliced into a deferred fallback", func(t *testing.T) {
		code := render(t, schema("Config",
			field(t, "ttl", "time.Duration", withDefaultExpr("30 * time.Second")),
		))
		assert.Contains(t, code, "ttl: b.ttl.OrFunc(func() time.Duration {")
		assert.Contains(t, code, "return 30 * time.Second")
	})

	t.Run("Skipped field omitted from the literal", func(t *testing.T) {
		code := render(t, schema("Config",
			field(t, "dir", "string"),
			field(t, "internal", "int", withSkip),
		))
		assert.NotContains(t, code, "internal:")
	})

	t.Run("Empty declaration still builds", func(t *testing.T) {
		code := render(t, schema("EmptyService"))
		assert.Contains(t, code, "func (b *EmptyServiceBuilder) Build() (*EmptyService, error) {")
		assert.Contains(t, code, "return &EmptyService{}, nil")
	})
}

func TestGenBuildWithDefaults(t *testing.T) {
	code := render(t, schema("Config",
		field(t, "dir", "string"),
		field(t, "retries", "int", withDefaultExpr("5")),
		field(t, "name", "*string", withOptional),
	))
	assert.Contains(t, code, "func (b *ConfigBuilder) BuildWithDefaults() *Config {")
	// Never fails: no error return and no missing-field checks.
	start := strings.Index(code, "BuildWithDefaults")
	end := strings.Index(code[start:], "\n}")
	body := code[start : start+end]
	assert.NotContains(t, body, "IsSet")
	assert.NotContains(t, body, "error")
	assert.Contains(t, body, "b.dir.OrZero()")
	assert.Contains(t, body, "b.retries.OrFunc(")
}

func TestGenBuildValidated(t *testing.T) {
	t.Run("Without hook delegates to Build", func(t *testing.T) {
		code := render(t, schema("Config", field(t, "dir", "string")))
		assert.Contains(t, code, "func (b *ConfigBuilder) BuildValidated() (*Config, error) {")
		assert.Contains(t, code, "return b.Build()")
	})

	t.Run("With hook runs Validate", func(t *testing.T) {
		s := schema("Config", field(t, "dir", "string"))
		s.HasValidator = true
		code := render(t, s)
		assert.Contains(t, code, "if err := v.Validate(); err != nil {")
		assert.Contains(t, code, `buildgen.NewBuildFailedError("validating Config", err)`)
		assert.Contains(t, code, `buildgen.NewMissingDependencyError("Config", "dir")`)
	})
}

func TestGenAccessors(t *testing.T) {
	t.Run("Getter and setter on the constructed type", func(t *testing.T) {
		code := render(t, schema("Config",
			field(t, "name", "string", withGetter, withSetter),
		))
		assert.Contains(t, code, "func (c *Config) GetName() string {")
		assert.Contains(t, code, "return c.name")
		assert.Contains(t, code, "func (c *Config) SetName(value string) {")
		assert.Contains(t, code, "c.name = value")
	})

	t.Run("No accessors without flags", func(t *testing.T) {
		code := render(t, schema("Config", field(t, "name", "string")))
		assert.NotContains(t, code, "GetName")
		assert.NotContains(t, code, "SetName")
	})

	t.Run("Getter only", func(t *testing.T) {
		code := render(t, schema("Config", field(t, "name", "string", withGetter)))
		assert.Contains(t, code, "GetName")
		assert.NotContains(t, code, "SetName")
	})
}

func TestGenQualifiedTypes(t *testing.T) {
	code := render(t, schema("Event",
		field(t, "id", "uuid.UUID", withDefaultExpr("uuid.Nil")),
		field(t, "at", "time.Time"),
	))
	assert.Contains(t, code, `"github.com/google/uuid"`)
	assert.Contains(t, code, "buildgen.Value[uuid.UUID]")
	assert.Contains(t, code, "return uuid.Nil")
	assert.Contains(t, code, "buildgen.Value[time.Time]")

	// Registered import names render without an alias.
	assert.NotContains(t, code, `uuid "github.com/google/uuid"`)
	assert.NotContains(t, code, `buildgen "github.com/syssam/buildgen"`)
}

func TestGenGenericTarget(t *testing.T) {
	s := schema("Box",
		field(t, "value", "T"),
		field(t, "key", "K"),
	)
	s.TypeParams = []*load.TypeParam{
		{Name: "T", Constraint: mustParse(t, "any"), ConstraintText: "any"},
		{Name: "K", Constraint: mustParse(t, "comparable"), ConstraintText: "comparable"},
	}
	code := render(t, s)
	assert.Contains(t, code, "type BoxBuilder[T any, K comparable] struct {")
	assert.Contains(t, code, "func NewBoxBuilder[T any, K comparable]() *BoxBuilder[T, K] {")
	assert.Contains(t, code, "func (b *BoxBuilder[T, K]) Value(value T) *BoxBuilder[T, K] {")
	assert.Contains(t, code, "func (b *BoxBuilder[T, K]) Build() (*Box[T, K], error) {")
}

func TestGenHeaderOverride(t *testing.T) {
	cfg, err := NewConfig(WithHeader("Code generated by example. DO NOT EDIT."))
	require.NoError(t, err)
	typ, err := NewType(cfg, schema("Config"))
	require.NoError(t, err)
	code := builderFile(typ).GoString()
	assert.Contains(t, code, "Code generated by example. DO NOT EDIT.")
}
