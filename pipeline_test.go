package refine

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"
)

type signup struct {
	Name    string   `refine:"trim,capitalize,no-digits"`
	Email   *string  `refine:"trim,lowercase,rule=email"`
	Aliases []string `refine:"trim,no-digits"`
	Home    *address
}

func newTestPipeline[T any](t *testing.T, opts ...Option) *Pipeline[T] {
	t.Helper()
	t.Cleanup(ResetSchemas)
	opts = append([]Option{WithRegistry(Builtins())}, opts...)
	p, err := NewPipeline[T](opts...)
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}
	return p
}

func TestPipeline_ShapesAndFailures(t *testing.T) {
	p := newTestPipeline[signup](t)

	s := &signup{Name: " j0hn ", Aliases: []string{" a1 ", "b "}}
	_, err := p.Process(context.Background(), s, TagTrim, TagNoDigits)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Process() error = %v, want *ValidationError", err)
	}
	want := []Failure{
		{Field: "Name", Tag: TagNoDigits, Message: "contains digit"},
		{Field: "Aliases[0]", Tag: TagNoDigits, Message: "contains digit"},
	}
	if !slices.Equal(verr.Failures, want) {
		t.Errorf("Failures = %v, want %v", verr.Failures, want)
	}
	// Transformers ran on every element before validation failed.
	if s.Name != "j0hn" || s.Aliases[1] != "b" {
		t.Errorf("target = %+v", s)
	}
}

func TestPipeline_PointerFields(t *testing.T) {
	p := newTestPipeline[signup](t)

	email := "  ADA@Example.com "
	s := &signup{Name: "ada", Email: &email, Home: &address{City: " london "}}
	got, err := p.Process(context.Background(), s, TagTrim, TagLowercase, TagCapitalize, TagRule)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if *got.Email != "ada@example.com" {
		t.Errorf("Email = %q", *got.Email)
	}
	if got.Home.City != "London" {
		t.Errorf("Home.City = %q", got.Home.City)
	}
	if got.Name != "Ada" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestPipeline_RuleFailure(t *testing.T) {
	p := newTestPipeline[signup](t)

	email := "not-an-email"
	_, err := p.Process(context.Background(), &signup{Email: &email}, TagRule)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Process() error = %v, want *ValidationError", err)
	}
	if f := verr.Failures[0]; f.Field != "Email" || f.Message != "must satisfy email" {
		t.Errorf("failure = %+v", f)
	}
}

func TestPipeline_RepeatedKind(t *testing.T) {
	type code struct {
		Value string `refine:"rule=alpha,rule=lowercase"`
	}
	p := newTestPipeline[code](t)

	_, err := p.Process(context.Background(), &code{Value: "ABC1"}, TagRule)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Process() error = %v, want *ValidationError", err)
	}
	if len(verr.Failures) != 2 {
		t.Fatalf("Failures = %v, want 2", verr.Failures)
	}
	if verr.Failures[0].Message != "must satisfy alpha" || verr.Failures[1].Message != "must satisfy lowercase" {
		t.Errorf("Failures = %v", verr.Failures)
	}
}

type tagged struct {
	Code string `refine:"trim,shout"`
}

func TestPipeline_UnknownKind(t *testing.T) {
	p := newTestPipeline[tagged](t)

	// Inactive unknown kinds are never resolved.
	got, err := p.Process(context.Background(), &tagged{Code: " x "}, TagTrim)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if got.Code != "x" {
		t.Errorf("Code = %q", got.Code)
	}

	_, err = p.Process(context.Background(), &tagged{Code: "x"}, TagTrim, "shout")
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("Process() error = %v, want *ConfigurationError", err)
	}
	if !errors.Is(err, ErrUnknownTag) || cerr.Tag != "shout" || cerr.Field != "Code" {
		t.Errorf("ConfigurationError = %+v", cerr)
	}

	if err := p.Validate(); !errors.Is(err, ErrUnknownTag) {
		t.Errorf("Validate() error = %v, want ErrUnknownTag", err)
	}
}

func TestPipeline_CustomProcessor(t *testing.T) {
	defer ResetSchemas()

	shout := func(v string, _ TagDescriptor) (string, error) { return v + "!", nil }
	r := Builtins().MustRegister("shout", Transformer(shout))
	p, err := NewPipeline[tagged](WithRegistry(r))
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	got, err := p.Process(context.Background(), &tagged{Code: " hey "}, TagTrim, "shout")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if got.Code != "hey!" {
		t.Errorf("Code = %q, want %q", got.Code, "hey!")
	}
	if !r.Frozen() {
		t.Error("NewPipeline() should freeze its registry")
	}
}

func TestPipeline_Sanitizer(t *testing.T) {
	type form struct {
		Title string `refine:"required"`
	}
	defer ResetSchemas()

	r := Builtins().MustRegister("required", Sanitizer(trim, notBlank, "{field} is required"))
	p, err := NewPipeline[form](WithRegistry(r))
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}

	got, err := p.Process(context.Background(), &form{Title: " ok "}, "required")
	if err != nil || got.Title != "ok" {
		t.Errorf("Process() = %+v, %v", got, err)
	}

	_, err = p.Process(context.Background(), &form{Title: "   "}, "required")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Failures[0].Message != "Title is required" {
		t.Errorf("Process() error = %v", err)
	}
}

func TestPipeline_InvalidArgument(t *testing.T) {
	tests := []struct {
		name string
		new  func() error
	}{
		{"min-length", func() error {
			type lenArg struct {
				S string `refine:"min-length=abc"`
			}
			_, err := NewPipeline[lenArg](WithRegistry(Builtins()))
			return err
		}},
		{"pattern", func() error {
			type patArg struct {
				S string `refine:"pattern=("`
			}
			_, err := NewPipeline[patArg](WithRegistry(Builtins()))
			return err
		}},
		{"hash", func() error {
			type hashArg struct {
				S string `refine:"hash=md5"`
			}
			_, err := NewPipeline[hashArg](WithRegistry(Builtins()))
			return err
		}},
		{"rule", func() error {
			type ruleArg struct {
				S string `refine:"rule=no_such_rule"`
			}
			_, err := NewPipeline[ruleArg](WithRegistry(Builtins()))
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer ResetSchemas()
			if err := tt.new(); !errors.Is(err, ErrInvalidTag) {
				t.Errorf("NewPipeline() error = %v, want ErrInvalidTag", err)
			}
		})
	}
}

func TestPipeline_DeclaredMessage(t *testing.T) {
	type badge struct {
		Name string
	}
	defer ResetSchemas()

	err := Declare[badge](Field("Name",
		Tag(TagCapitalize),
		Tag(TagNoDigits).WithMessage("{field} must not contain {detail}"),
	))
	if err != nil {
		t.Fatalf("Declare() error: %v", err)
	}
	p, err := NewPipeline[badge](WithRegistry(Builtins()))
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}

	_, err = p.Process(context.Background(), &badge{Name: "john3"}, TagCapitalize, TagNoDigits)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Process() error = %v, want *ValidationError", err)
	}
	if got := verr.Failures[0].Message; got != "Name must not contain 3" {
		t.Errorf("Message = %q", got)
	}
}

func TestPipeline_Apply(t *testing.T) {
	markers := Markers{
		"create": Activate(TagTrim, TagCapitalize),
		"audit":  Activate("nope"),
	}
	p := newTestPipeline[signup](t, WithMarkers(markers))

	got, err := p.Apply(context.Background(), "create", &signup{Name: " ada "})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if got.Name != "Ada" {
		t.Errorf("Name = %q", got.Name)
	}

	if _, err := p.Apply(context.Background(), "delete", &signup{}); !errors.Is(err, ErrUnknownMarker) {
		t.Errorf("Apply(delete) error = %v, want ErrUnknownMarker", err)
	}
	if err := p.Validate(); !errors.Is(err, ErrUnknownTag) {
		t.Errorf("Validate() error = %v, want ErrUnknownTag for marker kind", err)
	}
}

func TestPipeline_NilTarget(t *testing.T) {
	p := newTestPipeline[signup](t)
	if _, err := p.Process(context.Background(), nil, TagTrim); !errors.Is(err, ErrNilTarget) {
		t.Errorf("Process(nil) error = %v, want ErrNilTarget", err)
	}
}

func TestPipeline_Schema(t *testing.T) {
	p := newTestPipeline[signup](t)
	if p.Schema().TypeName != "refine.signup" {
		t.Errorf("TypeName = %q", p.Schema().TypeName)
	}
}

func TestLocate(t *testing.T) {
	s := signup{Home: &address{City: "x"}}
	v, ok := locate(reflect.ValueOf(&s).Elem(), []int{3, 1})
	if !ok || v.String() != "x" {
		t.Errorf("locate() = %v, %v", v, ok)
	}

	s.Home = nil
	if _, ok := locate(reflect.ValueOf(&s).Elem(), []int{3, 1}); ok {
		t.Error("locate() through nil pointer should report absent")
	}
}

func TestCloneOf_Detached(t *testing.T) {
	p := newTestPipeline[signup](t)

	email := "ada@example.com"
	orig := &signup{Name: "a", Email: &email, Aliases: []string{"x"}, Home: &address{Street: "s", City: "c"}}
	c := cloneOf(orig, p.Schema())

	c.Name = "b"
	*c.Email = "other"
	c.Aliases[0] = "y"
	c.Home.City = "d"
	if orig.Name != "a" || email != "ada@example.com" || orig.Aliases[0] != "x" || orig.Home.City != "c" {
		t.Errorf("cloneOf() shares state with original: %+v", orig)
	}
	if c.Home.Street != "s" {
		t.Errorf("Home.Street = %q, want copied value", c.Home.Street)
	}
}

func TestCloneOf_NilPointers(t *testing.T) {
	p := newTestPipeline[signup](t)

	c := cloneOf(&signup{Name: "a"}, p.Schema())
	if c.Email != nil || c.Aliases != nil || c.Home != nil {
		t.Errorf("cloneOf() = %+v, want nil fields kept nil", c)
	}
}

func TestNewPipeline_FailureLeavesRegistryOpen(t *testing.T) {
	type lateKind struct {
		Code string `refine:"min-length=abc,late"`
	}
	defer ResetSchemas()

	r := Builtins()
	if _, err := NewPipeline[lateKind](WithRegistry(r)); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("NewPipeline() error = %v, want ErrInvalidTag", err)
	}
	if r.Frozen() {
		t.Error("failed NewPipeline() should not freeze the registry")
	}
	if err := r.Register("late", Transformer(trim)); err != nil {
		t.Errorf("Register() after failed build error: %v", err)
	}
}
