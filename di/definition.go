package di

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	apperrors "github.com/kbukum/beankit/errors"
)

// Factory builds a bean instance. The context carries the manager's lock
// and thread, so a factory may call Lookup or Accessor.Get with it. The
// context must not escape the factory. Resolving through any other context
// from inside a factory blocks on the manager lock forever.
type Factory func(ctx context.Context) (any, error)

// Setter injects dep into owner.
type Setter func(owner, dep any) error

// Dependency declares that after an owner is constructed, the bean named
// Target is resolved and injected through Set.
type Dependency struct {
	Target Name
	Type   reflect.Type
	Set    Setter
}

// DependsOn builds a Dependency whose setter is typed on both sides.
//
//	di.DependsOn(di.Key("repo"), func(s *Service, r Repository) { s.repo = r })
func DependsOn[O, D any](target Name, set func(O, D)) Dependency {
	return Dependency{
		Target: target,
		Type:   reflect.TypeFor[D](),
		Set: func(owner, dep any) error {
			o, ok := owner.(O)
			if !ok {
				return fmt.Errorf("owner is %T, setter expects %s", owner, reflect.TypeFor[O]())
			}
			d, ok := dep.(D)
			if !ok {
				return fmt.Errorf("dependency is %T, setter expects %s", dep, reflect.TypeFor[D]())
			}
			set(o, d)
			return nil
		},
	}
}

// Definition is the input to Manager.Register.
type Definition struct {
	Name    Name
	Factory Factory
	// Type is the declared type every instance must be assignable to.
	Type reflect.Type
	// Produces is the static result type of the factory, if known.
	Produces     reflect.Type
	Scope        Scope
	Dependencies []Dependency
}

// Metadata is the live registration record of a bean. It is replaced on
// every registration of the same name, never mutated; the index survives
// replacement.
type Metadata struct {
	Name         Name
	Index        int
	Factory      Factory
	Type         reflect.Type
	Produces     reflect.Type
	Scope        Scope
	Dependencies []Dependency
}

func (md *Metadata) dependsOn(name Name) bool {
	return slices.ContainsFunc(md.Dependencies, func(d Dependency) bool {
		return d.Target == name
	})
}

func (d *Definition) validate() error {
	if err := d.Name.validate(); err != nil {
		return err
	}
	bean := d.Name.String()
	if d.Factory == nil {
		return apperrors.InvalidInput("factory", fmt.Sprintf("factory of bean %s must not be nil", bean))
	}
	if d.Type == nil {
		return apperrors.InvalidInput("type", fmt.Sprintf("declared type of bean %s must not be nil", bean))
	}
	if !d.Scope.valid() {
		return apperrors.InvalidInput("scope", fmt.Sprintf("bean %s has unknown %s", bean, d.Scope))
	}
	for i, dep := range d.Dependencies {
		if err := dep.Target.validate(); err != nil {
			return err
		}
		if dep.Type == nil || dep.Set == nil {
			return apperrors.InvalidInput(fmt.Sprintf("dependencies[%d]", i),
				fmt.Sprintf("dependency %s of bean %s needs a type and a setter", dep.Target, bean))
		}
	}
	// Interface results can only be checked once an instance exists.
	if p := d.Produces; p != nil && p.Kind() != reflect.Interface && !p.AssignableTo(d.Type) {
		return apperrors.IncompatibleType(bean,
			fmt.Sprintf("incompatible type for bean %s, declared type is %s but factory produces %s", bean, d.Type, p),
			map[string]string{"declared": d.Type.String(), "produced": p.String()})
	}
	return nil
}

// RegisterOption customizes a typed registration.
type RegisterOption func(*Definition)

// InScope sets the bean scope. The default is ScopeSingleton.
func InScope(scope Scope) RegisterOption {
	return func(d *Definition) { d.Scope = scope }
}

// WithDependencies appends dependencies wired after construction, in order.
func WithDependencies(deps ...Dependency) RegisterOption {
	return func(d *Definition) { d.Dependencies = append(d.Dependencies, deps...) }
}

// Register registers factory under name with declared type D. T is the
// factory's result type and must be assignable to D; when T is concrete this
// is checked here, otherwise on construction.
//
// factory receives no context, so it must not resolve other beans: the
// manager lock is held while it runs and a lookup from it deadlocks. Use
// RegisterFunc and resolve through the given context, or declare the beans
// with WithDependencies.
//
//	di.Register[TextSeq](m, di.Key("hello"), func() *strings.Builder { ... })
func Register[D, T any](m *Manager, name Name, factory func() T, opts ...RegisterOption) error {
	if factory == nil {
		return apperrors.InvalidInput("factory", fmt.Sprintf("factory of bean %s must not be nil", name))
	}
	return RegisterFunc[D](m, name, func(context.Context) (T, error) { return factory(), nil }, opts...)
}

// RegisterFunc is Register for factories that take a context and may fail.
func RegisterFunc[D, T any](m *Manager, name Name, factory func(ctx context.Context) (T, error), opts ...RegisterOption) error {
	def := Definition{
		Name:     name,
		Type:     reflect.TypeFor[D](),
		Produces: reflect.TypeFor[T](),
		Scope:    ScopeSingleton,
	}
	if factory != nil {
		def.Factory = func(ctx context.Context) (any, error) { return factory(ctx) }
	}
	for _, opt := range opts {
		opt(&def)
	}
	return m.Register(def)
}
