package di

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"slices"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/kbukum/beankit/errors"
	"github.com/kbukum/beankit/observability"
)

type lockKey struct{ m *Manager }

type lockToken struct {
	held atomic.Bool
}

// acquire locks m unless ctx already carries the lock of this manager, which
// is the case for contexts handed to factories.
func (m *Manager) acquire(ctx context.Context) (context.Context, func()) {
	if m.holds(ctx) {
		return ctx, func() {}
	}
	m.mu.Lock()
	tok := &lockToken{}
	tok.held.Store(true)
	return context.WithValue(ctx, lockKey{m}, tok), func() {
		tok.held.Store(false)
		m.mu.Unlock()
	}
}

func (m *Manager) holds(ctx context.Context) bool {
	tok, ok := ctx.Value(lockKey{m}).(*lockToken)
	return ok && tok.held.Load()
}

// Handle is an untyped deferred accessor returned by Manager.Lookup. Every
// Get observes the current registration of the bean. A Handle is safe for
// concurrent use.
type Handle struct {
	m         *Manager
	name      Name
	index     int
	requested reflect.Type
	epoch     uint64
}

// Name returns the bean name the handle resolves.
func (h *Handle) Name() Name { return h.name }

// Get returns the bean instance, constructing it if needed. Thread beans are
// resolved against the thread carried by ctx.
func (h *Handle) Get(ctx context.Context) (any, error) {
	if t := h.m.table.Load(); t.epoch == h.epoch {
		c := t.cells[h.index]
		if !c.thread.Load() {
			if v, ok := c.load(); ok {
				return v, nil
			}
		} else if tt := h.m.threadFrom(ctx); tt != nil {
			if v, ok := tt.get(t.epoch, h.index, c.gen.Load()); ok {
				return v, nil
			}
		}
	}
	return h.m.resolve(ctx, h.name, h.requested)
}

func (m *Manager) resolve(ctx context.Context, name Name, requested reflect.Type) (any, error) {
	outer := !m.holds(ctx)
	ctx, unlock := m.acquire(ctx)
	defer unlock()

	md, err := m.metadata(name, requested)
	if err == nil {
		var v any
		if v, err = m.instance(ctx, md); err == nil {
			return v, nil
		}
	}
	if outer {
		m.recordError(ctx, name, err)
	}
	return nil, err
}

// instance returns the cached instance of md in its scope or constructs it.
// The lock must be held.
func (m *Manager) instance(ctx context.Context, md *Metadata) (any, error) {
	t := m.table.Load()
	c := t.cells[md.Index]

	if md.Scope == ScopeSingleton {
		if v, ok := c.load(); ok {
			return v, nil
		}
		// Beans still being wired are visible only under the lock.
		if v, ok := m.wiring[md.Index]; ok {
			return v, nil
		}
		return m.construct(ctx, md,
			func(v any) { m.wiring[md.Index] = v },
			func(v any) {
				delete(m.wiring, md.Index)
				c.store(v)
			},
			func() {
				delete(m.wiring, md.Index)
				m.invalidateDependents(md.Name)
			})
	}

	tt := m.threadFrom(ctx)
	if tt == nil {
		bean := md.Name.String()
		return nil, apperrors.ScopeViolation(bean,
			fmt.Sprintf("thread bean %s resolved outside a thread context", bean))
	}
	tt.sync(t.epoch)
	gen := c.gen.Load()
	if v, ok := tt.get(t.epoch, md.Index, gen); ok {
		return v, nil
	}
	return m.construct(ctx, md,
		func(v any) { tt.put(md.Index, v, gen) },
		func(any) {},
		func() {
			tt.clear(md.Index)
			m.invalidateThreadDependents(tt, md.Name)
		})
}

func (m *Manager) construct(ctx context.Context, md *Metadata, publish, commit func(any), rollback func()) (any, error) {
	bean := md.Name.String()
	if !m.cfg.DisableCycleDetection {
		if m.building[md.Index] {
			return nil, apperrors.CyclicDependency(bean)
		}
		m.building[md.Index] = true
		defer delete(m.building, md.Index)
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanConstruct,
		attribute.String(observability.AttrBeanName, bean),
		attribute.String(observability.AttrBeanScope, md.Scope.String()),
		attribute.String(observability.AttrBeanType, md.Type.String()),
		attribute.Int(observability.AttrBeanIndex, md.Index),
	)
	defer span.End()
	start := time.Now()

	v, err := m.build(ctx, md, publish, commit, rollback)

	status := "ok"
	if err != nil {
		status = "error"
		observability.SetSpanError(ctx, err)
	}
	m.metrics.RecordConstruction(ctx, bean, md.Scope.String(), status, time.Since(start))
	return v, err
}

// build runs the factory and wires the instance's dependencies in order.
// publish makes the half-wired instance visible to lookups made under the
// lock, so dependencies referring back to it see it. commit runs once every
// dependency is wired; on a wiring failure rollback runs instead.
func (m *Manager) build(ctx context.Context, md *Metadata, publish, commit func(any), rollback func()) (any, error) {
	bean := md.Name.String()

	v, err := md.Factory(ctx)
	if err != nil {
		// Registry errors from nested lookups keep their code.
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.ConstructionFailed(bean, err)
	}
	if isNil(v) || !reflect.TypeOf(v).AssignableTo(md.Type) {
		produced := "<nil>"
		if !isNil(v) {
			produced = reflect.TypeOf(v).String()
		}
		return nil, apperrors.IncompatibleType(bean,
			fmt.Sprintf("incompatible type for bean %s, declared type is %s but factory produced %s", bean, md.Type, produced),
			map[string]string{"declared": md.Type.String(), "produced": produced})
	}

	publish(v)
	for _, dep := range md.Dependencies {
		if err := m.wire(ctx, md, v, dep); err != nil {
			rollback()
			return nil, err
		}
	}
	commit(v)

	m.emit(ctx, Event{Kind: EventBeanCreated, Name: md.Name, Index: md.Index, Scope: md.Scope, Type: md.Type})
	return v, nil
}

func (m *Manager) wire(ctx context.Context, owner *Metadata, v any, dep Dependency) error {
	target, ok := m.beans[dep.Target]
	if !ok {
		return apperrors.BeanNotFound(dep.Target.String())
	}
	if owner.Scope == ScopeSingleton && target.Scope == ScopeThread {
		return apperrors.ScopeViolation(owner.Name.String(),
			fmt.Sprintf("singleton bean %s depends on thread bean %s", owner.Name, target.Name))
	}

	dv, err := m.instance(ctx, target)
	if err != nil {
		return err
	}
	if t := reflect.TypeOf(dv); !t.AssignableTo(dep.Type) {
		bean := owner.Name.String()
		return apperrors.IncompatibleType(bean,
			fmt.Sprintf("incompatible type for dependency %s of bean %s, dependency type is %s but bean produced %s",
				target.Name, bean, dep.Type, t),
			map[string]string{"dependency": dep.Type.String(), "produced": t.String()})
	}
	if err := dep.Set(v, dv); err != nil {
		return apperrors.ConstructionFailed(owner.Name.String(), err)
	}
	return nil
}

// InitializeSingletons constructs every registered singleton in index
// order. It continues past failures and returns them joined.
func (m *Manager) InitializeSingletons(ctx context.Context) error {
	ctx, unlock := m.acquire(ctx)
	defer unlock()

	ctx, span := observability.StartSpan(ctx, observability.SpanInitialize)
	defer span.End()

	beans := make([]*Metadata, 0, len(m.beans))
	for _, md := range m.beans {
		if md.Scope == ScopeSingleton {
			beans = append(beans, md)
		}
	}
	slices.SortFunc(beans, func(a, b *Metadata) int { return a.Index - b.Index })

	var errs []error
	for _, md := range beans {
		if _, err := m.instance(ctx, md); err != nil {
			m.recordError(ctx, md.Name, err)
			errs = append(errs, err)
		}
	}

	err := stderrors.Join(errs...)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return err
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
