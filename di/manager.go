package di

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	apperrors "github.com/kbukum/beankit/errors"
	"github.com/kbukum/beankit/logger"
	"github.com/kbukum/beankit/observability"
)

const meterName = "github.com/kbukum/beankit/di"

// Manager is a registry of lazily constructed beans.
//
// A single mutex guards registrations and serializes construction. Cached
// singletons are read without locking. Register and Reset take the lock
// unconditionally and therefore must not be called from inside a factory.
type Manager struct {
	id        string
	cfg       Config
	log       *logger.Logger
	observers []Observer
	meter     metric.Meter
	metrics   *observability.BeanMetrics

	mu       sync.Mutex
	beans    map[Name]*Metadata
	building map[int]bool
	wiring   map[int]any
	table    atomic.Pointer[slotTable]
}

// RegistrationInfo describes a registered bean for introspection.
type RegistrationInfo struct {
	Name         Name
	Index        int
	Scope        Scope
	Type         reflect.Type
	Dependencies []Name
	// Built reports whether a singleton instance is cached. Always false
	// for thread beans.
	Built bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfig sets the manager configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.cfg = cfg }
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithObserver adds an observer after the built-in logging observer.
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observers = append(m.observers, o) }
}

// WithMeter records bean metrics on meter instead of the global provider.
func WithMeter(meter metric.Meter) Option {
	return func(m *Manager) { m.meter = meter }
}

// NewManager creates an empty Manager.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		id:       uuid.NewString(),
		beans:    make(map[Name]*Metadata),
		building: make(map[int]bool),
		wiring:   make(map[int]any),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.cfg.ApplyDefaults()
	if err := m.cfg.Validate(); err != nil {
		return nil, err
	}

	if m.log == nil {
		m.log = logger.GetGlobalLogger()
	}
	m.log = m.log.WithComponent("di").WithFields(logger.Fields(logger.FieldManager, m.id))
	m.observers = append([]Observer{NewLoggingObserver(m.log)}, m.observers...)

	if m.meter == nil {
		m.meter = observability.Meter(meterName)
	}
	metrics, err := observability.NewBeanMetrics(m.meter)
	if err != nil {
		return nil, fmt.Errorf("di: %w", err)
	}
	m.metrics = metrics

	m.table.Store(&slotTable{})
	return m, nil
}

// ID returns the unique id of this manager, used in its log fields.
func (m *Manager) ID() string { return m.id }

// Register installs def, or replaces the bean registered under the same
// name. A replacement must declare a type assignable to the old declared
// type; it keeps the bean's index, discards its cached instances and
// invalidates the beans depending on it. A failed Register changes nothing.
func (m *Manager) Register(def Definition) error {
	ctx := context.Background()
	if err := def.validate(); err != nil {
		m.recordError(ctx, def.Name, err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	md := &Metadata{
		Name:         def.Name,
		Factory:      def.Factory,
		Type:         def.Type,
		Produces:     def.Produces,
		Scope:        def.Scope,
		Dependencies: slices.Clone(def.Dependencies),
	}
	bean := md.Name.String()

	old, exists := m.beans[md.Name]
	if !exists {
		t := m.table.Load()
		md.Index = len(t.cells)
		m.table.Store(t.grow(md.Scope))
		m.beans[md.Name] = md

		m.metrics.RecordRegistration(ctx, bean, "added")
		m.emit(ctx, Event{Kind: EventBeanAdded, Name: md.Name, Index: md.Index, Scope: md.Scope, Type: md.Type})
		return nil
	}

	if !md.Type.AssignableTo(old.Type) {
		err := apperrors.IncompatibleType(bean,
			fmt.Sprintf("incompatible types for bean %s, old: %s, new: %s", bean, old.Type, md.Type),
			map[string]string{"old": old.Type.String(), "new": md.Type.String()})
		m.recordError(ctx, md.Name, err)
		return err
	}

	md.Index = old.Index
	c := m.table.Load().cells[md.Index]
	c.clear()
	c.thread.Store(md.Scope == ScopeThread)
	m.beans[md.Name] = md
	m.invalidateDependents(md.Name)

	m.metrics.RecordRegistration(ctx, bean, "replaced")
	m.emit(ctx, Event{
		Kind: EventBeanReplaced, Name: md.Name, Index: md.Index,
		Scope: md.Scope, Type: md.Type, OldType: old.Type,
	})
	return nil
}

// invalidateDependents clears the cached instances of every bean depending
// on name, one hop or transitively depending on the configuration. Thread
// instances are dropped lazily through the cell generation.
func (m *Manager) invalidateDependents(name Name) {
	t := m.table.Load()
	m.walkDependents(name, func(md *Metadata) {
		t.cells[md.Index].clear()
	})
}

// invalidateThreadDependents drops the dependents of name from tt only.
// Other threads never saw the instance being rolled back.
func (m *Manager) invalidateThreadDependents(tt *threadTable, name Name) {
	m.walkDependents(name, func(md *Metadata) {
		tt.clear(md.Index)
	})
}

func (m *Manager) walkDependents(name Name, invalidate func(*Metadata)) {
	seen := map[Name]bool{name: true}
	frontier := []Name{name}

	for len(frontier) > 0 {
		var next []Name
		for _, md := range m.beans {
			if seen[md.Name] || !slices.ContainsFunc(frontier, md.dependsOn) {
				continue
			}
			seen[md.Name] = true
			invalidate(md)
			next = append(next, md.Name)

			m.log.Debug("dependent bean invalidated", logger.Fields(
				logger.FieldBean, md.Name.String(),
				"cause", name.String(),
			))
		}
		if m.cfg.Invalidation == InvalidateDirect {
			break
		}
		frontier = next
	}
}

// Lookup returns a handle to the bean registered under name. The bean's
// declared type must be assignable to requested. No factory runs.
func (m *Manager) Lookup(ctx context.Context, name Name, requested reflect.Type) (*Handle, error) {
	if err := name.validate(); err != nil {
		return nil, err
	}
	if requested == nil {
		return nil, apperrors.InvalidInput("type", fmt.Sprintf("requested type of bean %s must not be nil", name))
	}

	ctx, unlock := m.acquire(ctx)
	defer unlock()

	md, err := m.metadata(name, requested)
	if err != nil {
		m.metrics.RecordLookup(ctx, name.String(), "error")
		m.recordError(ctx, name, err)
		return nil, err
	}

	m.metrics.RecordLookup(ctx, name.String(), "ok")
	m.emit(ctx, Event{Kind: EventBeanFound, Name: md.Name, Index: md.Index, Scope: md.Scope, Type: md.Type})
	return &Handle{
		m:         m,
		name:      name,
		index:     md.Index,
		requested: requested,
		epoch:     m.table.Load().epoch,
	}, nil
}

// metadata must be called with the lock held.
func (m *Manager) metadata(name Name, requested reflect.Type) (*Metadata, error) {
	md, ok := m.beans[name]
	if !ok {
		return nil, apperrors.BeanNotFound(name.String())
	}
	if requested != nil && !md.Type.AssignableTo(requested) {
		bean := name.String()
		return nil, apperrors.IncompatibleType(bean,
			fmt.Sprintf("incompatible type for bean %s, bean type is %s but requested %s", bean, md.Type, requested),
			map[string]string{"declared": md.Type.String(), "requested": requested.String()})
	}
	return md, nil
}

// Reset removes every registration and cached instance. Thread contexts
// created before Reset see empty slots on their next access. Handles
// obtained before Reset keep resolving by name.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.beans)
	clear(m.building)
	clear(m.wiring)
	epoch := m.table.Load().epoch + 1
	m.table.Store(&slotTable{epoch: epoch})

	m.log.Info("registry reset", logger.Fields("epoch", epoch))
}

// Registrations lists registered beans in index order.
func (m *Manager) Registrations() []RegistrationInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table.Load()
	result := make([]RegistrationInfo, 0, len(m.beans))
	for _, md := range m.beans {
		deps := make([]Name, len(md.Dependencies))
		for i, d := range md.Dependencies {
			deps[i] = d.Target
		}
		_, built := t.cells[md.Index].load()
		result = append(result, RegistrationInfo{
			Name:         md.Name,
			Index:        md.Index,
			Scope:        md.Scope,
			Type:         md.Type,
			Dependencies: deps,
			Built:        built && md.Scope == ScopeSingleton,
		})
	}
	slices.SortFunc(result, func(a, b RegistrationInfo) int { return a.Index - b.Index })
	return result
}

func (m *Manager) emit(ctx context.Context, e Event) {
	for _, o := range m.observers {
		o.OnEvent(ctx, e)
	}
}

func (m *Manager) recordError(ctx context.Context, name Name, err error) {
	code := apperrors.Wrap(err).Code
	m.metrics.RecordError(ctx, string(code))
	m.log.WithContext(ctx).Debug("bean operation failed", logger.Fields(
		logger.FieldBean, name.String(),
		logger.FieldCode, string(code),
		logger.FieldError, err.Error(),
	))
}
