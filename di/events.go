package di

import (
	"context"
	"reflect"

	"github.com/kbukum/beankit/logger"
)

// EventKind names a registry event.
type EventKind string

const (
	EventBeanAdded    EventKind = "bean-added"
	EventBeanReplaced EventKind = "bean-replaced"
	EventBeanCreated  EventKind = "bean-created"
	EventBeanFound    EventKind = "bean-found"
)

// Event describes something that happened to a bean. OldType is set only
// for EventBeanReplaced.
type Event struct {
	Kind    EventKind
	Name    Name
	Index   int
	Scope   Scope
	Type    reflect.Type
	OldType reflect.Type
}

// Observer receives registry events. Observers are informational: they are
// called while the manager lock is held and must not call back into the
// manager.
type Observer interface {
	OnEvent(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, e Event)

func (f ObserverFunc) OnEvent(ctx context.Context, e Event) { f(ctx, e) }

type loggingObserver struct {
	log *logger.Logger
}

// NewLoggingObserver returns an Observer writing events to log.
// Registrations log at info level, constructions and lookups at debug.
func NewLoggingObserver(log *logger.Logger) Observer {
	return &loggingObserver{log: log}
}

func (o *loggingObserver) OnEvent(ctx context.Context, e Event) {
	fields := logger.Fields(
		logger.FieldEvent, string(e.Kind),
		logger.FieldBean, e.Name.String(),
		logger.FieldIndex, e.Index,
		logger.FieldScope, e.Scope.String(),
		logger.FieldType, typeName(e.Type),
	)
	if ns := e.Name.Namespace(); ns != "" {
		fields[logger.FieldNamespace] = ns
	}
	if e.OldType != nil {
		fields[logger.FieldOldType] = typeName(e.OldType)
	}

	log := o.log.WithContext(ctx)
	switch e.Kind {
	case EventBeanAdded:
		log.Info("bean added", fields)
	case EventBeanReplaced:
		log.Info("bean replaced", fields)
	case EventBeanCreated:
		log.Debug("bean created", fields)
	default:
		log.Debug("bean found", fields)
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
