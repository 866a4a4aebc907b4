// Package di provides a registry of named, lazily constructed beans.
//
// A bean is registered with a factory and a declared type, and retrieved
// through a deferred accessor that re-resolves the current registration on
// every call. Registering a name again replaces its recipe: cached instances
// of the bean and of the beans depending on it are discarded, and every
// existing accessor observes the new instance.
//
// # Registration
//
//	m, err := di.NewManager()
//	err = di.Register[TextSeq](m, di.Key("hello"), func() *strings.Builder {
//	    var b strings.Builder
//	    b.WriteString("Hello")
//	    return &b
//	})
//
// # Lookup
//
//	hello, err := di.Lookup[TextSeq](ctx, m, di.Key("hello"))
//	seq, err := hello.Get(ctx)
//
// # Scopes
//
// Singleton beans exist once per Manager. Thread beans exist once per thread
// context, created with Manager.WithThread:
//
//	ctx = m.WithThread(ctx)
//	session := di.MustResolve[*Session](ctx, m, di.Key("session"))
//
// A singleton may not depend on a thread bean.
package di
