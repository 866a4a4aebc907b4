package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"text/tabwriter"

	"github.com/kbukum/beankit/di"
)

// TextSeq is a read-only character sequence.
type TextSeq interface {
	Len() int
	String() string
}

// Text is an immutable TextSeq.
type Text string

func (t Text) Len() int       { return len(t) }
func (t Text) String() string { return string(t) }

type session struct {
	id    int64
	clock *clock
}

type clock struct {
	started string
}

func walkthrough(ctx context.Context, out io.Writer, m *di.Manager) error {
	hello := di.Key("hello")

	err := di.Register[TextSeq](m, hello, func() *strings.Builder {
		var b strings.Builder
		b.WriteString("Hello")
		return &b
	})
	if err != nil {
		return err
	}

	seq, err := di.Lookup[TextSeq](ctx, m, hello)
	if err != nil {
		return err
	}
	v, err := seq.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s = %q (len %d)\n", hello, v.String(), v.Len())

	if err := di.Register[Text](m, hello, func() Text { return "World!" }); err != nil {
		return err
	}
	v, err = seq.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s = %q (len %d) after replacement\n", hello, v.String(), v.Len())

	if _, err := di.Lookup[int](ctx, m, hello); err != nil {
		fmt.Fprintf(out, "lookup as int: %v\n", err)
	}
	if err := di.Register[int](m, hello, func() int { return 42 }); err != nil {
		fmt.Fprintf(out, "replace as int: %v\n", err)
	}

	namespaced := di.NamespacedKey("http://example.com/beans", "hello")
	if err := di.Register[Text](m, namespaced, func() Text { return "Namespaced hello" }); err != nil {
		return err
	}
	nv, err := di.Resolve[Text](ctx, m, namespaced)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s = %q\n", namespaced, nv)

	if err := threads(ctx, out, m); err != nil {
		return err
	}

	if err := m.InitializeSingletons(ctx); err != nil {
		return err
	}
	printRegistrations(out, m)
	return printBuildOrder(out, m)
}

// threads resolves a thread-scoped session from two goroutines.
func threads(ctx context.Context, out io.Writer, m *di.Manager) error {
	var ids atomic.Int64
	err := di.Register[*clock](m, di.Key("clock"), func() *clock { return &clock{started: "boot"} })
	if err != nil {
		return err
	}
	err = di.Register[*session](m, di.Key("session"),
		func() *session { return &session{id: ids.Add(1)} },
		di.InScope(di.ScopeThread),
		di.WithDependencies(di.DependsOn(di.Key("clock"), func(s *session, c *clock) { s.clock = c })),
	)
	if err != nil {
		return err
	}

	sessions, err := di.Lookup[*session](ctx, m, di.Key("session"))
	if err != nil {
		return err
	}

	lines := make([]string, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range lines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tctx := m.WithThread(ctx)
			first, err := sessions.Get(tctx)
			if err != nil {
				errs[i] = err
				return
			}
			again, err := sessions.Get(tctx)
			if err != nil {
				errs[i] = err
				return
			}
			lines[i] = fmt.Sprintf("thread %d: session %d, same on second get: %t, clock %s",
				i+1, first.id, first == again, first.clock.started)
		}()
	}
	wg.Wait()

	for i := range lines {
		if errs[i] != nil {
			return errs[i]
		}
		fmt.Fprintln(out, lines[i])
	}

	if _, err := sessions.Get(ctx); err != nil {
		fmt.Fprintf(out, "session outside a thread: %v\n", err)
	}
	return nil
}

func printRegistrations(out io.Writer, m *di.Manager) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tNAME\tSCOPE\tTYPE\tBUILT\tDEPENDS ON")
	for _, r := range m.Registrations() {
		deps := make([]string, len(r.Dependencies))
		for i, d := range r.Dependencies {
			deps[i] = d.String()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\t%s\n",
			r.Index, r.Name, r.Scope, r.Type, r.Built, strings.Join(deps, ","))
	}
	_ = w.Flush()
}

func printBuildOrder(out io.Writer, m *di.Manager) error {
	levels, err := m.DependencyLevels()
	if err != nil {
		return err
	}
	for i, level := range levels {
		names := make([]string, len(level))
		for j, n := range level {
			names[j] = n.String()
		}
		fmt.Fprintf(out, "level %d: %s\n", i, strings.Join(names, ", "))
	}
	return nil
}
