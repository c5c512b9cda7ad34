package demo

import (
	"context"
	"fmt"
)

// Service is what Worker needs. Both *MyService and *MyServiceInterceptor
// satisfy it.
type Service interface {
	DoSomething()
	DoSomethingElse(a bool, b int, c []int) int
	DisableLogging()
	ConditionalLogging(a int)
	ListReturnType(a []int) []int
	Fetch(ctx context.Context, id string) (string, error)
}

// Worker runs a fixed sequence of calls against a Service.
type Worker struct {
	service Service
	cache   *CacheInterceptor[string, string]
}

// NewWorker creates a Worker. cache may be nil.
func NewWorker(service Service, cache *CacheInterceptor[string, string]) *Worker {
	return &Worker{service: service, cache: cache}
}

// Execute performs every call once. ConditionalLogging runs with 1, 2 and 3
// so that rules can select some of them.
func (w *Worker) Execute(ctx context.Context) error {
	w.service.DoSomething()
	w.service.DoSomethingElse(true, 3, []int{1, 2, 3})
	w.service.DisableLogging()
	for _, a := range []int{1, 2, 3} {
		w.service.ConditionalLogging(a)
	}
	w.service.ListReturnType([]int{1, 2, 3})

	greeting, err := w.service.Fetch(ctx, "greeting")
	if err != nil {
		return fmt.Errorf("fetch greeting: %w", err)
	}

	if w.cache != nil {
		if _, ok := w.cache.Get("greeting"); !ok {
			w.cache.Put("greeting", greeting)
		}
		w.cache.Get("greeting")
	}
	return nil
}
