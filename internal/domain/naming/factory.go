package naming

import (
	"sync"

	pebbleerrors "github.com/FishShrimp/Pebble/internal/domain/shared/errors"
)

// Factory resolves and registers names against a concrete naming backend
// (e.g. a service registry, DNS-SD, an in-memory directory for tests). The
// engine's core never talks to a Factory directly — it is a collaborator
// for the application wiring the engine up to a real naming system.
type Factory interface {
	// Create returns a new backend instance for the given type tag.
	Create() (Backend, error)
}

// Backend is the minimal pluggable naming backend surface: register a
// canonical name against a URL, and look it up again.
type Backend interface {
	Register(name, url string) error
	Lookup(name string) (url string, ok bool)
}

// registry is the process-wide type_tag -> Factory mapping from spec.md
// §4.B, re-expressed as an explicitly initialized registry (spec.md §9)
// instead of a function-local static holder: construction happens exactly
// once via sync.Once, and teardown is an ordinary exported call instead of
// a magical static destructor.
type registry struct {
	mu        sync.Mutex
	once      sync.Once
	torndown  bool
	factories map[int32]Factory
}

var defaultRegistry registry

func (r *registry) ensure() {
	r.once.Do(func() {
		r.factories = make(map[int32]Factory)
	})
}

// SetNamingFactory registers factory under typeTag. Fails with
// NamingInvalidParam if factory is nil, NamingFactoryMapNull if the
// registry has been torn down, or NamingFactoryExisted if typeTag is
// already bound.
func SetNamingFactory(typeTag int32, factory Factory) error {
	return defaultRegistry.set(typeTag, factory)
}

func (r *registry) set(typeTag int32, factory Factory) error {
	if factory == nil {
		return pebbleerrors.Of(pebbleerrors.NamingInvalidParam)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.torndown {
		return pebbleerrors.Of(pebbleerrors.NamingFactoryMapNull)
	}

	r.ensure()

	if _, exists := r.factories[typeTag]; exists {
		return pebbleerrors.Of(pebbleerrors.NamingFactoryExisted)
	}

	r.factories[typeTag] = factory
	return nil
}

// GetNamingFactory returns the factory registered for typeTag, or nil if
// the registry is unavailable (never initialized, or torn down) or typeTag
// is unknown. There is no error return here because the original contract
// treats "not found" as a normal, silent miss (spec.md §4.B).
func GetNamingFactory(typeTag int32) Factory {
	return defaultRegistry.get(typeTag)
}

func (r *registry) get(typeTag int32) Factory {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.torndown || r.factories == nil {
		return nil
	}
	return r.factories[typeTag]
}

// ResetNamingFactoryRegistry tears the registry down, making its teardown
// order observable to the application instead of deferring to a static
// destructor (spec.md §9). A subsequent SetNamingFactory call will fail
// with NamingFactoryMapNull until the registry is re-initialized by the
// process (there is no re-initialization path by design: naming factories
// are meant to be registered once at startup).
func ResetNamingFactoryRegistry() {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.torndown = true
	defaultRegistry.factories = nil
}
