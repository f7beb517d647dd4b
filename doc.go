// Package inject is an inversion-of-control kernel built around an
// activation pipeline.
//
// Services are registered as bindings. Resolving a service selects a binding,
// checks the scope cache, builds the instance from a cached plan, injects its
// fields and injection methods, runs its lifecycle hooks and registers it for
// deactivation.
//
// # Bindings
//
//	k, err := inject.New()
//	inject.Bind[Logger, *ConsoleLogger](k, inject.InSingletonScope())
//	inject.Bind[Service, *ServiceImpl](k)
//	inject.RegisterConstructor[*ServiceImpl](k, NewServiceImpl)
//
//	svc, err := inject.Get[Service](k)
//
// A binding may be named, tagged and guarded by conditions:
//
//	k.Bind(dbType, inject.ToMethod(openPrimary), inject.WithName("primary"))
//	db, err := inject.GetNamed[*sql.DB](k, "primary")
//
// # Injection
//
// Constructors are plain functions registered per type. Without one, struct
// pointers are allocated with new. Exported fields tagged with `inject` and
// exported methods named Inject* are injected after construction:
//
//	type Handler struct {
//		Log    Logger   `inject:""`
//		Cache  Cache    `inject:"name=redis,optional"`
//		Hooks  []Hook   `inject:""`
//	}
//
// # Scopes
//
// Transient bindings build a new instance per request. Singleton bindings
// share one instance per kernel. Request-scoped bindings share one instance
// per *Scope:
//
//	scope := k.BeginScope("request-42")
//	defer scope.Release()
//	repo, err := inject.Get[Repository](scope)
//
// # Lifecycle
//
// Activation runs, in order: field injection, method injection,
// Initializable.Initialize, Startable.Start, binding activation actions and
// registration for deactivation. Deactivation runs the binding deactivation
// actions, Startable.Stop and finally Disposable.Dispose.
package inject
