package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/samber/do/v2"
	"go.uber.org/dig"
	"go.uber.org/fx"

	"github.com/centraunit/inject"
)

func newInjectChain(b *testing.B, opts ...inject.BindingOption) *inject.Kernel {
	b.Helper()
	k, err := inject.New()
	if err != nil {
		b.Fatal(err)
	}
	_, _ = inject.BindConstant(k, &Config{Host: "localhost", Port: 8080})
	_, _ = inject.BindConstant(k, &Logger{Level: "info"})
	_, _ = inject.BindToSelf[*Database](k, opts...)
	_, _ = inject.BindToSelf[*Cache](k, opts...)
	_, _ = inject.BindToSelf[*Repository](k, opts...)
	_, _ = inject.BindToSelf[*Service](k, opts...)
	_ = k.RegisterConstructor(NewDatabase)
	_ = k.RegisterConstructor(NewCache)
	_ = k.RegisterConstructor(NewRepository)
	_ = k.RegisterConstructor(NewService)
	return k
}

func BenchmarkInvoke_Singleton_Inject(b *testing.B) {
	k, _ := inject.New()
	_, _ = inject.BindConstant(k, &Config{Host: "localhost", Port: 8080})
	_, _ = inject.Get[*Config](k)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = inject.Get[*Config](k)
	}
	_ = k.Dispose()
}

func BenchmarkInvoke_Singleton_Do(b *testing.B) {
	injector := do.New()
	do.ProvideValue(injector, &Config{Host: "localhost", Port: 8080})
	_ = do.MustInvoke[*Config](injector)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = do.MustInvoke[*Config](injector)
	}
}

func BenchmarkInvoke_Singleton_Dig(b *testing.B) {
	c := dig.New()
	_ = c.Provide(func() *Config { return &Config{Host: "localhost", Port: 8080} })
	_ = c.Invoke(func(*Config) {})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Invoke(func(*Config) {})
	}
}

func BenchmarkInvoke_Chain_Inject(b *testing.B) {
	k := newInjectChain(b, inject.InSingletonScope())
	_, _ = inject.Get[*Service](k)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = inject.Get[*Service](k)
	}
	_ = k.Dispose()
}

func BenchmarkInvoke_Chain_Do(b *testing.B) {
	injector := do.New()
	do.ProvideValue(injector, &Config{Host: "localhost", Port: 8080})
	do.ProvideValue(injector, &Logger{Level: "info"})
	do.Provide(injector, func(i do.Injector) (*Database, error) {
		return NewDatabase(do.MustInvoke[*Config](i), do.MustInvoke[*Logger](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*Cache, error) {
		return NewCache(do.MustInvoke[*Logger](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*Repository, error) {
		return NewRepository(do.MustInvoke[*Database](i), do.MustInvoke[*Cache](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		return NewService(do.MustInvoke[*Repository](i), do.MustInvoke[*Logger](i)), nil
	})
	_ = do.MustInvoke[*Service](injector)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = do.MustInvoke[*Service](injector)
	}
}

func BenchmarkInvoke_Chain_Dig(b *testing.B) {
	c := dig.New()
	_ = c.Provide(func() *Config { return &Config{Host: "localhost", Port: 8080} })
	_ = c.Provide(func() *Logger { return &Logger{Level: "info"} })
	_ = c.Provide(NewDatabase)
	_ = c.Provide(NewCache)
	_ = c.Provide(NewRepository)
	_ = c.Provide(NewService)
	_ = c.Invoke(func(*Service) {})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Invoke(func(*Service) {})
	}
}

func BenchmarkInvoke_Chain_Fx(b *testing.B) {
	var svc *Service
	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			func() *Config { return &Config{Host: "localhost", Port: 8080} },
			func() *Logger { return &Logger{Level: "info"} },
			NewDatabase,
			NewCache,
			NewRepository,
			NewService,
		),
		fx.Populate(&svc),
	)
	ctx := context.Background()
	_ = app.Start(ctx)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = svc
	}
	_ = app.Stop(ctx)
}

func BenchmarkTransient_Chain_Inject(b *testing.B) {
	k := newInjectChain(b)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = inject.Get[*Service](k)
	}
	_ = k.Dispose()
}

func BenchmarkTransient_Chain_Do(b *testing.B) {
	injector := do.New()
	do.ProvideValue(injector, &Config{Host: "localhost", Port: 8080})
	do.ProvideValue(injector, &Logger{Level: "info"})
	do.ProvideTransient(injector, func(i do.Injector) (*Database, error) {
		return NewDatabase(do.MustInvoke[*Config](i), do.MustInvoke[*Logger](i)), nil
	})
	do.ProvideTransient(injector, func(i do.Injector) (*Cache, error) {
		return NewCache(do.MustInvoke[*Logger](i)), nil
	})
	do.ProvideTransient(injector, func(i do.Injector) (*Repository, error) {
		return NewRepository(do.MustInvoke[*Database](i), do.MustInvoke[*Cache](i)), nil
	})
	do.ProvideTransient(injector, func(i do.Injector) (*Service, error) {
		return NewService(do.MustInvoke[*Repository](i), do.MustInvoke[*Logger](i)), nil
	})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = do.MustInvoke[*Service](injector)
	}
}

func BenchmarkNamed_10_Inject(b *testing.B) {
	k, _ := inject.New()
	for i := 0; i < 10; i++ {
		_, _ = inject.BindConstant(k, &Config{Port: i}, inject.WithName(fmt.Sprintf("config%d", i)))
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = inject.GetNamed[*Config](k, "config5")
	}
	_ = k.Dispose()
}

func BenchmarkNamed_10_Do(b *testing.B) {
	injector := do.New()
	for i := 0; i < 10; i++ {
		do.ProvideNamedValue(injector, fmt.Sprintf("config%d", i), &Config{Port: i})
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = do.MustInvokeNamed[*Config](injector, "config5")
	}
}

func BenchmarkNamed_10_Dig(b *testing.B) {
	type params struct {
		dig.In
		Config *Config `name:"config5"`
	}
	c := dig.New()
	for i := 0; i < 10; i++ {
		port := i
		_ = c.Provide(func() *Config { return &Config{Port: port} }, dig.Name(fmt.Sprintf("config%d", i)))
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Invoke(func(params) {})
	}
}

func BenchmarkScope_Request_Inject(b *testing.B) {
	k := newInjectChain(b, inject.InRequestScope())

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		scope := k.BeginScope("bench")
		_, _ = inject.Get[*Service](scope)
		_ = scope.Release()
	}
	_ = k.Dispose()
}

func BenchmarkScope_Request_Do(b *testing.B) {
	injector := do.New()
	do.ProvideValue(injector, &Config{Host: "localhost", Port: 8080})
	do.ProvideValue(injector, &Logger{Level: "info"})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		scope := injector.Scope("bench")
		do.Provide(scope, func(i do.Injector) (*Database, error) {
			return NewDatabase(do.MustInvoke[*Config](i), do.MustInvoke[*Logger](i)), nil
		})
		_ = do.MustInvoke[*Database](scope)
		_ = scope.Shutdown()
	}
}
