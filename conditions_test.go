package inject_test

import (
	"reflect"
	"testing"

	"github.com/centraunit/inject"
	"github.com/centraunit/inject/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConditionKernel(t *testing.T) (*inject.Kernel, *mock.MockDB) {
	t.Helper()
	k, err := inject.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = k.Dispose() })

	fallback := &mock.MockDB{RequestID: "fallback"}
	_, err = inject.BindConstant[mock.Database](k, fallback)
	require.NoError(t, err)
	return k, fallback
}

func TestConditions(t *testing.T) {
	t.Run("WhenInjectedInto", func(t *testing.T) {
		k, fallback := newConditionKernel(t)
		special := &mock.MockDB{RequestID: "special"}
		_, err := inject.BindConstant[mock.Database](k, special,
			inject.When(inject.WhenInjectedInto(reflect.TypeFor[mock.Cache]())),
		)
		require.NoError(t, err)

		cache, err := inject.Get[*mock.MockCache](k)
		require.NoError(t, err)
		assert.Same(t, special, cache.DB)

		db, err := inject.Get[mock.Database](k)
		require.NoError(t, err)
		assert.Same(t, fallback, db)
	})

	t.Run("WhenInjectedExactlyInto", func(t *testing.T) {
		k, fallback := newConditionKernel(t)
		special := &mock.MockDB{RequestID: "special"}
		_, err := inject.BindConstant[mock.Database](k, special,
			inject.When(inject.WhenInjectedExactlyInto(reflect.TypeFor[mock.Cache]())),
		)
		require.NoError(t, err)

		cache, err := inject.Get[*mock.MockCache](k)
		require.NoError(t, err)
		assert.Same(t, fallback, cache.DB, "An interface is never the exact owner")

		_, err = k.Rebind(reflect.TypeFor[mock.Database](),
			inject.ToConstant(special),
			inject.When(inject.WhenInjectedExactlyInto(reflect.TypeFor[*mock.MockCache]())),
		)
		require.NoError(t, err)

		cache, err = inject.Get[*mock.MockCache](k)
		require.NoError(t, err)
		assert.Same(t, special, cache.DB)
	})

	t.Run("WhenParentNamed", func(t *testing.T) {
		k, fallback := newConditionKernel(t)
		special := &mock.MockDB{RequestID: "special"}
		_, err := inject.BindConstant[mock.Database](k, special,
			inject.When(inject.WhenParentNamed("special")),
		)
		require.NoError(t, err)
		_, err = inject.BindToSelf[*mock.MockCache](k, inject.WithName("special"))
		require.NoError(t, err)

		cache, err := inject.GetNamed[*mock.MockCache](k, "special")
		require.NoError(t, err)
		assert.Same(t, special, cache.DB)

		handler := &mock.Handler{}
		_, err = inject.Bind[mock.Logger, *mock.ConsoleLogger](k)
		require.NoError(t, err)
		_, err = inject.BindConstant[mock.Database](k, &mock.MockDB{},
			inject.WithName("primary"),
			inject.When(inject.WhenTargetNamed("Primary")),
		)
		require.NoError(t, err)
		require.NoError(t, k.Inject(handler))
		assert.Same(t, fallback, handler.DB)
	})

	t.Run("WhenAnyAncestorNamed", func(t *testing.T) {
		k, err := inject.New()
		require.NoError(t, err)
		defer k.Dispose()

		_, err = inject.Bind[mock.DeepService1, *mock.DeepImpl1](k, inject.WithName("root"))
		require.NoError(t, err)
		_, err = inject.Bind[mock.DeepService2, *mock.DeepImpl2](k)
		require.NoError(t, err)
		_, err = inject.Bind[mock.DeepService3, *mock.DeepImpl3](k)
		require.NoError(t, err)
		_, err = inject.BindConstant[mock.DeepService3](k, &mock.DeepImpl3{Value: "special"},
			inject.When(inject.WhenAnyAncestorNamed("root")),
		)
		require.NoError(t, err)
		require.NoError(t, k.RegisterConstructor(mock.NewDeepImpl1))
		require.NoError(t, k.RegisterConstructor(mock.NewDeepImpl2))
		require.NoError(t, k.RegisterConstructor(mock.NewDeepImpl3))

		svc1, err := inject.Get[mock.DeepService1](k)
		require.NoError(t, err)
		assert.Equal(t, "special", svc1.GetService2().GetService3().GetValue())

		svc2, err := inject.Get[mock.DeepService2](k)
		require.NoError(t, err)
		assert.Equal(t, "deep", svc2.GetService3().GetValue())
	})
}
