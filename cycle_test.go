package inject_test

import (
	"errors"
	"testing"

	"github.com/centraunit/inject"
	"github.com/centraunit/inject/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCyclicDependencies(t *testing.T) {
	t.Run("SelfReference", func(t *testing.T) {
		k, err := inject.New()
		require.NoError(t, err)
		defer k.Dispose()
		require.NoError(t, k.RegisterConstructor(mock.NewSelfRef))

		_, err = inject.Get[*mock.SelfRef](k)
		assert.True(t, inject.IsCyclicDependency(err))

		var cycErr *inject.CyclicDependencyError
		require.True(t, errors.As(err, &cycErr))
		assert.Equal(t, []string{"*mock.SelfRef", "*mock.SelfRef"}, cycErr.Path)
	})

	t.Run("ConstructorCycle", func(t *testing.T) {
		k, err := inject.New()
		require.NoError(t, err)
		defer k.Dispose()

		_, err = inject.Bind[mock.CircularService1, *mock.CircularImpl1](k)
		require.NoError(t, err)
		_, err = inject.Bind[mock.CircularService2, *mock.CircularImpl2](k)
		require.NoError(t, err)
		require.NoError(t, k.RegisterConstructor(mock.NewCircularImpl1))
		require.NoError(t, k.RegisterConstructor(mock.NewCircularImpl2))

		_, err = inject.Get[mock.CircularService1](k)
		var cycErr *inject.CyclicDependencyError
		require.True(t, errors.As(err, &cycErr))
		assert.Equal(t, []string{
			"mock.CircularService1", "mock.CircularService2", "mock.CircularService1",
		}, cycErr.Path)
		assert.Contains(t, err.Error(), "mock.CircularService1 -> mock.CircularService2")
	})

	t.Run("SingletonPropertyCycle", func(t *testing.T) {
		k, err := inject.New()
		require.NoError(t, err)
		defer k.Dispose()

		_, err = inject.BindToSelf[*mock.PropertyCycleA](k, inject.InSingletonScope())
		require.NoError(t, err)
		_, err = inject.BindToSelf[*mock.PropertyCycleB](k, inject.InSingletonScope())
		require.NoError(t, err)

		a, err := inject.Get[*mock.PropertyCycleA](k)
		require.NoError(t, err)
		require.NotNil(t, a.B)
		assert.Same(t, a, a.B.A, "Property cycles between singletons close on the cached instance")

		b, err := inject.Get[*mock.PropertyCycleB](k)
		require.NoError(t, err)
		assert.Same(t, a.B, b)
	})

	t.Run("TransientPropertyCycle", func(t *testing.T) {
		k, err := inject.New()
		require.NoError(t, err)
		defer k.Dispose()

		_, err = inject.Get[*mock.PropertyCycleA](k)
		assert.True(t, inject.IsCyclicDependency(err))
	})

	t.Run("DepthLimit", func(t *testing.T) {
		settings := inject.DefaultSettings()
		settings.MaxResolutionDepth = 1
		k, err := inject.New(inject.WithSettings(settings))
		require.NoError(t, err)
		defer k.Dispose()

		_, err = inject.Bind[mock.DeepService3, *mock.DeepImpl3](k)
		require.NoError(t, err)
		_, err = inject.Bind[mock.DeepService2, *mock.DeepImpl2](k)
		require.NoError(t, err)
		_, err = inject.Bind[mock.DeepService1, *mock.DeepImpl1](k)
		require.NoError(t, err)
		require.NoError(t, k.RegisterConstructor(mock.NewDeepImpl1))
		require.NoError(t, k.RegisterConstructor(mock.NewDeepImpl2))
		require.NoError(t, k.RegisterConstructor(mock.NewDeepImpl3))

		_, err = inject.Get[mock.DeepService2](k)
		assert.NoError(t, err)
		_, err = inject.Get[mock.DeepService1](k)
		assert.True(t, inject.IsCyclicDependency(err))
	})

	t.Run("FactoryResolvesItsOwnSingleton", func(t *testing.T) {
		k, err := inject.New()
		require.NoError(t, err)
		defer k.Dispose()

		_, err = inject.BindMethod(k, func(*inject.Context) (*mock.MockDB, error) {
			_, err := inject.Get[*mock.MockDB](k)
			return &mock.MockDB{}, err
		}, inject.InSingletonScope())
		require.NoError(t, err)

		_, err = inject.Get[*mock.MockDB](k)
		assert.True(t, inject.IsCyclicDependency(err), "got %v", err)
	})
}
