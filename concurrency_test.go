package inject_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/centraunit/inject"
	"github.com/centraunit/inject/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentResolution(t *testing.T) {
	t.Run("SingletonIsBuiltOnce", func(t *testing.T) {
		k, err := inject.New()
		require.NoError(t, err)
		defer k.Dispose()

		counter := &mock.Counter{}
		_, err = inject.BindConstant(k, counter)
		require.NoError(t, err)
		_, err = inject.BindToSelf[*mock.SlowSingleton](k, inject.InSingletonScope())
		require.NoError(t, err)
		require.NoError(t, k.RegisterConstructor(mock.NewSlowSingleton))

		const workers = 32
		results := make([]*mock.SlowSingleton, workers)
		errs := make([]error, workers)
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				results[i], errs[i] = inject.Get[*mock.SlowSingleton](k)
			}(i)
		}
		close(start)
		wg.Wait()

		for i := 0; i < workers; i++ {
			require.NoError(t, errs[i])
			assert.Same(t, results[0], results[i])
		}
		assert.Equal(t, int64(1), counter.Constructed.Load(), "Singleton should be constructed once")
		assert.Equal(t, int64(1), counter.Initialized.Load(), "Singleton should be activated once")
	})

	t.Run("RequestScopePerGoroutine", func(t *testing.T) {
		k, err := inject.New()
		require.NoError(t, err)
		defer k.Dispose()

		_, err = inject.BindToSelf[*mock.MockDB](k, inject.InRequestScope())
		require.NoError(t, err)

		const requests = 16
		instances := make([][2]*mock.MockDB, requests)
		var wg sync.WaitGroup
		for i := 0; i < requests; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				scope := k.BeginScope(fmt.Sprintf("request-%d", i))
				defer scope.Release()
				a, err := inject.Get[*mock.MockDB](scope)
				assert.NoError(t, err)
				b, err := inject.Get[*mock.MockDB](scope)
				assert.NoError(t, err)
				instances[i] = [2]*mock.MockDB{a, b}
			}(i)
		}
		wg.Wait()

		seen := make(map[*mock.MockDB]bool)
		for _, pair := range instances {
			assert.Same(t, pair[0], pair[1])
			assert.False(t, seen[pair[0]], "Scopes should not share instances")
			seen[pair[0]] = true
			assert.Equal(t, 1, pair[0].DisposeCount())
		}
	})

	t.Run("SharedScope", func(t *testing.T) {
		k, err := inject.New()
		require.NoError(t, err)
		defer k.Dispose()

		_, err = inject.BindToSelf[*mock.MockDB](k, inject.InRequestScope())
		require.NoError(t, err)
		scope := k.BeginScope("shared")
		defer scope.Release()

		const workers = 16
		results := make([]*mock.MockDB, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				db, err := inject.Get[*mock.MockDB](scope)
				assert.NoError(t, err)
				results[i] = db
			}(i)
		}
		wg.Wait()

		for _, db := range results {
			assert.Same(t, results[0], db)
		}
	})

	t.Run("BindingWhileResolving", func(t *testing.T) {
		k, err := inject.New()
		require.NoError(t, err)
		defer k.Dispose()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				_, err := inject.Bind[mock.Plugin, *mock.PluginA](k, inject.WithName(fmt.Sprintf("plugin-%d", i)))
				assert.NoError(t, err)
			}(i)
			go func() {
				defer wg.Done()
				_, err := inject.GetAll[mock.Plugin](k)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		plugins, err := inject.GetAll[mock.Plugin](k)
		require.NoError(t, err)
		assert.Len(t, plugins, 8)
	})

	t.Run("PropertyCycleAcrossGoroutines", func(t *testing.T) {
		for round := 0; round < 5; round++ {
			k, err := inject.New()
			require.NoError(t, err)

			_, err = inject.BindToSelf[*peerA](k, inject.InSingletonScope())
			require.NoError(t, err)
			_, err = inject.BindToSelf[*peerB](k, inject.InSingletonScope())
			require.NoError(t, err)
			require.NoError(t, k.RegisterConstructor(func() *peerA {
				time.Sleep(10 * time.Millisecond)
				return &peerA{}
			}))
			require.NoError(t, k.RegisterConstructor(func() *peerB {
				time.Sleep(10 * time.Millisecond)
				return &peerB{}
			}))

			var a *peerA
			var b *peerB
			var errA, errB error
			done := make(chan struct{})
			go func() {
				var wg sync.WaitGroup
				wg.Add(2)
				go func() {
					defer wg.Done()
					a, errA = inject.Get[*peerA](k)
				}()
				go func() {
					defer wg.Done()
					b, errB = inject.Get[*peerB](k)
				}()
				wg.Wait()
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatalf("round %d: concurrent resolution of a property cycle did not return", round)
			}
			require.NoError(t, errA)
			require.NoError(t, errB)
			assert.Same(t, b, a.B)
			assert.Same(t, a, b.A)
			require.NoError(t, k.Dispose())
		}
	})

	t.Run("FactoryCycleAcrossGoroutines", func(t *testing.T) {
		k, err := inject.New()
		require.NoError(t, err)
		defer k.Dispose()

		_, err = inject.BindMethod(k, func(ctx *inject.Context) (*peerA, error) {
			time.Sleep(10 * time.Millisecond)
			b, err := inject.Resolve[*peerB](ctx)
			return &peerA{B: b}, err
		}, inject.InSingletonScope())
		require.NoError(t, err)
		_, err = inject.BindMethod(k, func(ctx *inject.Context) (*peerB, error) {
			time.Sleep(10 * time.Millisecond)
			a, err := inject.Resolve[*peerA](ctx)
			return &peerB{A: a}, err
		}, inject.InSingletonScope())
		require.NoError(t, err)

		var errA, errB error
		done := make(chan struct{})
		go func() {
			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, errA = inject.Get[*peerA](k)
			}()
			go func() {
				defer wg.Done()
				_, errB = inject.Get[*peerB](k)
			}()
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("concurrent resolution of a factory cycle did not return")
		}
		assert.True(t, inject.IsCyclicDependency(errA), "got %v", errA)
		assert.True(t, inject.IsCyclicDependency(errB), "got %v", errB)
	})
}

type peerA struct {
	B *peerB `inject:""`
}

type peerB struct {
	A *peerA `inject:""`
}
