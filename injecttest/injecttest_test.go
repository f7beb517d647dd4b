package injecttest_test

import (
	"testing"

	"github.com/centraunit/inject"
	"github.com/centraunit/inject/injecttest"
	"github.com/centraunit/inject/mock"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tk := injecttest.New(t)
	if tk == nil || tk.Kernel == nil {
		t.Fatal("New() returned nil")
	}
}

func TestDisposedOnCleanup(t *testing.T) {
	t.Parallel()

	var db *mock.MockDB
	t.Run("inner", func(t *testing.T) {
		tk := injecttest.New(t)
		injecttest.MustBind[mock.Database, *mock.MockDB](tk, inject.InSingletonScope())
		db = injecttest.MustGet[mock.Database](tk).(*mock.MockDB)

		if db.DisposeCount() != 0 {
			t.Error("instance should not be disposed before the test ends")
		}
	})

	if db.DisposeCount() != 1 {
		t.Errorf("DisposeCount() = %d, want 1", db.DisposeCount())
	}
}

func TestReplace(t *testing.T) {
	t.Parallel()

	tk := injecttest.New(t)
	injecttest.MustBind[mock.Logger, *mock.ConsoleLogger](tk)
	injecttest.MustBind[mock.Service, *mock.ServiceImpl](tk)
	injecttest.MustRegisterConstructor(tk, mock.NewServiceImpl)

	fake := mock.NewConsoleLogger()
	injecttest.Replace[mock.Logger](tk, fake)

	svc := injecttest.MustGet[mock.Service](tk)
	svc.Run()

	if got := fake.Messages(); len(got) != 1 || got[0] != "run" {
		t.Errorf("Messages() = %v, want [run]", got)
	}
}

func TestResolveHelpers(t *testing.T) {
	t.Parallel()

	tk := injecttest.New(t)
	injecttest.RequireNoBinding[mock.Database](tk)
	injecttest.AssertCannotResolve[mock.Database](tk)

	primary := &mock.MockDB{RequestID: "primary"}
	injecttest.MustBindConstant[mock.Database](tk, primary, inject.WithName("primary"))

	injecttest.AssertCanResolve[mock.Database](tk, inject.Named("primary"))
	if got := injecttest.MustGetNamed[mock.Database](tk, "primary"); got != mock.Database(primary) {
		t.Errorf("MustGetNamed() = %v, want %v", got, primary)
	}
}

func TestRequireScope(t *testing.T) {
	t.Parallel()

	tk := injecttest.New(t)
	injecttest.MustBind[mock.Database, *mock.MockDB](tk, inject.InRequestScope())

	scope := tk.RequireScope("test")
	a := injecttest.MustGetFrom[mock.Database](tk, scope)
	b := injecttest.MustGetFrom[mock.Database](tk, scope)
	if a != b {
		t.Error("scope should share one instance")
	}
}
