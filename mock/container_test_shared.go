package mock

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Core interfaces
type Database interface {
	Connect() error
	IsConnected() bool
}

type Cache interface {
	Get(key string) interface{}
}

type Logger interface {
	Log(msg string)
	Messages() []string
}

type Service interface {
	Run() string
}

// Mock implementations
type MockDB struct {
	connected atomic.Bool
	disposed  atomic.Int32
	RequestID string
}

func (m *MockDB) Connect() error {
	m.connected.Store(true)
	return nil
}

func (m *MockDB) IsConnected() bool {
	return m.connected.Load()
}

func (m *MockDB) Initialize() error {
	return m.Connect()
}

func (m *MockDB) Dispose() error {
	m.connected.Store(false)
	m.disposed.Add(1)
	return nil
}

// DisposeCount returns how many times Dispose ran.
func (m *MockDB) DisposeCount() int {
	return int(m.disposed.Load())
}

type MockCache struct {
	DB Database `inject:""`
}

func (m *MockCache) Get(key string) interface{} {
	return nil
}

// FailingDB fails to initialize.
type FailingDB struct {
	MockDB
}

func (f *FailingDB) Initialize() error {
	return errors.New("simulated initialization failure")
}

type ConsoleLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{}
}

func (l *ConsoleLogger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *ConsoleLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

type ServiceImpl struct {
	Logger Logger
}

func NewServiceImpl(logger Logger) *ServiceImpl {
	return &ServiceImpl{Logger: logger}
}

func (s *ServiceImpl) Run() string {
	s.Logger.Log("run")
	return "ok"
}

// Deep dependency chain built through constructors
type DeepService3 interface {
	GetValue() string
}

type DeepService2 interface {
	GetService3() DeepService3
}

type DeepService1 interface {
	GetService2() DeepService2
}

type DeepImpl3 struct {
	Value string
}

func NewDeepImpl3() *DeepImpl3 {
	return &DeepImpl3{Value: "deep"}
}

func (d *DeepImpl3) GetValue() string { return d.Value }

type DeepImpl2 struct {
	svc3 DeepService3
}

func NewDeepImpl2(svc3 DeepService3) *DeepImpl2 {
	return &DeepImpl2{svc3: svc3}
}

func (d *DeepImpl2) GetService3() DeepService3 { return d.svc3 }

type DeepImpl1 struct {
	svc2 DeepService2
}

func NewDeepImpl1(svc2 DeepService2) *DeepImpl1 {
	return &DeepImpl1{svc2: svc2}
}

func (d *DeepImpl1) GetService2() DeepService2 { return d.svc2 }

// Circular dependency test types
type CircularService1 interface {
	GetService2() CircularService2
}

type CircularService2 interface {
	GetService1() CircularService1
}

type CircularImpl1 struct {
	svc2 CircularService2
}

func NewCircularImpl1(svc2 CircularService2) *CircularImpl1 {
	return &CircularImpl1{svc2: svc2}
}

func (i *CircularImpl1) GetService2() CircularService2 { return i.svc2 }

type CircularImpl2 struct {
	svc1 CircularService1
}

func NewCircularImpl2(svc1 CircularService1) *CircularImpl2 {
	return &CircularImpl2{svc1: svc1}
}

func (i *CircularImpl2) GetService1() CircularService1 { return i.svc1 }

// SelfRef needs itself to be constructed.
type SelfRef struct {
	Self *SelfRef
}

func NewSelfRef(self *SelfRef) *SelfRef {
	return &SelfRef{Self: self}
}

// Property cycle: each side is injected into the other after construction.
type PropertyCycleA struct {
	B *PropertyCycleB `inject:""`
}

type PropertyCycleB struct {
	A *PropertyCycleA `inject:""`
}

// Recorder collects lifecycle events in order.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) Record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// LifecycleService records every lifecycle hook.
type LifecycleService struct {
	Recorder *Recorder `inject:""`
	Name     string
}

func (l *LifecycleService) InjectName(r *Recorder) {
	r.Record("method")
}

func (l *LifecycleService) Initialize() error {
	l.Recorder.Record("initialize")
	return nil
}

func (l *LifecycleService) Start() error {
	l.Recorder.Record("start")
	return nil
}

func (l *LifecycleService) Stop() error {
	l.Recorder.Record("stop")
	return nil
}

func (l *LifecycleService) Dispose() error {
	l.Recorder.Record("dispose")
	return nil
}

// Plugins for multi-binding tests
type Plugin interface {
	Name() string
}

type PluginA struct{}

func (PluginA) Name() string { return "a" }

type PluginB struct{}

func (PluginB) Name() string { return "b" }

type PluginHost struct {
	Plugins []Plugin `inject:""`
}

// Field and method injection
type Handler struct {
	DB       Database `inject:""`
	Cache    Cache    `inject:"optional"`
	Primary  Database `inject:"name=primary"`
	Ignored  Database
	Skipped  Database `inject:"-"`
	logger   Logger
	Injected int
}

func (h *Handler) InjectLogger(l Logger) {
	h.logger = l
	h.Injected++
}

func (h *Handler) Logger() Logger { return h.logger }

// Constructor selection
type Widget struct {
	Via    string
	Logger Logger
	DB     Database
}

func NewWidget() *Widget {
	return &Widget{Via: "none"}
}

func NewWidgetWithLogger(l Logger) *Widget {
	return &Widget{Via: "logger", Logger: l}
}

func NewWidgetWithBoth(l Logger, db Database) *Widget {
	return &Widget{Via: "both", Logger: l, DB: db}
}

func NewWidgetFailing() (*Widget, error) {
	return nil, errors.New("widget constructor failed")
}

func NewWidgetPanicking() *Widget {
	panic("widget constructor panicked")
}

// Counter counts constructions and activations across goroutines.
type Counter struct {
	Constructed atomic.Int64
	Initialized atomic.Int64
}

type SlowSingleton struct {
	counter *Counter
	ID      int64
}

// NewSlowSingleton takes long enough for concurrent resolutions to overlap.
func NewSlowSingleton(c *Counter) *SlowSingleton {
	id := c.Constructed.Add(1)
	time.Sleep(20 * time.Millisecond)
	return &SlowSingleton{counter: c, ID: id}
}

func (s *SlowSingleton) Initialize() error {
	s.counter.Initialized.Add(1)
	time.Sleep(10 * time.Millisecond)
	return nil
}

// Generic repository
type User struct {
	Name string
}

type Order struct {
	ID int
}

type Repository[T any] interface {
	Save(item T) error
	All() []T
}

type MemoryRepository[T any] struct {
	mu    sync.Mutex
	items []T
}

func NewMemoryRepository[T any]() *MemoryRepository[T] {
	return &MemoryRepository[T]{}
}

func (r *MemoryRepository[T]) Save(item T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
	return nil
}

func (r *MemoryRepository[T]) All() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.items...)
}

func (r *MemoryRepository[T]) String() string {
	return fmt.Sprintf("memory repository of %d items", len(r.All()))
}
