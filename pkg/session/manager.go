package session

import (
	"fmt"
	"sync"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/chazu/mechtrainer/pkg/course"
	"github.com/chazu/mechtrainer/pkg/geometry"
	"github.com/chazu/mechtrainer/pkg/kernel"
	"github.com/sirupsen/logrus"
)

// Manager switches between course modules. At most one session and one
// geometry cache are alive; the outgoing pair is torn down before the
// incoming one is built.
type Manager struct {
	mu       sync.Mutex
	registry *course.Registry
	kernel   kernel.Kernel
	opts     Options
	builds   geometry.BuildObserver
	log      *logrus.Entry

	current *Session
	cache   *geometry.Cache
}

// NewManager returns a manager over the courses of reg. builds may be nil.
func NewManager(reg *course.Registry, k kernel.Kernel, opts Options, builds geometry.BuildObserver, log *logrus.Entry) *Manager {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{registry: reg, kernel: k, opts: opts, builds: builds, log: log}
}

// Courses lists the selectable courses.
func (m *Manager) Courses() []*catalog.Course {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.List()
}

// Add registers a course.
func (m *Manager) Add(c *catalog.Course) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry.Add(c)
}

// Select tears down the current module and starts a fresh session on
// moduleID, even when it is the module already selected.
func (m *Manager) Select(moduleID string) (*Session, *geometry.Cache, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.registry.Get(moduleID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownModule, moduleID)
	}

	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
	if m.cache != nil {
		m.cache.Reset()
		m.cache = nil
	}

	cache := geometry.NewCache(m.kernel, m.log)
	if m.builds != nil {
		cache.SetObserver(m.builds)
	}
	m.current = New(c, m.opts, m.log)
	m.cache = cache
	m.current.log.WithField("parts", c.Catalog.Len()).Info("module selected")
	return m.current, m.cache, nil
}

// Current returns the live session and its geometry cache.
func (m *Manager) Current() (*Session, *geometry.Cache, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, nil, ErrNoSession
	}
	return m.current, m.cache, nil
}
