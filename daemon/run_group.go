package daemon

import (
	"log"
	"os"
	"sync"

	"github.com/oklog/run"
)

// RunStop is something that runs until stopped, like the daemon or its
// signal handler
type RunStop interface {
	Run() error
	Stop(error)
}

// RunGroup runs a set of RunStops and stops them all when the first one
// returns. It wraps run.Group, adding Stop() so the group itself can be a
// member of another group.
type RunGroup struct {
	stop     chan struct{}
	stopOnce sync.Once
	group    run.Group
	log      *log.Logger
}

// NewRunGroup creates a run group. name is the prefix of its log messages.
func NewRunGroup(name string) *RunGroup {
	return &RunGroup{
		stop: make(chan struct{}),
		log:  log.New(os.Stderr, name+": ", log.LstdFlags|log.Lmsgprefix),
	}
}

// SetLogger replaces the default logger
func (g *RunGroup) SetLogger(l *log.Logger) {
	g.log = l
}

// Add a RunStop to the group
func (g *RunGroup) Add(r RunStop) {
	g.group.Add(r.Run, r.Stop)
}

// AddFunc adds an actor given as functions, like run.Group.Add
func (g *RunGroup) AddFunc(execute func() error, interrupt func(error)) {
	g.group.Add(execute, interrupt)
}

// Run blocks until one member returns or Stop is called, then stops the
// other members. It returns the error of the member that returned first.
// All members must be added before Run is called.
func (g *RunGroup) Run() error {
	g.group.Add(func() error {
		<-g.stop
		return nil
	}, func(_ error) {
		g.Stop(nil)
	})

	err := g.group.Run()
	if err != nil {
		g.log.Println("Stopped, reason: ", err)
	} else {
		g.log.Println("Stopped")
	}
	return err
}

// Stop the group. It may be called more than once.
func (g *RunGroup) Stop(_ error) {
	g.stopOnce.Do(func() { close(g.stop) })
}
