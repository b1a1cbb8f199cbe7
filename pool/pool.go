package pool

import (
	"sync"

	"golang.org/x/sync/syncmap"
)

// A Group tracks a set of workers and collects whatever they feed into
// its sinks. Fetch may only be called after Wait returned.
type Group interface {
	MakeSink() chan interface{}
	Add(int)
	Done()
	Wait()
	Fetch(chan interface{}) []interface{}
}

// NewGroup creates an empty worker group
func NewGroup() Group {
	return &defaultGroup{
		wg:      new(sync.WaitGroup),
		sinks:   new(sync.WaitGroup),
		results: new(syncmap.Map),
	}
}

type defaultGroup struct {
	wg      *sync.WaitGroup
	sinks   *sync.WaitGroup
	results *syncmap.Map
}

func (d *defaultGroup) MakeSink() (sink chan interface{}) {
	sink = make(chan interface{})
	d.sinks.Add(1)
	// register before the collector runs so Wait always finds the sink
	d.results.Store(sink, []interface{}(nil))
	go func() {
		var collected []interface{}
		for r := range sink {
			collected = append(collected, r)
		}
		d.results.Store(sink, collected)
		d.sinks.Done()
	}()
	return
}

func (d *defaultGroup) Add(delta int) {
	d.wg.Add(delta)
}

func (d *defaultGroup) Done() {
	d.wg.Done()
}

func (d *defaultGroup) Wait() {
	d.wg.Wait()
	d.results.Range(func(key, _ interface{}) bool {
		if sink, ok := key.(chan interface{}); ok {
			close(sink)
		}
		return true
	})
	d.sinks.Wait()
}

// Fetch must be called after Wait
func (d *defaultGroup) Fetch(sink chan interface{}) []interface{} {
	v, _ := d.results.Load(sink)
	if r, ok := v.([]interface{}); ok {
		return r
	}
	return nil
}

// Map feeds every job to fn using at most workers goroutines and returns
// the collected outcomes. The order of the outcomes is not guaranteed,
// only that all jobs completed.
func Map(workers int, jobs []interface{}, fn func(interface{}) interface{}) []interface{} {
	if workers < 1 {
		workers = 1
	}

	grp := NewGroup()
	sink := grp.MakeSink()
	feed := make(chan interface{})

	for i := 0; i < workers; i++ {
		grp.Add(1)
		go func() {
			defer grp.Done()
			for job := range feed {
				sink <- fn(job)
			}
		}()
	}

	for _, job := range jobs {
		feed <- job
	}
	close(feed)
	grp.Wait()

	return grp.Fetch(sink)
}
