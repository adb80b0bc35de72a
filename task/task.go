package task

import "github.com/factorysh/selftest/status"

// Proc is the one canonical test signature: fill a status record, return an
// error if the test blew up before it could say anything useful.
type Proc func(*status.Record) error

// Task is a named test procedure
type Task struct {
	Name string
	Proc Proc
}

// Registry keeps the ordered list of test procedures plus the optional
// pretest/posttest hooks. Insertion order is execution order, duplicate
// names are allowed.
//
// Registry is not safe for concurrent use: the owning process registers
// everything at startup, before the external trigger is reachable, and the
// list is read-only afterwards.
type Registry struct {
	tasks    []Task
	pretest  func()
	posttest func()
}

// Add appends a test procedure
func (r *Registry) Add(name string, proc Proc) {
	r.tasks = append(r.tasks, Task{Name: name, Proc: proc})
}

// SetPretest stores the hook called before the first test, last write wins
func (r *Registry) SetPretest(f func()) {
	r.pretest = f
}

// SetPosttest stores the hook called after the last test, last write wins
func (r *Registry) SetPosttest(f func()) {
	r.posttest = f
}

// Tasks lists the registered tasks, in registration order
func (r *Registry) Tasks() []Task {
	return r.tasks
}

// Pretest returns the pretest hook, nil when unset
func (r *Registry) Pretest() func() {
	return r.pretest
}

// Posttest returns the posttest hook, nil when unset
func (r *Registry) Posttest() func() {
	return r.posttest
}
