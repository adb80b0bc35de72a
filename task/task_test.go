package task

import (
	"testing"

	"github.com/factorysh/selftest/status"
	"github.com/stretchr/testify/assert"
)

func TestRegistryOrder(t *testing.T) {
	var r Registry
	r.Add("a", func(*status.Record) error { return nil })
	r.Add("b", func(*status.Record) error { return nil })
	r.Add("a", func(*status.Record) error { return nil })

	tasks := r.Tasks()
	assert.Len(t, tasks, 3)
	assert.Equal(t, "a", tasks[0].Name)
	assert.Equal(t, "b", tasks[1].Name)
	// duplicate names are fine, both run
	assert.Equal(t, "a", tasks[2].Name)
}

func TestRegistryHooks(t *testing.T) {
	var r Registry
	assert.Nil(t, r.Pretest())
	assert.Nil(t, r.Posttest())

	first := 0
	r.SetPretest(func() { first = 1 })
	r.SetPretest(func() { first = 2 })
	r.Pretest()()
	// last write wins
	assert.Equal(t, 2, first)
}
