package xtmconf_test

import (
	"fmt"

	"github.com/omeyang/xtmkit/pkg/config/xtmconf"
	"github.com/omeyang/xtmkit/pkg/util/xtmutex"
)

func ExampleLoadBytes() {
	data := []byte(`
mutex:
  blocking_timeout: 2
  suspending_timeout: 10
`)
	cfg, err := xtmconf.LoadBytes(data, xtmconf.FormatYAML)
	if err != nil {
		panic(err)
	}

	saved := xtmutex.CurrentDefaults()
	defer func() { _ = saved.Apply() }()

	if err := cfg.Apply(); err != nil {
		panic(err)
	}
	fmt.Println("blocking:", xtmutex.NewBlocking(0).Timeout())
	fmt.Println("suspending:", xtmutex.NewSuspending(0).Timeout())
	// Output:
	// blocking: 2s
	// suspending: 10s
}
