package memstore

import (
	"fmt"

	"github.com/dvbstreamer/control/pkg/server"
)

// Commands is a minimal server.CommandInterpreter for the QUOT passthrough
// channel: "help" lists the registered verbs, anything else reports
// unrecognised. Real command verbs are registered with Register.
type Commands struct {
	verbs map[string]func(sink server.PrintSink) error
}

// NewCommands returns an interpreter with only "help" registered.
func NewCommands() *Commands {
	c := &Commands{verbs: make(map[string]func(sink server.PrintSink) error)}
	c.Register("help", c.printHelp)
	return c
}

// Register adds or replaces a command verb.
func (c *Commands) Register(name string, fn func(sink server.PrintSink) error) {
	c.verbs[name] = fn
}

func (c *Commands) Execute(command string, sink server.PrintSink) error {
	fn, ok := c.verbs[command]
	if !ok {
		return fmt.Errorf("memstore: unrecognised command %q", command)
	}
	return fn(sink)
}

func (c *Commands) printHelp(sink server.PrintSink) error {
	sink.Printf("available commands:")
	for name := range c.verbs {
		sink.Printf(" %s", name)
	}
	return nil
}
