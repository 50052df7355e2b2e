package runtimeconfig

type argHookCommand struct{}

// name implements argDef.
func (a argHookCommand) name() string {
	return "hookcommand"
}

// usage implements argDef.
func (a argHookCommand) usage() string {
	return `A command to run for each reported file event.

The command receives the affected path and the event kind in its
environment. When omitted, events are only logged.`
}
