// Package cmd is the transport-agnostic command core: a command has a name, a
// description and Run(ctx, invocation). Adapters (the Discord message router, the
// CLI listing) decide how tokens reach the registry and what Data carries.
package cmd

import "context"

// Invocation is the input handed to a single command run. Token is the word the
// user typed (after prefix stripping and case folding), Args the whitespace split
// remainder. Data holds the adapter context, e.g. *command.MessageContext.
type Invocation struct {
	Token string
	Args  []string
	Data  interface{}
}

// Command is identity plus execution. Permissions, categories and transport
// details are optional interfaces implemented next to it.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Aliaser is implemented by commands reachable under alternate tokens.
type Aliaser interface {
	Aliases() []string
}

// Usager is implemented by commands that document their arguments.
type Usager interface {
	Usage() string
}

// AliasesOf returns the aliases declared by the innermost command, or nil.
func AliasesOf(c Command) []string {
	if a, ok := Root(c).(Aliaser); ok {
		return a.Aliases()
	}
	return nil
}

// UsageOf returns the usage line declared by the innermost command, or "".
func UsageOf(c Command) string {
	if u, ok := Root(c).(Usager); ok {
		return u.Usage()
	}
	return ""
}
