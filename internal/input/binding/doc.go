// Package binding maps raw inputs to logical actions and routes them to handlers.
//
// # Key Concepts
//
// Binding: Maps one raw key to one logical action.
//
// Table: An immutable set of bindings. A raw key appears at most once; several
// keys may share an action.
//
// Mode: The simultaneous binding mode, governing how many logical actions may
// be active at once.
//
// Router: Tracks which raw keys and actions are held and notifies handlers.
//
// # Simultaneous Binding Modes
//
//	ModeUnique  activating an action first releases any other active action
//	            that was triggered through the same raw channel class
//	ModeAll     any number of distinct actions may be active together
//	ModeSingle  activating an action releases every other active action
//
// # Dispatch
//
// Handlers form an explicit ordered list. A press is offered to each handler
// in order until one returns true. Every handler that was offered the press
// receives the matching release, whatever it returned, so press and release
// notifications always come in pairs.
//
// # Usage
//
//	table, err := binding.NewTable(action.Domain{},
//	    binding.NewBinding(key.MouseLeft, "primary"),
//	    binding.NewBinding(key.KeyZ, "primary"),
//	)
//	router := binding.NewRouter(table, binding.ModeUnique)
//	router.AddHandler(consumer)
//
//	router.KeyDown(key.MouseLeft) // consumer.OnPressed("primary")
//	router.KeyUp(key.MouseLeft)   // consumer.OnReleased("primary")
package binding
