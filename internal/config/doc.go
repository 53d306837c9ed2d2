// Package config loads reel's configuration.
//
// Configuration comes from a TOML or YAML file, chosen by extension, layered
// over DefaultConfig. Environment variables with the REEL_ prefix and command
// line flags are applied on top through Override.
//
// Example TOML:
//
//	[log]
//	level = "debug"
//
//	[input]
//	mode = "unique"
//	actions = ["fire", "aim", "jump"]
//
//	[[input.bindings]]
//	key = "MouseLeft"
//	action = "fire"
//
//	[replay]
//	lag = "50ms"
//	step = "16ms"
package config
