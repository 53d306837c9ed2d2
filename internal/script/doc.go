// Package script lets Lua code consume input notifications.
//
// A script defines any of these global functions:
//
//	function on_pressed(action)      -- return true to stop propagation
//	function on_released(action)
//	function on_pointer_move(x, y)   -- return true to stop propagation
//
// and may call into the reel module:
//
//	reel.emit(text)   -- write a line to the handler's output
//	reel.log(text)    -- log at info level
//
// Only the base, table, string and math libraries are available.
package script
