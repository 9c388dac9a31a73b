// Package lua hosts the plugin inside a Lua-scripted editor.
//
// The host script provides a global "editor" table; the package installs a
// "yankflash" module the script calls from its TextYankPost handler:
//
//	editor = {
//	    event    = function() return { operator = "y", regcontents = { "abc" }, regtype = "v" } end,
//	    cursor   = function() return 5, 3 end,
//	    getline  = function(n) return lines[n] end,
//	    get_var  = function(name) return vars[name] end,
//	    bufnr    = function() return 1 end,
//	    highlight = function(group, bg, fg) end,
//	    decorate = function(bufnr, regions) end,
//	    clear    = function(bufnr, first, last) end,
//	}
//
//	local ok, err = yankflash.yanked()
//
// gopher-lua states are not goroutine-safe. Every entry into Lua goes through
// State, which serialises access; deferred clears wait for the script to
// return before running.
package lua
