// Package vimchan connects the plugin to Vim over a job channel in JSON mode.
//
// Vim starts yankflash as a job and talks to it over stdin/stdout:
//
//	let g:yankflash_job = job_start(['yankflash', 'serve'], {'mode': 'json'})
//	let g:yankflash_channel = job_getchannel(g:yankflash_job)
//
// On startup the server installs a TextYankPost autocmd that calls
// ch_evalexpr(g:yankflash_channel, 'yanked'). While that request is open the
// server pulls v:event, the cursor and line text with "expr" requests, then
// highlights the yank with text properties through "call" requests.
//
// Message shapes (see :help channel-commands):
//
//	Vim -> server   [12, "yanked"]           reply [12, "ok"]
//	server -> Vim   ["expr", "getline(5)", -3]  reply [-3, "text"]
//	server -> Vim   ["call", "prop_remove", [...], -4]
//	server -> Vim   ["ex", "highlight ..."]
package vimchan
