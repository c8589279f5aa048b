// Package hclconfig loads weavego configuration written in HCL into the
// format-agnostic config.Model.
//
// A configuration is any number of .hcl files. Each may hold a `settings`
// block, `component` blocks and `step` blocks:
//
//	settings {
//	  log_level      = "debug"
//	  frame_interval = "16ms"
//	}
//
//	component "todo-list" {
//	  template_file = "todo.html"
//	  data          = { title = "Todo" }
//	  data_file     = "todo.yaml"
//	}
//
//	step "add" {
//	  component = "todo-list"
//	  set       = { list = ["a", "b"] }
//	}
//
// File paths are relative to the file that names them. Values in `data`
// override values read from `data_file`.
package hclconfig
