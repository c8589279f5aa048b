package app

import (
	"github.com/vk/weavego/internal/registry"
	"github.com/vk/weavego/modules/bind"
	"github.com/vk/weavego/modules/classlist"
	"github.com/vk/weavego/modules/conditional"
	"github.com/vk/weavego/modules/interpolate"
	"github.com/vk/weavego/modules/let"
	"github.com/vk/weavego/modules/markdown"
	"github.com/vk/weavego/modules/rawhtml"
	"github.com/vk/weavego/modules/ref"
	"github.com/vk/weavego/modules/repeat"
	"github.com/vk/weavego/modules/spread"
)

// coreModules is the definitive list of all modules that are compiled into
// the weavego binary. Order is resolution order: the bracket modules with
// fixed names come before the generic `[name]` binding.
var coreModules = []registry.Module{
	&repeat.Module{},
	&conditional.Module{},
	&let.Module{},
	&ref.Module{},
	&spread.Module{},
	&classlist.Module{},
	&rawhtml.Module{},
	&markdown.Module{},
	&bind.Module{},
	&interpolate.Module{},
}

// CoreModules returns a copy of the built-in module list.
func CoreModules() []registry.Module {
	return append([]registry.Module(nil), coreModules...)
}
