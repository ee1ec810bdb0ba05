package app

import (
	"github.com/vk/jobgate/internal/registry"
	"github.com/vk/jobgate/modules/socketio"
	"github.com/vk/jobgate/modules/webhook"
)

// coreModules are the reporter modules compiled into the default binary.
var coreModules = []registry.Module{
	&socketio.Module{},
	&webhook.Module{},
}
