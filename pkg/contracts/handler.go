package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

type multiHandler []Handler

func (m multiHandler) RegisterRoutes(router *httprouter.Router) {
	for _, h := range m {
		h.RegisterRoutes(router)
	}
}

// Compose bundles several handlers into one so a service binary can mount
// more than one domain on its router.
func Compose(handlers ...Handler) Handler {
	return multiHandler(handlers)
}
