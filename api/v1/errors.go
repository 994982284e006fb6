package v1

var (
	// common errors
	ErrSuccess             = newError(0, "ok")
	ErrBadRequest          = newError(400, "bad request")
	ErrUnauthorized        = newError(401, "unauthorized")
	ErrNotFound            = newError(404, "not found")
	ErrTooManyRequests     = newError(429, "too many requests")
	ErrInternalServerError = newError(500, "internal server error")

	// account errors
	ErrEmailAlreadyUse    = newError(1001, "The email is already in use.")
	ErrUsernameAlreadyUse = newError(1002, "The username is already in use.")
	ErrAccountLocked      = newError(1003, "account temporarily locked")

	// deployment errors
	ErrNoAvailableNodes  = newError(2001, "no available nodes for VM deployment")
	ErrTemplateNotOnNode = newError(2002, "template is not registered on the target node")
	ErrTemplateInactive  = newError(2003, "template not found or inactive")
	ErrNodeNotFound      = newError(2004, "node not found")
	ErrStorageNotFound   = newError(2005, "storage not found")
	ErrBackendFailure    = newError(2006, "proxmox backend call failed")
	ErrInvalidPolicy     = newError(2007, "invalid node selection policy")
)
