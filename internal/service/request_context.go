package service

// RequestContext identifies who is acting and where. Transports build it from
// request headers or metadata and pass it into every operation.
type RequestContext struct {
	SessionUser string
	Branch      string
	// Locale is an Accept-Language style preference list.
	Locale string
}
