package interfaces

// Service is a server exposing the custody services to the outside, it's
// started once by the daemon and stopped on shutdown.
type Service interface {
	Start() error
	Stop()
}
