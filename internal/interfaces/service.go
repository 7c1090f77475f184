package interfaces

// Service is an outer surface of the daemon that can be started and
// gracefully stopped, like the HTTP interface.
type Service interface {
	Start() error
	Stop()
}
