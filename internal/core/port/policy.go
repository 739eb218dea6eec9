package port

type HostPolicy interface {
	// IsAllowed reports whether sources may be fetched from host.
	IsAllowed(host string) bool
}
