package entities

// BackendStatus доступность удаленного сервиса сжатия
type BackendStatus int

const (
	BackendChecking BackendStatus = iota
	BackendOnline
	BackendOffline
)

func (s BackendStatus) String() string {
	switch s {
	case BackendOnline:
		return "online"
	case BackendOffline:
		return "offline"
	default:
		return "checking"
	}
}
