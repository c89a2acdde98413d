package payments

type Status string

const (
	StatusNew              Status = "NEW"
	StatusOrderCreated     Status = "ORDER_CREATED"
	StatusAwaitingCallback Status = "AWAITING_CALLBACK"
	StatusVerified         Status = "VERIFIED"
	StatusRejected         Status = "REJECTED"
	StatusAbandoned        Status = "ABANDONED"
	StatusFailed           Status = "FAILED"
)

var validNext = map[Status]map[Status]bool{
	StatusNew:              {StatusOrderCreated: true, StatusFailed: true},
	StatusOrderCreated:     {StatusAwaitingCallback: true},
	StatusAwaitingCallback: {StatusVerified: true, StatusRejected: true, StatusAbandoned: true},
	StatusVerified:         {},
	StatusRejected:         {},
	StatusAbandoned:        {},
	StatusFailed:           {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusVerified, StatusRejected, StatusAbandoned, StatusFailed:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
