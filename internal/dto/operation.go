package dto

// Operation selects which validation rules apply to a request message.
type Operation int

const (
	OpAdd Operation = iota
	OpUpdate
	OpDelete
	OpGet
	OpQuery
	OpCreate
)

func (o Operation) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpGet:
		return "get"
	case OpQuery:
		return "query"
	case OpCreate:
		return "create"
	}
	return "unknown"
}

// Options carries caller-context modifiers that adjust how a request is
// validated.
type Options struct {
	// IsAPICall marks an externally-facing request; page sizes are clamped to
	// the ledger rules limit.
	IsAPICall bool
}
