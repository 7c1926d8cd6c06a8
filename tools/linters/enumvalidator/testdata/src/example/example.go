package example

type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

type ForwardStatus string

const (
	ForwardStatusPending   ForwardStatus = "pending"
	ForwardStatusForwarded ForwardStatus = "forwarded"
)

// Label has no declared constants, so it is not an enum.
type Label string

type Issue struct {
	Key    string
	Change ChangeKind
	Label  Label
}

type EventRecord struct {
	ForwardStatus ForwardStatus
}

func bad() {
	i := &Issue{}
	i.Change = "upsert" // want "enum field Change assigned string literal"

	r := &EventRecord{}
	r.ForwardStatus = "done" // want "enum field ForwardStatus assigned string literal"

	_ = Issue{Change: "create"} // want "enum field Change assigned string literal"
}

func good() {
	i := &Issue{}
	i.Change = ChangeUpdate // OK: using constant
	i.Key = "ACME-1"        // OK: plain string field
	i.Label = "backend"     // OK: no constants declared for Label

	r := &EventRecord{ForwardStatus: ForwardStatusPending}
	r.ForwardStatus = ForwardStatusForwarded
}

func alsoGood() {
	// OK: variable, not literal
	change := ChangeDelete
	i := Issue{Change: change}
	_ = i
}
