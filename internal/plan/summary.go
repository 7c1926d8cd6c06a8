package plan

import "captainhub.app/relay/internal/domain"

// Summary counts merged board entries by the change they carry.
type Summary struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

func (s Summary) Staged() int {
	return s.Created + s.Updated + s.Deleted
}

func Summarize(merged []domain.MergedIssue) Summary {
	var s Summary
	for _, m := range merged {
		switch m.Change {
		case domain.ChangeCreate:
			s.Created++
		case domain.ChangeUpdate:
			s.Updated++
		case domain.ChangeDelete:
			s.Deleted++
		default:
			s.Unchanged++
		}
	}
	return s
}
