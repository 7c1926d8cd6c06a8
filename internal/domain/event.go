package domain

// EventType is the UES classification of an inbound tracker activity.
type EventType string

const (
	EventTypeIssue   EventType = "issue"
	EventTypeComment EventType = "comment"
)

// UESVersion is the schema_version stamped on every unified event.
const UESVersion = "1.0"

// UnifiedEvent is the canonical (UES) shape every inbound webhook delivery is
// normalized into before persistence. It is sparse on the wire: empty values
// are stripped by the normalizer, so every member is optional.
type UnifiedEvent struct {
	SchemaVersion    string         `json:"schema_version,omitempty"`
	EventID          string         `json:"event_id,omitempty"`       // stable across redundant deliveries
	Source           string         `json:"source,omitempty"`         // originating system, e.g. "jira"
	SourceAccount    string         `json:"source_account,omitempty"` // tenant host
	EventType        EventType      `json:"event_type,omitempty"`
	Timestamp        string         `json:"timestamp,omitempty"` // ISO-8601 UTC
	Actor            *Actor         `json:"actor,omitempty"`
	Artefact         *Artefact      `json:"artefact,omitempty"`
	Refs             *Refs          `json:"refs,omitempty"`
	Labels           []string       `json:"labels,omitempty"`
	Ext              map[string]any `json:"ext,omitempty"`
	Privacy          *Privacy       `json:"privacy,omitempty"`
	Provenance       *Provenance    `json:"provenance,omitempty"`
	DedupFingerprint string         `json:"dedup_fingerprint,omitempty"`

	// ProjectKey routes the event to its owning workspace. Not part of the UES document.
	ProjectKey string `json:"-"`
}

type Actor struct {
	ID      string `json:"id,omitempty"`
	Display string `json:"display,omitempty"`
	Email   string `json:"email,omitempty"`
}

type Artefact struct {
	Title       string       `json:"title,omitempty"`
	Body        string       `json:"body,omitempty"`
	MIME        string       `json:"mime,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename,omitempty"`
	MIME     string `json:"mime,omitempty"`
	URL      string `json:"url,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// Refs bundles cross-system references for the event.
type Refs struct {
	URLs      []string  `json:"urls,omitempty"`
	Thread    string    `json:"thread,omitempty"`
	ObjectID  string    `json:"object_id,omitempty"`
	ObjectKey string    `json:"object_key,omitempty"`
	Jira      *JiraRefs `json:"jira,omitempty"`
}

type JiraRefs struct {
	IssueID  string `json:"issue_id,omitempty"`
	IssueKey string `json:"issue_key,omitempty"`
	WebURL   string `json:"web_url,omitempty"`
}

type Privacy struct {
	Classification string   `json:"classification,omitempty"`
	PII            []string `json:"pii,omitempty"`
}

// Provenance records how and when the event entered the system.
type Provenance struct {
	IngestedAt      string `json:"ingested_at,omitempty"`
	Normalizer      string `json:"normalizer,omitempty"`
	SourceEventKind string `json:"source_event_kind,omitempty"`
}

func (a *Actor) IsZero() bool {
	return a == nil || (a.ID == "" && a.Display == "" && a.Email == "")
}

func (a *Artefact) IsZero() bool {
	return a == nil || (a.Title == "" && a.Body == "" && a.MIME == "" && len(a.Attachments) == 0)
}

func (j *JiraRefs) IsZero() bool {
	return j == nil || (j.IssueID == "" && j.IssueKey == "" && j.WebURL == "")
}

func (r *Refs) IsZero() bool {
	return r == nil || (len(r.URLs) == 0 && r.Thread == "" && r.ObjectID == "" && r.ObjectKey == "" && r.Jira.IsZero())
}

func (p *Privacy) IsZero() bool {
	return p == nil || (p.Classification == "" && len(p.PII) == 0)
}

func (p *Provenance) IsZero() bool {
	return p == nil || (p.IngestedAt == "" && p.Normalizer == "" && p.SourceEventKind == "")
}
