package mapper

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"captainhub.app/relay/internal/domain"
)

const (
	SourceJira        = "jira"
	UnknownAccount    = "jira-unknown"
	DefaultBodyPrefix = 512
	DefaultNormalizer = "relay-normalizer@1.0.0"

	defaultEventKind = "jira:webhook"
	classification   = "internal"
)

var htmlTag = regexp.MustCompile(`(?is)</?[a-z].*>`)

type JiraMapperConfig struct {
	Source     string
	BodyPrefix int
	Normalizer string
	Now        func() time.Time
}

// JiraEventMapper normalizes Jira webhook deliveries into unified events.
type JiraEventMapper struct {
	source     string
	bodyPrefix int
	normalizer string
	now        func() time.Time
}

func NewJiraEventMapper(cfg JiraMapperConfig) *JiraEventMapper {
	m := &JiraEventMapper{
		source:     cfg.Source,
		bodyPrefix: cfg.BodyPrefix,
		normalizer: cfg.Normalizer,
		now:        cfg.Now,
	}
	if m.source == "" {
		m.source = SourceJira
	}
	if m.bodyPrefix <= 0 {
		m.bodyPrefix = DefaultBodyPrefix
	}
	if m.normalizer == "" {
		m.normalizer = DefaultNormalizer
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

func (m *JiraEventMapper) Source() string {
	return m.source
}

func (m *JiraEventMapper) Normalize(body map[string]any) *domain.UnifiedEvent {
	issue := obj(body["issue"])
	comment := obj(body["comment"])
	if issue == nil && comment == nil {
		return nil
	}

	now := m.now().UTC()
	fields := obj(issue["fields"])
	isComment := comment != nil

	host := selfHost(issue["self"])
	if host == "" {
		host = selfHost(comment["self"])
	}
	account := host
	if account == "" {
		account = UnknownAccount
	}

	var rawTS any
	if isComment && present(comment["created"]) {
		rawTS = comment["created"]
	} else {
		rawTS = fields["updated"]
	}
	ts := parseTimestamp(rawTS, now)

	actorID, actor := actorOf(body, comment, isComment)

	var title string
	var text *string
	if isComment {
		text = plainText(comment["body"])
	} else {
		title = deref(str(fields["summary"]))
		text = plainText(fields["description"])
	}
	bodyText := deref(trimmedOrNil(text))

	issueID := deref(str(issue["id"]))
	issueKey := deref(str(issue["key"]))
	var commentID string
	if isComment {
		commentID = deref(str(comment["id"]))
	}
	changelog := obj(body["changelog"])
	changelogID := deref(str(changelog["id"]))

	thread := firstNonEmpty(issueKey, issueID)

	eventType := domain.EventTypeIssue
	if isComment {
		eventType = domain.EventTypeComment
	}

	ev := &domain.UnifiedEvent{
		SchemaVersion: domain.UESVersion,
		EventID:       EventID(m.source, account, commentID, changelogID, issueID),
		Source:        m.source,
		SourceAccount: account,
		EventType:     eventType,
		Timestamp:     formatISO(ts),
		Actor:         actor,
		Artefact: &domain.Artefact{
			Title: title,
			Body:  bodyText,
			MIME:  mimeOf(bodyText),
		},
		Refs: &domain.Refs{
			URLs:      nonEmpty(deref(str(issue["self"])), deref(str(comment["self"]))),
			Thread:    thread,
			ObjectID:  issueID,
			ObjectKey: issueKey,
			Jira: &domain.JiraRefs{
				IssueID:  issueID,
				IssueKey: issueKey,
				WebURL:   webURL(host, issueKey),
			},
		},
		Labels: reduceLabels(fields["labels"]),
		Ext: map[string]any{
			"jira": map[string]any{
				"webhook_event":         body["webhookEvent"],
				"issue_event_type_name": body["issue_event_type_name"],
				"changed_fields":        changedFields(changelog),
			},
		},
		Privacy: &domain.Privacy{Classification: classification},
		Provenance: &domain.Provenance{
			IngestedAt:      formatISO(now),
			Normalizer:      m.normalizer,
			SourceEventKind: firstNonEmpty(textAt(body, "webhookEvent"), defaultEventKind),
		},
		DedupFingerprint: Fingerprint(bodyText, firstNonEmpty(issueKey, thread), actorID, ts, m.bodyPrefix),
		ProjectKey:       ProjectKey(body),
	}
	if !isComment {
		ev.Artefact.Attachments = attachmentsOf(fields["attachment"])
	}

	compactEvent(ev)
	return ev
}

// EventID derives the stable identity of a delivery. A comment id wins over
// a changelog id, which wins over the issue id.
func EventID(source, account, commentID, changelogID, issueID string) string {
	switch {
	case commentID != "":
		return fmt.Sprintf("%s:%s:comment:%s", source, account, commentID)
	case changelogID != "":
		return fmt.Sprintf("%s:%s:changelog:%s", source, account, changelogID)
	}
	return fmt.Sprintf("%s:%s:issue:%s", source, account, firstNonEmpty(issueID, "0"))
}

// Fingerprint is the content-addressed dedup key: sha1 over the lowercased
// body prefix (in UTF-16 units), the thread, the actor and the minute-truncated timestamp.
// Retried deliveries of one action within a minute collapse to one value.
func Fingerprint(body, thread, actorID string, ts time.Time, prefix int) string {
	parts := []string{
		strings.ToLower(truncateUTF16(body, prefix)),
		thread,
		actorID,
		minuteISO(ts),
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// ProjectKey resolves the tracker project of a delivery: the explicit
// project key when present, else the prefix of the issue key.
func ProjectKey(body map[string]any) string {
	issue := obj(body["issue"])
	fields := obj(issue["fields"])
	if key := textAt(obj(fields["project"]), "key"); key != "" {
		return key
	}
	issueKey := firstNonEmpty(textAt(issue, "key"), textAt(fields, "key"))
	if prefix, _, found := strings.Cut(issueKey, "-"); found {
		return prefix
	}
	return ""
}

func actorOf(body, comment map[string]any, isComment bool) (string, *domain.Actor) {
	var raw map[string]any
	if isComment {
		raw = obj(comment["author"])
	}
	if raw == nil {
		raw = obj(body["user"])
	}
	if raw == nil {
		raw = obj(body["actor"])
	}
	if raw == nil {
		return "", nil
	}
	id := textAt(raw, "accountId", "name")
	return id, &domain.Actor{
		ID:      id,
		Display: textAt(raw, "displayName", "name"),
		Email:   textAt(raw, "emailAddress"),
	}
}

func selfHost(v any) string {
	s := deref(str(v))
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func webURL(host, issueKey string) string {
	if host == "" || issueKey == "" {
		return ""
	}
	return "https://" + host + "/browse/" + issueKey
}

func mimeOf(body string) string {
	if htmlTag.MatchString(body) {
		return "text/html"
	}
	return "text/plain"
}

func changedFields(changelog map[string]any) []string {
	items, _ := changelog["items"].([]any)
	var names []string
	for _, item := range items {
		if name := textAt(obj(item), "field"); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func attachmentsOf(v any) []domain.Attachment {
	items, _ := v.([]any)
	var out []domain.Attachment
	for _, item := range items {
		a := obj(item)
		if a == nil {
			continue
		}
		size, _ := int64Of(a["size"])
		att := domain.Attachment{
			ID:       textAt(a, "id"),
			Filename: textAt(a, "filename"),
			MIME:     textAt(a, "mimeType"),
			URL:      textAt(a, "content", "self"),
			Size:     size,
		}
		if att != (domain.Attachment{}) {
			out = append(out, att)
		}
	}
	return out
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
