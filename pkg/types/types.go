package types

import (
	"encoding/json"
	"strings"
	"time"
)

// Credentials is a pre-resolved access capability for the object store. The
// namespace layer never acquires credentials itself; callers obtain them from
// an identity provider and thread them in explicitly. A missing or expired
// credential surfaces as ACCESS_DENIED from the store.
type Credentials struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token,omitempty"`
}

// Entry is one object returned by a listing. A trailing slash marks a folder
// marker: a zero-byte object written purely so enumeration UIs can show an
// otherwise-implicit prefix. Markers are never authoritative; tree structure
// is always re-derived from file entries.
type Entry struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag,omitempty"`
}

// IsFolderMarker reports whether the entry is a folder marker rather than a file.
func (e Entry) IsFolderMarker() bool {
	return strings.HasSuffix(e.Key, "/")
}

// ListPage is one page of a prefix listing.
type ListPage struct {
	Entries        []Entry  `json:"entries"`
	CommonPrefixes []string `json:"common_prefixes,omitempty"`
	NextToken      string   `json:"next_token,omitempty"`
}

// KeyError records a per-key failure from a batch operation.
type KeyError struct {
	Key string `json:"key"`
	Err error  `json:"-"`
}

// ProjectDocument is the JSON document persisted at
// <projectRoot>/project.json. Template-sourced fields the layer does not
// recognize are preserved in Extra and survive updates.
type ProjectDocument struct {
	ID        string    `json:"-"`
	Name      string    `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	SheetURL  string    `json:"-"`
	S3Prefix  string    `json:"-"`
	PlanURL   string    `json:"-"`

	Extra map[string]json.RawMessage `json:"-"`
}

type projectDocumentKnown struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	SheetURL  string    `json:"sheet_url"`
	S3Prefix  string    `json:"s3_prefix"`
	PlanURL   string    `json:"plan_url,omitempty"`
}

var knownProjectFields = map[string]bool{
	"id": true, "name": true, "created_at": true, "updated_at": true,
	"sheet_url": true, "s3_prefix": true, "plan_url": true,
}

// MarshalJSON emits the known fields alongside any preserved extras.
func (d ProjectDocument) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(projectDocumentKnown{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		SheetURL:  d.SheetURL,
		S3Prefix:  d.S3Prefix,
		PlanURL:   d.PlanURL,
	})
	if err != nil {
		return nil, err
	}

	merged := make(map[string]json.RawMessage, len(d.Extra)+7)
	for k, v := range d.Extra {
		if !knownProjectFields[k] {
			merged[k] = v
		}
	}
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the known fields and stashes everything else in Extra.
func (d *ProjectDocument) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var known projectDocumentKnown
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	d.ID = known.ID
	d.Name = known.Name
	d.CreatedAt = known.CreatedAt
	d.UpdatedAt = known.UpdatedAt
	d.SheetURL = known.SheetURL
	d.S3Prefix = known.S3Prefix
	d.PlanURL = known.PlanURL

	d.Extra = make(map[string]json.RawMessage)
	for k, v := range raw {
		if !knownProjectFields[k] {
			d.Extra[k] = v
		}
	}
	return nil
}
