package pocketbase

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// BaseModel holds the fields every PocketBase model carries.
type BaseModel struct {
	ID      string `json:"id,omitempty"      yaml:"id,omitempty"`
	Created string `json:"created,omitempty" yaml:"created,omitempty"`
	Updated string `json:"updated,omitempty" yaml:"updated,omitempty"`
}

// Admin represents a PocketBase administrator.
type Admin struct {
	BaseModel

	Avatar int    `json:"avatar" yaml:"avatar"`
	Email  string `json:"email"  yaml:"email"`
}

// Record represents a single record of a collection. Fields other than the
// base model and collection references are kept in Data.
type Record struct {
	BaseModel

	CollectionID   string
	CollectionName string
	Data           map[string]interface{}
	Expand         map[string]ExpandValue
}

var recordReservedKeys = map[string]struct{}{
	"id":             {},
	"created":        {},
	"updated":        {},
	"collectionId":   {},
	"collectionName": {},
	"expand":         {},
}

// NewRecord creates a record holding the given field values.
func NewRecord(data map[string]interface{}) *Record {
	record := &Record{Data: make(map[string]interface{}, len(data))}
	for key, value := range data {
		record.Data[key] = value
	}

	return record
}

// Get returns the value of a data field.
func (r *Record) Get(key string) interface{} {
	return r.Data[key]
}

// GetString returns a data field as a string, or "" when missing.
func (r *Record) GetString(key string) string {
	value, ok := r.Data[key]
	if !ok || value == nil {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprint(value)
}

// Set assigns a data field.
func (r *Record) Set(key string, value interface{}) {
	if r.Data == nil {
		r.Data = make(map[string]interface{})
	}

	r.Data[key] = value
}

// Fields returns the record as a flat map including the base fields.
func (r *Record) Fields() map[string]interface{} {
	fields := make(map[string]interface{}, len(r.Data)+5)
	for key, value := range r.Data {
		fields[key] = value
	}

	putIfSet := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}

	putIfSet("id", r.ID)
	putIfSet("created", r.Created)
	putIfSet("updated", r.Updated)
	putIfSet("collectionId", r.CollectionID)
	putIfSet("collectionName", r.CollectionName)

	return fields
}

// Decode copies the record fields into out, matching on json tags.
func (r *Record) Decode(out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
	})
	if err != nil {
		return fmt.Errorf("creating record decoder: %w", err)
	}

	err = decoder.Decode(r.Fields())
	if err != nil {
		return &SerializationError{Op: "decode record", Err: err}
	}

	return nil
}

// MarshalJSON flattens Data next to the base fields.
func (r Record) MarshalJSON() ([]byte, error) {
	fields := r.Fields()
	if len(r.Expand) > 0 {
		fields["expand"] = r.Expand
	}

	return json.Marshal(fields)
}

// UnmarshalJSON splits the flat payload into base fields, Data and Expand.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	decoded := Record{Data: make(map[string]interface{}, len(raw))}

	stringFields := map[string]*string{
		"id":             &decoded.ID,
		"created":        &decoded.Created,
		"updated":        &decoded.Updated,
		"collectionId":   &decoded.CollectionID,
		"collectionName": &decoded.CollectionName,
	}

	for key, value := range raw {
		if target, ok := stringFields[key]; ok {
			err = json.Unmarshal(value, target)
			if err != nil {
				return fmt.Errorf("record field %q: %w", key, err)
			}

			continue
		}

		if key == "expand" {
			if !bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
				err = json.Unmarshal(value, &decoded.Expand)
				if err != nil {
					return fmt.Errorf("record field %q: %w", key, err)
				}
			}

			continue
		}

		var v interface{}

		err = json.Unmarshal(value, &v)
		if err != nil {
			return fmt.Errorf("record field %q: %w", key, err)
		}

		decoded.Data[key] = v
	}

	*r = decoded

	return nil
}

// ExpandValue is an expanded relation: a single record or a list of records.
type ExpandValue struct {
	One  *Record
	Many []Record
}

// Records returns the expanded records regardless of cardinality.
func (e ExpandValue) Records() []Record {
	if e.One != nil {
		return []Record{*e.One}
	}

	return e.Many
}

// IsMany reports whether the relation expanded to a list.
func (e ExpandValue) IsMany() bool {
	return e.One == nil
}

// MarshalJSON implements json.Marshaler.
func (e ExpandValue) MarshalJSON() ([]byte, error) {
	if e.One != nil {
		return json.Marshal(e.One)
	}

	if e.Many == nil {
		return []byte("[]"), nil
	}

	return json.Marshal(e.Many)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ExpandValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		e.One = nil

		return json.Unmarshal(trimmed, &e.Many)
	}

	var one Record

	err := json.Unmarshal(trimmed, &one)
	if err != nil {
		return err
	}

	e.One = &one
	e.Many = nil

	return nil
}

// SchemaField describes a single collection field.
type SchemaField struct {
	ID          string                 `json:"id,omitempty"          yaml:"id,omitempty"`
	Name        string                 `json:"name"                  yaml:"name"`
	Type        string                 `json:"type"                  yaml:"type"`
	System      bool                   `json:"system"                yaml:"system"`
	Required    bool                   `json:"required"              yaml:"required"`
	Presentable bool                   `json:"presentable,omitempty" yaml:"presentable,omitempty"`
	Options     map[string]interface{} `json:"options,omitempty"     yaml:"options,omitempty"`
}

// Collection represents a collection schema.
type Collection struct {
	BaseModel

	Name       string                 `json:"name"              yaml:"name"`
	Type       string                 `json:"type"              yaml:"type"`
	System     bool                   `json:"system"            yaml:"system"`
	Schema     []SchemaField          `json:"schema"            yaml:"schema"`
	Indexes    []string               `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	ListRule   *string                `json:"listRule"          yaml:"listRule"`
	ViewRule   *string                `json:"viewRule"          yaml:"viewRule"`
	CreateRule *string                `json:"createRule"        yaml:"createRule"`
	UpdateRule *string                `json:"updateRule"        yaml:"updateRule"`
	DeleteRule *string                `json:"deleteRule"        yaml:"deleteRule"`
	Options    map[string]interface{} `json:"options,omitempty" yaml:"options,omitempty"`
}

// Collection types.
const (
	CollectionTypeBase = "base"
	CollectionTypeAuth = "auth"
	CollectionTypeView = "view"
)

// LogRequest is a request log entry.
type LogRequest struct {
	BaseModel

	URL       string                 `json:"url"       yaml:"url"`
	Method    string                 `json:"method"    yaml:"method"`
	Status    int                    `json:"status"    yaml:"status"`
	Auth      string                 `json:"auth"      yaml:"auth"`
	RemoteIP  string                 `json:"remoteIp"  yaml:"remoteIp"`
	UserIP    string                 `json:"userIp"    yaml:"userIp"`
	Referer   string                 `json:"referer"   yaml:"referer"`
	UserAgent string                 `json:"userAgent" yaml:"userAgent"`
	Meta      map[string]interface{} `json:"meta"      yaml:"meta"`
}

// LogRequestStat is one bucket of the request log statistics.
type LogRequestStat struct {
	Total int    `json:"total" yaml:"total"`
	Date  string `json:"date"  yaml:"date"`
}

// HealthResponse is the body returned by the health endpoint.
type HealthResponse struct {
	Code    int                    `json:"code"           yaml:"code"`
	Message string                 `json:"message"        yaml:"message"`
	Data    map[string]interface{} `json:"data,omitempty" yaml:"data,omitempty"`
}

// AuthProviderInfo describes an OAuth2 provider enabled on an auth collection.
type AuthProviderInfo struct {
	Name                string `json:"name"                yaml:"name"`
	State               string `json:"state"               yaml:"state"`
	CodeVerifier        string `json:"codeVerifier"        yaml:"codeVerifier"`
	CodeChallenge       string `json:"codeChallenge"       yaml:"codeChallenge"`
	CodeChallengeMethod string `json:"codeChallengeMethod" yaml:"codeChallengeMethod"`
	AuthURL             string `json:"authUrl"             yaml:"authUrl"`
}

// AuthMethodsList lists the auth methods allowed on an auth collection.
type AuthMethodsList struct {
	UsernamePassword bool               `json:"usernamePassword" yaml:"usernamePassword"`
	EmailPassword    bool               `json:"emailPassword"    yaml:"emailPassword"`
	AuthProviders    []AuthProviderInfo `json:"authProviders"    yaml:"authProviders"`
}

// AppleClientSecretRequest is the input for generating a Sign in with Apple client secret.
type AppleClientSecretRequest struct {
	ClientID   string `json:"clientId"`
	TeamID     string `json:"teamId"`
	KeyID      string `json:"keyId"`
	PrivateKey string `json:"privateKey"`
	// Duration is the secret lifetime in seconds.
	Duration int `json:"duration"`
}

// AppleClientSecret is the generated client secret.
type AppleClientSecret struct {
	Secret string `json:"secret" yaml:"secret"`
}

// AuthResponse is the result of a successful auth exchange. M is the identity
// payload: Admin for admins, Record (or a caller type) for auth collections.
type AuthResponse[M any] struct {
	Token string
	Model M
	// Meta holds any additional top-level keys of the response.
	Meta map[string]json.RawMessage
}

// ListResult is a single page of a list response.
type ListResult[T any] struct {
	Page       int `json:"page"       yaml:"page"`
	PerPage    int `json:"perPage"    yaml:"perPage"`
	TotalItems int `json:"totalItems" yaml:"totalItems"`
	TotalPages int `json:"totalPages" yaml:"totalPages"`
	Items      []T `json:"items"      yaml:"items"`
}

type listResultJSON[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	Items      []T `json:"items"`
}

// UnmarshalJSON decodes a page and recomputes TotalPages from TotalItems and
// PerPage. A skipped total (-1) yields -1 pages.
func (l *ListResult[T]) UnmarshalJSON(data []byte) error {
	var decoded listResultJSON[T]

	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return err
	}

	*l = ListResult[T](decoded)
	l.normalize()

	return nil
}

func (l *ListResult[T]) normalize() {
	if l.Items == nil {
		l.Items = []T{}
	}

	if l.PerPage <= 0 {
		return
	}

	if l.TotalItems < 0 {
		l.TotalPages = -1

		return
	}

	l.TotalPages = (l.TotalItems + l.PerPage - 1) / l.PerPage
}

// HasMore reports whether pages follow this one.
func (l *ListResult[T]) HasMore() bool {
	if l.TotalPages < 0 {
		return l.PerPage > 0 && len(l.Items) >= l.PerPage
	}

	return l.Page < l.TotalPages
}
