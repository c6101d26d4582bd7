package models

import (
	"fmt"
	"strings"
	"time"
)

// APITime tolerates the timestamp forms the catalog backend emits:
// RFC3339, zone-less datetimes and bare dates. Zone-less values are
// taken as UTC.
type APITime struct {
	time.Time
}

var apiTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func (t *APITime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range apiTimeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

type ObjectType string

const (
	ObjectSchema ObjectType = "SCHEMA"
	ObjectEntity ObjectType = "ENTITY"
)

type ChangeStatus string

const (
	ChangePending  ChangeStatus = "PENDING"
	ChangeApproved ChangeStatus = "APPROVED"
	ChangeDeclined ChangeStatus = "DECLINED"
)

// Terminal reports whether a change request can no longer be reviewed.
func (s ChangeStatus) Terminal() bool {
	return s == ChangeApproved || s == ChangeDeclined
}

type ChangeType string

const (
	ChangeCreate  ChangeType = "CREATE"
	ChangeUpdate  ChangeType = "UPDATE"
	ChangeDelete  ChangeType = "DELETE"
	ChangeRestore ChangeType = "RESTORE"
)

type ReviewResult string

const (
	ReviewApprove ReviewResult = "APPROVE"
	ReviewDecline ReviewResult = "DECLINE"
)

type ChangeRequest struct {
	ID         int          `json:"id"`
	CreatedAt  APITime      `json:"created_at"`
	ReviewedAt *APITime     `json:"reviewed_at"`
	CreatedBy  string       `json:"created_by"`
	ReviewedBy *string      `json:"reviewed_by"`
	Status     ChangeStatus `json:"status"`
	Comment    *string      `json:"comment"`
	ObjectType ObjectType   `json:"object_type"`
	ChangeType ChangeType   `json:"change_type"`
	SchemaSlug string       `json:"schema_slug,omitempty"`
	EntitySlug string       `json:"entity_slug,omitempty"`
}

// FieldChange is one diff cell of a change detail. Any of the three
// values may be absent depending on the change type.
type FieldChange struct {
	Old     any `json:"old"`
	New     any `json:"new"`
	Current any `json:"current"`
}

type ChangedObjectRef struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	SchemaSlug string `json:"schema,omitempty"`
}

type ChangeDetail struct {
	CreatedAt  APITime                `json:"created_at"`
	ReviewedAt *APITime               `json:"reviewed_at"`
	CreatedBy  string                 `json:"created_by"`
	ReviewedBy *string                `json:"reviewed_by"`
	Status     ChangeStatus           `json:"status"`
	Object     ChangedObjectRef       `json:"entity"`
	Comment    *string                `json:"comment"`
	Changes    map[string]FieldChange `json:"changes"`
}

type RecipientType string

const (
	RecipientUser  RecipientType = "User"
	RecipientGroup RecipientType = "Group"
)

type PermissionTargetType string

const (
	TargetSchema PermissionTargetType = "Schema"
	TargetEntity PermissionTargetType = "Entity"
	TargetGroup  PermissionTargetType = "Group"
)

type PermissionType string

const (
	PermSuperuser      PermissionType = "SU"
	PermUserManagement PermissionType = "UM"
	PermCreateSchema   PermissionType = "SCH_C"
	PermUpdateSchema   PermissionType = "SCH_U"
	PermDeleteSchema   PermissionType = "SCH_D"
	PermReadSchema     PermissionType = "SCH_R"
	PermCreateEntity   PermissionType = "ENT_C"
	PermUpdateEntity   PermissionType = "ENT_U"
	PermDeleteEntity   PermissionType = "ENT_D"
	PermReadEntity     PermissionType = "ENT_R"
)

type Permission struct {
	ID            int                  `json:"id"`
	RecipientType RecipientType        `json:"recipient_type"`
	RecipientName string               `json:"recipient_name"`
	ObjType       PermissionTargetType `json:"obj_type,omitempty"`
	ObjID         *int                 `json:"obj_id,omitempty"`
	Permission    PermissionType       `json:"permission"`
}

type Schema struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Deleted bool   `json:"deleted"`
}

// Entity rows come back shaped by whatever attributes the schema
// defines, so the payload stays a loose map keyed by attribute name.
type Entity map[string]any

type User struct {
	ID        int     `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	IsActive  bool    `json:"is_active"`
}

type Group struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID *int   `json:"parent_id"`
}

// Token is the login response of the catalog backend.
type Token struct {
	AccessToken    string  `json:"access_token"`
	TokenType      string  `json:"token_type"`
	ExpirationDate APITime `json:"expiration_date"`
}
