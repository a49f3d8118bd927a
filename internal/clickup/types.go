// Defines ClickUp API response types.

package clickup

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is matched by errors.Is for 404 responses.
var ErrNotFound = errors.New("not found")

// ID is an identifier the API encodes either as a string or as a number.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if string(b) == "null" {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

// Doc is the metadata of a document.
type Doc struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	WorkspaceID ID     `json:"workspace_id"`
	DateCreated int64  `json:"date_created,omitempty"`
	DateUpdated int64  `json:"date_updated,omitempty"`
	Deleted     bool   `json:"deleted,omitempty"`
}

// Page is one page of a document, with its sub pages.
type Page struct {
	ID           ID     `json:"id"`
	DocID        ID     `json:"doc_id"`
	WorkspaceID  ID     `json:"workspace_id"`
	ParentPageID ID     `json:"parent_page_id,omitempty"`
	Name         string `json:"name"`
	Content      string `json:"content"`
	DateCreated  int64  `json:"date_created,omitempty"`
	DateUpdated  int64  `json:"date_updated,omitempty"`
	Pages        []Page `json:"pages,omitempty"`
}

// APIError is the error body returned by the API.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"err"`
	Code    string `json:"ECODE"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("clickup API error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("clickup API error %d: %s", e.Status, e.Message)
}

// Is reports whether target is ErrNotFound and the status is 404.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}
