package transport

import (
	"bytes"
	"encoding/json"
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

type ProfileUpdateRequest struct {
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}

// TaskCreateRequest accepts a full task document. Any caller-supplied
// activities are ignored; the store seeds the log itself.
type TaskCreateRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     string          `json:"dueDate"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
	Attachment  string          `json:"attachment"`
	Activities  json.RawMessage `json:"activities"`
}

// TaskPatchRequest carries a partial task update. Absent members stay nil.
type TaskPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Category    *string `json:"category"`
	Status      *string `json:"status"`
	Attachment  *string `json:"attachment"`
}

type BulkStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

// TopLevelKeys returns the member names of the top-level JSON object in
// body, in document order. Go maps would lose that order, and it matters:
// it decides the wording of the recorded activity. A non-object body
// yields nil.
func TopLevelKeys(body []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := keyTok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)
		if err := skipValue(dec); err != nil {
			return keys
		}
	}
	return keys
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
