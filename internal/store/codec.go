package store

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/tally/internal/model"
)

// ErrCorrupt marks a stored collection that is present but unreadable.
var ErrCorrupt = errors.New("corrupt todo collection")

// The stored value is a JSON array of records. Older data names the
// category field "option" and carries no id; both are still accepted.
const collectionSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["content", "completed"],
		"properties": {
			"id":        {"type": "string"},
			"content":   {"type": "string", "minLength": 1},
			"category":  {"enum": ["work", "private", "other"]},
			"option":    {"enum": ["work", "private", "other"]},
			"completed": {"type": "boolean"}
		},
		"anyOf": [
			{"required": ["category"]},
			{"required": ["option"]}
		]
	}
}`

var schema = jsonschema.MustCompileString("todos.schema.json", collectionSchema)

type storedRecord struct {
	ID        string          `json:"id,omitempty"`
	Content   string          `json:"content"`
	Category  *model.Category `json:"category,omitempty"`
	Option    *model.Category `json:"option,omitempty"`
	Completed bool            `json:"completed"`
}

// Encode renders c as indented JSON.
func Encode(c model.Collection) (string, error) {
	out := make([]storedRecord, len(c))
	for i, r := range c {
		if err := r.Validate(); err != nil {
			return "", fmt.Errorf("record %d: %w", i, err)
		}
		cat := r.Category
		out[i] = storedRecord{ID: r.ID, Content: r.Content, Category: &cat, Completed: r.Completed}
	}
	s, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}
	return string(s), nil
}

// Decode parses a stored collection. Any shape problem is reported as
// ErrCorrupt. Records without an id get a fresh one; migrated reports
// whether that happened.
func Decode(data string) (c model.Collection, migrated bool, err error) {
	var raw interface{}
	if err := sonic.ConfigStd.UnmarshalFromString(data, &raw); err != nil {
		return nil, false, fmt.Errorf("%w: json unmarshal: %v", ErrCorrupt, err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var recs []storedRecord
	if err := sonic.ConfigStd.UnmarshalFromString(data, &recs); err != nil {
		return nil, false, fmt.Errorf("%w: json unmarshal: %v", ErrCorrupt, err)
	}

	c = make(model.Collection, 0, len(recs))
	seen := make(map[string]bool, len(recs))
	for i, sr := range recs {
		r := model.Record{ID: sr.ID, Content: sr.Content, Completed: sr.Completed}
		switch {
		case sr.Category != nil:
			r.Category = *sr.Category
		case sr.Option != nil:
			r.Category = *sr.Option
		}
		if err := r.Validate(); err != nil {
			return nil, false, fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
		}
		if r.ID == "" || seen[r.ID] {
			r.ID = uuid.NewString()
			migrated = true
		}
		seen[r.ID] = true
		c = append(c, r)
	}
	return c, migrated, nil
}
