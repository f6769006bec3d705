package schema

import (
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

// ErrUnknownPredefined is returned for toolbox kinds that do not exist.
var ErrUnknownPredefined = errors.New("schema: unknown predefined field")

// Predefined is a toolbox entry.
type Predefined struct {
	Kind  string
	Label string
	Name  string
	Type  model.FieldType
}

var predefined = []Predefined{
	{Kind: "text", Label: "Text", Name: "text", Type: model.FieldTypeString},
	{Kind: "email", Label: "Email", Name: "email", Type: model.FieldTypeString},
	{Kind: "number", Label: "Number", Name: "quantity", Type: model.FieldTypeNumber},
}

// Toolbox adds predefined fields to a store.
type Toolbox struct {
	store *Store
	now   func() time.Time
}

// NewToolbox binds a toolbox to store. now defaults to time.Now.
func NewToolbox(store *Store, now func() time.Time) *Toolbox {
	if now == nil {
		now = time.Now
	}
	return &Toolbox{store: store, now: now}
}

// Predefined lists the toolbox entries.
func (t *Toolbox) Predefined() []Predefined {
	return append([]Predefined(nil), predefined...)
}

// Add appends a field of the given kind named <name>-<unix millis>. A name
// collision within the same millisecond moves to the next millisecond.
func (t *Toolbox) Add(kind string) (model.FieldDefinition, error) {
	var entry *Predefined
	for i := range predefined {
		if predefined[i].Kind == kind {
			entry = &predefined[i]
			break
		}
	}
	if entry == nil {
		return model.FieldDefinition{}, fmt.Errorf("%w: %s", ErrUnknownPredefined, kind)
	}

	millis := t.now().UnixMilli()
	for {
		field := model.FieldDefinition{
			Name:     fmt.Sprintf("%s-%d", entry.Name, millis),
			Label:    entry.Label,
			Type:     entry.Type,
			Required: false,
		}
		err := t.store.AddField(field)
		if errors.Is(err, model.ErrDuplicateField) {
			millis++
			continue
		}
		if err != nil {
			return model.FieldDefinition{}, err
		}
		return field, nil
	}
}
