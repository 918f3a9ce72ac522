package llm

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemasOnce   sync.Once
	mealSchema    *gojsonschema.Schema
	receiptSchema *gojsonschema.Schema
	schemasErr    error
)

func loadSchema(name string) (*gojsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, err
	}
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
}

func schemas() error {
	schemasOnce.Do(func() {
		if mealSchema, schemasErr = loadSchema("meal_plan.json"); schemasErr != nil {
			return
		}
		receiptSchema, schemasErr = loadSchema("receipt_items.json")
	})
	return schemasErr
}

// ExtractJSON strips markdown fences and any prose around the outermost JSON
// object or array of a model answer.
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", fmt.Errorf("%w: no json found", ErrInvalidOutput)
	}
	closing := "}"
	if s[start] == '[' {
		closing = "]"
	}
	end := strings.LastIndex(s, closing)
	if end < start {
		return "", fmt.Errorf("%w: unterminated json", ErrInvalidOutput)
	}

	out := s[start : end+1]
	if !json.Valid([]byte(out)) {
		return "", fmt.Errorf("%w: malformed json", ErrInvalidOutput)
	}
	return out, nil
}

func validate(schema *gojsonschema.Schema, doc string) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrInvalidOutput, strings.Join(errs, "; "))
	}
	return nil
}

// DecodeMealPlan turns a raw model answer into a MealPlan.
func DecodeMealPlan(raw string) (MealPlan, error) {
	var plan MealPlan
	if err := schemas(); err != nil {
		return plan, err
	}

	doc, err := ExtractJSON(raw)
	if err != nil {
		return plan, err
	}
	if err := validate(mealSchema, doc); err != nil {
		return plan, err
	}
	if err := json.Unmarshal([]byte(doc), &plan); err != nil {
		return plan, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	for i := range plan.Lunch {
		plan.Lunch[i].Type = "lunch"
	}
	for i := range plan.Dinner {
		plan.Dinner[i].Type = "dinner"
	}
	return plan, nil
}

// DecodeReceiptItems turns a raw model answer into receipt lines. Both a
// bare array and an {"items": [...]} envelope are accepted.
func DecodeReceiptItems(raw string) ([]ReceiptItem, error) {
	if err := schemas(); err != nil {
		return nil, err
	}

	doc, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(doc, "{") {
		var envelope struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal([]byte(doc), &envelope); err != nil || envelope.Items == nil {
			return nil, fmt.Errorf("%w: expected an array of items", ErrInvalidOutput)
		}
		doc = string(envelope.Items)
	}
	if err := validate(receiptSchema, doc); err != nil {
		return nil, err
	}

	items := []ReceiptItem{}
	if err := json.Unmarshal([]byte(doc), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	for i := range items {
		items[i].Name = strings.TrimSpace(items[i].Name)
		if items[i].Quantity <= 0 {
			items[i].Quantity = 1
		}
	}
	return items, nil
}
