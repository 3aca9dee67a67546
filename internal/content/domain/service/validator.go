package service

import (
	"fmt"
	"strings"

	"showcase-cms/internal/content/domain/model"
	apperrors "showcase-cms/internal/shared/errors"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
)

// Rule is one CEL predicate over `item` (the item as a map). A false result flags Field.
type Rule struct {
	Field   string `yaml:"field"`
	Expr    string `yaml:"expr"`
	Message string `yaml:"message"`
}

const httpURL = `(item.url == "" || item.url.startsWith("https://") || item.url.startsWith("http://"))`

// DefaultSchemas is the per-kind validation schema.
var DefaultSchemas = map[model.Kind][]Rule{
	model.KindPartner: {
		{Field: "name", Expr: `item.name.trim() != ""`, Message: "partner name is required"},
		{Field: "image", Expr: `item.image.trim() != ""`, Message: "partner logo is required"},
		{Field: "url", Expr: httpURL, Message: "partner url must be http(s)"},
	},
	model.KindGuest: {
		{Field: "name", Expr: `item.name.trim() != ""`, Message: "guest name is required"},
		{Field: "image", Expr: `item.image.trim() != ""`, Message: "guest photo is required"},
	},
	model.KindGallery: {
		{Field: "title", Expr: `item.title.trim() != ""`, Message: "gallery caption is required"},
		{Field: "image", Expr: `item.image.trim() != ""`, Message: "gallery image is required"},
	},
	model.KindCoverage: {
		{Field: "title", Expr: `item.title.trim() != ""`, Message: "article title is required"},
		{Field: "url", Expr: `item.url.trim() != ""`, Message: "article url is required"},
		{Field: "url", Expr: httpURL, Message: "article url must be http(s)"},
	},
	model.KindAwardRecipient: {
		{Field: "name", Expr: `item.name.trim() != ""`, Message: "recipient name is required"},
	},
	model.KindTeamMember: {
		{Field: "name", Expr: `item.name.trim() != ""`, Message: "member name is required"},
		{Field: "role", Expr: `item.role.trim() != ""`, Message: "member role is required"},
	},
	model.KindHighlight: {
		{Field: "title", Expr: `item.title.trim() != ""`, Message: "highlight title is required"},
		{Field: "url", Expr: httpURL, Message: "highlight url must be http(s)"},
	},
}

type compiledRule struct {
	Rule
	program cel.Program
}

// Validator checks items against their kind's schema.
type Validator struct {
	rules map[model.Kind][]compiledRule
}

// NewValidator compiles schemas; nil means DefaultSchemas.
func NewValidator(schemas map[model.Kind][]Rule) (*Validator, error) {
	if schemas == nil {
		schemas = DefaultSchemas
	}
	env, err := cel.NewEnv(
		cel.Variable("item", cel.MapType(cel.StringType, cel.DynType)),
		ext.Strings(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	v := &Validator{rules: make(map[model.Kind][]compiledRule, len(schemas))}
	for kind, rules := range schemas {
		for _, rule := range rules {
			ast, issues := env.Compile(rule.Expr)
			if issues != nil && issues.Err() != nil {
				return nil, fmt.Errorf("rule %s.%s: CEL compilation error: %w", kind, rule.Field, issues.Err())
			}
			if !ast.OutputType().IsExactType(cel.BoolType) {
				return nil, fmt.Errorf("rule %s.%s: expression must be boolean", kind, rule.Field)
			}
			program, err := env.Program(ast)
			if err != nil {
				return nil, fmt.Errorf("rule %s.%s: failed to create CEL program: %w", kind, rule.Field, err)
			}
			v.rules[kind] = append(v.rules[kind], compiledRule{Rule: rule, program: program})
		}
	}
	return v, nil
}

// MustNewValidator is NewValidator for static schemas.
func MustNewValidator(schemas map[model.Kind][]Rule) *Validator {
	v, err := NewValidator(schemas)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate returns *errors.ValidationErrors naming every offending field, or nil.
func (v *Validator) Validate(kind model.Kind, item model.CollectionItem) error {
	ve := apperrors.NewValidationErrors()
	v.collect(ve, "", kind, item)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// ValidateAll validates a whole collection; fields are reported as "items[i].field".
func (v *Validator) ValidateAll(kind model.Kind, items []model.CollectionItem) error {
	ve := apperrors.NewValidationErrors()
	first := make(map[string]int, len(items))
	for idx, item := range items {
		prefix := fmt.Sprintf("items[%d].", idx)
		v.collect(ve, prefix, kind, item)
		id := Identity(item)
		if id == "" {
			continue
		}
		if prev, dup := first[id]; dup {
			ve.Add(prefix+identityField(item), fmt.Sprintf("duplicates items[%d] (%q)", prev, item.DisplayName()), item.DisplayName())
			continue
		}
		first[id] = idx
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// ValidateUnique reports items[at] when another item of items shares its identity.
func (v *Validator) ValidateUnique(items []model.CollectionItem, at int) error {
	if at < 0 || at >= len(items) {
		return nil
	}
	id := Identity(items[at])
	if id == "" {
		return nil
	}
	for idx, other := range items {
		if idx == at || Identity(other) != id {
			continue
		}
		return apperrors.NewValidationErrors().Add(identityField(items[at]),
			fmt.Sprintf("%q is already in the collection at position %d", other.DisplayName(), idx),
			items[at].DisplayName())
	}
	return nil
}

// identityField names the field DisplayName reads.
func identityField(item model.CollectionItem) string {
	if strings.TrimSpace(item.Name) != "" {
		return "name"
	}
	return "title"
}

func (v *Validator) collect(ve *apperrors.ValidationErrors, prefix string, kind model.Kind, item model.CollectionItem) {
	rules, ok := v.rules[kind]
	if !ok {
		ve.Add(prefix+"kind", fmt.Sprintf("no schema for kind %q", kind), string(kind))
		return
	}
	vars := map[string]interface{}{"item": item.AsMap()}
	flagged := make(map[string]bool)
	for _, rule := range rules {
		if flagged[rule.Field] {
			continue
		}
		out, _, err := rule.program.Eval(vars)
		passed, isBool := false, false
		if err == nil {
			passed, isBool = out.Value().(bool)
		}
		if err != nil || !isBool || !passed {
			flagged[rule.Field] = true
			ve.Add(prefix+rule.Field, rule.Message, item.AsMap()[rule.Field])
		}
	}
}
