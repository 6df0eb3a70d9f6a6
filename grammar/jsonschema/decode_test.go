package jsonschema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) *Schema {
	t.Helper()
	var schema Schema
	require.NoError(t, json.Unmarshal([]byte(s), &schema))
	return &schema
}

func TestUnmarshalBasicFields(t *testing.T) {
	s := decode(t, `{"type":"string","minLength":2,"maxLength":10,"format":"email"}`)
	require.Equal(t, "string", s.Type)
	require.Equal(t, 2, s.MinLength)
	require.Equal(t, 10, s.MaxLength)
	require.Equal(t, "email", s.Format)
}

func TestUnmarshalPropertiesPreservesOrder(t *testing.T) {
	s := decode(t, `{"properties":{"b":{"type":"string"},"a":{"type":"integer"}}}`)
	require.Len(t, s.Properties, 2)
	require.Equal(t, "b", s.Properties[0].Name)
	require.Equal(t, "a", s.Properties[1].Name)
	require.Equal(t, "object", s.EffectiveType())
}

func TestUnmarshalRequiredAndAdditionalProperties(t *testing.T) {
	s := decode(t, `{"properties":{"a":{"type":"string"}},"required":["a"],"additionalProperties":false}`)
	require.Equal(t, []string{"a"}, s.Required)
	require.NotNil(t, s.AdditionalProperties)
	require.False(t, *s.AdditionalProperties)
}

func TestUnmarshalConstAndEnum(t *testing.T) {
	s := decode(t, `{"const":"fixed"}`)
	require.NotNil(t, s.Const)
	require.JSONEq(t, `"fixed"`, string(*s.Const))

	s = decode(t, `{"enum":[1,2,3]}`)
	require.Len(t, s.Enum, 3)
}

func TestUnmarshalCombinators(t *testing.T) {
	s := decode(t, `{"anyOf":[{"type":"string"},{"type":"integer"}]}`)
	require.Len(t, s.AnyOf, 2)

	s = decode(t, `{"oneOf":[{"type":"string"}]}`)
	require.Len(t, s.OneOf, 1)

	s = decode(t, `{"allOf":[{"type":"object"},{"required":["a"]}]}`)
	require.Len(t, s.AllOf, 2)
}

func TestUnmarshalRefAndDefs(t *testing.T) {
	s := decode(t, `{"$ref":"#/$defs/node","$defs":{"node":{"type":"object"}}}`)
	require.Equal(t, "#/$defs/node", s.Ref)
	require.Contains(t, s.Defs, "node")

	s = decode(t, `{"$ref":"#/definitions/node","definitions":{"node":{"type":"object"}}}`)
	require.Equal(t, "#/definitions/node", s.Ref)
	require.Contains(t, s.Defs, "node")
}

func TestUnmarshalItemsVariants(t *testing.T) {
	s := decode(t, `{"items":true}`)
	require.NotNil(t, s.Items)

	s = decode(t, `{"items":false}`)
	require.Nil(t, s.Items)

	s = decode(t, `{"items":{"type":"string"}}`)
	require.NotNil(t, s.Items)
	require.Equal(t, "string", s.Items.Type)
}

func TestEffectiveTypeDefaults(t *testing.T) {
	require.Equal(t, "value", (&Schema{}).EffectiveType())
	require.Equal(t, "array", (&Schema{PrefixItems: []*Schema{{}}}).EffectiveType())
}
