package reports

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectJSONTags walks a struct type (following embedded structs) and
// returns every json member name.
func collectJSONTags(t *testing.T, typ reflect.Type, into map[string]bool) {
	t.Helper()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.Anonymous {
			collectJSONTags(t, field.Type, into)
			continue
		}
		tag := field.Tag.Get("json")
		require.NotEmpty(t, tag, "field %s has no json tag", field.Name)
		name := strings.Split(tag, ",")[0]
		require.False(t, into[name], "duplicate json tag %s", name)
		into[name] = true
	}
}

// The schema table and the ReportFields struct must describe the same
// member set, or validation and persistence drift apart silently.
func TestSchemaMatchesReportFields(t *testing.T) {
	structTags := make(map[string]bool)
	collectJSONTags(t, reflect.TypeOf(ReportFields{}), structTags)

	for key := range Schema {
		if topLevelKeys[key] {
			continue
		}
		assert.True(t, structTags[key], "schema key %s missing from ReportFields", key)
	}

	for tag := range structTags {
		spec, ok := Schema[tag]
		assert.True(t, ok, "ReportFields member %s missing from schema", tag)
		assert.False(t, spec.Required, "JSONB member %s cannot be required", tag)
	}
}

func TestSchemaKindsMatchStructTypes(t *testing.T) {
	kinds := make(map[string]reflect.Kind)
	var walk func(typ reflect.Type)
	walk = func(typ reflect.Type) {
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			if field.Anonymous {
				walk(field.Type)
				continue
			}
			name := strings.Split(field.Tag.Get("json"), ",")[0]
			kinds[name] = field.Type.Elem().Kind()
		}
	}
	walk(reflect.TypeOf(ReportFields{}))

	for key, spec := range Schema {
		if topLevelKeys[key] {
			continue
		}
		switch spec.Kind {
		case Numeric:
			assert.Equal(t, reflect.Float64, kinds[key], "key %s", key)
		case Text:
			assert.Equal(t, reflect.String, kinds[key], "key %s", key)
		case Boolean:
			assert.Equal(t, reflect.Bool, kinds[key], "key %s", key)
		default:
			t.Errorf("key %s has unexpected kind %d", key, spec.Kind)
		}
	}
}

func TestValidatePayloadCollectsAllMissingFields(t *testing.T) {
	err := ValidatePayload(map[string]any{})
	require.Error(t, err)

	appErr := requireAppError(t, err)
	fields, ok := appErr.Details["fields"].(map[string]string)
	require.True(t, ok)

	assert.Len(t, fields, 4)
	assert.Contains(t, fields, "batchNumber")
	assert.Contains(t, fields, "productionDate")
	assert.Contains(t, fields, "supervisor")
	assert.Contains(t, fields, "operator")
}

func TestValidatePayloadBlankVariants(t *testing.T) {
	err := ValidatePayload(map[string]any{
		"batchNumber":    "   ",
		"productionDate": nil,
		"supervisor":     "Ava Chen",
		"operator":       "R. Mehta",
	})
	require.Error(t, err)

	fields := requireAppError(t, err).Details["fields"].(map[string]string)
	assert.Len(t, fields, 2)
	assert.Contains(t, fields, "batchNumber")
	assert.Contains(t, fields, "productionDate")
}

func TestValidatePayloadComplete(t *testing.T) {
	err := ValidatePayload(map[string]any{
		"batchNumber":    "PVC-20260815",
		"productionDate": "2026-08-15",
		"supervisor":     "Ava Chen",
		"operator":       "R. Mehta",
	})
	assert.NoError(t, err)
}

func TestSanitizePayloadNumericCoercion(t *testing.T) {
	clean := SanitizePayload(map[string]any{
		"pvcResinQuantity":   "100.5",
		"stabilizerQuantity": 2.5,
		"fillerQuantity":     "abc",
		"pigmentQuantity":    "",
		"mixerSpeed":         nil,
		"meltTemp":           "NaN",
	})

	assert.Equal(t, 100.5, clean["pvcResinQuantity"])
	assert.Equal(t, 2.5, clean["stabilizerQuantity"])
	assert.NotContains(t, clean, "fillerQuantity")
	assert.NotContains(t, clean, "pigmentQuantity")
	assert.NotContains(t, clean, "mixerSpeed")
	assert.NotContains(t, clean, "meltTemp")
}

func TestSanitizePayloadTextCoercion(t *testing.T) {
	clean := SanitizePayload(map[string]any{
		"remarks":       "  within tolerance  ",
		"qualityNotes":  "",
		"pigmentType":   "   ",
		"equipment1":    42.0,
		"fillerType":    true,
		"defectType":    nil,
	})

	assert.Equal(t, "within tolerance", clean["remarks"])
	assert.NotContains(t, clean, "qualityNotes")
	assert.NotContains(t, clean, "pigmentType")
	assert.Equal(t, "42", clean["equipment1"])
	assert.Equal(t, "true", clean["fillerType"])
	assert.NotContains(t, clean, "defectType")
}

func TestSanitizePayloadBooleanCoercion(t *testing.T) {
	clean := SanitizePayload(map[string]any{
		"astmCompliance": "true",
		"isoCompliance":  false,
	})
	assert.Equal(t, true, clean["astmCompliance"])
	assert.Equal(t, false, clean["isoCompliance"])

	clean = SanitizePayload(map[string]any{
		"astmCompliance": "yes",
		"isoCompliance":  1.0,
	})
	assert.NotContains(t, clean, "astmCompliance")
	assert.NotContains(t, clean, "isoCompliance")
}

func TestSanitizePayloadDropsUnknownKeys(t *testing.T) {
	clean := SanitizePayload(map[string]any{
		"batchNumber": "PVC-20260815",
		"__proto__":   "x",
		"randomKey":   12,
	})
	assert.Equal(t, map[string]any{"batchNumber": "PVC-20260815"}, clean)
}

func TestSanitizePayloadDoesNotMutateInput(t *testing.T) {
	payload := map[string]any{
		"pvcResinQuantity": "100.5",
		"remarks":          "",
	}
	_ = SanitizePayload(payload)

	assert.Equal(t, "100.5", payload["pvcResinQuantity"])
	assert.Contains(t, payload, "remarks")
}

func TestSanitizePayloadDateCoercion(t *testing.T) {
	clean := SanitizePayload(map[string]any{"productionDate": "2026-08-15T10:30:00Z"})
	assert.Equal(t, "2026-08-15", clean["productionDate"])

	clean = SanitizePayload(map[string]any{"productionDate": "15/08/2026"})
	assert.NotContains(t, clean, "productionDate")
}

func TestDecodeFields(t *testing.T) {
	clean := SanitizePayload(map[string]any{
		"batchNumber":      "PVC-20260815",
		"pvcResinQuantity": "100.5",
		"remarks":          " dried twice ",
		"astmCompliance":   true,
	})

	fields, err := DecodeFields(clean)
	require.NoError(t, err)

	require.NotNil(t, fields.PVCResinQuantity)
	assert.Equal(t, 100.5, *fields.PVCResinQuantity)
	require.NotNil(t, fields.Remarks)
	assert.Equal(t, "dried twice", *fields.Remarks)
	require.NotNil(t, fields.ASTMCompliance)
	assert.True(t, *fields.ASTMCompliance)

	// Top-level columns never land in the JSONB document
	assert.Nil(t, fields.RawMaterial1Name)
}
