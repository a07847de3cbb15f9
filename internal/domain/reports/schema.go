package reports

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"pvcflow/internal/core/apperror"
)

// FieldKind classifies how a payload value is coerced and stored.
type FieldKind int

const (
	// Numeric fields store float64. String inputs are parsed; values that
	// do not parse to a finite number are dropped.
	Numeric FieldKind = iota
	// Text fields store trimmed non-empty strings. Numbers and booleans
	// are stringified.
	Text
	// Boolean fields store bool. The strings "true" and "false" are
	// accepted; anything else is dropped.
	Boolean
	// Date fields store an ISO date string ("2006-01-02" or RFC 3339).
	// Unparseable values are dropped.
	Date
)

// FieldSpec declares one report field.
type FieldSpec struct {
	Kind     FieldKind
	Required bool
	// Label is the human-readable name used in required-field messages
	// and export rendering.
	Label string
}

// Schema is the full declarative field table for the production report
// payload. Validation and sanitization are both driven from it, so a field
// exists exactly once and the two passes can never disagree.
//
// The four required entries are top-level report columns; everything else
// lands in the JSONB fields document.
var Schema = map[string]FieldSpec{
	// Required batch metadata
	"batchNumber":    {Kind: Text, Required: true, Label: "Batch Number"},
	"productionDate": {Kind: Date, Required: true, Label: "Production Date"},
	"supervisor":     {Kind: Text, Required: true, Label: "Supervisor"},
	"operator":       {Kind: Text, Required: true, Label: "Operator"},

	// Optional top-level columns
	"qualityGrade": {Kind: Text, Label: "Quality Grade"},

	// Raw materials
	"rawMaterial1Name":     {Kind: Text, Label: "Raw Material 1 Name"},
	"rawMaterial1Quantity": {Kind: Numeric, Label: "Raw Material 1 Quantity"},
	"rawMaterial1Unit":     {Kind: Text, Label: "Raw Material 1 Unit"},
	"rawMaterial2Name":     {Kind: Text, Label: "Raw Material 2 Name"},
	"rawMaterial2Quantity": {Kind: Numeric, Label: "Raw Material 2 Quantity"},
	"rawMaterial2Unit":     {Kind: Text, Label: "Raw Material 2 Unit"},
	"rawMaterial3Name":     {Kind: Text, Label: "Raw Material 3 Name"},
	"rawMaterial3Quantity": {Kind: Numeric, Label: "Raw Material 3 Quantity"},
	"rawMaterial3Unit":     {Kind: Text, Label: "Raw Material 3 Unit"},
	"rawMaterial4Name":     {Kind: Text, Label: "Raw Material 4 Name"},
	"rawMaterial4Quantity": {Kind: Numeric, Label: "Raw Material 4 Quantity"},
	"rawMaterial4Unit":     {Kind: Text, Label: "Raw Material 4 Unit"},
	"rawMaterial5Name":     {Kind: Text, Label: "Raw Material 5 Name"},
	"rawMaterial5Quantity": {Kind: Numeric, Label: "Raw Material 5 Quantity"},
	"rawMaterial5Unit":     {Kind: Text, Label: "Raw Material 5 Unit"},

	"pvcResinQuantity":          {Kind: Numeric, Label: "PVC Resin Quantity"},
	"pvcResinGrade":             {Kind: Text, Label: "PVC Resin Grade"},
	"stabilizerType":            {Kind: Text, Label: "Stabilizer Type"},
	"stabilizerQuantity":        {Kind: Numeric, Label: "Stabilizer Quantity"},
	"plasticizerType":           {Kind: Text, Label: "Plasticizer Type"},
	"plasticizerQuantity":       {Kind: Numeric, Label: "Plasticizer Quantity"},
	"internalLubricantQuantity": {Kind: Numeric, Label: "Internal Lubricant Quantity"},
	"externalLubricantQuantity": {Kind: Numeric, Label: "External Lubricant Quantity"},
	"impactModifierQuantity":    {Kind: Numeric, Label: "Impact Modifier Quantity"},
	"processingAidQuantity":     {Kind: Numeric, Label: "Processing Aid Quantity"},
	"fillerType":                {Kind: Text, Label: "Filler Type"},
	"fillerQuantity":            {Kind: Numeric, Label: "Filler Quantity"},
	"titaniumDioxideQuantity":   {Kind: Numeric, Label: "Titanium Dioxide Quantity"},
	"pigmentType":               {Kind: Text, Label: "Pigment Type"},
	"pigmentQuantity":           {Kind: Numeric, Label: "Pigment Quantity"},

	// Process parameters
	"polymerizationTemp":     {Kind: Numeric, Label: "Polymerization Temperature"},
	"polymerizationPressure": {Kind: Numeric, Label: "Polymerization Pressure"},
	"polymerizationTime":     {Kind: Numeric, Label: "Polymerization Time"},
	"conversionRate":         {Kind: Numeric, Label: "Conversion Rate"},
	"vcmRecovery":            {Kind: Numeric, Label: "VCM Recovery"},
	"mixerSpeed":             {Kind: Numeric, Label: "Mixer Speed"},
	"mixingTemp":             {Kind: Numeric, Label: "Mixing Temperature"},
	"mixingTime":             {Kind: Numeric, Label: "Mixing Time"},
	"dryBlendTime":           {Kind: Numeric, Label: "Dry Blend Time"},
	"gelationTime":           {Kind: Numeric, Label: "Gelation Time"},
	"extruderZone1Temp":      {Kind: Numeric, Label: "Extruder Zone 1 Temperature"},
	"extruderZone2Temp":      {Kind: Numeric, Label: "Extruder Zone 2 Temperature"},
	"extruderZone3Temp":      {Kind: Numeric, Label: "Extruder Zone 3 Temperature"},
	"extruderZone4Temp":      {Kind: Numeric, Label: "Extruder Zone 4 Temperature"},
	"dieTemp":                {Kind: Numeric, Label: "Die Temperature"},
	"screwSpeed":             {Kind: Numeric, Label: "Screw Speed"},
	"meltPressure":           {Kind: Numeric, Label: "Melt Pressure"},
	"meltTemp":               {Kind: Numeric, Label: "Melt Temperature"},

	// Quality: physical
	"density":         {Kind: Numeric, Label: "Density"},
	"bulkDensity":     {Kind: Numeric, Label: "Bulk Density"},
	"kValue":          {Kind: Numeric, Label: "K-Value"},
	"viscosityNumber": {Kind: Numeric, Label: "Viscosity Number"},
	"particleSize":    {Kind: Numeric, Label: "Particle Size"},
	"moistureContent": {Kind: Numeric, Label: "Moisture Content"},
	"volatileContent": {Kind: Numeric, Label: "Volatile Content"},

	// Quality: mechanical
	"tensileStrength":    {Kind: Numeric, Label: "Tensile Strength"},
	"elongationAtBreak":  {Kind: Numeric, Label: "Elongation at Break"},
	"flexuralModulus":    {Kind: Numeric, Label: "Flexural Modulus"},
	"izodImpactStrength": {Kind: Numeric, Label: "Izod Impact Strength"},
	"hardnessShoreD":     {Kind: Numeric, Label: "Hardness Shore D"},

	// Quality: thermal
	"vicatSofteningPoint":  {Kind: Numeric, Label: "Vicat Softening Point"},
	"heatDeflectionTemp":   {Kind: Numeric, Label: "Heat Deflection Temperature"},
	"thermalStabilityTime": {Kind: Numeric, Label: "Thermal Stability Time"},
	"congoRedTest":         {Kind: Numeric, Label: "Congo Red Test"},

	// Quality: chemical
	"chlorineContent":    {Kind: Numeric, Label: "Chlorine Content"},
	"residualVcm":        {Kind: Numeric, Label: "Residual VCM"},
	"sulfatedAshContent": {Kind: Numeric, Label: "Sulfated Ash Content"},
	"heavyMetalsResult":  {Kind: Text, Label: "Heavy Metals Result"},

	// Quality: processing
	"meltFlowIndex":  {Kind: Numeric, Label: "Melt Flow Index"},
	"fishEyeCount":   {Kind: Numeric, Label: "Fish Eye Count"},
	"gelationLevel":  {Kind: Text, Label: "Gelation Level"},
	"plateOutRating": {Kind: Text, Label: "Plate-Out Rating"},

	// Quality: water
	"waterAbsorption": {Kind: Numeric, Label: "Water Absorption"},
	"phValue":         {Kind: Numeric, Label: "pH Value"},
	"clarityRating":   {Kind: Text, Label: "Clarity Rating"},

	// Quality: test conditions
	"testTemperature": {Kind: Numeric, Label: "Test Temperature"},
	"testHumidity":    {Kind: Numeric, Label: "Test Humidity"},

	// Quality: visual
	"colorValueL":        {Kind: Numeric, Label: "Color Value L"},
	"colorValueA":        {Kind: Numeric, Label: "Color Value a"},
	"colorValueB":        {Kind: Numeric, Label: "Color Value b"},
	"whitenessIndex":     {Kind: Numeric, Label: "Whiteness Index"},
	"visualInspection":   {Kind: Text, Label: "Visual Inspection"},
	"contaminationLevel": {Kind: Text, Label: "Contamination Level"},

	// Efficiency
	"yieldPercentage":   {Kind: Numeric, Label: "Yield Percentage"},
	"wasteQuantity":     {Kind: Numeric, Label: "Waste Quantity"},
	"reworkQuantity":    {Kind: Numeric, Label: "Rework Quantity"},
	"energyConsumption": {Kind: Numeric, Label: "Energy Consumption"},
	"waterConsumption":  {Kind: Numeric, Label: "Water Consumption"},
	"steamConsumption":  {Kind: Numeric, Label: "Steam Consumption"},
	"cycleTime":         {Kind: Numeric, Label: "Cycle Time"},
	"throughputRate":    {Kind: Numeric, Label: "Throughput Rate"},
	"downtimeMinutes":   {Kind: Numeric, Label: "Downtime Minutes"},

	// Equipment
	"equipment1": {Kind: Text, Label: "Equipment 1"},
	"equipment2": {Kind: Text, Label: "Equipment 2"},
	"equipment3": {Kind: Text, Label: "Equipment 3"},
	"equipment4": {Kind: Text, Label: "Equipment 4"},
	"equipment5": {Kind: Text, Label: "Equipment 5"},

	// Compliance
	"qualityStandard": {Kind: Text, Label: "Quality Standard"},
	"testMethod":      {Kind: Text, Label: "Test Method"},
	"astmCompliance":  {Kind: Boolean, Label: "ASTM Compliance"},
	"isoCompliance":   {Kind: Boolean, Label: "ISO Compliance"},

	// Storage
	"storageLocation": {Kind: Text, Label: "Storage Location"},
	"storageTemp":     {Kind: Numeric, Label: "Storage Temperature"},
	"shelfLifeMonths": {Kind: Numeric, Label: "Shelf Life Months"},
	"packagingType":   {Kind: Text, Label: "Packaging Type"},

	// Defects
	"defectType":       {Kind: Text, Label: "Defect Type"},
	"defectCount":      {Kind: Numeric, Label: "Defect Count"},
	"defectSeverity":   {Kind: Text, Label: "Defect Severity"},
	"correctiveAction": {Kind: Text, Label: "Corrective Action"},

	// Notes
	"remarks":         {Kind: Text, Label: "Remarks"},
	"qualityNotes":    {Kind: Text, Label: "Quality Notes"},
	"productionNotes": {Kind: Text, Label: "Production Notes"},
}

// topLevelKeys are schema entries stored as report columns, not in the
// JSONB fields document.
var topLevelKeys = map[string]bool{
	"batchNumber":    true,
	"productionDate": true,
	"supervisor":     true,
	"operator":       true,
	"qualityGrade":   true,
}

// ValidatePayload checks the required fields of a raw report payload.
// All violations are collected so the client renders them at once rather
// than one per round trip. Unknown keys are not an error here; they are
// silently discarded by SanitizePayload.
func ValidatePayload(payload map[string]any) error {
	fields := make(map[string]string)

	for key, spec := range Schema {
		if !spec.Required {
			continue
		}
		if isBlank(payload[key]) {
			fields[key] = spec.Label + " is required"
		}
	}

	if len(fields) > 0 {
		return apperror.NewFieldValidation(fields)
	}
	return nil
}

// SanitizePayload coerces a raw payload into its storable form.
//
// For every schema key present in the input the value is coerced per its
// declared kind; values that cannot be coerced are dropped, never kept as
// empty strings or nulls. Keys absent from the schema are discarded. The
// input map is not modified.
func SanitizePayload(payload map[string]any) map[string]any {
	clean := make(map[string]any, len(payload))

	for key, raw := range payload {
		spec, known := Schema[key]
		if !known || raw == nil {
			continue
		}

		switch spec.Kind {
		case Numeric:
			if f, ok := coerceNumeric(raw); ok {
				clean[key] = f
			}
		case Text:
			if s, ok := coerceText(raw); ok {
				clean[key] = s
			}
		case Boolean:
			if b, ok := coerceBoolean(raw); ok {
				clean[key] = b
			}
		case Date:
			if t, ok := coerceDate(raw); ok {
				clean[key] = t.Format("2006-01-02")
			}
		}
	}

	return clean
}

// DecodeFields extracts the JSONB measurement set from a sanitized payload.
// Top-level column keys are excluded. Round-trips through encoding/json so
// the struct tags stay the single source of member naming.
func DecodeFields(clean map[string]any) (ReportFields, error) {
	doc := make(map[string]any, len(clean))
	for key, value := range clean {
		if !topLevelKeys[key] {
			doc[key] = value
		}
	}

	var fields ReportFields
	raw, err := json.Marshal(doc)
	if err != nil {
		return fields, err
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fields, err
	}
	return fields, nil
}

// ParseDate accepts the payload date formats: plain ISO date or RFC 3339.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// isBlank reports whether a raw payload value counts as missing for
// required-field validation.
func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func coerceNumeric(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return coerceNumeric(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return coerceNumeric(f)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func coerceText(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func coerceBoolean(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

func coerceDate(raw any) (time.Time, bool) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, false
	}
	return ParseDate(s)
}
