// Package reports provides the PVC production report document: batch
// metadata plus quality-control measurements recorded for one stock-in
// transaction.
package reports

import (
	"context"
	"fmt"
	"time"

	"pvcflow/internal/core/apperror"
	"pvcflow/internal/core/entity"
	"pvcflow/internal/core/id"
)

// QualityGrade is the overall grade assigned to a production batch.
type QualityGrade string

const (
	GradeAPlus QualityGrade = "A+"
	GradeA     QualityGrade = "A"
	GradeBPlus QualityGrade = "B+"
	GradeB     QualityGrade = "B"
	GradeC     QualityGrade = "C"
)

// IsValid reports whether the grade is a known variant.
func (g QualityGrade) IsValid() bool {
	switch g {
	case GradeAPlus, GradeA, GradeBPlus, GradeB, GradeC:
		return true
	}
	return false
}

// Status of a production report.
//
// Sourced independently from transactions.ReportStatus: the report owns this
// column, the transaction row carries its own stamp. Kept distinct on purpose.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// ProductionReport is the certificate-of-analysis record for one batch.
// Zero-or-one report exists per stock transaction (unique index on
// stock_transaction_id).
type ProductionReport struct {
	entity.BaseDocument

	// StockTransactionID references the source transaction
	StockTransactionID id.ID `db:"stock_transaction_id" json:"stockTransactionId"`

	// Required batch metadata
	BatchNumber    string    `db:"batch_number" json:"batchNumber"`
	ProductionDate time.Time `db:"production_date" json:"productionDate"`
	Supervisor     string    `db:"supervisor" json:"supervisor"`
	Operator       string    `db:"operator" json:"operator"`

	QualityGrade QualityGrade `db:"quality_grade" json:"qualityGrade"`
	Status       Status       `db:"status" json:"status"`

	// Fields holds the optional measurement set (JSONB column).
	// Every member is either absent or a value of its declared kind;
	// sanitization guarantees no empty strings or nulls survive.
	Fields ReportFields `db:"fields" json:"fields"`
}

// NewProductionReport creates a pending report for a transaction.
func NewProductionReport(stockTransactionID id.ID) *ProductionReport {
	return &ProductionReport{
		BaseDocument:       entity.NewBaseDocument(),
		StockTransactionID: stockTransactionID,
		ProductionDate:     time.Now().UTC(),
		QualityGrade:       GradeA,
		Status:             StatusPending,
	}
}

// Validate implements entity.Validatable.
// Collects every violated required-field rule into a single validation error
// so the client can render all of them at once.
func (r *ProductionReport) Validate(ctx context.Context) error {
	fields := make(map[string]string)

	if r.BatchNumber == "" {
		fields["batchNumber"] = "Batch number is required"
	}
	if r.ProductionDate.IsZero() {
		fields["productionDate"] = "Production date is required"
	}
	if r.Supervisor == "" {
		fields["supervisor"] = "Supervisor name is required"
	}
	if r.Operator == "" {
		fields["operator"] = "Operator name is required"
	}

	if len(fields) > 0 {
		return apperror.NewFieldValidation(fields)
	}

	if id.IsNil(r.StockTransactionID) {
		return apperror.NewValidation("stock transaction is required").
			WithDetail("field", "stockTransactionId")
	}

	if !r.QualityGrade.IsValid() {
		return apperror.NewValidation("unknown quality grade").
			WithDetail("field", "qualityGrade").
			WithDetail("value", string(r.QualityGrade))
	}

	return nil
}

// DefaultBatchNumber synthesizes the batch number suggested for a new
// report: "PVC-" followed by the date in compact form, e.g. PVC-20260828.
// Applied only when the caller has not supplied one and no existing report
// provides one.
func DefaultBatchNumber(now time.Time) string {
	return fmt.Sprintf("PVC-%s", now.Format("20060102"))
}

// ReportFields is the flat optional measurement set, grouped into semantic
// categories. Embedding keeps the JSON wire format flat while the Go model
// stays structured. All members are optional; pointer types distinguish
// "absent" from zero.
type ReportFields struct {
	RawMaterials
	ProcessParameters
	QualityProperties
	Efficiency
	Equipment
	Compliance
	Storage
	DefectTracking
	Notes
}

// RawMaterials covers the generic ingredient slots and the PVC-specific
// formulation quantities.
type RawMaterials struct {
	RawMaterial1Name     *string  `json:"rawMaterial1Name,omitempty"`
	RawMaterial1Quantity *float64 `json:"rawMaterial1Quantity,omitempty"`
	RawMaterial1Unit     *string  `json:"rawMaterial1Unit,omitempty"`
	RawMaterial2Name     *string  `json:"rawMaterial2Name,omitempty"`
	RawMaterial2Quantity *float64 `json:"rawMaterial2Quantity,omitempty"`
	RawMaterial2Unit     *string  `json:"rawMaterial2Unit,omitempty"`
	RawMaterial3Name     *string  `json:"rawMaterial3Name,omitempty"`
	RawMaterial3Quantity *float64 `json:"rawMaterial3Quantity,omitempty"`
	RawMaterial3Unit     *string  `json:"rawMaterial3Unit,omitempty"`
	RawMaterial4Name     *string  `json:"rawMaterial4Name,omitempty"`
	RawMaterial4Quantity *float64 `json:"rawMaterial4Quantity,omitempty"`
	RawMaterial4Unit     *string  `json:"rawMaterial4Unit,omitempty"`
	RawMaterial5Name     *string  `json:"rawMaterial5Name,omitempty"`
	RawMaterial5Quantity *float64 `json:"rawMaterial5Quantity,omitempty"`
	RawMaterial5Unit     *string  `json:"rawMaterial5Unit,omitempty"`

	PVCResinQuantity          *float64 `json:"pvcResinQuantity,omitempty"`
	PVCResinGrade             *string  `json:"pvcResinGrade,omitempty"`
	StabilizerType            *string  `json:"stabilizerType,omitempty"`
	StabilizerQuantity        *float64 `json:"stabilizerQuantity,omitempty"`
	PlasticizerType           *string  `json:"plasticizerType,omitempty"`
	PlasticizerQuantity       *float64 `json:"plasticizerQuantity,omitempty"`
	InternalLubricantQuantity *float64 `json:"internalLubricantQuantity,omitempty"`
	ExternalLubricantQuantity *float64 `json:"externalLubricantQuantity,omitempty"`
	ImpactModifierQuantity    *float64 `json:"impactModifierQuantity,omitempty"`
	ProcessingAidQuantity     *float64 `json:"processingAidQuantity,omitempty"`
	FillerType                *string  `json:"fillerType,omitempty"`
	FillerQuantity            *float64 `json:"fillerQuantity,omitempty"`
	TitaniumDioxideQuantity   *float64 `json:"titaniumDioxideQuantity,omitempty"`
	PigmentType               *string  `json:"pigmentType,omitempty"`
	PigmentQuantity           *float64 `json:"pigmentQuantity,omitempty"`
}

// ProcessParameters covers polymerization, mixing and extrusion settings.
type ProcessParameters struct {
	PolymerizationTemp     *float64 `json:"polymerizationTemp,omitempty"`
	PolymerizationPressure *float64 `json:"polymerizationPressure,omitempty"`
	PolymerizationTime     *float64 `json:"polymerizationTime,omitempty"`
	ConversionRate         *float64 `json:"conversionRate,omitempty"`
	VCMRecovery            *float64 `json:"vcmRecovery,omitempty"`

	MixerSpeed   *float64 `json:"mixerSpeed,omitempty"`
	MixingTemp   *float64 `json:"mixingTemp,omitempty"`
	MixingTime   *float64 `json:"mixingTime,omitempty"`
	DryBlendTime *float64 `json:"dryBlendTime,omitempty"`
	GelationTime *float64 `json:"gelationTime,omitempty"`

	ExtruderZone1Temp *float64 `json:"extruderZone1Temp,omitempty"`
	ExtruderZone2Temp *float64 `json:"extruderZone2Temp,omitempty"`
	ExtruderZone3Temp *float64 `json:"extruderZone3Temp,omitempty"`
	ExtruderZone4Temp *float64 `json:"extruderZone4Temp,omitempty"`
	DieTemp           *float64 `json:"dieTemp,omitempty"`
	ScrewSpeed        *float64 `json:"screwSpeed,omitempty"`
	MeltPressure      *float64 `json:"meltPressure,omitempty"`
	MeltTemp          *float64 `json:"meltTemp,omitempty"`
}

// QualityProperties covers the measured physical, mechanical, thermal,
// chemical, processing, water, environmental and visual test results.
type QualityProperties struct {
	// Physical
	Density         *float64 `json:"density,omitempty"`
	BulkDensity     *float64 `json:"bulkDensity,omitempty"`
	KValue          *float64 `json:"kValue,omitempty"`
	ViscosityNumber *float64 `json:"viscosityNumber,omitempty"`
	ParticleSize    *float64 `json:"particleSize,omitempty"`
	MoistureContent *float64 `json:"moistureContent,omitempty"`
	VolatileContent *float64 `json:"volatileContent,omitempty"`

	// Mechanical
	TensileStrength    *float64 `json:"tensileStrength,omitempty"`
	ElongationAtBreak  *float64 `json:"elongationAtBreak,omitempty"`
	FlexuralModulus    *float64 `json:"flexuralModulus,omitempty"`
	IzodImpactStrength *float64 `json:"izodImpactStrength,omitempty"`
	HardnessShoreD     *float64 `json:"hardnessShoreD,omitempty"`

	// Thermal
	VicatSofteningPoint  *float64 `json:"vicatSofteningPoint,omitempty"`
	HeatDeflectionTemp   *float64 `json:"heatDeflectionTemp,omitempty"`
	ThermalStabilityTime *float64 `json:"thermalStabilityTime,omitempty"`
	CongoRedTest         *float64 `json:"congoRedTest,omitempty"`

	// Chemical
	ChlorineContent    *float64 `json:"chlorineContent,omitempty"`
	ResidualVCM        *float64 `json:"residualVcm,omitempty"`
	SulfatedAshContent *float64 `json:"sulfatedAshContent,omitempty"`
	HeavyMetalsResult  *string  `json:"heavyMetalsResult,omitempty"`

	// Processing
	MeltFlowIndex  *float64 `json:"meltFlowIndex,omitempty"`
	FishEyeCount   *float64 `json:"fishEyeCount,omitempty"`
	GelationLevel  *string  `json:"gelationLevel,omitempty"`
	PlateOutRating *string  `json:"plateOutRating,omitempty"`

	// Water
	WaterAbsorption *float64 `json:"waterAbsorption,omitempty"`
	PHValue         *float64 `json:"phValue,omitempty"`
	ClarityRating   *string  `json:"clarityRating,omitempty"`

	// Environmental (test conditions)
	TestTemperature *float64 `json:"testTemperature,omitempty"`
	TestHumidity    *float64 `json:"testHumidity,omitempty"`

	// Visual
	ColorValueL        *float64 `json:"colorValueL,omitempty"`
	ColorValueA        *float64 `json:"colorValueA,omitempty"`
	ColorValueB        *float64 `json:"colorValueB,omitempty"`
	WhitenessIndex     *float64 `json:"whitenessIndex,omitempty"`
	VisualInspection   *string  `json:"visualInspection,omitempty"`
	ContaminationLevel *string  `json:"contaminationLevel,omitempty"`
}

// Efficiency covers production-efficiency metrics for the batch.
type Efficiency struct {
	YieldPercentage   *float64 `json:"yieldPercentage,omitempty"`
	WasteQuantity     *float64 `json:"wasteQuantity,omitempty"`
	ReworkQuantity    *float64 `json:"reworkQuantity,omitempty"`
	EnergyConsumption *float64 `json:"energyConsumption,omitempty"`
	WaterConsumption  *float64 `json:"waterConsumption,omitempty"`
	SteamConsumption  *float64 `json:"steamConsumption,omitempty"`
	CycleTime         *float64 `json:"cycleTime,omitempty"`
	ThroughputRate    *float64 `json:"throughputRate,omitempty"`
	DowntimeMinutes   *float64 `json:"downtimeMinutes,omitempty"`
}

// Equipment references the machines used for the batch.
type Equipment struct {
	Equipment1 *string `json:"equipment1,omitempty"`
	Equipment2 *string `json:"equipment2,omitempty"`
	Equipment3 *string `json:"equipment3,omitempty"`
	Equipment4 *string `json:"equipment4,omitempty"`
	Equipment5 *string `json:"equipment5,omitempty"`
}

// Compliance covers standards conformance declarations.
type Compliance struct {
	QualityStandard *string `json:"qualityStandard,omitempty"`
	TestMethod      *string `json:"testMethod,omitempty"`
	ASTMCompliance  *bool   `json:"astmCompliance,omitempty"`
	ISOCompliance   *bool   `json:"isoCompliance,omitempty"`
}

// Storage covers post-production storage and packaging.
type Storage struct {
	StorageLocation *string  `json:"storageLocation,omitempty"`
	StorageTemp     *float64 `json:"storageTemp,omitempty"`
	ShelfLifeMonths *float64 `json:"shelfLifeMonths,omitempty"`
	PackagingType   *string  `json:"packagingType,omitempty"`
}

// DefectTracking covers recorded defects and their handling.
type DefectTracking struct {
	DefectType       *string  `json:"defectType,omitempty"`
	DefectCount      *float64 `json:"defectCount,omitempty"`
	DefectSeverity   *string  `json:"defectSeverity,omitempty"`
	CorrectiveAction *string  `json:"correctiveAction,omitempty"`
}

// Notes holds the free-text note fields.
type Notes struct {
	Remarks         *string `json:"remarks,omitempty"`
	QualityNotes    *string `json:"qualityNotes,omitempty"`
	ProductionNotes *string `json:"productionNotes,omitempty"`
}
