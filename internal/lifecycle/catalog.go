package lifecycle

import "lead-system/pkg/constants"

type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
	// FieldDateTime is a composite: raw input carries "<name>_date" and
	// "<name>_time" strings, normalization emits one timestamp under "<name>".
	FieldDateTime
)

// Field describes one state-specific payload attribute. Products narrows the
// field to a product line; empty means the field applies to every product.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	Products []constants.ProductType
}

// StateSpec is the static description of one record state: whether a
// structured payload is mandatory, which sub-states are allowed, and the
// field schema the payload must satisfy.
type StateSpec struct {
	RequiresPayload  bool
	AllowedSubStates []constants.SubState
	Fields           []Field
}

func (s StateSpec) AllowsSubState(sub constants.SubState) bool {
	for _, v := range s.AllowedSubStates {
		if v == sub {
			return true
		}
	}
	return false
}

const (
	FieldAppointment      = "appointment"
	FieldCallback         = "callback"
	FieldSignature        = "signature"
	FieldWithdrawal       = "withdrawal"
	FieldPrice            = "price"
	FieldFinancingMonths  = "financing_months"
	FieldMonthlyPayment   = "monthly_payment"
	FieldBonus            = "bonus"
	FieldCreditAmount     = "credit_amount"
	FieldDeposit          = "deposit"
	FieldInstallerRef     = "installer_reference"
	FieldComment          = "comment"
	FieldRoofOrientation  = "roof_orientation"
	FieldShading          = "shading"
	FieldSiteClass        = "site_classification"
	FieldPanelCount       = "panel_count"
	FieldHeatedSurface    = "heated_surface"
	FieldAnnualConsum     = "annual_consumption"
	FieldHeatingMode      = "heating_mode"
	FieldSystemAge        = "system_age"
)

var solar = []constants.ProductType{constants.ProductSolar}
var heating = []constants.ProductType{constants.ProductHeating}

// productFields are the visit-sheet attributes relevant from the confirmed
// appointment onwards, gated by the record's product line.
var productFields = []Field{
	{Name: FieldRoofOrientation, Kind: FieldText, Products: solar},
	{Name: FieldShading, Kind: FieldText, Products: solar},
	{Name: FieldSiteClass, Kind: FieldText, Products: solar},
	{Name: FieldPanelCount, Kind: FieldNumber, Products: solar},
	{Name: FieldHeatedSurface, Kind: FieldNumber, Products: heating},
	{Name: FieldAnnualConsum, Kind: FieldNumber, Products: heating},
	{Name: FieldHeatingMode, Kind: FieldText, Products: heating},
	{Name: FieldSystemAge, Kind: FieldNumber, Products: heating},
}

var signedFields = append([]Field{
	{Name: FieldSignature, Kind: FieldDateTime, Required: true},
	{Name: FieldPrice, Kind: FieldNumber, Required: true},
	{Name: FieldFinancingMonths, Kind: FieldNumber, Required: true},
	{Name: FieldMonthlyPayment, Kind: FieldNumber},
	{Name: FieldBonus, Kind: FieldNumber},
	{Name: FieldCreditAmount, Kind: FieldNumber},
	{Name: FieldDeposit, Kind: FieldNumber},
	{Name: FieldInstallerRef, Kind: FieldText},
	{Name: FieldComment, Kind: FieldText},
}, productFields...)

var commentOnly = []Field{
	{Name: FieldComment, Kind: FieldText},
}

// catalog is the single source of truth for state semantics. Adding a state
// is a data change here, not a code change in the engine.
var catalog = map[constants.RecordState]StateSpec{
	constants.StateNew: {},
	constants.StateNRP: {
		RequiresPayload: true,
		AllowedSubStates: []constants.SubState{
			constants.SubNRPFirstAttempt,
			constants.SubNRPSecondAttempt,
			constants.SubNRPVoicemail,
		},
		Fields: []Field{
			{Name: FieldCallback, Kind: FieldDateTime, Required: true},
			{Name: FieldComment, Kind: FieldText},
		},
	},
	constants.StateConfirmed: {
		RequiresPayload: true,
		Fields: append([]Field{
			{Name: FieldAppointment, Kind: FieldDateTime, Required: true},
			{Name: FieldComment, Kind: FieldText},
		}, productFields...),
	},
	constants.StateCancelReschedule: {
		AllowedSubStates: []constants.SubState{
			constants.SubCancelClient,
			constants.SubCancelCommercial,
		},
		Fields: []Field{
			{Name: FieldAppointment, Kind: FieldDateTime},
			{Name: FieldComment, Kind: FieldText},
		},
	},
	constants.StateClientThinking: {
		AllowedSubStates: []constants.SubState{
			constants.SubThinkingSpouse,
			constants.SubThinkingFinancing,
			constants.SubThinkingCallback,
		},
		Fields: []Field{
			{Name: FieldCallback, Kind: FieldDateTime},
			{Name: FieldComment, Kind: FieldText},
		},
	},
	constants.StateRefused: {
		AllowedSubStates: []constants.SubState{
			constants.SubRefusedPrice,
			constants.SubRefusedTiming,
			constants.SubRefusedCompetitor,
			constants.SubRefusedNotInterested,
		},
		Fields: commentOnly,
	},
	constants.StateSigned:         {RequiresPayload: true, Fields: signedFields},
	constants.StateSignedPartial:  {RequiresPayload: true, Fields: signedFields},
	constants.StateSignedComplete: {RequiresPayload: true, Fields: signedFields},
	constants.StateSignedWithdrawn: {
		AllowedSubStates: []constants.SubState{
			constants.SubWithdrawnCoolingOff,
			constants.SubWithdrawnFinancingDenied,
		},
		Fields: []Field{
			{Name: FieldWithdrawal, Kind: FieldDateTime},
			{Name: FieldComment, Kind: FieldText},
		},
	},
	constants.StateCallbackOffice: {
		Fields: []Field{
			{Name: FieldCallback, Kind: FieldDateTime},
			{Name: FieldComment, Kind: FieldText},
		},
	},
	constants.StateUnreachableFinancing: {
		Fields: []Field{
			{Name: FieldCreditAmount, Kind: FieldNumber},
			{Name: FieldComment, Kind: FieldText},
		},
	},
	constants.StateOutOfScope: {Fields: commentOnly},
}

// Spec returns the catalog entry for a state; ok is false for unknown states,
// which callers must treat as a hard validation error.
func Spec(state constants.RecordState) (StateSpec, bool) {
	spec, ok := catalog[state]
	return spec, ok
}

// States lists every known state code.
func States() []constants.RecordState {
	out := make([]constants.RecordState, 0, len(catalog))
	for s := range catalog {
		out = append(out, s)
	}
	return out
}

// relevantFor reports whether a field applies to the record's product line.
func (f Field) relevantFor(product constants.ProductType) bool {
	if len(f.Products) == 0 {
		return true
	}
	for _, p := range f.Products {
		if p == product {
			return true
		}
	}
	return false
}

// SchemaFieldNames returns the set of normalized field names the target
// state's schema admits for the given product. Anything outside this set is
// cleared from a record's structured fields on transition.
func SchemaFieldNames(state constants.RecordState, product constants.ProductType) map[string]bool {
	spec, ok := catalog[state]
	if !ok {
		return map[string]bool{}
	}
	names := make(map[string]bool, len(spec.Fields))
	for _, f := range spec.Fields {
		if f.relevantFor(product) {
			names[f.Name] = true
		}
	}
	return names
}
