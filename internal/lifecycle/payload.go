package lifecycle

import (
	"strconv"
	"strings"
	"time"

	"lead-system/pkg/constants"
	apperrors "lead-system/pkg/errors"
	"lead-system/pkg/utils"
)

const (
	dateSuffix = "_date"
	timeSuffix = "_time"
)

// Validate shapes a raw submitted field set against the target state's
// schema. Unknown fields are dropped silently; missing required fields,
// unparseable numbers, invalid calendar values and foreign sub-states are
// typed errors. The normalized map holds string, float64 and time.Time
// values only.
func Validate(
	target constants.RecordState,
	subState constants.SubState,
	raw map[string]string,
	product constants.ProductType,
) (map[string]interface{}, error) {
	spec, ok := Spec(target)
	if !ok {
		return nil, apperrors.NewValidationError(apperrors.UnknownState, string(target))
	}

	if subState != "" && !spec.AllowsSubState(subState) {
		return nil, apperrors.NewValidationError(apperrors.InvalidSubState, string(subState))
	}

	if target == constants.StateConfirmed && product != constants.ProductHeating && product != constants.ProductSolar {
		return nil, apperrors.NewValidationError(apperrors.MissingField, "product_type")
	}

	normalized := make(map[string]interface{})
	for _, f := range spec.Fields {
		if !f.relevantFor(product) {
			continue
		}
		switch f.Kind {
		case FieldText:
			v := strings.TrimSpace(raw[f.Name])
			if v == "" {
				if f.Required {
					return nil, apperrors.NewValidationError(apperrors.MissingField, f.Name)
				}
				continue
			}
			normalized[f.Name] = v

		case FieldNumber:
			v := strings.TrimSpace(raw[f.Name])
			if v == "" {
				if f.Required {
					return nil, apperrors.NewValidationError(apperrors.MissingField, f.Name)
				}
				continue
			}
			n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
			if err != nil {
				return nil, apperrors.NewValidationError(apperrors.InvalidNumber, f.Name)
			}
			normalized[f.Name] = n

		case FieldDateTime:
			ts, present, err := combineField(raw, f.Name)
			if err != nil {
				return nil, err
			}
			if !present {
				if f.Required {
					return nil, apperrors.NewValidationError(apperrors.MissingField, f.Name)
				}
				continue
			}
			normalized[f.Name] = ts
		}
	}

	// A reschedule/callback transition that names neither a date nor a time
	// would silently no-op; reject it instead.
	if constants.IsRescheduleFamily(target) && !hasAnyDateTimeInput(spec, raw) {
		return nil, apperrors.NewValidationError(apperrors.MissingReschedulePoint, "")
	}

	return normalized, nil
}

// combineField merges "<name>_date" and "<name>_time" into one timestamp.
// A time without a date is read against today, mirroring "call back at 15:00"
// style input.
func combineField(raw map[string]string, name string) (time.Time, bool, error) {
	dateStr := strings.TrimSpace(raw[name+dateSuffix])
	timeStr := strings.TrimSpace(raw[name+timeSuffix])
	if dateStr == "" && timeStr == "" {
		return time.Time{}, false, nil
	}
	if dateStr == "" {
		dateStr = time.Now().Format(utils.DateLayout)
	}
	ts, err := utils.CombineDateTime(dateStr, timeStr)
	if err != nil {
		return time.Time{}, false, apperrors.NewValidationError(apperrors.InvalidDate, name)
	}
	return ts, true, nil
}

func hasAnyDateTimeInput(spec StateSpec, raw map[string]string) bool {
	for _, f := range spec.Fields {
		if f.Kind != FieldDateTime {
			continue
		}
		if strings.TrimSpace(raw[f.Name+dateSuffix]) != "" || strings.TrimSpace(raw[f.Name+timeSuffix]) != "" {
			return true
		}
	}
	return false
}

// HasNewSlotInput reports whether the raw submission supplies an appointment
// date or time, used to detect a commercial creating a brand-new slot.
func HasNewSlotInput(raw map[string]string) bool {
	return strings.TrimSpace(raw[FieldAppointment+dateSuffix]) != "" ||
		strings.TrimSpace(raw[FieldAppointment+timeSuffix]) != ""
}
