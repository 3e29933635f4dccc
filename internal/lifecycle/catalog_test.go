package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-system/pkg/constants"
)

func TestCatalog_EveryStateResolvable(t *testing.T) {
	for _, s := range States() {
		_, ok := Spec(s)
		require.True(t, ok, string(s))
	}
	_, ok := Spec(constants.RecordState("NOPE"))
	assert.False(t, ok)
}

func TestCatalog_PayloadStatesHaveRequiredFields(t *testing.T) {
	for _, s := range States() {
		spec, _ := Spec(s)
		if !spec.RequiresPayload {
			continue
		}
		hasRequired := false
		for _, f := range spec.Fields {
			if f.Required {
				hasRequired = true
			}
		}
		assert.True(t, hasRequired, "state %s requires a payload but lists no required field", s)
	}
}

func TestCatalog_SubStatesBelongToOneState(t *testing.T) {
	owner := map[constants.SubState]constants.RecordState{}
	for _, s := range States() {
		spec, _ := Spec(s)
		for _, sub := range spec.AllowedSubStates {
			prev, dup := owner[sub]
			require.False(t, dup, "sub-state %s owned by both %s and %s", sub, prev, s)
			owner[sub] = s
		}
	}
}
