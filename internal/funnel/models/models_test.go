package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "teranga/pkg/domain-errors"
)

func senegalese() *Profile {
	return &Profile{
		FirstName: "Awa",
		LastName:  "Diallo",
		Country:   "SN",
		Phone:     "+221771234567",
	}
}

func TestResolveWithoutProfile(t *testing.T) {
	for _, step := range Steps {
		res := Resolve(nil, step)
		assert.Equal(t, StepPersonal, res.CurrentStep, step)
		assert.True(t, res.Editable)
		assert.Equal(t, KYCNotStarted, res.KYCStatus)
		if step == StepPersonal {
			assert.Empty(t, res.RedirectTo)
		} else {
			assert.Equal(t, "/purchase/personal", res.RedirectTo)
		}
	}
}

func TestResolvePrerequisites(t *testing.T) {
	p := senegalese()

	res := Resolve(p, StepProfessional)
	assert.Equal(t, StepProfessional, res.CurrentStep)
	assert.Empty(t, res.RedirectTo)

	res = Resolve(p, StepKYC)
	assert.Equal(t, StepProfessional, res.CurrentStep)
	assert.Equal(t, "/purchase/professional", res.RedirectTo)
}

func TestResolveSkipsResidencyForNonEuropeanPhone(t *testing.T) {
	p := senegalese()
	p.ProfessionalActivity = Activities[0]
	p.RevenueRange = RevenueRanges[1]

	res := Resolve(p, StepResidency)
	assert.Equal(t, StepKYC, res.CurrentStep)
	assert.Equal(t, "/purchase/kyc", res.RedirectTo)
	assert.True(t, res.Editable)
	assert.Equal(t, StepKYC, NextAfterProfessional(p))

	residency := res.Steps[StepIndex(StepResidency.Path())]
	assert.False(t, residency.Completed)
	assert.True(t, residency.Skipped)
	assert.True(t, res.Steps[1].Completed)
	assert.False(t, res.Steps[1].Skipped)
}

func TestResolveEuropeanPhone(t *testing.T) {
	p := senegalese()
	p.Phone = " +33612345678"
	p.ProfessionalActivity = Activities[2]
	p.RevenueRange = RevenueRanges[3]

	assert.Equal(t, StepResidency, NextAfterProfessional(p))

	res := Resolve(p, StepProfessional)
	assert.Equal(t, StepResidency, res.CurrentStep)
	assert.Equal(t, "/purchase/residency", res.RedirectTo)

	p.HasEUResidency = False
	res = Resolve(p, StepResidency)
	assert.Equal(t, StepKYC, res.CurrentStep)
	assert.True(t, res.Steps[2].Completed)
	assert.False(t, res.Steps[2].Skipped)
}

func TestResolveLocked(t *testing.T) {
	for _, state := range []Tristate{False, True} {
		p := senegalese()
		p.KYCVerified = state

		for _, step := range []Step{StepPersonal, StepProfessional, StepResidency} {
			res := Resolve(p, step)
			assert.True(t, res.Locked)
			assert.False(t, res.Editable)
			assert.Equal(t, ProfilePath, res.RedirectTo)
		}

		res := Resolve(p, StepKYC)
		assert.Equal(t, StepKYC, res.CurrentStep)
		assert.False(t, res.Editable)
		assert.Empty(t, res.RedirectTo)
		for _, st := range res.Steps {
			assert.True(t, st.Disabled, st.Step)
		}

		err := CanSubmit(p, StepPersonal)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeProfileLocked))
	}
}

func TestStepStates(t *testing.T) {
	res := Resolve(senegalese(), StepProfessional)
	require.Len(t, res.Steps, 4)
	assert.True(t, res.Steps[0].Completed)
	assert.True(t, res.Steps[1].Current)
	assert.False(t, res.Steps[2].Disabled)
	assert.True(t, res.Steps[3].Disabled)
	assert.Equal(t, "/purchase/kyc", res.Steps[3].Path)
}

func TestStepIndex(t *testing.T) {
	assert.Equal(t, 0, StepIndex("/purchase/personal"))
	assert.Equal(t, 3, StepIndex("/purchase/kyc"))
	assert.Equal(t, -1, StepIndex("/purchase/payment"))

	_, err := ParseStep("payment")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

// A buyer from Dakar walks the whole funnel.
func TestDialloJourney(t *testing.T) {
	var p *Profile
	assert.Equal(t, StepPersonal, Resolve(p, StepKYC).CurrentStep)

	personal := PersonalInfo{LastName: " Diallo ", FirstName: "Awa", Country: "sn", Phone: "+221 77 123 45 67"}
	personal.Normalize()
	require.NoError(t, personal.Validate())
	p = &Profile{LastName: personal.LastName, FirstName: personal.FirstName, Country: personal.Country, Phone: personal.Phone}
	assert.Equal(t, "SN", p.Country)
	assert.Equal(t, 67, p.Completion())

	professional := ProfessionalInfo{Activity: "Entrepreneur", RevenueRange: "Plus de 5 000 000 FCFA"}
	require.NoError(t, professional.Validate())
	p.ProfessionalActivity, p.RevenueRange = professional.Activity, professional.RevenueRange
	assert.Equal(t, 100, p.Completion())
	assert.Equal(t, StepKYC, NextAfterProfessional(p))

	res := Resolve(p, StepKYC)
	assert.True(t, res.Editable)
	assert.Equal(t, KYCNotStarted, res.KYCStatus)
	require.NoError(t, CanSubmit(p, StepKYC))

	p.KYCVerified = True
	assert.Equal(t, KYCVerified, p.KYCStatus())
	assert.Equal(t, ProfilePath, Resolve(p, StepPersonal).RedirectTo)
}

func TestPersonalInfoValidation(t *testing.T) {
	info := PersonalInfo{LastName: "Diallo", FirstName: "Awa", Country: "US", Phone: "+1"}
	assert.True(t, dErrors.HasCode(info.Validate(), dErrors.CodeValidation))

	info = PersonalInfo{FirstName: "Awa", Country: "SN", Phone: "+221"}
	assert.True(t, dErrors.HasCode(info.Validate(), dErrors.CodeValidation))
}

func TestProfessionalInfoValidation(t *testing.T) {
	err := ProfessionalInfo{Activity: "Astronaute", RevenueRange: RevenueRanges[0]}.Validate()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestTristateJSON(t *testing.T) {
	for _, tc := range []struct {
		state Tristate
		json  string
	}{{Unset, "null"}, {True, "true"}, {False, "false"}} {
		out, err := json.Marshal(tc.state)
		require.NoError(t, err)
		assert.JSONEq(t, tc.json, string(out))

		var back Tristate
		require.NoError(t, json.Unmarshal(out, &back))
		assert.Equal(t, tc.state, back)
	}
}

func TestTristateScan(t *testing.T) {
	var ts Tristate
	require.NoError(t, ts.Scan(nil))
	assert.False(t, ts.IsSet())
	require.NoError(t, ts.Scan(true))
	assert.True(t, ts.IsTrue())

	v, err := False.Value()
	require.NoError(t, err)
	assert.Equal(t, false, v)
	v, err = Unset.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
