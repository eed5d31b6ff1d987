package models

import (
	dErrors "teranga/pkg/domain-errors"
)

// Step is a funnel stage.
type Step string

const (
	StepPersonal     Step = "personal"
	StepProfessional Step = "professional"
	StepResidency    Step = "residency"
	StepKYC          Step = "kyc"
)

// Steps is the funnel order.
var Steps = []Step{StepPersonal, StepProfessional, StepResidency, StepKYC}

// ProfilePath is where locked or finished buyers are sent.
const ProfilePath = "/profile"

func (s Step) Path() string {
	return "/purchase/" + string(s)
}

func (s Step) IsValid() bool {
	return StepIndex(s.Path()) >= 0
}

// ParseStep accepts a step name such as "residency".
func ParseStep(raw string) (Step, error) {
	s := Step(raw)
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown funnel step")
	}
	return s, nil
}

// StepIndex maps a step path to its position, -1 when unknown.
func StepIndex(path string) int {
	for i, s := range Steps {
		if s.Path() == path {
			return i
		}
	}
	return -1
}

// StepState describes one entry of the progress indicator.
type StepState struct {
	Step      Step   `json:"step"`
	Path      string `json:"path"`
	Completed bool   `json:"completed"`
	Skipped   bool   `json:"skipped"`
	Current   bool   `json:"current"`
	Disabled  bool   `json:"disabled"`
}

// Resolution is what a buyer sees when opening a funnel step.
type Resolution struct {
	CurrentStep Step        `json:"current_step"`
	Editable    bool        `json:"editable"`
	Locked      bool        `json:"locked"`
	RedirectTo  string      `json:"redirect_to,omitempty"`
	KYCStatus   KYCStatus   `json:"kyc_status"`
	Steps       []StepState `json:"steps"`
}

// Resolve decides where a buyer asking for requested actually lands.
// profile may be nil before the first submission.
func Resolve(profile *Profile, requested Step) Resolution {
	status := profile.KYCStatus()
	locked := profile.IsLocked()

	if locked {
		if requested != StepKYC {
			return build(profile, requested, status, false, true, ProfilePath)
		}
		return build(profile, StepKYC, status, false, true, "")
	}

	target := landing(profile, requested)
	redirect := ""
	if target != requested {
		redirect = target.Path()
	}
	return build(profile, target, status, true, false, redirect)
}

// landing applies prerequisites and the on-load skips to requested.
func landing(p *Profile, requested Step) Step {
	if requested == StepPersonal {
		return StepPersonal
	}
	if !p.HasPersonalInfo() {
		return StepPersonal
	}
	if !p.HasProfessionalInfo() {
		return StepProfessional
	}
	// Professional answers exist: professional, residency and kyc all move
	// on to the first step still open.
	if p.HasEuropeanPhone() && !p.HasEUResidency.IsSet() {
		return StepResidency
	}
	return StepKYC
}

// NextAfterProfessional is the branch taken after the professional step.
func NextAfterProfessional(p *Profile) Step {
	if p.HasEuropeanPhone() {
		return StepResidency
	}
	return StepKYC
}

// CanSubmit refuses any funnel mutation once verification has started.
func CanSubmit(p *Profile, step Step) error {
	if !step.IsValid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown funnel step")
	}
	if p.IsLocked() {
		return dErrors.New(dErrors.CodeProfileLocked,
			"identity verification has started; profile answers can no longer be changed")
	}
	return nil
}

// build lays out the progress indicator. Residency is reported as skipped,
// not completed, once a buyer without a European phone has moved past it.
func build(p *Profile, current Step, status KYCStatus, editable, locked bool, redirect string) Resolution {
	currentIndex := StepIndex(current.Path())
	states := make([]StepState, len(Steps))
	for i, s := range Steps {
		passed := i < currentIndex
		skipped := passed && s == StepResidency && !p.HasEuropeanPhone()
		states[i] = StepState{
			Step:      s,
			Path:      s.Path(),
			Completed: passed && !skipped,
			Skipped:   skipped,
			Current:   i == currentIndex,
			Disabled:  locked || i > currentIndex+1,
		}
	}
	return Resolution{
		CurrentStep: current,
		Editable:    editable,
		Locked:      locked,
		RedirectTo:  redirect,
		KYCStatus:   status,
		Steps:       states,
	}
}

// ReadyForKYC reports whether every step before kyc has been answered.
func ReadyForKYC(p *Profile) bool {
	return landing(p, StepKYC) == StepKYC
}
