package workflow

import (
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
)

// Phase names the states of the optimization workflow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseModeChoice
	PhaseBrowsing
	PhaseConfirming
	PhaseExecuting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseModeChoice:
		return "mode-choice"
	case PhaseBrowsing:
		return "browsing"
	case PhaseConfirming:
		return "confirming"
	case PhaseExecuting:
		return "executing"
	}
	return "unknown"
}

// State is the current step of the workflow. Only the types below implement
// it; the data each step needs travels with it.
type State interface {
	Phase() Phase
	isState()
}

// Idle: no credentials yet.
type Idle struct{}

// ChoosingMode follows a successful credential validation.
type ChoosingMode struct{}

// Browsing covers the technique catalog and the findings view.
type Browsing struct{}

// Confirming holds the confirmation dialog. Input is the phrase typed so
// far and Mismatch the last failed attempt, if any.
type Confirming struct {
	Input    string
	Mismatch *MismatchError
}

// Executing waits for the optimize call identified by Call.
type Executing struct {
	Call OptimizeCall
}

func (Idle) Phase() Phase         { return PhaseIdle }
func (ChoosingMode) Phase() Phase { return PhaseModeChoice }
func (Browsing) Phase() Phase     { return PhaseBrowsing }
func (Confirming) Phase() Phase   { return PhaseConfirming }
func (Executing) Phase() Phase    { return PhaseExecuting }

func (Idle) isState()         {}
func (ChoosingMode) isState() {}
func (Browsing) isState()     {}
func (Confirming) isState()   {}
func (Executing) isState()    {}

// Mode selects between previewing and performing an optimization.
type Mode int

const (
	ModeDryRun Mode = iota
	ModeLive
)

func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "dry-run"
}

// CallKind identifies a remote call; at most one of each kind is in flight.
type CallKind int

const (
	CallCheck CallKind = iota
	CallValidate
	CallTechniques
	CallAnalyze
	CallOptimize
	CallClear
)

func (k CallKind) String() string {
	switch k {
	case CallCheck:
		return "check"
	case CallValidate:
		return "validate"
	case CallTechniques:
		return "techniques"
	case CallAnalyze:
		return "analyze"
	case CallOptimize:
		return "optimize"
	case CallClear:
		return "clear"
	}
	return "unknown"
}

// Ticket is handed out when a call starts and must be presented with its
// result. A ticket from an older navigation generation is stale.
type Ticket struct {
	Kind       CallKind
	seq        uint64
	generation uint64
}

// AnalyzeCall describes an analysis request to issue.
type AnalyzeCall struct {
	Ticket    Ticket
	Technique entity.Technique
	Region    string
}

// OptimizeCall describes the single optimize request of an execution.
type OptimizeCall struct {
	Ticket      Ticket
	TechniqueID string
	Request     entity.OptimizeRequest
}
