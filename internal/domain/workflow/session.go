package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultRegion is used when credentials don't carry one.
const DefaultRegion = "us-east-1"

// Session owns every piece of mutable client state: credentials, catalog,
// current analysis, selection and the workflow state. It is not safe for
// concurrent use; all mutation happens on the single control thread, remote
// results come back through the Complete* methods.
type Session struct {
	state  State
	mode   Mode
	strict bool
	region string

	credentials *entity.Credentials
	techniques  []entity.Technique
	analysis    *entity.AnalysisResult
	selection   *Selection
	analyzing   *entity.Technique

	validationErr error
	banner        error

	generation uint64
	seq        uint64
	pending    map[CallKind]uint64
}

// Option configures a Session.
type Option func(*Session)

// WithStrictConfirmation disables the first-word shortcut when confirming a
// live optimization.
func WithStrictConfirmation(strict bool) Option {
	return func(s *Session) { s.strict = strict }
}

// WithDefaultRegion sets the region used for restored credentials.
func WithDefaultRegion(region string) Option {
	return func(s *Session) {
		if region != "" {
			s.region = region
		}
	}
}

// NewSession creates a session in the Idle state, dry-run mode.
func NewSession(opts ...Option) *Session {
	s := &Session{
		state:   Idle{},
		mode:    ModeDryRun,
		region:  DefaultRegion,
		pending: make(map[CallKind]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// --- Accessors ---

func (s *Session) State() State { return s.state }

func (s *Session) Phase() Phase { return s.state.Phase() }

func (s *Session) Mode() Mode { return s.mode }

func (s *Session) StrictConfirmation() bool { return s.strict }

// LoggedIn reports whether valid credentials are held.
func (s *Session) LoggedIn() bool {
	return s.credentials != nil && s.credentials.Valid
}

// Credentials returns a copy of the held credentials, nil when logged out.
func (s *Session) Credentials() *entity.Credentials {
	if s.credentials == nil {
		return nil
	}
	c := *s.credentials
	return &c
}

// Region returns the region calls are made against.
func (s *Session) Region() string {
	if s.credentials != nil && s.credentials.Region != "" {
		return s.credentials.Region
	}
	return s.region
}

func (s *Session) Techniques() []entity.Technique {
	return s.techniques
}

// Technique looks up a catalog entry by id.
func (s *Session) Technique(id string) (entity.Technique, bool) {
	for _, t := range s.techniques {
		if t.ID == id {
			return t, true
		}
	}
	return entity.Technique{}, false
}

// Analysis returns the current analysis, nil while on the catalog.
func (s *Session) Analysis() *entity.AnalysisResult { return s.analysis }

// Selection returns the selection over the current findings, nil without
// an analysis.
func (s *Session) Selection() *Selection { return s.selection }

// Analyzing returns the technique of the analysis in flight, if any.
func (s *Session) Analyzing() (entity.Technique, bool) {
	if s.analyzing == nil {
		return entity.Technique{}, false
	}
	return *s.analyzing, true
}

// ValidationError is the last credential validation failure.
func (s *Session) ValidationError() error { return s.validationErr }

// Banner is the last analysis or optimization failure.
func (s *Session) Banner() error { return s.banner }

// DismissBanner clears the banner error.
func (s *Session) DismissBanner() { s.banner = nil }

// Busy reports whether a call of the given kind is in flight.
func (s *Session) Busy(kind CallKind) bool {
	_, ok := s.pending[kind]
	return ok
}

// AnyBusy reports whether any call is in flight.
func (s *Session) AnyBusy() bool {
	return len(s.pending) > 0
}

// SelectedSavings sums the savings of the selected findings.
func (s *Session) SelectedSavings() decimal.Decimal {
	if s.analysis == nil || s.selection == nil {
		return decimal.Zero
	}
	return Savings(s.analysis.Findings, s.selection.Set())
}

// --- Call bookkeeping ---

// Begin reserves the slot for a call of the given kind.
func (s *Session) Begin(kind CallKind) (Ticket, error) {
	if _, ok := s.pending[kind]; ok {
		return Ticket{}, fmt.Errorf("%s: %w", kind, ErrCallPending)
	}
	s.seq++
	s.pending[kind] = s.seq
	return Ticket{Kind: kind, seq: s.seq, generation: s.generation}, nil
}

// finish releases the slot of t and reports whether its result still applies.
func (s *Session) finish(t Ticket) error {
	seq, ok := s.pending[t.Kind]
	if !ok || seq != t.seq {
		return ErrStaleResult
	}
	delete(s.pending, t.Kind)
	if t.generation != s.generation {
		return ErrStaleResult
	}
	return nil
}

// --- Credentials ---

// CompleteCheck applies the answer of the saved-credentials check. Valid
// credentials restored this way skip the mode choice and start in dry-run.
func (s *Session) CompleteCheck(t Ticket, status *entity.CredentialStatus, callErr error) error {
	if err := s.finish(t); err != nil {
		return err
	}
	if callErr != nil {
		return callErr
	}
	if status == nil || !status.Valid || s.LoggedIn() {
		return nil
	}
	s.credentials = &entity.Credentials{
		Valid:     true,
		User:      status.User,
		AccountID: status.AccountID,
		ARN:       status.ARN,
		Region:    s.region,
	}
	s.mode = ModeDryRun
	s.state = Browsing{}
	return nil
}

// BeginValidate checks the form locally and reserves the validate call.
// Local problems are reported like remote ones: inline, resubmittable.
func (s *Session) BeginValidate(input entity.CredentialInput) (Ticket, error) {
	if _, ok := s.state.(Idle); !ok {
		return Ticket{}, ErrInvalidState
	}
	if strings.TrimSpace(input.AccessKey) == "" || strings.TrimSpace(input.SecretKey) == "" {
		s.validationErr = errors.New("missing credentials")
		return Ticket{}, s.validationErr
	}
	t, err := s.Begin(CallValidate)
	if err != nil {
		return Ticket{}, err
	}
	s.validationErr = nil
	return t, nil
}

// CompleteValidate applies the validation answer. Success moves on to the
// mode choice.
func (s *Session) CompleteValidate(t Ticket, input entity.CredentialInput, creds *entity.Credentials, callErr error) error {
	if err := s.finish(t); err != nil {
		return err
	}
	if callErr != nil {
		s.validationErr = callErr
		return callErr
	}
	c := entity.Credentials{Valid: true}
	if creds != nil {
		c = *creds
		c.Valid = true
	}
	c.AccessKey = input.AccessKey
	c.SecretKey = input.SecretKey
	c.Region = input.Region
	if c.Region == "" {
		c.Region = s.region
	}
	s.credentials = &c
	s.validationErr = nil
	s.state = ChoosingMode{}
	return nil
}

// ChooseMode answers the post-login mode question.
func (s *Session) ChooseMode(m Mode) error {
	if _, ok := s.state.(ChoosingMode); !ok {
		return ErrInvalidState
	}
	s.mode = m
	s.state = Browsing{}
	return nil
}

// SetMode switches between dry-run and live while browsing.
func (s *Session) SetMode(m Mode) error {
	if _, ok := s.state.(Browsing); !ok {
		return ErrInvalidState
	}
	s.mode = m
	return nil
}

// CompleteClear resets the session once the backend forgot the credentials.
func (s *Session) CompleteClear(t Ticket, callErr error) error {
	if err := s.finish(t); err != nil && !errors.Is(err, ErrStaleResult) {
		return err
	}
	if callErr != nil {
		s.banner = callErr
		return callErr
	}
	s.Reset()
	return nil
}

// Reset returns every piece of session state to its initial value. The
// technique catalog is kept; it does not depend on the account.
func (s *Session) Reset() {
	s.state = Idle{}
	s.mode = ModeDryRun
	s.credentials = nil
	s.analysis = nil
	s.selection = nil
	s.analyzing = nil
	s.validationErr = nil
	s.banner = nil
	s.generation++
	s.pending = make(map[CallKind]uint64)
}

// --- Catalog & analysis ---

// CompleteTechniques stores the catalog.
func (s *Session) CompleteTechniques(t Ticket, techniques []entity.Technique, callErr error) error {
	if err := s.finish(t); err != nil {
		return err
	}
	if callErr != nil {
		s.banner = callErr
		return callErr
	}
	s.techniques = techniques
	return nil
}

// BeginAnalyze starts an analysis of technique against the session region.
func (s *Session) BeginAnalyze(technique entity.Technique) (AnalyzeCall, error) {
	if !s.LoggedIn() {
		return AnalyzeCall{}, ErrNotLoggedIn
	}
	if _, ok := s.state.(Browsing); !ok || s.analysis != nil {
		return AnalyzeCall{}, ErrInvalidState
	}
	t, err := s.Begin(CallAnalyze)
	if err != nil {
		return AnalyzeCall{}, err
	}
	s.banner = nil
	tech := technique
	s.analyzing = &tech
	return AnalyzeCall{Ticket: t, Technique: technique, Region: s.Region()}, nil
}

// CompleteAnalyze installs the findings and a fresh, empty selection.
func (s *Session) CompleteAnalyze(t Ticket, result *entity.AnalysisResult, callErr error) error {
	technique := s.analyzing
	if err := s.finish(t); err != nil {
		return err
	}
	s.analyzing = nil
	if callErr != nil {
		s.banner = callErr
		return callErr
	}
	if result == nil {
		result = &entity.AnalysisResult{}
	}
	r := *result
	if technique != nil {
		r.Technique = *technique
	}
	if r.Findings == nil {
		r.Findings = []entity.Finding{}
	}
	if r.Count == 0 {
		r.Count = len(r.Findings)
	}
	r.OptimizationResults = nil
	s.analysis = &r
	s.selection = NewSelection(r.ResourceIDs())
	s.state = Browsing{}
	return nil
}

// Back leaves the findings view for the catalog. The selection is dropped
// and results of calls still in flight will be discarded.
func (s *Session) Back() {
	if s.analysis == nil && s.analyzing == nil {
		return
	}
	s.generation++
	s.analysis = nil
	s.selection = nil
	s.analyzing = nil
	if s.LoggedIn() {
		s.state = Browsing{}
	}
}

// --- Selection ---

func (s *Session) browsingFindings() error {
	if _, ok := s.state.(Browsing); !ok {
		return ErrInvalidState
	}
	if s.analysis == nil || s.selection == nil {
		return ErrNoAnalysis
	}
	return nil
}

// Toggle flips one resource in the selection.
func (s *Session) Toggle(id string) error {
	if err := s.browsingFindings(); err != nil {
		return err
	}
	if _, ok := s.selection.known[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownResource)
	}
	s.selection.Toggle(id)
	return nil
}

// SelectAll toggles between all findings and none.
func (s *Session) SelectAll() error {
	if err := s.browsingFindings(); err != nil {
		return err
	}
	s.selection.SelectAll()
	return nil
}

// --- Confirmation & execution ---

// RequestConfirmation opens the confirmation dialog for the selection.
func (s *Session) RequestConfirmation() error {
	if err := s.browsingFindings(); err != nil {
		return err
	}
	if !s.analysis.HasFindings() {
		return ErrNoFindings
	}
	if s.selection.Empty() {
		return ErrEmptySelection
	}
	s.state = Confirming{}
	return nil
}

// SetConfirmationInput records the phrase being typed and clears the last
// mismatch.
func (s *Session) SetConfirmationInput(input string) error {
	if _, ok := s.state.(Confirming); !ok {
		return ErrInvalidState
	}
	s.state = Confirming{Input: input}
	return nil
}

// Confirm validates the dialog and starts the optimize call. Dry-run needs
// no phrase; live mode needs the typed phrase to match the technique.
func (s *Session) Confirm() (OptimizeCall, error) {
	c, ok := s.state.(Confirming)
	if !ok {
		return OptimizeCall{}, ErrInvalidState
	}
	technique := s.analysis.Technique
	if s.mode == ModeLive && !MatchesConfirmation(technique, c.Input, s.strict) {
		mismatch := newMismatch(technique)
		s.state = Confirming{Input: c.Input, Mismatch: mismatch}
		return OptimizeCall{}, mismatch
	}
	t, err := s.Begin(CallOptimize)
	if err != nil {
		return OptimizeCall{}, err
	}
	s.banner = nil
	call := OptimizeCall{
		Ticket:      t,
		TechniqueID: technique.ID,
		Request: entity.OptimizeRequest{
			ResourceIDs: s.selection.IDs(),
			DryRun:      s.mode == ModeDryRun,
			Region:      s.Region(),
		},
	}
	s.state = Executing{Call: call}
	return call, nil
}

// Cancel closes the confirmation dialog without side effects.
func (s *Session) Cancel() error {
	if _, ok := s.state.(Confirming); !ok {
		return ErrInvalidState
	}
	s.state = Browsing{}
	return nil
}

// CompleteOptimize merges the per-resource outcomes into the current
// analysis and returns to browsing. Findings are left untouched.
func (s *Session) CompleteOptimize(t Ticket, result *entity.OptimizationResult, callErr error) error {
	if err := s.finish(t); err != nil {
		return err
	}
	if _, ok := s.state.(Executing); ok {
		s.state = Browsing{}
	}
	if callErr != nil {
		s.banner = callErr
		return callErr
	}
	if s.analysis != nil && result != nil {
		r := *result
		s.analysis.OptimizationResults = &r
	}
	return nil
}

// --- Export ---

// Report snapshots the current findings for export.
func (s *Session) Report(now time.Time) (entity.FindingsReport, error) {
	if s.analysis == nil {
		return entity.FindingsReport{}, ErrNoAnalysis
	}
	if !s.analysis.HasFindings() {
		return entity.FindingsReport{}, ErrNoFindings
	}
	return entity.NewFindingsReport(s.analysis, s.Region(), now), nil
}
