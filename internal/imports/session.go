package imports

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State enumerates the staging session lifecycle.
type State string

const (
	StateIdle       State = "IDLE"
	StateUploading  State = "UPLOADING"
	StateReviewing  State = "REVIEWING"
	StateCommitting State = "COMMITTING"
	StateFailed     State = "FAILED"
)

// ErrNoFile indicates submit was attempted without a staged document.
var ErrNoFile = errors.New("no file selected")

// ErrNoRows indicates confirm was attempted with an empty staged list.
var ErrNoRows = errors.New("no staged rows to commit")

// ErrRowOutOfRange indicates the row index does not address a staged line.
var ErrRowOutOfRange = errors.New("row index out of range")

// ErrWrongState indicates the operation is not valid in the session's current state.
var ErrWrongState = errors.New("operation not allowed in current state")

// StagedLine is a candidate inventory record produced by document extraction.
// Row identity is positional; there is no server-assigned id until commit.
type StagedLine struct {
	MedicineName string          `json:"medicineName"`
	BatchNumber  string          `json:"batchNumber"`
	ExpiryDate   string          `json:"expiryDate"`
	Quantity     int             `json:"quantity"`
	MRP          decimal.Decimal `json:"mrp"`
	Rate         decimal.Decimal `json:"rate"`
}

// RowUpdate is the closed set of editable staged line fields. Nil members
// leave the corresponding field untouched.
type RowUpdate struct {
	MedicineName *string          `json:"medicineName"`
	BatchNumber  *string          `json:"batchNumber"`
	ExpiryDate   *string          `json:"expiryDate"`
	Quantity     *int             `json:"quantity"`
	MRP          *decimal.Decimal `json:"mrp"`
	Rate         *decimal.Decimal `json:"rate"`
}

// View is a read-only snapshot of a session.
type View struct {
	ID       uuid.UUID    `json:"id"`
	State    State        `json:"state"`
	FileName string       `json:"fileName,omitempty"`
	Failure  string       `json:"failure,omitempty"`
	Items    []StagedLine `json:"items"`
}

// Session owns the supplier-bill staging workflow from upload through
// commit. All mutations go through its methods; asynchronous completions
// carry the generation they started under and are dropped when the session
// was reset in the meantime.
type Session struct {
	ID uuid.UUID

	mu         sync.Mutex
	state      State
	fileName   string
	fileData   []byte
	items      []StagedLine
	failure    string
	generation uint64
}

// NewSession returns an idle session with a fresh identity.
func NewSession() *Session {
	return &Session{ID: uuid.New(), state: StateIdle}
}

// Snapshot returns a copy of the session suitable for rendering.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]StagedLine, len(s.items))
	copy(items, s.items)
	return View{
		ID:       s.ID,
		State:    s.state,
		FileName: s.fileName,
		Failure:  s.failure,
		Items:    items,
	}
}

// State reports the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectFile stages a document locally without any network call.
func (s *Session) SelectFile(name string, contents []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return ErrWrongState
	}
	s.fileName = name
	s.fileData = append([]byte(nil), contents...)
	return nil
}

// BeginUpload transitions Idle to Uploading and hands out the staged file
// plus the generation the caller must present on completion. Submitting
// without a file is rejected locally and the session stays Idle.
func (s *Session) BeginUpload() (gen uint64, name string, contents []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return 0, "", nil, ErrWrongState
	}
	if len(s.fileData) == 0 {
		return 0, "", nil, ErrNoFile
	}
	s.state = StateUploading
	return s.generation, s.fileName, s.fileData, nil
}

// CompleteUpload installs extracted rows and moves to Reviewing. It reports
// whether the result was applied; results from a superseded generation are
// discarded.
func (s *Session) CompleteUpload(gen uint64, items []StagedLine) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.state != StateUploading {
		return false
	}
	s.items = append([]StagedLine(nil), items...)
	s.state = StateReviewing
	s.failure = ""
	// the document already served its purpose
	s.fileData = nil
	return true
}

// FailUpload records an extraction failure, retaining the message for display.
func (s *Session) FailUpload(gen uint64, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.state != StateUploading {
		return false
	}
	s.state = StateFailed
	s.failure = message
	return true
}

// UpdateRow edits one staged line in place. Only valid while Reviewing;
// edits are frozen during Committing.
func (s *Session) UpdateRow(index int, upd RowUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReviewing {
		return ErrWrongState
	}
	if index < 0 || index >= len(s.items) {
		return ErrRowOutOfRange
	}
	row := &s.items[index]
	if upd.MedicineName != nil {
		row.MedicineName = *upd.MedicineName
	}
	if upd.BatchNumber != nil {
		row.BatchNumber = *upd.BatchNumber
	}
	if upd.ExpiryDate != nil {
		row.ExpiryDate = *upd.ExpiryDate
	}
	if upd.Quantity != nil {
		row.Quantity = *upd.Quantity
	}
	if upd.MRP != nil {
		row.MRP = *upd.MRP
	}
	if upd.Rate != nil {
		row.Rate = *upd.Rate
	}
	return nil
}

// DeleteRow removes exactly one staged line, shifting subsequent rows down.
func (s *Session) DeleteRow(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReviewing {
		return ErrWrongState
	}
	if index < 0 || index >= len(s.items) {
		return ErrRowOutOfRange
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	return nil
}

// BeginCommit freezes the staged list and transitions to Committing,
// returning a copy for the reconciler. Confirming an empty list is rejected
// locally without a state change.
func (s *Session) BeginCommit() (gen uint64, items []StagedLine, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReviewing {
		return 0, nil, ErrWrongState
	}
	if len(s.items) == 0 {
		return 0, nil, ErrNoRows
	}
	s.state = StateCommitting
	items = make([]StagedLine, len(s.items))
	copy(items, s.items)
	return s.generation, items, nil
}

// CompleteCommit resets the session after a successful commit.
func (s *Session) CompleteCommit(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.state != StateCommitting {
		return false
	}
	s.resetLocked()
	return true
}

// FailCommit returns to Reviewing with the staged rows untouched so user
// corrections survive and the commit can be retried.
func (s *Session) FailCommit(gen uint64, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.state != StateCommitting {
		return false
	}
	s.state = StateReviewing
	s.failure = message
	return true
}

// Reset abandons any in-flight work and returns to Idle. Responses from
// requests started before the reset will be ignored.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.state = StateIdle
	s.fileName = ""
	s.fileData = nil
	s.items = nil
	s.failure = ""
	s.generation++
}
