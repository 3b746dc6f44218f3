package imports_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tarekulislam03/medix-v1-sub001/internal/imports"
)

func stagedLines() []imports.StagedLine {
	return []imports.StagedLine{
		{MedicineName: "Paracetamol 500mg", BatchNumber: "B001", ExpiryDate: "08/27", Quantity: 100, MRP: decimal.RequireFromString("2.50"), Rate: decimal.RequireFromString("1.80")},
		{MedicineName: "Amoxicillin 250mg", BatchNumber: "B002", ExpiryDate: "01/26", Quantity: 50, MRP: decimal.RequireFromString("8.00"), Rate: decimal.RequireFromString("6.20")},
		{MedicineName: "Cetirizine 10mg", BatchNumber: "B003", ExpiryDate: "12/26", Quantity: 200, MRP: decimal.RequireFromString("1.20"), Rate: decimal.RequireFromString("0.85")},
	}
}

func reviewingSession(t *testing.T) *imports.Session {
	t.Helper()
	s := imports.NewSession()
	require.NoError(t, s.SelectFile("bill.pdf", []byte("doc")))
	gen, _, _, err := s.BeginUpload()
	require.NoError(t, err)
	require.True(t, s.CompleteUpload(gen, stagedLines()))
	require.Equal(t, imports.StateReviewing, s.State())
	return s
}

func TestSubmitWithoutFileStaysIdle(t *testing.T) {
	s := imports.NewSession()
	_, _, _, err := s.BeginUpload()
	require.ErrorIs(t, err, imports.ErrNoFile)
	require.Equal(t, imports.StateIdle, s.State())
}

func TestUploadFailureRetainsMessage(t *testing.T) {
	s := imports.NewSession()
	require.NoError(t, s.SelectFile("bill.pdf", []byte("doc")))
	gen, _, _, err := s.BeginUpload()
	require.NoError(t, err)
	require.True(t, s.FailUpload(gen, "service unavailable"))

	view := s.Snapshot()
	require.Equal(t, imports.StateFailed, view.State)
	require.Equal(t, "service unavailable", view.Failure)

	// retry path: back to idle, file must be re-selected
	s.Reset()
	require.Equal(t, imports.StateIdle, s.State())
	_, _, _, err = s.BeginUpload()
	require.ErrorIs(t, err, imports.ErrNoFile)
}

func TestDeleteRowPreservesOrder(t *testing.T) {
	s := reviewingSession(t)
	require.NoError(t, s.DeleteRow(1))

	view := s.Snapshot()
	require.Len(t, view.Items, 2)
	require.Equal(t, "Paracetamol 500mg", view.Items[0].MedicineName)
	require.Equal(t, "Cetirizine 10mg", view.Items[1].MedicineName)

	require.ErrorIs(t, s.DeleteRow(5), imports.ErrRowOutOfRange)
}

func TestUpdateRowEditsInPlace(t *testing.T) {
	s := reviewingSession(t)
	qty := 75
	name := "Paracetamol 650mg"
	require.NoError(t, s.UpdateRow(0, imports.RowUpdate{Quantity: &qty, MedicineName: &name}))

	view := s.Snapshot()
	require.Equal(t, 75, view.Items[0].Quantity)
	require.Equal(t, "Paracetamol 650mg", view.Items[0].MedicineName)
	// untouched fields survive
	require.Equal(t, "B001", view.Items[0].BatchNumber)
}

func TestConfirmEmptyListRejectedLocally(t *testing.T) {
	s := reviewingSession(t)
	for i := 2; i >= 0; i-- {
		require.NoError(t, s.DeleteRow(i))
	}
	_, _, err := s.BeginCommit()
	require.ErrorIs(t, err, imports.ErrNoRows)
	require.Equal(t, imports.StateReviewing, s.State())
}

func TestEditsFrozenWhileCommitting(t *testing.T) {
	s := reviewingSession(t)
	_, _, err := s.BeginCommit()
	require.NoError(t, err)

	qty := 1
	require.ErrorIs(t, s.UpdateRow(0, imports.RowUpdate{Quantity: &qty}), imports.ErrWrongState)
	require.ErrorIs(t, s.DeleteRow(0), imports.ErrWrongState)
}

func TestFailedCommitPreservesItems(t *testing.T) {
	s := reviewingSession(t)
	before := s.Snapshot().Items

	gen, frozen, err := s.BeginCommit()
	require.NoError(t, err)
	require.Equal(t, before, frozen)
	require.True(t, s.FailCommit(gen, "inventory unavailable"))

	view := s.Snapshot()
	require.Equal(t, imports.StateReviewing, view.State)
	require.Equal(t, before, view.Items)
	require.Equal(t, "inventory unavailable", view.Failure)

	// retry succeeds with the same rows
	gen, retry, err := s.BeginCommit()
	require.NoError(t, err)
	require.Equal(t, before, retry)
	require.True(t, s.CompleteCommit(gen))
	require.Equal(t, imports.StateIdle, s.State())
	require.Empty(t, s.Snapshot().Items)
}

func TestStaleResponsesDiscardedAfterReset(t *testing.T) {
	s := imports.NewSession()
	require.NoError(t, s.SelectFile("bill.pdf", []byte("doc")))
	gen, _, _, err := s.BeginUpload()
	require.NoError(t, err)

	s.Reset()
	require.False(t, s.CompleteUpload(gen, stagedLines()))
	require.False(t, s.FailUpload(gen, "late failure"))
	require.Equal(t, imports.StateIdle, s.State())
	require.Empty(t, s.Snapshot().Items)

	// same for a commit interrupted by a cancel
	s2 := reviewingSession(t)
	gen2, _, err := s2.BeginCommit()
	require.NoError(t, err)
	s2.Reset()
	require.False(t, s2.CompleteCommit(gen2))
	require.False(t, s2.FailCommit(gen2, "late failure"))
	require.Equal(t, imports.StateIdle, s2.State())
}

type captureReconciler struct {
	calls   int
	applied [][]imports.StagedLine
	err     error
}

func (c *captureReconciler) Apply(_ context.Context, lines []imports.StagedLine) error {
	c.calls++
	c.applied = append(c.applied, append([]imports.StagedLine(nil), lines...))
	return c.err
}

func TestConfirmSendsRemainingRowsInOrder(t *testing.T) {
	s := reviewingSession(t)
	require.NoError(t, s.DeleteRow(1))

	rec := &captureReconciler{}
	gen, lines, err := s.BeginCommit()
	require.NoError(t, err)
	require.NoError(t, rec.Apply(context.Background(), lines))
	require.True(t, s.CompleteCommit(gen))

	require.Equal(t, 1, rec.calls)
	require.Len(t, rec.applied[0], 2)
	require.Equal(t, "Paracetamol 500mg", rec.applied[0][0].MedicineName)
	require.Equal(t, "Cetirizine 10mg", rec.applied[0][1].MedicineName)
}

func TestReconcilerErrorDoesNotTouchRows(t *testing.T) {
	s := reviewingSession(t)
	rec := &captureReconciler{err: errors.New("boom")}

	before := s.Snapshot().Items
	gen, lines, err := s.BeginCommit()
	require.NoError(t, err)
	require.Error(t, rec.Apply(context.Background(), lines))
	require.True(t, s.FailCommit(gen, "boom"))
	require.Equal(t, before, s.Snapshot().Items)
}
