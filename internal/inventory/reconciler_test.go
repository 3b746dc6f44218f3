package inventory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tarekulislam03/medix-v1-sub001/internal/imports"
)

func TestApplyUnconfigured(t *testing.T) {
	var r *Reconciler
	require.Error(t, r.Apply(context.Background(), []imports.StagedLine{{MedicineName: "Aspirin"}}))

	r = &Reconciler{}
	require.Error(t, r.Apply(context.Background(), nil))
}

func TestGeneratedSKU(t *testing.T) {
	sku := generatedSKU("Paracetamol 500mg Tablet")
	require.True(t, strings.HasPrefix(sku, "PARACETAMOL-500MG-TABLET-"), "got %s", sku)

	long := generatedSKU("An Extremely Long Medicine Name That Never Ends")
	parts := strings.Split(long, "-")
	require.Len(t, parts[len(parts)-1], 8)
	require.LessOrEqual(t, len(long), 24+1+8)

	// suffix keeps repeated names unique
	require.NotEqual(t, generatedSKU("Aspirin"), generatedSKU("Aspirin"))
}
