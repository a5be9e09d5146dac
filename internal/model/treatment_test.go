package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTreatmentStatus(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TreatmentStatus
		ok    bool
	}{
		{"blank defaults to pending", "", TreatmentStatusPending, true},
		{"canonical pending", "Por Iniciar", TreatmentStatusPending, true},
		{"lowercase", "por iniciar", TreatmentStatusPending, true},
		{"uppercase", "TERMINADO", TreatmentStatusDone, true},
		{"extra inner whitespace", "en   proceso", TreatmentStatusInProgress, true},
		{"surrounding whitespace", "  Terminado  ", TreatmentStatusDone, true},
		{"mixed case", "eN pRoCeSo", TreatmentStatusInProgress, true},
		{"unknown label", "completado", "", false},
		{"partial label", "por", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTreatmentStatus(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidTreatmentStatuses(t *testing.T) {
	assert.Equal(t, []string{"Por Iniciar", "En proceso", "Terminado"}, ValidTreatmentStatuses())
}

func TestTreatmentPatchEmpty(t *testing.T) {
	assert.True(t, (&TreatmentPatch{}).Empty())

	cost := 100.0
	assert.False(t, (&TreatmentPatch{TotalCost: &cost}).Empty())

	notes := ""
	assert.False(t, (&TreatmentPatch{Notes: &notes}).Empty())
}
